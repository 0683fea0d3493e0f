// Package config loads the render service configuration from an optional
// YAML file and environment variables.
//
// Precedence, highest first: command-line flags (applied by the caller),
// environment variables, the config file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/goccy/go-yaml"

	htmlrender "github.com/porticus-lab/go-html-render"
)

// MaxFileSize limits the config file size.
var MaxFileSize = 1 << 20

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrFileTooLarge   = errors.New("config file exceeds maximum size")
	ErrInvalid        = errors.New("invalid config")
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Renderer RendererConfig `yaml:"renderer"`
	Defaults DefaultsConfig `yaml:"defaults"`
	PDF      PDFConfig      `yaml:"pdf"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Port            int    `yaml:"port"`
	Secret          string `yaml:"secret"`    // shared secret for X-Render-Secret; empty rejects all renders
	BodyLimit       int64  `yaml:"bodyLimit"` // bytes
	ShutdownTimeout string `yaml:"shutdownTimeout"`
}

// RendererConfig selects and configures the browser backend.
type RendererConfig struct {
	Engine          string   `yaml:"engine"` // "chromedp" or "rod"
	ChromePath      string   `yaml:"chromePath"`
	NoSandbox       bool     `yaml:"noSandbox"` // default true; false keeps the Chrome sandbox
	AutoDownload    bool     `yaml:"autoDownload"`
	BlockHosts      []string `yaml:"blockHosts"` // empty keeps the default font hosts
	DisableBlocking bool     `yaml:"disableBlocking"`
}

// DefaultsConfig holds request defaults. Durations are in milliseconds,
// matching the request fields.
type DefaultsConfig struct {
	Width               int     `yaml:"width"`
	Height              int     `yaml:"height"`
	Scale               float64 `yaml:"scale"`
	FullPage            bool    `yaml:"fullPage"`
	WaitBudgetMs        int     `yaml:"waitBudgetMs"`
	NavigationTimeoutMs int     `yaml:"navigationTimeoutMs"`
	CaptureTimeoutMs    int     `yaml:"captureTimeoutMs"`
	LaunchTimeoutMs     int     `yaml:"launchTimeoutMs"`
	SelectorTimeoutMs   int     `yaml:"selectorTimeoutMs"`
	DisableAnimations   bool    `yaml:"disableAnimations"`
}

// PDFConfig holds PDF page defaults.
type PDFConfig struct {
	PageSize string `yaml:"pageSize"` // a4, letter, ...
	Margin   string `yaml:"margin"`   // CSS length applied to every side
}

// CacheConfig enables the Redis render cache when RedisURL is set.
type CacheConfig struct {
	RedisURL string `yaml:"redisURL"`
	TTL      string `yaml:"ttl"` // Go duration, e.g. "10m"
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	d := htmlrender.DefaultDefaults()
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			BodyLimit:       15 << 20,
			ShutdownTimeout: "10s",
		},
		Renderer: RendererConfig{
			Engine:    string(htmlrender.BackendChromedp),
			NoSandbox: true,
		},
		Defaults: DefaultsConfig{
			Width:               d.Width,
			Height:              d.Height,
			Scale:               d.Scale,
			FullPage:            d.FullPage,
			WaitBudgetMs:        int(d.WaitBudget / time.Millisecond),
			NavigationTimeoutMs: int(d.NavigationTimeout / time.Millisecond),
			CaptureTimeoutMs:    int(d.CaptureTimeout / time.Millisecond),
			LaunchTimeoutMs:     int(d.LaunchTimeout / time.Millisecond),
			SelectorTimeoutMs:   int(d.SelectorTimeout / time.Millisecond),
			DisableAnimations:   d.DisableAnimations,
		},
		PDF: PDFConfig{
			PageSize: "a4",
			Margin:   "12mm",
		},
		Cache: CacheConfig{
			TTL: d.CacheTTL.String(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the built-in defaults. Unknown keys
// are rejected. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML data into cfg, keeping fields the data leaves out.
func Parse(data []byte, cfg *Config) error {
	if len(data) > MaxFileSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, len(data), MaxFileSize)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return nil
}

// Environment variables recognized by ApplyEnv.
const (
	EnvPort             = "PORT"
	EnvSecret           = "RENDERER_SECRET"
	EnvConfig           = "RENDERER_CONFIG"
	EnvEngine           = "RENDERER_ENGINE"
	EnvChromePath       = "CHROME_PATH"
	EnvRodBrowserBin    = "ROD_BROWSER_BIN"
	EnvNoSandbox        = "RENDERER_NO_SANDBOX"
	EnvDefaultWidth     = "RENDERER_DEFAULT_WIDTH"
	EnvDefaultHeight    = "RENDERER_DEFAULT_HEIGHT"
	EnvDefaultScale     = "RENDERER_DEFAULT_SCALE"
	EnvFullPage         = "RENDERER_FULL_PAGE"
	EnvWaitMs           = "RENDERER_WAIT_MS"
	EnvNavTimeoutMs     = "RENDERER_NAV_TIMEOUT_MS"
	EnvCaptureTimeoutMs = "RENDERER_CAPTURE_TIMEOUT_MS"
	EnvRedisURL         = "REDIS_URL"
	EnvCacheTTL         = "RENDERER_CACHE_TTL"
	EnvLogLevel         = "RENDERER_LOG_LEVEL"
)

// ApplyEnv overrides cfg with every set environment variable. getenv is
// usually os.Getenv. Malformed numbers and booleans are reported together.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	var errs []error
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not an integer", name, v))
			return
		}
		*dst = n
	}
	flt := func(name string, dst *float64) {
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			return
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a number", name, v))
			return
		}
		*dst = f
	}
	boolean := func(name string, dst *bool) {
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a boolean", name, v))
			return
		}
		*dst = b
	}

	num(EnvPort, &c.Server.Port)
	if v, ok := lookup(getenv, EnvSecret); ok {
		c.Server.Secret = v
	}
	str(EnvEngine, &c.Renderer.Engine)
	str(EnvRodBrowserBin, &c.Renderer.ChromePath)
	str(EnvChromePath, &c.Renderer.ChromePath)
	boolean(EnvNoSandbox, &c.Renderer.NoSandbox)
	num(EnvDefaultWidth, &c.Defaults.Width)
	num(EnvDefaultHeight, &c.Defaults.Height)
	flt(EnvDefaultScale, &c.Defaults.Scale)
	boolean(EnvFullPage, &c.Defaults.FullPage)
	num(EnvWaitMs, &c.Defaults.WaitBudgetMs)
	num(EnvNavTimeoutMs, &c.Defaults.NavigationTimeoutMs)
	num(EnvCaptureTimeoutMs, &c.Defaults.CaptureTimeoutMs)
	str(EnvRedisURL, &c.Cache.RedisURL)
	str(EnvCacheTTL, &c.Cache.TTL)
	str(EnvLogLevel, &c.Log.Level)

	return errors.Join(errs...)
}

// lookup returns the raw value of name. The secret is not trimmed.
func lookup(getenv func(string) string, name string) (string, bool) {
	v := getenv(name)
	return v, v != ""
}

// Validate rejects values the service cannot run with. Request-level
// clamping still applies afterwards; Validate only catches nonsense.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.BodyLimit <= 0 {
		errs = append(errs, errors.New("server.bodyLimit must be positive"))
	}
	if _, err := parseDuration("server.shutdownTimeout", c.Server.ShutdownTimeout); err != nil {
		errs = append(errs, err)
	}
	switch htmlrender.Backend(c.Renderer.Engine) {
	case htmlrender.BackendChromedp, htmlrender.BackendRod:
	default:
		errs = append(errs, fmt.Errorf("renderer.engine must be %q or %q, got %q",
			htmlrender.BackendChromedp, htmlrender.BackendRod, c.Renderer.Engine))
	}
	if c.Defaults.Width <= 0 || c.Defaults.Height <= 0 {
		errs = append(errs, errors.New("defaults.width and defaults.height must be positive"))
	}
	if c.Defaults.Scale <= 0 {
		errs = append(errs, errors.New("defaults.scale must be positive"))
	}
	for _, f := range []struct {
		name string
		v    int
	}{
		{"defaults.waitBudgetMs", c.Defaults.WaitBudgetMs},
		{"defaults.navigationTimeoutMs", c.Defaults.NavigationTimeoutMs},
		{"defaults.captureTimeoutMs", c.Defaults.CaptureTimeoutMs},
		{"defaults.launchTimeoutMs", c.Defaults.LaunchTimeoutMs},
		{"defaults.selectorTimeoutMs", c.Defaults.SelectorTimeoutMs},
	} {
		if f.v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", f.name))
		}
	}
	if _, ok := htmlrender.PageSizeByName(c.PDF.PageSize); !ok {
		errs = append(errs, fmt.Errorf("pdf.pageSize %q is not a known page size", c.PDF.PageSize))
	}
	if _, err := htmlrender.ParseLength(c.PDF.Margin); err != nil {
		errs = append(errs, fmt.Errorf("pdf.margin: %w", err))
	}
	if _, err := parseDuration("cache.ttl", c.Cache.TTL); err != nil {
		errs = append(errs, err)
	}
	if _, err := charmlog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := parseDuration("", c.Server.ShutdownTimeout)
	return d
}

// LogLevel returns the configured level, falling back to info.
func (c *Config) LogLevel() charmlog.Level {
	lvl, err := charmlog.ParseLevel(c.Log.Level)
	if err != nil {
		return charmlog.InfoLevel
	}
	return lvl
}

// RenderDefaults converts the config into renderer defaults. Call Validate
// first; unparsable values fall back to the built-ins.
func (c *Config) RenderDefaults() htmlrender.Defaults {
	d := htmlrender.DefaultDefaults()
	d.Width = c.Defaults.Width
	d.Height = c.Defaults.Height
	d.Scale = c.Defaults.Scale
	d.FullPage = c.Defaults.FullPage
	d.WaitBudget = ms(c.Defaults.WaitBudgetMs)
	d.NavigationTimeout = ms(c.Defaults.NavigationTimeoutMs)
	d.CaptureTimeout = ms(c.Defaults.CaptureTimeoutMs)
	d.LaunchTimeout = ms(c.Defaults.LaunchTimeoutMs)
	d.SelectorTimeout = ms(c.Defaults.SelectorTimeoutMs)
	d.DisableAnimations = c.Defaults.DisableAnimations
	if size, ok := htmlrender.PageSizeByName(c.PDF.PageSize); ok {
		d.PageSize = size
	}
	if cm, err := htmlrender.ParseLength(c.PDF.Margin); err == nil {
		d.Margin = htmlrender.UniformMargin(cm)
	}
	if ttl, err := parseDuration("", c.Cache.TTL); err == nil && ttl > 0 {
		d.CacheTTL = ttl
	}
	return d
}

// BlockRule returns the request block rule for the renderer.
func (c *Config) BlockRule() htmlrender.BlockRule {
	if c.Renderer.DisableBlocking {
		return htmlrender.NewBlockRule()
	}
	if len(c.Renderer.BlockHosts) > 0 {
		return htmlrender.NewBlockRule(c.Renderer.BlockHosts...)
	}
	return htmlrender.DefaultBlockRule()
}

// ms converts milliseconds, saturating instead of overflowing.
func ms(n int) time.Duration {
	if int64(n) > math.MaxInt64/int64(time.Millisecond) {
		return math.MaxInt64
	}
	return time.Duration(n) * time.Millisecond
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}
