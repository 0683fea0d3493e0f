package main

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	htmlrender "github.com/porticus-lab/go-html-render"
	"github.com/porticus-lab/go-html-render/internal/config"
	"github.com/porticus-lab/go-html-render/internal/rediscache"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	verbose    bool
	configPath string
}

// engineFlags override the renderer section of the config.
type engineFlags struct {
	engine       string
	chromePath   string
	noSandbox    bool
	autoDownload bool
	redisURL     string
}

func (f *engineFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.engine, "engine", "", `browser backend: "chromedp" or "rod"`)
	fs.StringVar(&f.chromePath, "chrome-path", "", "path to the Chrome/Chromium executable")
	fs.BoolVar(&f.noSandbox, "no-sandbox", true, "disable the Chrome sandbox (--no-sandbox=false keeps it)")
	fs.BoolVar(&f.autoDownload, "auto-download", false, "download Chromium when none is installed")
	fs.StringVar(&f.redisURL, "redis-url", "", "cache rendered artifacts in Redis")
}

// apply copies flags the user actually set onto cfg.
func (f *engineFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("engine") {
		cfg.Renderer.Engine = f.engine
	}
	if fs.Changed("chrome-path") {
		cfg.Renderer.ChromePath = f.chromePath
	}
	if fs.Changed("no-sandbox") {
		cfg.Renderer.NoSandbox = f.noSandbox
	}
	if fs.Changed("auto-download") {
		cfg.Renderer.AutoDownload = f.autoDownload
	}
	if fs.Changed("redis-url") {
		cfg.Cache.RedisURL = f.redisURL
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "htmlrender",
		Short:         "Render HTML to PDF or PNG with headless Chrome",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("htmlrender %s\n", Version))
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "",
		"YAML config file (default $"+config.EnvConfig+")")

	root.AddCommand(newServeCmd(&g))
	root.AddCommand(newRenderCmd(&g))
	return root
}

// loadConfig reads the config file, then the environment, then flags, and
// validates the result.
func loadConfig(g *globalFlags, fs *pflag.FlagSet, ef *engineFlags) (*config.Config, error) {
	path := g.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	ef.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(g *globalFlags, cfg *config.Config) *charmlog.Logger {
	level := cfg.LogLevel()
	if g.verbose {
		level = charmlog.DebugLevel
	}
	return htmlrender.NewLogger(os.Stderr, level)
}

// newRenderer builds the renderer described by cfg. The caller closes it,
// which also closes the cache.
func newRenderer(ctx context.Context, cfg *config.Config) (*htmlrender.Renderer, error) {
	opts := []htmlrender.Option{
		htmlrender.WithBackend(htmlrender.Backend(cfg.Renderer.Engine)),
		htmlrender.WithChromePath(cfg.Renderer.ChromePath),
		htmlrender.WithDefaults(cfg.RenderDefaults()),
		htmlrender.WithBlockRule(cfg.BlockRule()),
	}
	if cfg.Renderer.NoSandbox {
		opts = append(opts, htmlrender.WithNoSandbox())
	} else {
		opts = append(opts, htmlrender.WithSandbox())
	}
	if cfg.Renderer.AutoDownload {
		opts = append(opts, htmlrender.WithAutoDownload())
	}

	var cache *rediscache.Cache
	if cfg.Cache.RedisURL != "" {
		var err error
		if cache, err = rediscache.New(ctx, rediscache.Config{URL: cfg.Cache.RedisURL}); err != nil {
			return nil, err
		}
		opts = append(opts, htmlrender.WithCache(cache))
	}

	r, err := htmlrender.NewRenderer(opts...)
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, err
	}
	return r, nil
}
