package htmlrender

import qrcode "github.com/skip2/go-qrcode"

// Backend names a browser automation library.
type Backend string

// Supported backends.
const (
	BackendChromedp Backend = "chromedp"
	BackendRod      Backend = "rod"
)

// rendererConfig holds internal configuration for a Renderer.
type rendererConfig struct {
	backend      Backend
	chromePath   string
	noSandbox    bool
	autoDownload bool
	engine       Engine
	defaults     Defaults
	rule         BlockRule
	cache        Cache
	embedder     ImageEmbedder
}

func defaultConfig() rendererConfig {
	return rendererConfig{
		backend:   BackendChromedp,
		noSandbox: true,
		defaults:  DefaultDefaults(),
		rule:      DefaultBlockRule(),
		cache:     NullCache{},
		embedder:  QREmbedder{Level: qrcode.Medium},
	}
}

// Option configures a [Renderer].
type Option func(*rendererConfig)

// WithBackend selects the automation library driving Chrome. Defaults to
// [BackendChromedp].
func WithBackend(b Backend) Option {
	return func(c *rendererConfig) {
		c.backend = b
	}
}

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) Option {
	return func(c *rendererConfig) {
		c.chromePath = path
	}
}

// WithNoSandbox disables the Chrome sandbox. This is the default, since
// Chrome cannot start its sandbox as root, for example inside containers.
func WithNoSandbox() Option {
	return func(c *rendererConfig) {
		c.noSandbox = true
	}
}

// WithSandbox keeps the Chrome sandbox enabled. Use it on hosts where the
// browser runs as an unprivileged user.
func WithSandbox() Option {
	return func(c *rendererConfig) {
		c.noSandbox = false
	}
}

// WithAutoDownload fetches a compatible Chromium build when no Chrome path
// is configured. See resolveBrowser for the cache location.
func WithAutoDownload() Option {
	return func(c *rendererConfig) {
		c.autoDownload = true
	}
}

// WithEngine replaces the browser engine entirely. Backend, Chrome path,
// sandbox and download options are ignored when an engine is given.
func WithEngine(e Engine) Option {
	return func(c *rendererConfig) {
		c.engine = e
	}
}

// WithDefaults sets the process-wide fallback options. Zero numeric fields
// keep the built-in values from [DefaultDefaults]; start from
// DefaultDefaults to change only a few.
func WithDefaults(d Defaults) Option {
	return func(c *rendererConfig) {
		c.defaults = d
	}
}

// WithBlockRule replaces the default remote-font block rule.
func WithBlockRule(r BlockRule) Option {
	return func(c *rendererConfig) {
		c.rule = r
	}
}

// WithCache stores rendered artifacts in cache for Defaults.CacheTTL.
func WithCache(cache Cache) Option {
	return func(c *rendererConfig) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithImageEmbedder replaces the QR code generator used for placeholder
// substitution.
func WithImageEmbedder(e ImageEmbedder) Option {
	return func(c *rendererConfig) {
		if e != nil {
			c.embedder = e
		}
	}
}
