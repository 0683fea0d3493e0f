package htmlrender

import (
	"context"
	"encoding/json"
	"fmt"
)

// Renderer turns HTML into PDF or PNG artifacts.
//
// Every call to [Renderer.Render] launches its own browser and tears it down
// before returning, whatever the outcome. A Renderer holds only read-only
// state and is safe for concurrent use.
type Renderer struct {
	cfg    rendererConfig
	engine Engine
}

// NewRenderer creates a Renderer with the given options. No browser is
// started until the first render.
func NewRenderer(opts ...Option) (*Renderer, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	cfg.defaults = cfg.defaults.withFallbacks()

	eng := cfg.engine
	if eng == nil {
		path := cfg.chromePath
		if path == "" && cfg.autoDownload && lookupBrowser() == "" {
			var err error
			if path, err = resolveBrowser(); err != nil {
				return nil, err
			}
		}
		switch cfg.backend {
		case BackendChromedp, "":
			eng = &ChromedpEngine{ChromePath: path, NoSandbox: cfg.noSandbox}
		case BackendRod:
			eng = &RodEngine{ChromePath: path, NoSandbox: cfg.noSandbox}
		default:
			return nil, fmt.Errorf("htmlrender: unknown backend %q", cfg.backend)
		}
	}
	return &Renderer{cfg: cfg, engine: eng}, nil
}

// Defaults returns the resolved defaults the Renderer normalizes against.
func (r *Renderer) Defaults() Defaults {
	return r.cfg.defaults
}

// Close releases the render cache.
func (r *Renderer) Close() error {
	return r.cfg.cache.Close()
}

// Render normalizes req, renders it in a fresh browser and returns the
// artifact. Errors are *Error values; use [KindOf] to classify them.
//
// Validation failures are reported before any browser is started. Once a
// browser is running it is closed on every path, including timeouts and
// cancellation of ctx. Nothing is retried.
func (r *Renderer) Render(ctx context.Context, req *RenderRequest) (*Result, error) {
	logger := LoggerFrom(ctx)

	opts, err := Normalize(req, r.cfg.defaults)
	if err != nil {
		return nil, err
	}
	logger.Debug("normalized request",
		"format", opts.Format,
		"mode", opts.Mode,
		"viewport", fmt.Sprintf("%dx%d@%g", opts.Width, opts.Height, opts.Scale))

	html, err := embedImages(req.HTML, opts.QR, r.cfg.embedder)
	if err != nil {
		return nil, err
	}

	key := cacheKey(html, opts)
	if res := r.cached(ctx, key); res != nil {
		logger.Debug("cache hit", "key", key)
		return res, nil
	}

	res, err := r.render(ctx, html, opts)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, res)
	return res, nil
}

// render runs the browser stages. The session is released before render
// returns.
func (r *Renderer) render(ctx context.Context, html string, opts EffectiveOptions) (*Result, error) {
	logger := LoggerFrom(ctx)
	d := r.cfg.defaults

	t := startStage(logger)
	s, err := acquire(ctx, r.engine, opts, d.LaunchTimeout)
	if err != nil {
		return nil, err
	}
	defer s.release()
	t.done("acquire")

	t = startStage(logger)
	if err := load(ctx, s, r.cfg.rule, html, opts); err != nil {
		return nil, err
	}
	t.done("load")

	t = startStage(logger)
	ready := awaitImages(ctx, s, opts.WaitBudget, d.SettleDelay, d.PollInterval)
	t.done("images", "ready", ready)

	t = startStage(logger)
	res, err := capture(ctx, s, opts, d.SelectorTimeout)
	if err != nil {
		return nil, err
	}
	t.done("capture", "bytes", res.Len())
	return res, nil
}

func (r *Renderer) cached(ctx context.Context, key string) *Result {
	data, ok, err := r.cfg.cache.Get(ctx, key)
	if err != nil {
		LoggerFrom(ctx).Warn("render cache lookup failed", "err", err)
		return nil
	}
	if !ok {
		return nil
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil || res.Len() == 0 {
		return nil
	}
	return &res
}

func (r *Renderer) store(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := r.cfg.cache.Set(ctx, key, data, r.cfg.defaults.CacheTTL); err != nil {
		LoggerFrom(ctx).Warn("render cache store failed", "err", err)
	}
}

// Render renders req using a temporary [Renderer]. For repeated use, create a
// Renderer with [NewRenderer].
func Render(ctx context.Context, req *RenderRequest, opts ...Option) (*Result, error) {
	r, err := NewRenderer(opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Render(ctx, req)
}
