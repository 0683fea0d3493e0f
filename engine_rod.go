package htmlrender

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/porticus-lab/go-html-render/internal/process"
)

// RodEngine launches Chrome through go-rod's launcher. Without a ChromePath
// rod looks for an installed browser and downloads one if none is found.
type RodEngine struct {
	ChromePath string
	NoSandbox  bool
}

var _ Engine = (*RodEngine)(nil)

func (e *RodEngine) launcher() *launcher.Launcher {
	l := launcher.New().
		Headless(true).
		Leakless(true).
		NoSandbox(e.NoSandbox).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("disable-extensions").
		Set("no-first-run")
	if e.ChromePath != "" {
		l = l.Bin(e.ChromePath)
	}
	return l
}

// Launch starts a browser, connects to it and opens one page. ctx bounds
// only the start-up.
func (e *RodEngine) Launch(ctx context.Context, opts LaunchOptions) (Session, error) {
	l := e.launcher()
	s := &rodSession{launcher: l}

	type launched struct {
		url string
		err error
	}
	ch := make(chan launched, 1)
	go func() {
		u, err := l.Launch()
		ch <- launched{u, err}
	}()

	var controlURL string
	select {
	case res := <-ch:
		if res.err != nil {
			s.Close()
			return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, res.err)
		}
		controlURL = res.url
	case <-ctx.Done():
		go func() {
			<-ch
			s.Close()
		}()
		return nil, fmt.Errorf("%w: %w", ErrBrowserLaunch, ctx.Err())
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}
	s.browser = b

	p, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	s.page = p

	if err := p.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: opts.Scale,
	}); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}
	return s, nil
}

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	router   *rod.HijackRouter

	once     sync.Once
	closeErr error
}

// Block installs rule for the lifetime of the page. ctx only bounds the
// setup; the router keeps running until Close.
func (s *rodSession) Block(ctx context.Context, rule BlockRule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	router := s.page.HijackRequests()
	handler := func(h *rod.Hijack) {
		if rule.Match(h.Request.URL().String()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	}
	for _, pattern := range rule.Patterns() {
		if err := router.Add(pattern, "", handler); err != nil {
			return err
		}
	}
	go router.Run()
	s.router = router
	return nil
}

func (s *rodSession) SetContent(ctx context.Context, html string) error {
	p := s.page.Context(ctx)
	if err := p.SetDocumentContent(html); err != nil {
		return fmt.Errorf("%w: %v", ErrContentLoad, err)
	}
	return p.Wait(rod.Eval(structureReadyJS))
}

func (s *rodSession) AddStyle(ctx context.Context, css string) error {
	return s.page.Context(ctx).AddStyleTag("", css)
}

func (s *rodSession) ImageStatus(ctx context.Context) (ImageStatus, error) {
	var st ImageStatus
	res, err := s.page.Context(ctx).Eval(imageProbeJS)
	if err != nil {
		return st, err
	}
	err = res.Value.Unmarshal(&st)
	return st, err
}

func (s *rodSession) WaitSelector(ctx context.Context, selector string) error {
	_, err := s.page.Context(ctx).Element(selector)
	return err
}

func (s *rodSession) PDF(ctx context.Context, layout PDFLayout) ([]byte, error) {
	width, height := layout.paperDimensions()
	marginTop, marginRight, marginBottom, marginLeft := layout.marginInches()

	r, err := s.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PaperWidth:        floatPtr(width),
		PaperHeight:       floatPtr(height),
		MarginTop:         floatPtr(marginTop),
		MarginRight:       floatPtr(marginRight),
		MarginBottom:      floatPtr(marginBottom),
		MarginLeft:        floatPtr(marginLeft),
		Landscape:         layout.Landscape,
		PrintBackground:   layout.PrintBackground,
		PreferCSSPageSize: layout.PreferCSSPageSize,
	})
	if err != nil {
		return nil, wrapCapture(err)
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapCapture(fmt.Errorf("reading PDF stream: %w", err))
	}
	return buf, nil
}

func (s *rodSession) Screenshot(ctx context.Context, shot Screenshot) ([]byte, error) {
	p := s.page.Context(ctx)
	var (
		buf []byte
		err error
	)
	switch shot.Mode {
	case CaptureFullPage:
		buf, err = p.Screenshot(true, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
	case CaptureSelector:
		var el *rod.Element
		if el, err = p.Element(shot.Selector); err == nil {
			buf, err = elementScreenshot(el, shot.Selector)
		}
	default:
		buf, err = p.Screenshot(false, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
			Clip: &proto.PageViewport{
				X:      shot.Clip.X,
				Y:      shot.Clip.Y,
				Width:  shot.Clip.Width,
				Height: shot.Clip.Height,
				Scale:  1,
			},
			CaptureBeyondViewport: true,
		})
	}
	if err != nil {
		return nil, wrapCapture(err)
	}
	return buf, nil
}

// elementScreenshot captures el, failing fast when it has no layout box.
func elementScreenshot(el *rod.Element, selector string) ([]byte, error) {
	shape, err := el.Shape()
	if err != nil || len(shape.Quads) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrElementHidden, selector)
	}
	return el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}

// Close stops interception, closes the browser and kills the process group
// as a fallback. It is idempotent and tolerates a partially launched session.
func (s *rodSession) Close() error {
	s.once.Do(func() {
		var errs []error
		if s.router != nil {
			errs = append(errs, s.router.Stop())
		}
		if s.browser != nil {
			errs = append(errs, s.browser.Close())
		}
		if pid := s.launcher.PID(); pid > 0 {
			s.launcher.Kill()
			process.KillProcessGroup(pid)
			s.launcher.Cleanup()
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
