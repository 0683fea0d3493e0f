package htmlrender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromedpEngine launches Chrome through chromedp's exec allocator. Each
// Launch starts a separate browser process with its own profile directory.
type ChromedpEngine struct {
	ChromePath string // Empty searches standard locations.
	NoSandbox  bool
}

var _ Engine = (*ChromedpEngine)(nil)

func (e *ChromedpEngine) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("headless", "new"),
	)
	if e.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(e.ChromePath))
	}
	if e.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	return opts
}

// Launch starts a browser and sizes its first tab. ctx bounds only the
// start-up; the browser lives until Close.
func (e *ChromedpEngine) Launch(ctx context.Context, opts LaunchOptions) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), e.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	s := &chromedpSession{allocCancel: allocCancel, tabCtx: tabCtx, tabCancel: tabCancel}

	errc := make(chan error, 1)
	go func() {
		errc <- chromedp.Run(tabCtx,
			chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height), chromedp.EmulateScale(opts.Scale)),
		)
	}()

	select {
	case err := <-errc:
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
		}
	case <-ctx.Done():
		s.Close()
		<-errc
		return nil, fmt.Errorf("%w: %w", ErrBrowserLaunch, ctx.Err())
	}
	return s, nil
}

type chromedpSession struct {
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	once     sync.Once
	closeErr error
}

// run executes actions on the tab under the deadline and cancellation of
// ctx. chromedp actions need the tab context, so ctx cannot be used directly.
func (s *chromedpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()
	if dl, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, dl)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return context.DeadlineExceeded
		}
		return err
	}
	return nil
}

func (s *chromedpSession) Block(ctx context.Context, rule BlockRule) error {
	patterns := make([]*fetch.RequestPattern, 0, len(rule.Patterns()))
	for _, p := range rule.Patterns() {
		patterns = append(patterns, &fetch.RequestPattern{URLPattern: p})
	}

	chromedp.ListenTarget(s.tabCtx, func(ev any) {
		if paused, ok := ev.(*fetch.EventRequestPaused); ok {
			go s.decide(rule, paused)
		}
	})
	return s.run(ctx, fetch.Enable().WithPatterns(patterns))
}

// decide fails or continues one intercepted request. It runs outside the
// event loop, so it needs its own executor.
func (s *chromedpSession) decide(rule BlockRule, ev *fetch.EventRequestPaused) {
	c := chromedp.FromContext(s.tabCtx)
	if c == nil || c.Target == nil {
		return
	}
	ctx := cdp.WithExecutor(s.tabCtx, c.Target)
	if ev.Request != nil && rule.Match(ev.Request.URL) {
		_ = fetch.FailRequest(ev.RequestID, network.ErrorReasonBlockedByClient).Do(ctx)
		return
	}
	_ = fetch.ContinueRequest(ev.RequestID).Do(ctx)
}

func (s *chromedpSession) SetContent(ctx context.Context, html string) error {
	return s.run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrContentLoad, err)
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *chromedpSession) AddStyle(ctx context.Context, css string) error {
	lit, err := json.Marshal(css)
	if err != nil {
		return err
	}
	js := fmt.Sprintf(`(() => {
	const s = document.createElement("style");
	s.textContent = %s;
	(document.head || document.documentElement).appendChild(s);
	return true;
})()`, lit)
	var ok bool
	return s.run(ctx, chromedp.Evaluate(js, &ok))
}

func (s *chromedpSession) ImageStatus(ctx context.Context) (ImageStatus, error) {
	var st ImageStatus
	err := s.run(ctx, chromedp.Evaluate("("+imageProbeJS+")()", &st))
	return st, err
}

func (s *chromedpSession) WaitSelector(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (s *chromedpSession) PDF(ctx context.Context, layout PDFLayout) ([]byte, error) {
	width, height := layout.paperDimensions()
	marginTop, marginRight, marginBottom, marginLeft := layout.marginInches()

	var buf []byte
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = page.PrintToPDF().
			WithPaperWidth(width).
			WithPaperHeight(height).
			WithMarginTop(marginTop).
			WithMarginRight(marginRight).
			WithMarginBottom(marginBottom).
			WithMarginLeft(marginLeft).
			WithPrintBackground(layout.PrintBackground).
			WithLandscape(layout.Landscape).
			WithPreferCSSPageSize(layout.PreferCSSPageSize).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, wrapCapture(err)
	}
	return buf, nil
}

func (s *chromedpSession) Screenshot(ctx context.Context, shot Screenshot) ([]byte, error) {
	var buf []byte
	var action chromedp.Action
	switch shot.Mode {
	case CaptureFullPage:
		action = chromedp.FullScreenshot(&buf, 100)
	case CaptureSelector:
		action = chromedp.ActionFunc(func(ctx context.Context) error {
			var nodes []*cdp.Node
			if err := chromedp.Nodes(shot.Selector, &nodes, chromedp.ByQuery).Do(ctx); err != nil {
				return err
			}
			quads, err := dom.GetContentQuads().WithNodeID(nodes[0].NodeID).Do(ctx)
			if err != nil || len(quads) == 0 {
				return fmt.Errorf("%w: %q", ErrElementHidden, shot.Selector)
			}
			return chromedp.ScreenshotNodes(nodes[:1], 1, &buf).Do(ctx)
		})
	default:
		action = chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithCaptureBeyondViewport(true).
				WithClip(&page.Viewport{
					X:      shot.Clip.X,
					Y:      shot.Clip.Y,
					Width:  shot.Clip.Width,
					Height: shot.Clip.Height,
					Scale:  1,
				}).
				Do(ctx)
			return err
		})
	}
	if err := s.run(ctx, action); err != nil {
		return nil, wrapCapture(err)
	}
	return buf, nil
}

// Close shuts the browser down and kills its process. It is idempotent.
func (s *chromedpSession) Close() error {
	s.once.Do(func() {
		if s.tabCtx != nil {
			if err := chromedp.Cancel(s.tabCtx); err != nil && !errors.Is(err, context.Canceled) {
				s.closeErr = err
			}
		}
		if s.tabCancel != nil {
			s.tabCancel()
		}
		if s.allocCancel != nil {
			s.allocCancel()
		}
	})
	return s.closeErr
}

// wrapCapture tags err as a capture failure unless it is a context error,
// which callers classify as a timeout.
func wrapCapture(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, ErrElementHidden) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrCapture, err)
}
