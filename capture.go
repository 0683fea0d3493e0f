package htmlrender

import (
	"context"
	"errors"
	"time"
)

// capture produces the artifact described by opts. Each capture gets its
// own opts.CaptureTimeout, independent of the navigation budget.
func capture(ctx context.Context, s Session, opts EffectiveOptions, selectorTimeout time.Duration) (*Result, error) {
	if opts.Format == FormatPDF {
		return capturePDF(ctx, s, opts)
	}
	return capturePNG(ctx, s, opts, selectorTimeout)
}

func capturePDF(ctx context.Context, s Session, opts EffectiveOptions) (*Result, error) {
	capCtx, cancel := context.WithTimeout(ctx, opts.CaptureTimeout)
	defer cancel()

	buf, err := s.PDF(capCtx, opts.PDF)
	if err != nil {
		return nil, stageError(ctx, capCtx, err, KindCaptureTimeout,
			"pdf capture exceeded %s", opts.CaptureTimeout)
	}
	return newResult(FormatPDF, buf)
}

func capturePNG(ctx context.Context, s Session, opts EffectiveOptions, selectorTimeout time.Duration) (*Result, error) {
	shot := Screenshot{Mode: opts.Mode, Clip: opts.Clip, Selector: opts.Selector}

	if shot.Mode == CaptureSelector {
		if err := waitSelector(ctx, s, opts.Selector, selectorTimeout); err != nil {
			return nil, err
		}
	}

	capCtx, cancel := context.WithTimeout(ctx, opts.CaptureTimeout)
	defer cancel()

	if opts.DisableAnimations {
		if err := s.AddStyle(capCtx, freezeCSS); err != nil {
			return nil, stageError(ctx, capCtx, err, KindCaptureTimeout,
				"freezing animations exceeded %s", opts.CaptureTimeout)
		}
	}

	buf, err := s.Screenshot(capCtx, shot)
	if errors.Is(err, ErrElementHidden) && ctx.Err() == nil {
		return nil, newError(KindSelectorNotFound, err, "element %q is not rendered", opts.Selector)
	}
	if err != nil {
		return nil, stageError(ctx, capCtx, err, KindCaptureTimeout,
			"%s capture exceeded %s", shot.Mode, opts.CaptureTimeout)
	}
	return newResult(FormatPNG, buf)
}

// waitSelector waits up to timeout for selector to match an element. Any
// failure other than the request itself ending is reported as
// KindSelectorNotFound, including selectors the browser cannot parse.
func waitSelector(ctx context.Context, s Session, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.WaitSelector(waitCtx, selector)
	if err == nil {
		return nil
	}
	if perr := ctx.Err(); perr != nil {
		return newError(KindInternal, perr, "request aborted")
	}
	if errors.Is(err, context.DeadlineExceeded) || waitCtx.Err() != nil {
		return newError(KindSelectorNotFound, nil, "no element matches %q after %s", selector, timeout)
	}
	return newError(KindSelectorNotFound, err, "selector %q", selector)
}

func newResult(f Format, buf []byte) (*Result, error) {
	if len(buf) == 0 {
		return nil, newError(KindInternal, ErrEmptyCapture, "%s capture", f)
	}
	return &Result{contentType: f.ContentType(), data: buf}, nil
}
