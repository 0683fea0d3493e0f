package htmlrender

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func pngOptions(mode CaptureMode) EffectiveOptions {
	return EffectiveOptions{
		Format:            FormatPNG,
		Mode:              mode,
		Selector:          "#target",
		NavigationTimeout: 50 * time.Millisecond,
		CaptureTimeout:    50 * time.Millisecond,
	}
}

func TestLoad_Timeout(t *testing.T) {
	s := &probeSession{setContent: hang}
	err := load(context.Background(), s, NewBlockRule(), "<p>x</p>", pngOptions(CaptureFullPage))
	if KindOf(err) != KindNavigationTimeout {
		t.Errorf("KindOf = %q, want %q (err %v)", KindOf(err), KindNavigationTimeout, err)
	}
}

func TestLoad_BlockBeforeContent(t *testing.T) {
	var order []string
	s := &probeSession{
		block:      func(context.Context) error { order = append(order, "block"); return nil },
		setContent: func(context.Context) error { order = append(order, "content"); return nil },
	}
	opts := pngOptions(CaptureFullPage)
	opts.DisableAnimations = true
	if err := load(context.Background(), s, DefaultBlockRule(), "<p>x</p>", opts); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(order) != 2 || order[0] != "block" || order[1] != "content" {
		t.Errorf("order = %v, want [block content]", order)
	}
	if s.styles.Load() != 1 {
		t.Errorf("styles = %d, want the animation override", s.styles.Load())
	}
}

func TestLoad_EmptyRuleSkipsBlock(t *testing.T) {
	s := &probeSession{block: func(context.Context) error { return errors.New("should not be called") }}
	if err := load(context.Background(), s, NewBlockRule(), "<p>x</p>", pngOptions(CaptureFullPage)); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestLoad_Failure(t *testing.T) {
	s := &probeSession{setContent: func(context.Context) error { return ErrContentLoad }}
	err := load(context.Background(), s, NewBlockRule(), "<p>x</p>", pngOptions(CaptureFullPage))
	if KindOf(err) != KindInternal || !errors.Is(err, ErrContentLoad) {
		t.Errorf("err = %v, want internal wrapping ErrContentLoad", err)
	}
}

func TestLoad_ParentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &probeSession{setContent: func(c context.Context) error {
		cancel()
		return hang(c)
	}}
	err := load(ctx, s, NewBlockRule(), "<p>x</p>", pngOptions(CaptureFullPage))
	if KindOf(err) != KindInternal {
		t.Errorf("KindOf = %q, want internal for an aborted request", KindOf(err))
	}
}

func TestCapture_Timeout(t *testing.T) {
	tests := []struct {
		name string
		opts EffectiveOptions
		s    *probeSession
	}{
		{"png", pngOptions(CaptureFullPage), &probeSession{screenshot: func(ctx context.Context) ([]byte, error) { return nil, hang(ctx) }}},
		{"pdf", EffectiveOptions{Format: FormatPDF, Mode: CapturePDF, CaptureTimeout: 50 * time.Millisecond}, &probeSession{pdf: func(ctx context.Context) ([]byte, error) { return nil, hang(ctx) }}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := capture(context.Background(), tt.s, tt.opts, time.Second)
			if KindOf(err) != KindCaptureTimeout {
				t.Errorf("KindOf = %q, want %q (err %v)", KindOf(err), KindCaptureTimeout, err)
			}
			if res != nil {
				t.Error("result returned alongside an error")
			}
		})
	}
}

func TestCapture_SelectorNotFound(t *testing.T) {
	var shots int
	s := &probeSession{
		waitSelector: hang,
		screenshot: func(context.Context) ([]byte, error) {
			shots++
			return []byte("x"), nil
		},
	}
	res, err := capture(context.Background(), s, pngOptions(CaptureSelector), 30*time.Millisecond)
	if !errors.Is(err, ErrSelectorNotFound) {
		t.Fatalf("err = %v, want SelectorNotFound", err)
	}
	if res != nil || shots != 0 {
		t.Errorf("captured %d screenshots for a missing selector", shots)
	}
}

func TestCapture_HiddenElement(t *testing.T) {
	s := &probeSession{screenshot: func(context.Context) ([]byte, error) {
		return nil, fmt.Errorf("%w: %q", ErrElementHidden, "#target")
	}}
	res, err := capture(context.Background(), s, pngOptions(CaptureSelector), time.Second)
	if KindOf(err) != KindSelectorNotFound || !errors.Is(err, ErrElementHidden) {
		t.Fatalf("err = %v, want SelectorNotFound wrapping ErrElementHidden", err)
	}
	if res != nil {
		t.Error("result returned alongside an error")
	}
}

func TestCapture_InvalidSelector(t *testing.T) {
	s := &probeSession{waitSelector: func(context.Context) error { return errors.New("SyntaxError: not a valid selector") }}
	_, err := capture(context.Background(), s, pngOptions(CaptureSelector), time.Second)
	if KindOf(err) != KindSelectorNotFound {
		t.Errorf("KindOf = %q, want %q", KindOf(err), KindSelectorNotFound)
	}
}

func TestCapture_EmptyArtifact(t *testing.T) {
	s := &probeSession{screenshot: func(context.Context) ([]byte, error) { return []byte{}, nil }}
	_, err := capture(context.Background(), s, pngOptions(CaptureClip), time.Second)
	if KindOf(err) != KindInternal || !errors.Is(err, ErrEmptyCapture) {
		t.Errorf("err = %v, want internal ErrEmptyCapture", err)
	}
}

func TestCapture_FreezesAnimations(t *testing.T) {
	s := &probeSession{}
	opts := pngOptions(CaptureFullPage)
	opts.DisableAnimations = true
	res, err := capture(context.Background(), s, opts, time.Second)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if res.ContentType() != "image/png" {
		t.Errorf("ContentType = %q", res.ContentType())
	}
	if s.styles.Load() != 1 {
		t.Errorf("styles = %d, want 1", s.styles.Load())
	}
}
