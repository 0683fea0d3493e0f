package htmlrender

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// probeSession is a Session whose every operation is a function field.
// Nil fields succeed immediately.
type probeSession struct {
	block        func(ctx context.Context) error
	setContent   func(ctx context.Context) error
	addStyle     func(ctx context.Context) error
	imageStatus  func(ctx context.Context) (ImageStatus, error)
	waitSelector func(ctx context.Context) error
	pdf          func(ctx context.Context) ([]byte, error)
	screenshot   func(ctx context.Context) ([]byte, error)
	probes       atomic.Int32
	styles       atomic.Int32
}

func (p *probeSession) Block(ctx context.Context, _ BlockRule) error {
	if p.block == nil {
		return nil
	}
	return p.block(ctx)
}

func (p *probeSession) SetContent(ctx context.Context, _ string) error {
	if p.setContent == nil {
		return nil
	}
	return p.setContent(ctx)
}

func (p *probeSession) AddStyle(ctx context.Context, _ string) error {
	p.styles.Add(1)
	if p.addStyle == nil {
		return nil
	}
	return p.addStyle(ctx)
}

func (p *probeSession) ImageStatus(ctx context.Context) (ImageStatus, error) {
	p.probes.Add(1)
	if p.imageStatus == nil {
		return ImageStatus{}, nil
	}
	return p.imageStatus(ctx)
}

func (p *probeSession) WaitSelector(ctx context.Context, _ string) error {
	if p.waitSelector == nil {
		return nil
	}
	return p.waitSelector(ctx)
}

func (p *probeSession) PDF(ctx context.Context, _ PDFLayout) ([]byte, error) {
	if p.pdf == nil {
		return []byte("%PDF-"), nil
	}
	return p.pdf(ctx)
}

func (p *probeSession) Screenshot(ctx context.Context, _ Screenshot) ([]byte, error) {
	if p.screenshot == nil {
		return []byte("\x89PNG"), nil
	}
	return p.screenshot(ctx)
}

func (p *probeSession) Close() error { return nil }

// hang blocks until ctx ends.
func hang(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestAwaitImages_NoImages(t *testing.T) {
	s := &probeSession{}
	start := time.Now()
	if !awaitImages(context.Background(), s, 5*time.Second, 0, 100*time.Millisecond) {
		t.Error("awaitImages() = false, want true")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("returned after %v, want immediately", elapsed)
	}
	if n := s.probes.Load(); n != 1 {
		t.Errorf("probes = %d, want 1", n)
	}
}

func TestAwaitImages_EventuallyLoaded(t *testing.T) {
	var calls atomic.Int32
	s := &probeSession{imageStatus: func(context.Context) (ImageStatus, error) {
		if calls.Add(1) < 3 {
			return ImageStatus{Total: 2, Pending: 1}, nil
		}
		return ImageStatus{Total: 2, Failed: 1}, nil
	}}
	if !awaitImages(context.Background(), s, 2*time.Second, time.Millisecond, 10*time.Millisecond) {
		t.Error("awaitImages() = false, want true")
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("probes = %d, want 3", n)
	}
}

func TestAwaitImages_NeverCompletes(t *testing.T) {
	const (
		budget   = 150 * time.Millisecond
		interval = 50 * time.Millisecond
		slack    = 100 * time.Millisecond
	)
	s := &probeSession{imageStatus: func(context.Context) (ImageStatus, error) {
		return ImageStatus{Total: 1, Pending: 1}, nil
	}}

	start := time.Now()
	if awaitImages(context.Background(), s, budget, 0, interval) {
		t.Error("awaitImages() = true for an image that never loads")
	}
	if elapsed := time.Since(start); elapsed > budget+interval+slack {
		t.Errorf("waited %v, want at most %v", elapsed, budget+interval)
	}
}

func TestAwaitImages_HangingProbe(t *testing.T) {
	const (
		budget   = 100 * time.Millisecond
		interval = 50 * time.Millisecond
	)
	s := &probeSession{imageStatus: func(ctx context.Context) (ImageStatus, error) {
		return ImageStatus{}, hang(ctx)
	}}

	start := time.Now()
	if awaitImages(context.Background(), s, budget, 0, interval) {
		t.Error("awaitImages() = true with a hanging probe")
	}
	if elapsed := time.Since(start); elapsed > budget+interval+100*time.Millisecond {
		t.Errorf("waited %v, want at most %v", elapsed, budget+interval)
	}
}

func TestAwaitImages_ProbeErrorsKeepWaiting(t *testing.T) {
	var calls atomic.Int32
	s := &probeSession{imageStatus: func(context.Context) (ImageStatus, error) {
		if calls.Add(1) == 1 {
			return ImageStatus{}, errors.New("execution context destroyed")
		}
		return ImageStatus{}, nil
	}}
	if !awaitImages(context.Background(), s, time.Second, 0, 10*time.Millisecond) {
		t.Error("awaitImages() = false, want true after a transient probe error")
	}
}

func TestAwaitImages_ZeroBudget(t *testing.T) {
	s := &probeSession{imageStatus: func(context.Context) (ImageStatus, error) {
		return ImageStatus{Total: 1, Pending: 1}, nil
	}}
	if awaitImages(context.Background(), s, 0, 0, 10*time.Millisecond) {
		t.Error("awaitImages() = true with zero budget and pending images")
	}
	if n := s.probes.Load(); n != 1 {
		t.Errorf("probes = %d, want exactly 1", n)
	}
}

func TestAwaitImages_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &probeSession{}
	if awaitImages(ctx, s, time.Second, 50*time.Millisecond, 10*time.Millisecond) {
		t.Error("awaitImages() = true on a canceled context")
	}
	if n := s.probes.Load(); n != 0 {
		t.Errorf("probes = %d, want 0", n)
	}
}

func TestSleepCtx(t *testing.T) {
	if !sleepCtx(context.Background(), 0) {
		t.Error("sleepCtx(0) = false")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleepCtx(ctx, time.Hour) {
		t.Error("sleepCtx on canceled ctx = true")
	}
}
