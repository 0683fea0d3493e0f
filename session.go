package htmlrender

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// session owns one engine Session for the lifetime of a single request.
type session struct {
	Session
	logger *log.Logger
	once   sync.Once
}

// acquire launches a fresh browser sized to opts. The launch is bounded by
// timeout. On success the caller must defer release.
func acquire(ctx context.Context, eng Engine, opts EffectiveOptions, timeout time.Duration) (*session, error) {
	logger := LoggerFrom(ctx)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s, err := eng.Launch(ctx, LaunchOptions{Width: opts.Width, Height: opts.Height, Scale: opts.Scale})
	if err != nil {
		if s != nil {
			// Partially started; still tear it down.
			_ = s.Close()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, newError(KindInternal, err, "browser launch timed out after %s", timeout)
		}
		return nil, newError(KindInternal, err, "starting browser")
	}
	return &session{Session: s, logger: logger}, nil
}

// release closes the session. It runs at most once and is safe on a nil
// session or one without an engine session. Close errors are logged only.
func (s *session) release() {
	if s == nil || s.Session == nil {
		return
	}
	s.once.Do(func() {
		if err := s.Session.Close(); err != nil {
			s.logger.Warn("closing browser session", "err", err)
		}
	})
}
