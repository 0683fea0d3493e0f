package htmlrender

import (
	"context"
	"time"
)

// awaitImages waits until no <img> is still loading, for at most budget
// after an unconditional settle delay. It reports whether every image
// settled in time and never fails: an expired budget, a probe error or a
// canceled context all just end the wait so capture can proceed.
//
// Broken images count as settled, so one blocked host cannot hold the page.
// The wait overshoots budget by at most one poll interval.
func awaitImages(ctx context.Context, s Session, budget, settle, interval time.Duration) bool {
	logger := LoggerFrom(ctx)

	if !sleepCtx(ctx, settle) {
		return false
	}

	deadline := time.Now().Add(budget)
	for {
		probeCtx, cancel := context.WithDeadline(ctx, deadline.Add(interval))
		st, err := s.ImageStatus(probeCtx)
		cancel()
		switch {
		case err != nil:
			logger.Debug("image probe failed", "err", err)
		case st.Pending == 0:
			if st.Failed > 0 {
				logger.Debug("images settled with failures", "total", st.Total, "failed", st.Failed)
			}
			return true
		default:
			logger.Debug("images pending", "pending", st.Pending, "total", st.Total)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			logger.Debug("image wait budget exhausted", "budget", budget)
			return false
		}
		if !sleepCtx(ctx, min(interval, remaining)) {
			return false
		}
	}
}

// sleepCtx pauses for d, returning false if ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
