package htmlrender

import (
	"context"
	"errors"
)

// load installs the block rule, pushes html into the page and waits for the
// parsed document, bounded by opts.NavigationTimeout. Network idle is never
// awaited; a single hanging connection would otherwise stall the load.
func load(ctx context.Context, s Session, rule BlockRule, html string, opts EffectiveOptions) error {
	navCtx, cancel := context.WithTimeout(ctx, opts.NavigationTimeout)
	defer cancel()

	if !rule.Empty() {
		if err := s.Block(navCtx, rule); err != nil {
			return stageError(ctx, navCtx, err, KindNavigationTimeout,
				"installing request block rule exceeded %s", opts.NavigationTimeout)
		}
	}

	if err := s.SetContent(navCtx, html); err != nil {
		return stageError(ctx, navCtx, err, KindNavigationTimeout,
			"document structure not ready after %s", opts.NavigationTimeout)
	}

	if opts.DisableAnimations {
		if err := s.AddStyle(navCtx, freezeCSS); err != nil {
			return stageError(ctx, navCtx, err, KindNavigationTimeout,
				"injecting style override after %s", opts.NavigationTimeout)
		}
	}
	return nil
}

// stageError classifies err from a stage that ran under stageCtx, derived
// from parent. Hitting the stage deadline yields timeoutKind with the given
// message; a canceled parent or any other failure yields KindInternal.
func stageError(parent, stageCtx context.Context, err error, timeoutKind Kind, format string, args ...any) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if perr := parent.Err(); perr != nil {
		return newError(KindInternal, perr, "request aborted")
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(stageCtx.Err(), context.DeadlineExceeded) {
		return newError(timeoutKind, nil, format, args...)
	}
	return newError(KindInternal, err, "browser operation failed")
}
