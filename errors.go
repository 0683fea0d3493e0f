package htmlrender

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category. Every error returned by
// [Renderer.Render] carries exactly one Kind.
type Kind string

// Error kinds.
const (
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindNavigationTimeout Kind = "NAVIGATION_TIMEOUT"
	KindCaptureTimeout    Kind = "CAPTURE_TIMEOUT"
	KindSelectorNotFound  Kind = "SELECTOR_NOT_FOUND"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// Error is a render failure with a Kind, a human-readable message and an
// optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("htmlrender: %s: %v", e.Message, e.Cause)
	}
	return "htmlrender: " + e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error of the same Kind. This lets callers
// write errors.Is(err, htmlrender.ErrSelectorNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Cause == nil
}

func newError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Sentinels for errors.Is checks against a Kind.
var (
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNavigationTimeout = &Error{Kind: KindNavigationTimeout}
	ErrCaptureTimeout    = &Error{Kind: KindCaptureTimeout}
	ErrSelectorNotFound  = &Error{Kind: KindSelectorNotFound}
	ErrInternal          = &Error{Kind: KindInternal}
)

// Engine-level failures, wrapped into a KindInternal *Error by the renderer.
var (
	ErrBrowserLaunch = errors.New("failed to launch browser")
	ErrPageCreate    = errors.New("failed to create browser page")
	ErrContentLoad   = errors.New("failed to load content")
	ErrCapture       = errors.New("capture failed")
	ErrEmptyCapture  = errors.New("capture produced no data")

	// ErrElementHidden is returned by Session.Screenshot when the target
	// element exists but has no layout box (display: none, detached).
	ErrElementHidden = errors.New("element is not rendered")
)

// KindOf returns the Kind of err, or KindInternal if err is not an *Error.
// A nil error has no kind and yields the empty string.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
