package htmlrender

import "context"

// Engine starts isolated browser instances. Each call to Launch must start a
// new browser process that is not shared with any other Session.
type Engine interface {
	Launch(ctx context.Context, opts LaunchOptions) (Session, error)
}

// LaunchOptions sizes the page of a new Session.
type LaunchOptions struct {
	Width  int
	Height int
	Scale  float64
}

// Session is one browser process plus one page. Close must be safe to call
// more than once and on a session whose page was never fully set up.
//
// Operations honor the deadline and cancellation of the context they get.
type Session interface {
	// Block installs rule so that matching outgoing requests fail
	// immediately. It must be called before SetContent.
	Block(ctx context.Context, rule BlockRule) error

	// SetContent replaces the document with html and returns once the
	// element tree is parsed. It does not wait for sub-resources.
	SetContent(ctx context.Context, html string) error

	// AddStyle appends a stylesheet to the current document.
	AddStyle(ctx context.Context, css string) error

	// ImageStatus reports the load state of every <img> in the document.
	ImageStatus(ctx context.Context) (ImageStatus, error)

	// WaitSelector blocks until an element matching the CSS selector exists.
	WaitSelector(ctx context.Context, selector string) error

	PDF(ctx context.Context, layout PDFLayout) ([]byte, error)
	Screenshot(ctx context.Context, shot Screenshot) ([]byte, error)

	Close() error
}

// ImageStatus counts <img> elements by load state. An image whose load
// failed is complete, and is also counted in Failed.
type ImageStatus struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
}

// Screenshot describes a PNG capture. Mode is one of CaptureFullPage,
// CaptureClip or CaptureSelector.
type Screenshot struct {
	Mode     CaptureMode
	Clip     ClipRect
	Selector string
}

// imageProbeJS is a function expression evaluated in the page by
// Session.ImageStatus implementations.
const imageProbeJS = `() => {
	const imgs = Array.from(document.images);
	let pending = 0, failed = 0;
	for (const img of imgs) {
		if (!img.complete) {
			pending++;
		} else if (img.naturalWidth === 0) {
			failed++;
		}
	}
	return { total: imgs.length, pending: pending, failed: failed };
}`

// structureReadyJS reports whether the document has been parsed.
const structureReadyJS = `() => document.readyState !== "loading" && document.body !== null`

// freezeCSS disables animations, transitions and smooth scrolling so a
// capture never lands on an intermediate frame.
const freezeCSS = `*, *::before, *::after {
	animation: none !important;
	animation-duration: 0s !important;
	animation-delay: 0s !important;
	transition: none !important;
	transition-duration: 0s !important;
	transition-delay: 0s !important;
	caret-color: transparent !important;
}
html, body { scroll-behavior: auto !important; }`
