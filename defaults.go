package htmlrender

import "time"

// Defaults holds the process-wide fallback values used when a request leaves
// an option unset. Build one at startup and treat it as read-only; the
// renderer keeps its own copy.
type Defaults struct {
	Width    int     // Viewport width in CSS pixels.
	Height   int     // Viewport height in CSS pixels.
	Scale    float64 // Device scale factor.
	FullPage bool    // PNG captures the whole scrollable document.

	WaitBudget        time.Duration // Upper bound for the image readiness wait.
	NavigationTimeout time.Duration // Upper bound for structural load.
	CaptureTimeout    time.Duration // Upper bound for a single capture.
	LaunchTimeout     time.Duration // Upper bound for starting the browser.
	SelectorTimeout   time.Duration // Upper bound for a target selector to appear.
	SettleDelay       time.Duration // Fixed pause between load and image polling.
	PollInterval      time.Duration // Image readiness poll period.

	DisableAnimations bool

	PageSize PageSize
	Margin   Margin
	QRSize   int
	QRMarker string
	CacheTTL time.Duration
}

// DefaultDefaults returns the built-in defaults: a 1280x720 viewport at
// scale 2, full-page PNG capture, A4 PDFs with 12mm margins.
func DefaultDefaults() Defaults {
	return Defaults{
		Width:             1280,
		Height:            720,
		Scale:             2,
		FullPage:          true,
		WaitBudget:        2500 * time.Millisecond,
		NavigationTimeout: 30 * time.Second,
		CaptureTimeout:    120 * time.Second,
		LaunchTimeout:     30 * time.Second,
		SelectorTimeout:   10 * time.Second,
		SettleDelay:       200 * time.Millisecond,
		PollInterval:      100 * time.Millisecond,
		DisableAnimations: true,
		PageSize:          A4,
		Margin:            UniformMargin(1.2),
		QRSize:            256,
		QRMarker:          "{{QR_CODE}}",
		CacheTTL:          10 * time.Minute,
	}
}

// withFallbacks fills zero fields from DefaultDefaults so that a partially
// populated Defaults is always usable. Margin, FullPage and
// DisableAnimations are taken as given: their zero values are meaningful.
func (d Defaults) withFallbacks() Defaults {
	b := DefaultDefaults()
	if d.Width <= 0 {
		d.Width = b.Width
	}
	if d.Height <= 0 {
		d.Height = b.Height
	}
	if d.Scale <= 0 {
		d.Scale = b.Scale
	}
	if d.WaitBudget < 0 {
		d.WaitBudget = b.WaitBudget
	}
	if d.NavigationTimeout <= 0 {
		d.NavigationTimeout = b.NavigationTimeout
	}
	if d.CaptureTimeout <= 0 {
		d.CaptureTimeout = b.CaptureTimeout
	}
	if d.LaunchTimeout <= 0 {
		d.LaunchTimeout = b.LaunchTimeout
	}
	if d.SelectorTimeout <= 0 {
		d.SelectorTimeout = b.SelectorTimeout
	}
	if d.SettleDelay < 0 {
		d.SettleDelay = 0
	}
	if d.PollInterval <= 0 {
		d.PollInterval = b.PollInterval
	}
	if d.PageSize == (PageSize{}) {
		d.PageSize = b.PageSize
	}
	if d.QRSize <= 0 {
		d.QRSize = b.QRSize
	}
	if d.QRMarker == "" {
		d.QRMarker = b.QRMarker
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = b.CacheTTL
	}
	return d
}
