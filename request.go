package htmlrender

// Format is the requested artifact kind.
type Format string

// Supported output formats.
const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	return f == FormatPDF || f == FormatPNG
}

// ContentType returns the MIME type of artifacts in this format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "image/png"
}

// RenderRequest is the inbound render job.
//
// Options is the structured shape. The remaining optional fields are older,
// flatter shapes that are still accepted; see [Normalize] for how they are
// combined.
type RenderRequest struct {
	Format  Format         `json:"format"`
	HTML    string         `json:"html"`
	Options *RenderOptions `json:"options,omitempty"`

	ViewportOptions     *ViewportOptions `json:"viewportOptions,omitempty"`
	FullPage            *bool            `json:"fullPage,omitempty"`
	ClipRect            *ClipRect        `json:"clipRect,omitempty"`
	TargetSelector      string           `json:"targetSelector,omitempty"`
	WaitBudgetMs        *int             `json:"waitBudgetMs,omitempty"`
	NavigationTimeoutMs *int             `json:"navigationTimeoutMs,omitempty"`
	CaptureTimeoutMs    *int             `json:"captureTimeoutMs,omitempty"`
	PDFOptions          *PDFOptions      `json:"pdfOptions,omitempty"`
	QRCode              *QRCodeOptions   `json:"qrCode,omitempty"`

	// Flat aliases from the first request shape.
	Width     *int     `json:"width,omitempty"`
	Height    *int     `json:"height,omitempty"`
	Scale     *float64 `json:"scale,omitempty"`
	Selector  string   `json:"selector,omitempty"`
	WaitMs    *int     `json:"waitMs,omitempty"`
	TimeoutMs *int     `json:"timeoutMs,omitempty"`
}

// RenderOptions is the structured options object of a [RenderRequest].
// Nil fields fall back to legacy fields, then to [Defaults].
type RenderOptions struct {
	Viewport            *ViewportOptions `json:"viewport,omitempty"`
	FullPage            *bool            `json:"fullPage,omitempty"`
	Clip                *ClipRect        `json:"clip,omitempty"`
	Selector            string           `json:"selector,omitempty"`
	WaitBudgetMs        *int             `json:"waitBudgetMs,omitempty"`
	NavigationTimeoutMs *int             `json:"navigationTimeoutMs,omitempty"`
	CaptureTimeoutMs    *int             `json:"captureTimeoutMs,omitempty"`
	DisableAnimations   *bool            `json:"disableAnimations,omitempty"`
	PDF                 *PDFOptions      `json:"pdf,omitempty"`
	QRCode              *QRCodeOptions   `json:"qrCode,omitempty"`
}

// ViewportOptions sizes the browser window in CSS pixels.
type ViewportOptions struct {
	Width  *int     `json:"width,omitempty"`
	Height *int     `json:"height,omitempty"`
	Scale  *float64 `json:"scale,omitempty"`
}

// ClipRect is a capture rectangle in CSS pixels relative to the document origin.
type ClipRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PDFOptions controls paginated output. Margins are CSS lengths.
type PDFOptions struct {
	Format            string        `json:"format,omitempty"`
	Landscape         *bool         `json:"landscape,omitempty"`
	Margin            *MarginLength `json:"margin,omitempty"`
	PreferCSSPageSize *bool         `json:"preferCSSPageSize,omitempty"`
}

// MarginLength holds per-side margins as CSS lengths ("12mm", "0.5in").
// Empty sides use the default margin.
type MarginLength struct {
	Top    string `json:"top,omitempty"`
	Right  string `json:"right,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Left   string `json:"left,omitempty"`
}

// QRCodeOptions asks for a QR code image to be substituted into the HTML
// wherever Placeholder occurs.
type QRCodeOptions struct {
	Content     string `json:"content"`
	Size        int    `json:"size,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}
