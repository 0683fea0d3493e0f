package htmlrender

import (
	"strings"
	"time"
)

// Bounds applied to every request, whatever its shape.
const (
	MinViewportWidth  = 320
	MaxViewportWidth  = 4000
	MinViewportHeight = 320
	MaxViewportHeight = 6000

	MinScale = 1.0
	MaxScale = 3.0

	// Tall captures at high DPI are expensive; above this height the scale
	// factor is capped at largeCaptureScale.
	largeCaptureHeight = 1600
	largeCaptureScale  = 1.5

	MinQRSize = 64
	MaxQRSize = 1024
)

var (
	waitBudgetRange     = durationRange{0, 30 * time.Second}
	navigationTimeRange = durationRange{time.Second, 120 * time.Second}
	captureTimeRange    = durationRange{time.Second, 300 * time.Second}
)

// CaptureMode selects how the artifact is produced.
type CaptureMode int

const (
	CapturePDF      CaptureMode = iota // paginated document
	CaptureFullPage                    // entire scrollable document
	CaptureClip                        // exact rectangle
	CaptureSelector                    // one element's box
)

func (m CaptureMode) String() string {
	switch m {
	case CapturePDF:
		return "pdf"
	case CaptureFullPage:
		return "full-page"
	case CaptureClip:
		return "clip"
	case CaptureSelector:
		return "selector"
	}
	return "unknown"
}

// EffectiveOptions is a request with every option resolved to a concrete,
// clamped value.
type EffectiveOptions struct {
	Format   Format
	Mode     CaptureMode
	Width    int
	Height   int
	Scale    float64
	FullPage bool
	Clip     ClipRect
	Selector string

	WaitBudget        time.Duration
	NavigationTimeout time.Duration
	CaptureTimeout    time.Duration

	DisableAnimations bool
	PDF               PDFLayout
	QR                *QRCode
}

// QRCode is a resolved QR substitution.
type QRCode struct {
	Content     string
	Size        int
	Placeholder string
}

// Normalize validates req and resolves it against d.
//
// Options are taken with this precedence, highest first:
//
//  1. the structured options object (req.Options)
//  2. legacy top-level fields (viewportOptions, clipRect, targetSelector, ...)
//  3. legacy flat aliases (width, height, scale, selector, waitMs, timeoutMs)
//  4. d
//
// Normalize is pure: the same request and defaults always give the same
// result, and a request expressed in any of the shapes gives the same result
// as its structured equivalent. A *Error of KindValidation is returned when
// format or html is missing or invalid, or when an option cannot be parsed.
func Normalize(req *RenderRequest, d Defaults) (EffectiveOptions, error) {
	if req == nil {
		return EffectiveOptions{}, newError(KindValidation, nil, "missing request")
	}
	format := Format(strings.ToLower(strings.TrimSpace(string(req.Format))))
	if format == "" {
		return EffectiveOptions{}, newError(KindValidation, nil, "missing format")
	}
	if !format.Valid() {
		return EffectiveOptions{}, newError(KindValidation, nil, "format must be pdf or png, got %q", req.Format)
	}
	if strings.TrimSpace(req.HTML) == "" {
		return EffectiveOptions{}, newError(KindValidation, nil, "missing html")
	}

	d = d.withFallbacks()
	m := req.merged()

	eff := EffectiveOptions{
		Format:            format,
		Width:             clampInt(intOr(m.Viewport.Width, d.Width), MinViewportWidth, MaxViewportWidth),
		Height:            clampInt(intOr(m.Viewport.Height, d.Height), MinViewportHeight, MaxViewportHeight),
		Selector:          strings.TrimSpace(m.Selector),
		FullPage:          boolOr(m.FullPage, d.FullPage),
		WaitBudget:        waitBudgetRange.resolve(m.WaitBudgetMs, d.WaitBudget),
		NavigationTimeout: navigationTimeRange.resolve(m.NavigationTimeoutMs, d.NavigationTimeout),
		CaptureTimeout:    captureTimeRange.resolve(m.CaptureTimeoutMs, d.CaptureTimeout),
		DisableAnimations: boolOr(m.DisableAnimations, d.DisableAnimations),
	}

	targetHeight := float64(eff.Height)
	if m.Clip != nil {
		clip, err := resolveClip(*m.Clip)
		if err != nil {
			return EffectiveOptions{}, err
		}
		if m.FullPage != nil && *m.FullPage {
			return EffectiveOptions{}, newError(KindValidation, nil, "clip and fullPage are mutually exclusive")
		}
		eff.FullPage = false
		eff.Clip = clip
		targetHeight = clip.Height
	} else {
		eff.Clip = ClipRect{Width: float64(eff.Width), Height: float64(eff.Height)}
	}

	eff.Scale = clampFloat(floatOr(m.Viewport.Scale, d.Scale), MinScale, MaxScale)
	if targetHeight >= largeCaptureHeight && eff.Scale > largeCaptureScale {
		eff.Scale = largeCaptureScale
	}

	switch {
	case format == FormatPDF:
		eff.Mode = CapturePDF
		layout, err := resolvePDF(m.PDF, d)
		if err != nil {
			return EffectiveOptions{}, err
		}
		eff.PDF = layout
	case eff.Selector != "":
		eff.Mode = CaptureSelector
	case eff.FullPage:
		eff.Mode = CaptureFullPage
	default:
		eff.Mode = CaptureClip
	}

	if m.QRCode != nil {
		qr, err := resolveQR(*m.QRCode, d)
		if err != nil {
			return EffectiveOptions{}, err
		}
		eff.QR = &qr
	}
	return eff, nil
}

// merged folds the request shapes into one RenderOptions, lowest precedence
// first. The request itself is not modified.
func (r *RenderRequest) merged() RenderOptions {
	m := RenderOptions{
		Viewport:            &ViewportOptions{Width: r.Width, Height: r.Height, Scale: r.Scale},
		Selector:            r.Selector,
		WaitBudgetMs:        r.WaitMs,
		NavigationTimeoutMs: r.TimeoutMs,
	}
	m = overlay(m, RenderOptions{
		Viewport:            r.ViewportOptions,
		FullPage:            r.FullPage,
		Clip:                r.ClipRect,
		Selector:            r.TargetSelector,
		WaitBudgetMs:        r.WaitBudgetMs,
		NavigationTimeoutMs: r.NavigationTimeoutMs,
		CaptureTimeoutMs:    r.CaptureTimeoutMs,
		PDF:                 r.PDFOptions,
		QRCode:              r.QRCode,
	})
	if r.Options != nil {
		m = overlay(m, *r.Options)
	}
	return m
}

// overlay returns base with every field set in over replacing it.
func overlay(base, over RenderOptions) RenderOptions {
	if over.Viewport != nil {
		v := *base.Viewport
		if over.Viewport.Width != nil {
			v.Width = over.Viewport.Width
		}
		if over.Viewport.Height != nil {
			v.Height = over.Viewport.Height
		}
		if over.Viewport.Scale != nil {
			v.Scale = over.Viewport.Scale
		}
		base.Viewport = &v
	}
	if over.FullPage != nil {
		base.FullPage = over.FullPage
	}
	if over.Clip != nil {
		base.Clip = over.Clip
	}
	if over.Selector != "" {
		base.Selector = over.Selector
	}
	if over.WaitBudgetMs != nil {
		base.WaitBudgetMs = over.WaitBudgetMs
	}
	if over.NavigationTimeoutMs != nil {
		base.NavigationTimeoutMs = over.NavigationTimeoutMs
	}
	if over.CaptureTimeoutMs != nil {
		base.CaptureTimeoutMs = over.CaptureTimeoutMs
	}
	if over.DisableAnimations != nil {
		base.DisableAnimations = over.DisableAnimations
	}
	if over.PDF != nil {
		base.PDF = overlayPDF(base.PDF, over.PDF)
	}
	if over.QRCode != nil {
		base.QRCode = over.QRCode
	}
	return base
}

func overlayPDF(base, over *PDFOptions) *PDFOptions {
	if base == nil {
		return over
	}
	p := *base
	if over.Format != "" {
		p.Format = over.Format
	}
	if over.Landscape != nil {
		p.Landscape = over.Landscape
	}
	if over.PreferCSSPageSize != nil {
		p.PreferCSSPageSize = over.PreferCSSPageSize
	}
	if over.Margin != nil {
		var ml MarginLength
		if p.Margin != nil {
			ml = *p.Margin
		}
		if over.Margin.Top != "" {
			ml.Top = over.Margin.Top
		}
		if over.Margin.Right != "" {
			ml.Right = over.Margin.Right
		}
		if over.Margin.Bottom != "" {
			ml.Bottom = over.Margin.Bottom
		}
		if over.Margin.Left != "" {
			ml.Left = over.Margin.Left
		}
		p.Margin = &ml
	}
	return &p
}

func resolveClip(c ClipRect) (ClipRect, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return ClipRect{}, newError(KindValidation, nil, "clip width and height must be positive")
	}
	if c.X < 0 || c.Y < 0 {
		return ClipRect{}, newError(KindValidation, nil, "clip origin must not be negative")
	}
	c.Width = clampFloat(c.Width, 1, MaxViewportWidth)
	c.Height = clampFloat(c.Height, 1, MaxViewportHeight)
	return c, nil
}

func resolvePDF(p *PDFOptions, d Defaults) (PDFLayout, error) {
	layout := PDFLayout{
		Size:              d.PageSize,
		Margin:            d.Margin,
		PreferCSSPageSize: true,
		PrintBackground:   true,
	}
	if p == nil {
		return layout, nil
	}
	if p.Format != "" {
		size, ok := PageSizeByName(p.Format)
		if !ok {
			return PDFLayout{}, newError(KindValidation, nil, "unknown page format %q", p.Format)
		}
		layout.Size = size
	}
	layout.Landscape = boolOr(p.Landscape, false)
	layout.PreferCSSPageSize = boolOr(p.PreferCSSPageSize, true)

	if p.Margin != nil {
		sides := []struct {
			name string
			in   string
			out  *float64
		}{
			{"top", p.Margin.Top, &layout.Margin.Top},
			{"right", p.Margin.Right, &layout.Margin.Right},
			{"bottom", p.Margin.Bottom, &layout.Margin.Bottom},
			{"left", p.Margin.Left, &layout.Margin.Left},
		}
		for _, s := range sides {
			if s.in == "" {
				continue
			}
			cm, err := ParseLength(s.in)
			if err != nil {
				return PDFLayout{}, newError(KindValidation, err, "invalid %s margin", s.name)
			}
			*s.out = cm
		}
	}
	return layout, nil
}

func resolveQR(q QRCodeOptions, d Defaults) (QRCode, error) {
	if strings.TrimSpace(q.Content) == "" {
		return QRCode{}, newError(KindValidation, nil, "qrCode content is required")
	}
	size := q.Size
	if size <= 0 {
		size = d.QRSize
	}
	placeholder := q.Placeholder
	if placeholder == "" {
		placeholder = d.QRMarker
	}
	return QRCode{
		Content:     q.Content,
		Size:        clampInt(size, MinQRSize, MaxQRSize),
		Placeholder: placeholder,
	}, nil
}

type durationRange struct{ min, max time.Duration }

func (r durationRange) clamp(d time.Duration) time.Duration {
	return min(max(d, r.min), r.max)
}

// resolve clamps a millisecond value from a request, or def when p is nil.
// The clamp happens before the conversion so large values cannot overflow.
func (r durationRange) resolve(p *int, def time.Duration) time.Duration {
	if p == nil {
		return r.clamp(def)
	}
	ms := min(max(int64(*p), r.min.Milliseconds()), r.max.Milliseconds())
	return time.Duration(ms) * time.Millisecond
}

func clampInt(v, lo, hi int) int { return min(max(v, lo), hi) }

func clampFloat(v, lo, hi float64) float64 { return min(max(v, lo), hi) }

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
