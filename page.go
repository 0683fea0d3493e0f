package htmlrender

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PageSize represents paper dimensions in centimeters.
type PageSize struct {
	Width  float64 // Width in centimeters.
	Height float64 // Height in centimeters.
}

// Standard paper sizes.
var (
	A3      = PageSize{Width: 29.7, Height: 42.0}
	A4      = PageSize{Width: 21.0, Height: 29.7}
	A5      = PageSize{Width: 14.8, Height: 21.0}
	Letter  = PageSize{Width: 21.59, Height: 27.94}
	Legal   = PageSize{Width: 21.59, Height: 35.56}
	Tabloid = PageSize{Width: 27.94, Height: 43.18}
)

var pageSizes = map[string]PageSize{
	"a3":      A3,
	"a4":      A4,
	"a5":      A5,
	"letter":  Letter,
	"legal":   Legal,
	"tabloid": Tabloid,
}

// PageSizeByName looks up a paper size by its case-insensitive name
// ("A4", "letter", ...).
func PageSizeByName(name string) (PageSize, bool) {
	s, ok := pageSizes[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Margin represents page margins in centimeters.
type Margin struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// UniformMargin returns a Margin with the same value on all sides.
func UniformMargin(cm float64) Margin {
	return Margin{Top: cm, Right: cm, Bottom: cm, Left: cm}
}

// PDFLayout is the fully resolved page setup for a PDF capture.
type PDFLayout struct {
	Size              PageSize
	Landscape         bool
	Margin            Margin
	PreferCSSPageSize bool
	PrintBackground   bool
}

// cmToInches converts centimeters to inches.
func cmToInches(cm float64) float64 {
	return cm / 2.54
}

// paperDimensions returns the paper width and height in inches,
// accounting for orientation.
func (p PDFLayout) paperDimensions() (width, height float64) {
	w := cmToInches(p.Size.Width)
	h := cmToInches(p.Size.Height)
	if p.Landscape {
		return h, w
	}
	return w, h
}

// marginInches returns margins converted to inches.
func (p PDFLayout) marginInches() (top, right, bottom, left float64) {
	return cmToInches(p.Margin.Top),
		cmToInches(p.Margin.Right),
		cmToInches(p.Margin.Bottom),
		cmToInches(p.Margin.Left)
}

// Centimeters per CSS unit as a fraction, so round metric values stay
// exact. CSS fixes 1in = 96px = 72pt.
var lengthUnits = map[string]struct{ num, den float64 }{
	"mm": {1, 10},
	"cm": {1, 1},
	"in": {254, 100},
	"px": {254, 9600},
	"pt": {254, 7200},
}

// ParseLength converts a CSS absolute length ("12mm", "1.5cm", "0.5in",
// "20px", "36pt") to centimeters. A bare number is read as pixels, the way
// browsers treat unitless print margins.
func ParseLength(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty length")
	}

	factor := lengthUnits["px"]
	num := s
	if len(s) > 2 {
		if f, ok := lengthUnits[s[len(s)-2:]]; ok {
			factor = f
			num = strings.TrimSpace(s[:len(s)-2])
		}
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative length %q", s)
	}
	return v * factor.num / factor.den, nil
}
