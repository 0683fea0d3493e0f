package htmlrender

import (
	"math"
	"testing"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestCmToInches(t *testing.T) {
	tests := []struct {
		cm   float64
		want float64
	}{
		{2.54, 1.0},
		{0, 0},
		{21.0, 8.2677},
		{29.7, 11.6929},
	}
	for _, tt := range tests {
		got := cmToInches(tt.cm)
		if !almostEqual(got, tt.want, 0.001) {
			t.Errorf("cmToInches(%v) = %v, want ~%v", tt.cm, got, tt.want)
		}
	}
}

func TestUniformMargin(t *testing.T) {
	m := UniformMargin(2.5)
	if m.Top != 2.5 || m.Right != 2.5 || m.Bottom != 2.5 || m.Left != 2.5 {
		t.Errorf("UniformMargin(2.5) = %+v, want all 2.5", m)
	}
}

func TestPageSizeByName(t *testing.T) {
	tests := []struct {
		name   string
		want   PageSize
		wantOK bool
	}{
		{"A4", A4, true},
		{"a4", A4, true},
		{" Letter ", Letter, true},
		{"tabloid", Tabloid, true},
		{"a3", A3, true},
		{"b5", PageSize{}, false},
		{"", PageSize{}, false},
	}
	for _, tt := range tests {
		got, ok := PageSizeByName(tt.name)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("PageSizeByName(%q) = %+v, %v; want %+v, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want float64 // centimeters
	}{
		{"12mm", 1.2},
		{"5mm", 0.5},
		{"1.5cm", 1.5},
		{"1in", 2.54},
		{"0.5IN", 1.27},
		{"96px", 2.54},
		{"72pt", 2.54},
		{"96", 2.54},
		{" 10 mm ", 1.0},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := ParseLength(tt.in)
		if err != nil {
			t.Errorf("ParseLength(%q): %v", tt.in, err)
			continue
		}
		if !almostEqual(got, tt.want, 1e-9) {
			t.Errorf("ParseLength(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseLength_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "wide", "12em", "-3mm", "mm"} {
		if _, err := ParseLength(in); err == nil {
			t.Errorf("ParseLength(%q): expected error", in)
		}
	}
}

func TestPaperDimensions(t *testing.T) {
	tests := []struct {
		name   string
		layout PDFLayout
		w, h   float64 // inches
	}{
		{"a4 portrait", PDFLayout{Size: A4}, 8.267, 11.693},
		{"a4 landscape", PDFLayout{Size: A4, Landscape: true}, 11.693, 8.267},
		{"letter", PDFLayout{Size: Letter}, 8.5, 11},
		{"legal landscape", PDFLayout{Size: Legal, Landscape: true}, 14, 8.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.layout.paperDimensions()
			if !almostEqual(w, tt.w, 0.01) || !almostEqual(h, tt.h, 0.01) {
				t.Errorf("paperDimensions() = %.3f x %.3f, want %.3f x %.3f", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestMarginInches(t *testing.T) {
	mm12, err := ParseLength("12mm")
	if err != nil {
		t.Fatal(err)
	}
	p := PDFLayout{Size: A4, Margin: Margin{Top: 2.54, Right: 5.08, Bottom: mm12, Left: 0}}
	got := [4]float64{}
	got[0], got[1], got[2], got[3] = p.marginInches()
	want := [4]float64{1, 2, 0.4724, 0}
	for i := range want {
		if !almostEqual(got[i], want[i], 0.001) {
			t.Errorf("marginInches() = %v, want ~%v", got, want)
			break
		}
	}
}
