package htmlrender

import (
	"reflect"
	"testing"
)

func TestBlockRule_Match(t *testing.T) {
	r := DefaultBlockRule()
	tests := []struct {
		url  string
		want bool
	}{
		{"https://fonts.googleapis.com/css2?family=Inter", true},
		{"https://fonts.gstatic.com/s/inter/v12/a.woff2", true},
		{"http://FONTS.GSTATIC.COM/x.woff", true},
		{"https://use.typekit.net/abc.css", true},
		{"https://eu.fonts.bunny.net/css", true},
		{"https://fonts.googleapis.com.evil.test/css", false},
		{"https://notfonts.gstatic.com/x", false},
		{"https://example.com/logo.png", false},
		{"data:image/png;base64,AAAA", false},
		{"about:blank", false},
		{"::not a url", false},
	}
	for _, tt := range tests {
		if got := r.Match(tt.url); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestBlockRule_Empty(t *testing.T) {
	r := NewBlockRule("", "  ")
	if !r.Empty() {
		t.Error("rule built from blank hosts should be empty")
	}
	if r.Match("https://fonts.googleapis.com/css") {
		t.Error("empty rule matched")
	}
	if len(r.Patterns()) != 0 {
		t.Errorf("Patterns() = %v, want none", r.Patterns())
	}
}

func TestBlockRule_Patterns(t *testing.T) {
	r := NewBlockRule("CDN.Example.com")
	want := []string{"*://cdn.example.com/*", "*://*.cdn.example.com/*"}
	if got := r.Patterns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Patterns() = %v, want %v", got, want)
	}
}

func TestBlockRule_HostsCopy(t *testing.T) {
	r := NewBlockRule("a.test")
	hosts := r.Hosts()
	hosts[0] = "b.test"
	if !r.Match("https://a.test/") {
		t.Error("modifying Hosts() result changed the rule")
	}
}
