package htmlrender

import "testing"

func TestNewRenderer_Sandbox(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want bool // NoSandbox
	}{
		{"default", nil, true},
		{"explicit no-sandbox", []Option{WithNoSandbox()}, true},
		{"sandbox kept", []Option{WithSandbox()}, false},
		{"sandbox kept on rod", []Option{WithBackend(BackendRod), WithSandbox()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRenderer(append([]Option{WithChromePath("/usr/bin/chromium")}, tt.opts...)...)
			if err != nil {
				t.Fatalf("NewRenderer: %v", err)
			}
			var got bool
			switch e := r.engine.(type) {
			case *ChromedpEngine:
				got = e.NoSandbox
			case *RodEngine:
				got = e.NoSandbox
			default:
				t.Fatalf("engine = %T", r.engine)
			}
			if got != tt.want {
				t.Errorf("NoSandbox = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChromedpEngine_AllocatorFlags(t *testing.T) {
	count := func(e *ChromedpEngine) int { return len(e.allocatorOptions()) }
	with := count(&ChromedpEngine{NoSandbox: true})
	without := count(&ChromedpEngine{})
	if with != without+1 {
		t.Errorf("allocator options = %d with no-sandbox, %d without; want one extra flag", with, without)
	}
}
