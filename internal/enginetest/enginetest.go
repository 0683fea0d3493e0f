// Package enginetest provides a scriptable in-memory htmlrender.Engine for
// tests that must not start a real browser.
package enginetest

import (
	"context"
	"sync"

	htmlrender "github.com/porticus-lab/go-html-render"
)

// Session operation names, as recorded in Session.Calls and matched by
// Script.Hang.
const (
	OpBlock        = "block"
	OpSetContent   = "set-content"
	OpAddStyle     = "add-style"
	OpImageStatus  = "image-status"
	OpWaitSelector = "wait-selector"
	OpPDF          = "pdf"
	OpScreenshot   = "screenshot"
)

// PNG and PDF are the default artifacts returned by a Session.
var (
	PNG = []byte("\x89PNG\r\n\x1a\nfake")
	PDF = []byte("%PDF-1.7\nfake")
)

// Script decides how every Session of an Engine behaves.
type Script struct {
	// Errs maps an operation name to the error it returns.
	Errs map[string]error
	// Hang makes the named operation block until its context ends and
	// return the context error.
	Hang string
	// PendingImages is reported by ImageStatus on every probe.
	PendingImages int
	// Artifact overrides the bytes returned by PDF and Screenshot. Use an
	// empty non-nil slice to simulate an empty capture.
	Artifact []byte
	// CloseErr is returned by Session.Close.
	CloseErr error
}

// Engine counts launches and hands out Sessions following Script.
type Engine struct {
	Script    Script
	LaunchErr error

	mu       sync.Mutex
	sessions []*Session
}

var _ htmlrender.Engine = (*Engine)(nil)

// Launch implements htmlrender.Engine.
func (e *Engine) Launch(ctx context.Context, opts htmlrender.LaunchOptions) (htmlrender.Session, error) {
	if e.LaunchErr != nil {
		e.mu.Lock()
		e.sessions = append(e.sessions, &Session{Opts: opts, launchFailed: true})
		e.mu.Unlock()
		return nil, e.LaunchErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &Session{Opts: opts, script: e.Script}
	e.mu.Lock()
	e.sessions = append(e.sessions, s)
	e.mu.Unlock()
	return s, nil
}

// Launches returns how many times Launch was called.
func (e *Engine) Launches() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

// Sessions returns the successfully launched sessions in launch order.
func (e *Engine) Sessions() []*Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*Session
	for _, s := range e.sessions {
		if !s.launchFailed {
			out = append(out, s)
		}
	}
	return out
}

// Open returns how many launched sessions have not been closed.
func (e *Engine) Open() int {
	n := 0
	for _, s := range e.Sessions() {
		if s.Closes() == 0 {
			n++
		}
	}
	return n
}

// Session records every call made on it.
type Session struct {
	Opts htmlrender.LaunchOptions

	script       Script
	launchFailed bool

	mu     sync.Mutex
	calls  []string
	html   string
	styles []string
	shots  []htmlrender.Screenshot
	pages  []htmlrender.PDFLayout
	closes int
}

var _ htmlrender.Session = (*Session)(nil)

func (s *Session) enter(ctx context.Context, op string) error {
	s.mu.Lock()
	s.calls = append(s.calls, op)
	s.mu.Unlock()
	if s.script.Hang == op {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.script.Errs[op]
}

// Block implements htmlrender.Session.
func (s *Session) Block(ctx context.Context, _ htmlrender.BlockRule) error {
	return s.enter(ctx, OpBlock)
}

// SetContent implements htmlrender.Session.
func (s *Session) SetContent(ctx context.Context, html string) error {
	if err := s.enter(ctx, OpSetContent); err != nil {
		return err
	}
	s.mu.Lock()
	s.html = html
	s.mu.Unlock()
	return nil
}

// AddStyle implements htmlrender.Session.
func (s *Session) AddStyle(ctx context.Context, css string) error {
	if err := s.enter(ctx, OpAddStyle); err != nil {
		return err
	}
	s.mu.Lock()
	s.styles = append(s.styles, css)
	s.mu.Unlock()
	return nil
}

// ImageStatus implements htmlrender.Session.
func (s *Session) ImageStatus(ctx context.Context) (htmlrender.ImageStatus, error) {
	if err := s.enter(ctx, OpImageStatus); err != nil {
		return htmlrender.ImageStatus{}, err
	}
	return htmlrender.ImageStatus{Total: s.script.PendingImages, Pending: s.script.PendingImages}, nil
}

// WaitSelector implements htmlrender.Session.
func (s *Session) WaitSelector(ctx context.Context, _ string) error {
	return s.enter(ctx, OpWaitSelector)
}

// PDF implements htmlrender.Session.
func (s *Session) PDF(ctx context.Context, layout htmlrender.PDFLayout) ([]byte, error) {
	if err := s.enter(ctx, OpPDF); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.pages = append(s.pages, layout)
	s.mu.Unlock()
	return s.artifact(PDF), nil
}

// Screenshot implements htmlrender.Session.
func (s *Session) Screenshot(ctx context.Context, shot htmlrender.Screenshot) ([]byte, error) {
	if err := s.enter(ctx, OpScreenshot); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.shots = append(s.shots, shot)
	s.mu.Unlock()
	return s.artifact(PNG), nil
}

func (s *Session) artifact(def []byte) []byte {
	if s.script.Artifact != nil {
		return s.script.Artifact
	}
	return def
}

// Close implements htmlrender.Session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return s.script.CloseErr
}

// Calls returns the operations invoked so far, in order.
func (s *Session) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Count returns how many times op was invoked.
func (s *Session) Count(op string) int {
	n := 0
	for _, c := range s.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

// HTML returns the last document passed to SetContent.
func (s *Session) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.html
}

// Styles returns the stylesheets added so far.
func (s *Session) Styles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.styles...)
}

// Shots returns the screenshots taken so far.
func (s *Session) Shots() []htmlrender.Screenshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]htmlrender.Screenshot(nil), s.shots...)
}

// Pages returns the PDF layouts printed so far.
func (s *Session) Pages() []htmlrender.PDFLayout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]htmlrender.PDFLayout(nil), s.pages...)
}

// Closes returns how many times Close was called.
func (s *Session) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}
