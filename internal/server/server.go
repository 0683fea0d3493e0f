// Package server exposes a Renderer over HTTP.
//
// Routes:
//
//	POST /render  JSON RenderRequest -> {"contentType": ..., "contentBase64": ...}
//	GET  /health  "ok"
//
// Render requests must carry the shared secret in the X-Render-Secret
// header. The header is checked before the body is read.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	htmlrender "github.com/porticus-lab/go-html-render"
)

// SecretHeader carries the shared secret on render requests.
const SecretHeader = "X-Render-Secret"

// DefaultBodyLimit caps request bodies when Config.BodyLimit is unset.
const DefaultBodyLimit int64 = 15 << 20

// Renderer renders one request. *htmlrender.Renderer implements it.
type Renderer interface {
	Render(ctx context.Context, req *htmlrender.RenderRequest) (*htmlrender.Result, error)
}

// Config configures a Server.
type Config struct {
	// Secret must match the X-Render-Secret header. An empty Secret
	// rejects every render request.
	Secret    string
	BodyLimit int64
	Logger    *log.Logger
}

// Server is the HTTP front end. It is an http.Handler.
type Server struct {
	renderer Renderer
	cfg      Config
	router   chi.Router
}

// New builds a Server around r.
func New(r Renderer, cfg Config) *Server {
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = DefaultBodyLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = htmlrender.LoggerFrom(context.Background())
	}
	s := &Server{renderer: r, cfg: cfg}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.With(s.requireSecret).Post("/render", s.handleRender)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := htmlrender.LoggerFrom(ctx)

	var req htmlrender.RenderRequest
	body := http.MaxBytesReader(w, r.Body, s.cfg.BodyLimit)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, htmlrender.KindValidation,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, htmlrender.KindValidation, "invalid JSON body: "+err.Error())
		return
	}

	res, err := s.renderer.Render(ctx, &req)
	if err != nil {
		kind := htmlrender.KindOf(err)
		status := StatusFor(kind)
		if status >= http.StatusInternalServerError {
			logger.Error("render failed", "kind", kind, "err", err)
		} else {
			logger.Info("render rejected", "kind", kind, "err", err)
		}
		writeError(w, status, kind, message(err))
		return
	}

	logger.Info("render complete", "format", req.Format, "bytes", res.Len())
	writeJSON(w, http.StatusOK, res)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(k htmlrender.Kind) int {
	switch k {
	case htmlrender.KindUnauthorized:
		return http.StatusUnauthorized
	case htmlrender.KindValidation:
		return http.StatusBadRequest
	case htmlrender.KindNavigationTimeout, htmlrender.KindCaptureTimeout:
		return http.StatusGatewayTimeout
	case htmlrender.KindSelectorNotFound:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   htmlrender.Kind `json:"error"`
	Message string          `json:"message"`
}

// message returns the client-facing text for err. Internal causes stay in
// the logs.
func message(err error) string {
	var e *htmlrender.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

func writeError(w http.ResponseWriter, status int, kind htmlrender.Kind, msg string) {
	writeJSON(w, status, errorBody{Error: kind, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
