package server

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	htmlrender "github.com/porticus-lab/go-html-render"
)

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// requestID assigns each request an id, reusing a sane inbound one, and
// attaches a logger tagged with it to the request context.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		logger := s.cfg.Logger.With("request_id", id)
		ctx := htmlrender.WithLogger(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		htmlrender.LoggerFrom(r.Context()).Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"remote", r.RemoteAddr,
			"elapsed", time.Since(start).Round(time.Millisecond))
	})
}

// requireSecret rejects requests whose X-Render-Secret header does not
// match the configured secret. It never reads the body.
func (s *Server) requireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r.Header.Get(SecretHeader)) {
			htmlrender.LoggerFrom(r.Context()).Info("unauthorized render request", "remote", r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, htmlrender.KindUnauthorized, "missing or invalid "+SecretHeader)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorized(got string) bool {
	if s.cfg.Secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.Secret)) == 1
}
