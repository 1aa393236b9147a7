// Package pdbmapd serves the uniprot to pdb queries over http.
package pdbmapd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/andrew-torda/pdbmap/pkg/pdbquery"
)

// Answerer is pdbquery.Assembler, or a fake in tests.
type Answerer interface {
	Answer(ctx context.Context, q pdbquery.Query) (any, error)
}

// Paths we serve.
const (
	PathPdb    = "/pdb"
	PathHealth = "/healthz"
)

type errBody struct {
	Error string `json:"error"`
}

type server struct {
	asm    Answerer
	health func(context.Context) error
	log    *log.Logger
}

// NewHandler gives the whole service, with request logging. health may
// be nil, otherwise it is called for every health check.
func NewHandler(asm Answerer, health func(context.Context) error, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	s := &server{asm: asm, health: health, log: logger}
	mux := http.NewServeMux()
	mux.HandleFunc(PathPdb, s.pdb)
	mux.HandleFunc(PathHealth, s.healthz)
	return loggingMiddleware(logger, mux)
}

// writeJSON always sets the content type, even for errors.
func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("writing response", "err", err)
	}
}

// pdb takes parameters from the query string or a posted form.
func (s *server) pdb(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		s.writeJSON(w, http.StatusMethodNotAllowed, errBody{"method " + r.Method + " not allowed"})
		return
	}
	if err := r.ParseForm(); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errBody{err.Error()})
		return
	}
	q := pdbquery.FromValues(r.Form, s.log)
	ans, err := s.asm.Answer(r.Context(), q)
	switch {
	case errors.Is(err, pdbquery.ErrBadQuery):
		s.writeJSON(w, http.StatusBadRequest, errBody{err.Error()})
	case err != nil:
		s.log.Error("query failed", "mode", q.Mode(), "err", err)
		s.writeJSON(w, http.StatusInternalServerError, errBody{"internal error"})
	default:
		s.writeJSON(w, http.StatusOK, ans)
	}
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.log.Warn("health check failed", "err", err)
			s.writeJSON(w, http.StatusServiceUnavailable, errBody{err.Error()})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusResponseWriter remembers the status and size for logging.
type statusResponseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// loggingMiddleware logs method, path, status, size and duration.
func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w}
		next.ServeHTTP(srw, r)
		if srw.status == 0 {
			srw.status = http.StatusOK
		}
		logger.Info("request", "remote", r.RemoteAddr, "method", r.Method, "path", r.URL.Path,
			"status", srw.status, "bytes", srw.written, "duration", time.Since(start))
	})
}
