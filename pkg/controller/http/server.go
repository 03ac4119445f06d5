package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agentry-lab/mnemosyne/pkg/utils/logging"
)

// ReadinessProbe reports whether one component of the process is ready.
// The probe name appears in the readiness response body.
type ReadinessProbe func() error

type Server struct {
	router  *chi.Mux
	backend string
	probes  map[string]ReadinessProbe
}

type Options func(*Server)

// WithBackend names the repository backend in the readiness response
func WithBackend(name string) Options {
	return func(s *Server) {
		s.backend = name
	}
}

// WithReadinessProbe registers a named readiness probe
func WithReadinessProbe(name string, probe ReadinessProbe) Options {
	return func(s *Server) {
		s.probes[name] = probe
	}
}

func New(opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		probes: map[string]ReadinessProbe{},
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)
	r.Get("/health/ready", s.readyHandler)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// healthHandler reports process liveness
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// readyHandler runs all registered probes. Any failing probe makes the
// whole process not ready; the response names which ones failed.
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ready",
		"backend": s.backend,
	}

	failures := map[string]string{}
	for name, probe := range s.probes {
		if err := probe(); err != nil {
			failures[name] = err.Error()
		}
	}

	code := http.StatusOK
	if len(failures) > 0 {
		resp["status"] = "not ready"
		resp["failures"] = failures
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Default().Error("failed to encode response body", "error", err.Error())
	}
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
