package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Static assets
	r.Get("/favicon.ico", handleFavicon)
	r.Get("/", handleIndex)
	r.Get("/index.html", handleIndex)

	// Gateway endpoints; "-" is never a command name
	r.Route("/-", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		if s.metrics != nil {
			r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
		}
	})

	// Command bridge
	r.Get("/*", s.handleCommand)

	return r
}

// handleHealth reports that the server is up. It does not touch the backend.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, "ok")
}
