package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the public endpoints:
//
//	GET  /health                     — ALB liveness probe
//	GET  /ready                      — readiness (session store reachable)
//	POST /api/chat                   — validated, rate-limited chat
//	POST /api/sessions               — create a session
//	GET  /api/sessions/{sessionID}   — session metadata and transcript
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", h.HealthHandler)
	r.Get("/ready", h.ReadyHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.ChatHandler)
		r.Post("/sessions", h.CreateSessionHandler)
		r.Get("/sessions/{sessionID}", h.GetSessionHandler)
	})

	// Unknown routes and wrong methods still answer JSON.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		errorResponse(w, http.StatusNotFound, "Endpoint not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	return r
}
