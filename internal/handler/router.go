package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/retreat-status/internal/auth"
)

// NewRouter builds the HTTP router with the global middleware stack.
// Admin routes are only mounted when verifier is non-nil.
func NewRouter(h *RetreatHandler, verifier *auth.Verifier, corsOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(corsOrigins))

	r.Get("/health", HealthCheck)
	h.Routes(r)

	if verifier != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin(verifier, logger))
			r.Get("/overview", h.Overview)
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	return r
}
