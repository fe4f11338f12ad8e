// internal/gym/routes.go

package gym

import (
	"github.com/go-chi/chi/v5"

	"github.com/imadgeboyega/fitbuddy-backend/internal/auth"
)

// RegisterRoutes mounts the gym endpoints
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware *auth.Middleware) {
	r.Route("/api/v1/gyms", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/nearby", handler.Nearby)
		r.Get("/search", handler.Search)
		r.Get("/{gymID}", handler.GetGym)
	})
}
