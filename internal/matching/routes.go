// internal/matching/routes.go

package matching

import (
	"github.com/go-chi/chi/v5"

	"github.com/imadgeboyega/fitbuddy-backend/internal/auth"
)

// RegisterRoutes mounts the match endpoints
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware *auth.Middleware) {
	r.Route("/api/v1/matches", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/suggestions", handler.GetSuggestions)
		r.Get("/find", handler.FindMatches)
		r.Get("/list/active", handler.ListActiveMatches)
		r.Get("/list/pending", handler.ListPendingMatches)
		r.Post("/", handler.CreateMatch)

		r.Route("/{matchID}", func(r chi.Router) {
			r.Get("/", handler.GetMatch)
			r.Put("/respond", handler.RespondToMatch)
			r.Put("/unmatch", handler.Unmatch)
		})
	})
}
