// internal/profile/routes.go

package profile

import (
	"github.com/go-chi/chi/v5"

	"github.com/imadgeboyega/fitbuddy-backend/internal/auth"
)

// RegisterRoutes mounts the profile and user discovery endpoints
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware *auth.Middleware) {
	r.Route("/api/v1/profile", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/", handler.GetMyProfile)
		r.Put("/", handler.UpdateProfile)
		r.Get("/completion", handler.GetCompletion)
		r.Put("/image", handler.UpdateProfileImage)
		r.Post("/image/upload-url", handler.RequestImageUpload)
		r.Post("/devices", handler.RegisterDevice)
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Put("/deactivate", handler.Deactivate)
		r.Put("/reactivate", handler.Reactivate)
		r.Get("/nearby/users", handler.NearbyUsers)
		r.Get("/nearby/instructors", handler.NearbyInstructors)
		r.Get("/{userID}", handler.GetProfile)
	})
}
