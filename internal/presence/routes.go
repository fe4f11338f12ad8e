// internal/presence/routes.go

package presence

import (
	"github.com/go-chi/chi/v5"

	"github.com/imadgeboyega/fitbuddy-backend/internal/auth"
)

// RegisterRoutes mounts the websocket and presence endpoints
func RegisterRoutes(r chi.Router, handler *Handler, authMiddleware *auth.Middleware) {
	r.With(authMiddleware.Authenticate).Get("/ws", handler.ServeWS)
	r.With(authMiddleware.Authenticate).Get("/api/v1/presence/{userID}", handler.GetStatus)
}
