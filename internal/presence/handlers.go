// internal/presence/handlers.go

package presence

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/imadgeboyega/fitbuddy-backend/internal/auth"
	"github.com/imadgeboyega/fitbuddy-backend/internal/common/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any origin; connections are authenticated by token
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler holds dependencies for presence endpoints
type Handler struct {
	hub    *Hub
	store  Store
	logger *slog.Logger
}

// NewHandler creates a new presence handler
func NewHandler(hub *Hub, store Store, logger *slog.Logger) *Handler {
	return &Handler{hub: hub, store: store, logger: logger}
}

// StatusResponse reports whether a user is online
type StatusResponse struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

// ServeWS upgrades an authenticated request to a websocket
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.Debug("websocket upgrade failed", slog.Any("error", err))
		return
	}

	NewClient(h.hub, conn, userID).Start()
}

// GetStatus reports whether a user is online
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	online, err := h.store.IsOnline(r.Context(), userID)
	if err != nil {
		h.logger.Error("presence lookup failed", slog.Any("error", err))
		utils.ErrorResponse(w, "Presence is temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	utils.SuccessResponse(w, StatusResponse{UserID: userID, Online: online}, http.StatusOK)
}
