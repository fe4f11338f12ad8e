// internal/gym/handlers.go

package gym

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imadgeboyega/fitbuddy-backend/internal/auth"
	"github.com/imadgeboyega/fitbuddy-backend/internal/common/utils"
)

// Handler holds dependencies for gym endpoints
type Handler struct {
	service  Service
	logger   *slog.Logger
	radiusKm float64
}

// NewHandler creates a new gym handler; radiusKm is the default for /nearby
func NewHandler(service Service, logger *slog.Logger, radiusKm float64) *Handler {
	return &Handler{service: service, logger: logger, radiusKm: radiusKm}
}

func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	radius, ok := utils.QueryFloat(r, "radius", h.radiusKm)
	if !ok {
		utils.ErrorResponse(w, "radius must be a number", http.StatusBadRequest)
		return
	}

	gyms, err := h.service.Nearby(r.Context(), userID, radius)
	if err != nil {
		h.handleError(w, err, "nearby gyms")
		return
	}

	utils.SuccessResponse(w, gyms, http.StatusOK)
}

func (h *Handler) GetGym(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.GetGym(r.Context(), chi.URLParam(r, "gymID"))
	if err != nil {
		h.handleError(w, err, "get gym")
		return
	}

	utils.SuccessResponse(w, g, http.StatusOK)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	gyms, err := h.service.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.handleError(w, err, "search gyms")
		return
	}

	utils.SuccessResponse(w, gyms, http.StatusOK)
}

func (h *Handler) handleError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrGymNotFound), errors.Is(err, ErrUserNotFound):
		utils.ErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrLocationNotSet),
		errors.Is(err, ErrInvalidRadius),
		errors.Is(err, ErrEmptySearchTerm):
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		utils.ErrorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}
