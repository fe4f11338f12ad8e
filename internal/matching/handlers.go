// internal/matching/handlers.go

package matching

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imadgeboyega/fitbuddy-backend/internal/auth"
	"github.com/imadgeboyega/fitbuddy-backend/internal/common/utils"
)

// Handler holds dependencies for match endpoints
type Handler struct {
	service      Service
	logger       *slog.Logger
	suggestionKm float64
}

// NewHandler creates a new matching handler. suggestionKm is the radius used
// by /suggestions when ?distance= is absent.
func NewHandler(service Service, logger *slog.Logger, suggestionKm float64) *Handler {
	return &Handler{service: service, logger: logger, suggestionKm: suggestionKm}
}

// GetSuggestions returns ranked workout partners near the caller
func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	distance, ok := utils.QueryFloat(r, "distance", h.suggestionKm)
	if !ok {
		utils.ErrorResponse(w, "distance must be a number", http.StatusBadRequest)
		return
	}

	suggestions, err := h.service.Suggestions(r.Context(), userID, distance)
	if err != nil {
		h.handleError(w, err, "get suggestions")
		return
	}

	utils.SuccessResponse(w, suggestions, http.StatusOK)
}

// FindMatches is the tunable form of GetSuggestions
func (h *Handler) FindMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	opts := h.service.DefaultOptions()
	if opts.MaxDistanceKm, ok = utils.QueryFloat(r, "distance", opts.MaxDistanceKm); !ok {
		utils.ErrorResponse(w, "distance must be a number", http.StatusBadRequest)
		return
	}
	if opts.Limit, ok = utils.QueryInt(r, "limit", opts.Limit); !ok {
		utils.ErrorResponse(w, "limit must be an integer", http.StatusBadRequest)
		return
	}
	if opts.MinScore, ok = utils.QueryInt(r, "min_score", opts.MinScore); !ok {
		utils.ErrorResponse(w, "min_score must be an integer", http.StatusBadRequest)
		return
	}

	results, err := h.service.FindPotentialMatches(r.Context(), userID, opts)
	if err != nil {
		h.handleError(w, err, "find matches")
		return
	}

	utils.SuccessResponse(w, results, http.StatusOK)
}

// CreateMatch sends a partner request
func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := h.service.CreateMatch(r.Context(), userID, req.ReceiverID)
	if err != nil {
		h.handleError(w, err, "create match")
		return
	}

	utils.SuccessResponse(w, m, http.StatusCreated)
}

// RespondToMatch accepts or rejects a pending request
func (h *Handler) RespondToMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req RespondMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	accept := MatchStatus(req.Status) == StatusAccepted
	m, err := h.service.RespondToMatch(r.Context(), userID, chi.URLParam(r, "matchID"), accept)
	if err != nil {
		h.handleError(w, err, "respond to match")
		return
	}

	utils.SuccessResponse(w, m, http.StatusOK)
}

// Unmatch deactivates a match
func (h *Handler) Unmatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.Unmatch(r.Context(), userID, chi.URLParam(r, "matchID")); err != nil {
		h.handleError(w, err, "unmatch")
		return
	}

	utils.MessageResponse(w, "Unmatched successfully", http.StatusOK)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	m, err := h.service.GetMatch(r.Context(), userID, chi.URLParam(r, "matchID"))
	if err != nil {
		h.handleError(w, err, "get match")
		return
	}

	utils.SuccessResponse(w, m, http.StatusOK)
}

func (h *Handler) ListActiveMatches(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListActiveMatches)
}

func (h *Handler) ListPendingMatches(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListPendingMatches)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, userID string) ([]*Match, error)) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	matches, err := fetch(r.Context(), userID)
	if err != nil {
		h.handleError(w, err, "list matches")
		return
	}

	utils.SuccessResponse(w, matches, http.StatusOK)
}

func (h *Handler) handleError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		utils.ErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrPreconditionFailed):
		utils.ErrorResponse(w, err.Error(), http.StatusPreconditionFailed)
	case errors.Is(err, ErrInvalidArgument):
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		utils.ErrorResponse(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrConflict):
		utils.ErrorResponse(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrUnavailable):
		h.logger.Warn(op+" unavailable", slog.Any("error", err))
		utils.ErrorResponse(w, "Service temporarily unavailable", http.StatusServiceUnavailable)
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		utils.ErrorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}
