// internal/auth/handlers.go

package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/utils"
)

// Handler holds dependencies for auth endpoints
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new auth handler
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the public auth routes
func RegisterRoutes(r chi.Router, handler *Handler) {
	r.Post("/api/v1/auth/register", handler.Register)
	r.Post("/api/v1/auth/login", handler.Login)
}

// Register handles account creation
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			utils.ErrorResponse(w, "Email already registered", http.StatusConflict)
			return
		}
		h.logger.Error("register failed", slog.Any("error", err))
		utils.ErrorResponse(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, resp, http.StatusCreated)
}

// Login handles credential exchange
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			utils.ErrorResponse(w, "Invalid email or password", http.StatusUnauthorized)
		case errors.Is(err, ErrAccountDisabled):
			utils.ErrorResponse(w, "Account is disabled", http.StatusForbidden)
		default:
			h.logger.Error("login failed", slog.Any("error", err))
			utils.ErrorResponse(w, "Failed to sign in", http.StatusInternalServerError)
		}
		return
	}

	utils.SuccessResponse(w, resp, http.StatusOK)
}
