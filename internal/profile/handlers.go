// internal/profile/handlers.go

package profile

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

// Handler holds dependencies for profile endpoints
type Handler struct {
	service        Service
	logger         *slog.Logger
	usersRadius    float64
	trainersRadius float64
}

// NewHandler creates a new profile handler. The radii are the defaults for
// the nearby endpoints when ?distance= is absent.
func NewHandler(service Service, logger *slog.Logger, usersRadiusKm, instructorsRadiusKm float64) *Handler {
	return &Handler{
		service:        service,
		logger:         logger,
		usersRadius:    usersRadiusKm,
		trainersRadius: instructorsRadiusKm,
	}
}

// GetMyProfile returns the caller's full profile
func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	p, err := h.service.GetMyProfile(r.Context(), userID)
	if err != nil {
		h.handleError(w, err, "get profile")
		return
	}

	utils.SuccessResponse(w, p, http.StatusOK)
}

// GetProfile returns another user's public profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.handleError(w, err, "get public profile")
		return
	}

	utils.SuccessResponse(w, p, http.StatusOK)
}

// GetCompletion reports which matching fields are missing
func (h *Handler) GetCompletion(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	c, err := h.service.GetCompletion(r.Context(), userID)
	if err != nil {
		h.handleError(w, err, "get completion")
		return
	}

	utils.SuccessResponse(w, c, http.StatusOK)
}

// UpdateProfile applies a partial update
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		h.handleError(w, err, "update profile")
		return
	}

	utils.SuccessResponse(w, p, http.StatusOK)
}

// UpdateProfileImage points the profile at an uploaded image
func (h *Handler) UpdateProfileImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.service.UpdateProfileImage(r.Context(), userID, req.ImageURL)
	if err != nil {
		h.handleError(w, err, "update profile image")
		return
	}

	utils.SuccessResponse(w, p, http.StatusOK)
}

// RequestImageUpload issues a presigned upload URL
func (h *Handler) RequestImageUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	upload, err := h.service.RequestImageUpload(r.Context(), userID, req.ContentType)
	if err != nil {
		h.handleError(w, err, "presign upload")
		return
	}

	utils.SuccessResponse(w, upload, http.StatusOK)
}

// RegisterDevice stores a push notification token
func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.RegisterDevice(r.Context(), userID, req.Token); err != nil {
		h.handleError(w, err, "register device")
		return
	}

	utils.MessageResponse(w, "Device registered", http.StatusOK)
}

// Deactivate hides the caller from every discovery surface
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.DeactivateAccount(r.Context(), userID); err != nil {
		h.handleError(w, err, "deactivate account")
		return
	}

	utils.MessageResponse(w, "Account deactivated", http.StatusOK)
}

// Reactivate restores a deactivated account
func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.ReactivateAccount(r.Context(), userID); err != nil {
		h.handleError(w, err, "reactivate account")
		return
	}

	utils.MessageResponse(w, "Account reactivated", http.StatusOK)
}

// NearbyUsers lists active users around the caller
func (h *Handler) NearbyUsers(w http.ResponseWriter, r *http.Request) {
	h.nearby(w, r, h.usersRadius, h.service.NearbyUsers)
}

// NearbyInstructors lists active instructors around the caller
func (h *Handler) NearbyInstructors(w http.ResponseWriter, r *http.Request) {
	h.nearby(w, r, h.trainersRadius, h.service.NearbyInstructors)
}

func (h *Handler) nearby(w http.ResponseWriter, r *http.Request, defaultKm float64,
	find func(ctx context.Context, userID string, radiusKm float64) ([]*NearbyProfile, error)) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	radius, ok := utils.QueryFloat(r, "distance", defaultKm)
	if !ok {
		utils.ErrorResponse(w, "distance must be a number", http.StatusBadRequest)
		return
	}

	profiles, err := find(r.Context(), userID, radius)
	if err != nil {
		h.handleError(w, err, "nearby search")
		return
	}

	utils.SuccessResponse(w, profiles, http.StatusOK)
}

func (h *Handler) handleError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		utils.ErrorResponse(w, "Profile not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidLocation),
		errors.Is(err, ErrInvalidTimeSlot),
		errors.Is(err, ErrInvalidAgeRange),
		errors.Is(err, ErrInvalidRadius),
		errors.Is(err, ErrInvalidImageFormat),
		errors.Is(err, ErrForeignImageURL),
		errors.Is(err, ErrLocationNotSet):
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrAccountLocked):
		utils.ErrorResponse(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrUploadsDisabled):
		utils.ErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		utils.ErrorResponse(w, "Internal server error", http.StatusInternalServerError)
	}
}
