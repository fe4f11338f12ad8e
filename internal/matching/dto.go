// internal/matching/dto.go

package matching

// CreateMatchRequest asks another user to become a workout partner
type CreateMatchRequest struct {
	ReceiverID string `json:"receiverId" validate:"required,uuid"`
}

// RespondMatchRequest accepts or rejects a pending match
type RespondMatchRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}
