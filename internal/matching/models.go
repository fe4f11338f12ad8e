// internal/matching/models.go

package matching

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imadgeboyega/fitbuddy-backend/internal/profile"
)

// MatchStatus is where a match request is in its lifecycle
type MatchStatus string

const (
	StatusPending  MatchStatus = "pending"
	StatusAccepted MatchStatus = "accepted"
	StatusRejected MatchStatus = "rejected"
	StatusExpired  MatchStatus = "expired"
)

// CompatibilityFactors is the per-factor breakdown, each scaled to 0-100
type CompatibilityFactors struct {
	FitnessGoals        int `json:"fitnessGoals"`
	WorkoutPreferences  int `json:"workoutPreferences"`
	ExperienceLevel     int `json:"experienceLevel"`
	LocationProximity   int `json:"locationProximity"`
	AvailabilityOverlap int `json:"availabilityOverlap"`
}

// Scan implements the sql.Scanner interface for CompatibilityFactors
func (f *CompatibilityFactors) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*f = CompatibilityFactors{}
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("cannot scan %T into CompatibilityFactors", value)
	}
}

// Value implements the driver.Valuer interface for CompatibilityFactors
func (f CompatibilityFactors) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Match links an initiator and a receiver. Any match, whatever its status,
// keeps the pair out of future suggestions.
type Match struct {
	ID                   string               `json:"id" db:"id"`
	InitiatorID          string               `json:"initiatorId" db:"initiator_id"`
	ReceiverID           string               `json:"receiverId" db:"receiver_id"`
	Status               MatchStatus          `json:"status" db:"status"`
	MatchScore           int                  `json:"matchScore" db:"match_score"`
	CompatibilityFactors CompatibilityFactors `json:"compatibilityFactors" db:"compatibility_factors"`
	IsActive             bool                 `json:"isActive" db:"is_active"`
	MatchedAt            time.Time            `json:"matchedAt" db:"matched_at"`
	RespondedAt          *time.Time           `json:"respondedAt,omitempty" db:"responded_at"`
	ExpiresAt            time.Time            `json:"expiresAt" db:"expires_at"`
	CreatedAt            time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time            `json:"updatedAt" db:"updated_at"`

	// OtherUser is the counterpart's public profile, filled for list views
	OtherUser *profile.PublicProfile `json:"user,omitempty" db:"-"`
}

// Involves reports whether userID is either side of the match
func (m *Match) Involves(userID string) bool {
	return m.InitiatorID == userID || m.ReceiverID == userID
}

// Counterpart returns the other side of the match from userID's view
func (m *Match) Counterpart(userID string) string {
	if m.InitiatorID == userID {
		return m.ReceiverID
	}
	return m.InitiatorID
}

// Options constrains a FindPotentialMatches call
type Options struct {
	MaxDistanceKm float64
	Limit         int
	MinScore      int

	// Age bounds used when the requester has no preference of their own.
	// Zero DefaultMaxAge means no upper bound.
	DefaultMinAge int
	DefaultMaxAge int
}

// ScoredCandidate is one ranked result of FindPotentialMatches
type ScoredCandidate struct {
	User    *profile.PublicProfile `json:"user"`
	Score   int                    `json:"compatibilityScore"`
	Details CompatibilityFactors   `json:"compatibilityDetails"`
}

// Suggestion is the shape returned by the suggestions endpoint
type Suggestion struct {
	User                 *profile.PublicProfile `json:"user"`
	MatchScore           int                    `json:"matchScore"`
	CompatibilityFactors CompatibilityFactors   `json:"compatibilityFactors"`
}
