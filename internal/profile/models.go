// internal/profile/models.go

package profile

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/geo"
)

// User types
const (
	UserTypeUser       = "user"
	UserTypeInstructor = "instructor"
)

// Account statuses
const (
	AccountStatusPending   = "pending"
	AccountStatusActive    = "active"
	AccountStatusSuspended = "suspended"
	AccountStatusDeleted   = "deleted"
)

// Gender preference that disables the gender filter
const PreferredGenderAny = "any"

// FitnessLevels in ascending order of experience
var FitnessLevels = []string{"beginner", "intermediate", "advanced", "professional"}

// Location is where a user trains. Coordinates of [0,0] mean "not set".
type Location struct {
	Coordinates geo.Point `json:"coordinates"`
	Address     string    `json:"address"`
}

// IsSet reports whether the location carries real coordinates
func (l Location) IsSet() bool {
	return !l.Coordinates.IsZero()
}

// TimeSlot is a weekly availability window
type TimeSlot struct {
	Day       string `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"startTime" validate:"required,hhmm"`
	EndTime   string `json:"endTime" validate:"required,hhmm"`
}

// Availability is a set of weekly time slots stored as JSONB
type Availability []TimeSlot

// Scan implements the sql.Scanner interface for Availability
func (a *Availability) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Availability", value)
	}
	return json.Unmarshal(data, a)
}

// Value implements the driver.Valuer interface for Availability
func (a Availability) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// Profile is a user's full profile
type Profile struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Email             string       `json:"email"`
	Phone             *string      `json:"phone,omitempty"`
	UserType          string       `json:"userType"`
	ProfileImage      *string      `json:"profileImage"`
	Bio               string       `json:"bio"`
	Age               *int         `json:"age,omitempty"`
	Gender            string       `json:"gender"`
	Location          Location     `json:"location"`
	FitnessLevel      string       `json:"fitnessLevel"`
	FitnessGoals      []string     `json:"fitnessGoals"`
	PreferredWorkouts []string     `json:"preferredWorkouts"`
	Availability      Availability `json:"availability"`
	PreferredGender   string       `json:"preferredGender"`
	PreferredAgeMin   *int         `json:"preferredAgeMin,omitempty"`
	PreferredAgeMax   *int         `json:"preferredAgeMax,omitempty"`
	IsProfileComplete bool         `json:"isProfileComplete"`
	IsActive          bool         `json:"isActive"`
	AccountStatus     string       `json:"accountStatus"`
	DeviceTokens      []string     `json:"-"`
	DeactivatedAt     *time.Time   `json:"deactivatedAt,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// IsMatchable reports whether the profile may appear in suggestions
func (p *Profile) IsMatchable() bool {
	return p.IsProfileComplete && p.IsActive && p.AccountStatus == AccountStatusActive
}

// PublicProfile is the projection shown to other users
type PublicProfile struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	ProfileImage      *string      `json:"profileImage"`
	Bio               string       `json:"bio"`
	FitnessLevel      string       `json:"fitnessLevel"`
	FitnessGoals      []string     `json:"fitnessGoals"`
	PreferredWorkouts []string     `json:"preferredWorkouts"`
	Location          Location     `json:"location"`
	Availability      Availability `json:"availability"`
}

// Public returns the projection of p that is safe to show other users
func (p *Profile) Public() *PublicProfile {
	return &PublicProfile{
		ID:                p.ID,
		Name:              p.Name,
		ProfileImage:      p.ProfileImage,
		Bio:               p.Bio,
		FitnessLevel:      p.FitnessLevel,
		FitnessGoals:      nonNil(p.FitnessGoals),
		PreferredWorkouts: nonNil(p.PreferredWorkouts),
		Location:          p.Location,
		Availability:      p.Availability,
	}
}

// NearbyProfile is a public profile annotated with its distance from the viewer
type NearbyProfile struct {
	*PublicProfile
	UserType   string  `json:"userType"`
	DistanceKm float64 `json:"distanceKm"`
}

// Completion summarizes which matching fields are still missing
type Completion struct {
	Percentage int      `json:"percentage"`
	Missing    []string `json:"missingFields"`
	IsComplete bool     `json:"isProfileComplete"`
}

// CandidateQuery narrows the profiles fetched for matching and discovery.
// Zero values disable a predicate.
type CandidateQuery struct {
	ExcludeID       string
	UserType        string
	Near            *geo.Point
	RadiusKm        float64
	Gender          string
	MinAge          int
	MaxAge          int
	RequireActive   bool // isActive and accountStatus == active
	RequireComplete bool
	// UnmatchedWith drops users that share a match record, in any status, with this id
	UnmatchedWith string
	Limit         int
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
