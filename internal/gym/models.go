// internal/gym/models.go

package gym

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/geo"
)

// BusinessHours is one day's opening window
type BusinessHours struct {
	Day      string `json:"day"`
	Open     string `json:"open"`
	Close    string `json:"close"`
	IsClosed bool   `json:"isClosed"`
}

// Schedule is the weekly opening schedule stored as JSONB
type Schedule []BusinessHours

// Scan implements the sql.Scanner interface for Schedule
func (s *Schedule) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into Schedule", value)
	}
}

// Value implements the driver.Valuer interface for Schedule
func (s Schedule) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Gym is a training facility
type Gym struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	Coordinates   geo.Point `json:"coordinates"`
	Phone         *string   `json:"phone,omitempty"`
	Website       *string   `json:"website,omitempty"`
	Description   string    `json:"description"`
	Amenities     []string  `json:"amenities"`
	BusinessHours Schedule  `json:"businessHours"`
	AverageRating float64   `json:"averageRating"`
	TotalReviews  int       `json:"totalReviews"`
	IsVerified    bool      `json:"isVerified"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NearbyGym is a gym annotated with its distance from the viewer
type NearbyGym struct {
	*Gym
	DistanceKm float64 `json:"distanceKm"`
}
