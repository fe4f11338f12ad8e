// internal/gym/service.go

package gym

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/geo"
	"github.com/imadgeboyega/fitbuddy-backend/internal/profile"
)

var (
	ErrGymNotFound     = errors.New("gym not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrLocationNotSet  = errors.New("user location not set")
	ErrInvalidRadius   = errors.New("radius out of range")
	ErrEmptySearchTerm = errors.New("search query is required")
)

// resultLimit caps nearby and search results
const resultLimit = 20

// Service defines the gym service interface
type Service interface {
	Nearby(ctx context.Context, userID string, radiusKm float64) ([]*NearbyGym, error)
	GetGym(ctx context.Context, id string) (*Gym, error)
	Search(ctx context.Context, term string) ([]*Gym, error)
}

// LocationSource resolves where a user trains
type LocationSource interface {
	GetByID(ctx context.Context, id string) (*profile.Profile, error)
}

type service struct {
	repo        Repository
	users       LocationSource
	maxRadiusKm float64
	logger      *slog.Logger
}

// NewService creates a new gym service
func NewService(repo Repository, users LocationSource, maxRadiusKm float64, logger *slog.Logger) Service {
	return &service{repo: repo, users: users, maxRadiusKm: maxRadiusKm, logger: logger}
}

// Nearby lists up to 20 active gyms within radiusKm of the user, closest first
func (s *service) Nearby(ctx context.Context, userID string, radiusKm float64) ([]*NearbyGym, error) {
	if !(radiusKm > 0 && radiusKm <= s.maxRadiusKm) {
		return nil, ErrInvalidRadius
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.Location.IsSet() {
		return nil, ErrLocationNotSet
	}
	center := user.Location.Coordinates

	// The box query over-fetches at the corners
	gyms, err := s.repo.FindWithin(ctx, center, radiusKm, resultLimit*2)
	if err != nil {
		return nil, err
	}

	nearby := make([]*NearbyGym, 0, len(gyms))
	for _, g := range gyms {
		d := geo.DistanceKm(center, g.Coordinates)
		if d > radiusKm {
			continue
		}
		nearby = append(nearby, &NearbyGym{Gym: g, DistanceKm: math.Round(d*100) / 100})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		if nearby[i].DistanceKm != nearby[j].DistanceKm {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		}
		return nearby[i].ID < nearby[j].ID
	})
	if len(nearby) > resultLimit {
		nearby = nearby[:resultLimit]
	}

	s.logger.Debug("nearby gyms",
		slog.String("user_id", userID),
		slog.Float64("radius_km", radiusKm),
		slog.Int("found", len(nearby)))

	return nearby, nil
}

func (s *service) GetGym(ctx context.Context, id string) (*Gym, error) {
	return s.repo.GetByID(ctx, id)
}

// Search finds up to 20 gyms whose name or address contains term
func (s *service) Search(ctx context.Context, term string) ([]*Gym, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptySearchTerm
	}
	return s.repo.Search(ctx, term, resultLimit)
}
