// internal/profile/service.go

package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/geo"
	"github.com/imadgeboyega/fitbuddy-backend/internal/common/utils"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInvalidLocation    = errors.New("coordinates must be [longitude, latitude] within valid ranges")
	ErrLocationNotSet     = errors.New("user location not set")
	ErrInvalidRadius      = errors.New("distance must be a positive number of kilometers")
	ErrInvalidTimeSlot    = errors.New("availability slot must end after it starts")
	ErrInvalidAgeRange    = errors.New("preferred age minimum must not exceed the maximum")
	ErrInvalidImageFormat = errors.New("invalid image format")
	ErrForeignImageURL    = errors.New("image URL must come from an issued upload")
	ErrUploadsDisabled    = errors.New("image uploads are not configured")
	ErrAccountLocked      = errors.New("account is suspended or deleted")
)

const nearbyLimit = 50

// Service defines the profile service interface
type Service interface {
	GetMyProfile(ctx context.Context, userID string) (*Profile, error)
	GetProfile(ctx context.Context, userID string) (*PublicProfile, error)
	GetCompletion(ctx context.Context, userID string) (*Completion, error)
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*Profile, error)
	UpdateProfileImage(ctx context.Context, userID string, imageURL string) (*Profile, error)
	RequestImageUpload(ctx context.Context, userID string, contentType string) (*UploadURL, error)
	RegisterDevice(ctx context.Context, userID string, token string) error
	DeactivateAccount(ctx context.Context, userID string) error
	ReactivateAccount(ctx context.Context, userID string) error
	NearbyUsers(ctx context.Context, userID string, radiusKm float64) ([]*NearbyProfile, error)
	NearbyInstructors(ctx context.Context, userID string, radiusKm float64) ([]*NearbyProfile, error)
}

// service implements the profile service
type service struct {
	repo     Repository
	uploader ImageUploader
	maxKm    float64
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new profile service. uploader may be nil when uploads
// are disabled.
func NewService(repo Repository, uploader ImageUploader, maxRadiusKm float64, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		uploader: uploader,
		maxKm:    maxRadiusKm,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *service) GetMyProfile(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.GetByID(ctx, userID)
}

// GetProfile returns another user's public projection. Inactive and deleted
// accounts are reported as not found.
func (s *service) GetProfile(ctx context.Context, userID string) (*PublicProfile, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive || p.AccountStatus == AccountStatusDeleted {
		return nil, ErrProfileNotFound
	}
	return p.Public(), nil
}

func (s *service) GetCompletion(ctx context.Context, userID string) (*Completion, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Evaluate(p), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*Profile, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := applyUpdate(p, req); err != nil {
		return nil, err
	}

	p.IsProfileComplete = Evaluate(p).IsComplete

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Debug("profile updated",
		slog.String("user_id", userID),
		slog.Bool("complete", p.IsProfileComplete))

	return p, nil
}

func (s *service) UpdateProfileImage(ctx context.Context, userID string, imageURL string) (*Profile, error) {
	if s.uploader != nil && !s.uploader.OwnsURL(imageURL) {
		return nil, ErrForeignImageURL
	}
	if err := s.repo.UpdateProfileImage(ctx, userID, imageURL); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *service) RequestImageUpload(ctx context.Context, userID string, contentType string) (*UploadURL, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	return s.uploader.PresignImageUpload(ctx, userID, contentType)
}

func (s *service) RegisterDevice(ctx context.Context, userID string, token string) error {
	return s.repo.AddDeviceToken(ctx, userID, strings.TrimSpace(token))
}

func (s *service) DeactivateAccount(ctx context.Context, userID string) error {
	return s.repo.SetActive(ctx, userID, false, s.now())
}

func (s *service) ReactivateAccount(ctx context.Context, userID string) error {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if p.AccountStatus == AccountStatusSuspended || p.AccountStatus == AccountStatusDeleted {
		return ErrAccountLocked
	}
	return s.repo.SetActive(ctx, userID, true, s.now())
}

func (s *service) NearbyUsers(ctx context.Context, userID string, radiusKm float64) ([]*NearbyProfile, error) {
	return s.nearby(ctx, userID, radiusKm, "")
}

func (s *service) NearbyInstructors(ctx context.Context, userID string, radiusKm float64) ([]*NearbyProfile, error) {
	return s.nearby(ctx, userID, radiusKm, UserTypeInstructor)
}

func (s *service) nearby(ctx context.Context, userID string, radiusKm float64, userType string) ([]*NearbyProfile, error) {
	if !(radiusKm > 0 && radiusKm <= s.maxKm) {
		return nil, ErrInvalidRadius
	}

	me, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !me.Location.IsSet() {
		return nil, ErrLocationNotSet
	}

	center := me.Location.Coordinates
	candidates, err := s.repo.FindCandidates(ctx, &CandidateQuery{
		ExcludeID:     userID,
		UserType:      userType,
		Near:          &center,
		RadiusKm:      radiusKm,
		RequireActive: true,
		Limit:         nearbyLimit * 2,
	})
	if err != nil {
		return nil, err
	}

	result := make([]*NearbyProfile, 0, len(candidates))
	for _, c := range candidates {
		if !c.Location.IsSet() {
			continue
		}
		d := geo.DistanceKm(center, c.Location.Coordinates)
		if d > radiusKm {
			continue
		}
		result = append(result, &NearbyProfile{
			PublicProfile: c.Public(),
			UserType:      c.UserType,
			DistanceKm:    roundKm(d),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].DistanceKm != result[j].DistanceKm {
			return result[i].DistanceKm < result[j].DistanceKm
		}
		return result[i].ID < result[j].ID
	})

	if len(result) > nearbyLimit {
		result = result[:nearbyLimit]
	}
	return result, nil
}

// Evaluate reports which matching fields a profile is missing. A profile is
// complete once every one of them is present.
func Evaluate(p *Profile) *Completion {
	checks := []struct {
		field string
		ok    bool
	}{
		{"name", strings.TrimSpace(p.Name) != ""},
		{"age", p.Age != nil},
		{"fitnessLevel", p.FitnessLevel != ""},
		{"fitnessGoals", len(p.FitnessGoals) > 0},
		{"preferredWorkouts", len(p.PreferredWorkouts) > 0},
		{"location", p.Location.IsSet()},
	}

	missing := []string{}
	for _, c := range checks {
		if !c.ok {
			missing = append(missing, c.field)
		}
	}

	done := len(checks) - len(missing)
	return &Completion{
		Percentage: done * 100 / len(checks),
		Missing:    missing,
		IsComplete: len(missing) == 0,
	}
}

func applyUpdate(p *Profile, req *UpdateProfileRequest) error {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}
	if req.Age != nil {
		p.Age = req.Age
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.Location != nil && req.Location.Coordinates != nil {
		point := geo.NewPoint(req.Location.Coordinates[0], req.Location.Coordinates[1])
		if !point.Valid() {
			return ErrInvalidLocation
		}
		p.Location = Location{Coordinates: point, Address: req.Location.Address}
	}
	if req.FitnessLevel != nil {
		p.FitnessLevel = *req.FitnessLevel
	}
	if req.FitnessGoals != nil {
		p.FitnessGoals = req.FitnessGoals
	}
	if req.PreferredWorkouts != nil {
		p.PreferredWorkouts = req.PreferredWorkouts
	}
	if req.Availability != nil {
		for _, slot := range req.Availability {
			start, okStart := utils.ParseClock(slot.StartTime)
			end, okEnd := utils.ParseClock(slot.EndTime)
			if !okStart || !okEnd || end <= start {
				return fmt.Errorf("%w: %s %s-%s", ErrInvalidTimeSlot, slot.Day, slot.StartTime, slot.EndTime)
			}
		}
		p.Availability = Availability(req.Availability)
	}
	if req.PreferredGender != nil {
		p.PreferredGender = *req.PreferredGender
	}
	if req.PreferredAgeMin != nil {
		p.PreferredAgeMin = req.PreferredAgeMin
	}
	if req.PreferredAgeMax != nil {
		p.PreferredAgeMax = req.PreferredAgeMax
	}
	if p.PreferredAgeMin != nil && p.PreferredAgeMax != nil && *p.PreferredAgeMin > *p.PreferredAgeMax {
		return ErrInvalidAgeRange
	}
	return nil
}

func roundKm(d float64) float64 {
	return float64(int(d*100+0.5)) / 100
}
