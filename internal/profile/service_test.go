package profile

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/geo"
	"github.com/imadgeboyega/fitbuddy-backend/internal/common/logging"
)

type memoryRepo struct {
	mu       sync.Mutex
	profiles map[string]*Profile
}

func newMemoryRepo(profiles ...*Profile) *memoryRepo {
	r := &memoryRepo{profiles: map[string]*Profile{}}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	return r
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepo) Save(_ context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; !ok {
		return ErrProfileNotFound
	}
	cp := *p
	cp.UpdatedAt = time.Now()
	r.profiles[p.ID] = &cp
	return nil
}

func (r *memoryRepo) UpdateProfileImage(_ context.Context, id string, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}
	p.ProfileImage = &url
	return nil
}

func (r *memoryRepo) AddDeviceToken(_ context.Context, id string, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}
	for _, t := range p.DeviceTokens {
		if t == token {
			return nil
		}
	}
	p.DeviceTokens = append(p.DeviceTokens, token)
	return nil
}

func (r *memoryRepo) SetActive(_ context.Context, id string, active bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}
	p.IsActive = active
	if active {
		p.DeactivatedAt = nil
	} else {
		p.DeactivatedAt = &at
	}
	return nil
}

func (r *memoryRepo) FindCandidates(_ context.Context, q *CandidateQuery) ([]*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Profile
	for _, p := range r.profiles {
		if p.ID == q.ExcludeID {
			continue
		}
		if q.UserType != "" && p.UserType != q.UserType {
			continue
		}
		if q.RequireActive && (!p.IsActive || p.AccountStatus != AccountStatusActive) {
			continue
		}
		if q.Near != nil && (!p.Location.IsSet() || geo.DistanceKm(*q.Near, p.Location.Coordinates) > q.RadiusKm*1.5) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type fakeUploader struct{}

func (fakeUploader) PresignImageUpload(_ context.Context, userID, contentType string) (*UploadURL, error) {
	if _, ok := imageExtensions[contentType]; !ok {
		return nil, ErrInvalidImageFormat
	}
	return &UploadURL{UploadURL: "https://signed", Method: "PUT", ImageURL: "https://cdn.test/profiles/" + userID + "/x.jpg"}, nil
}

func (fakeUploader) OwnsURL(url string) bool {
	return strings.HasPrefix(url, "https://cdn.test/profiles/")
}

func intPtr(v int) *int                   { return &v }
func strPtr(v string) *string             { return &v }
func coords(lng, lat float64) *[2]float64 { return &[2]float64{lng, lat} }

func activeProfile(id string, userType string, lng, lat float64) *Profile {
	return &Profile{
		ID:            id,
		Name:          id,
		UserType:      userType,
		IsActive:      true,
		AccountStatus: AccountStatusActive,
		Location:      Location{Coordinates: geo.NewPoint(lng, lat)},
	}
}

func newTestService(repo Repository, uploader ImageUploader) *service {
	return NewService(repo, uploader, 500, logging.Discard()).(*service)
}

func TestUpdateProfileMarksCompletion(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(&Profile{ID: "u1", IsActive: true, AccountStatus: AccountStatusActive})
	svc := newTestService(repo, nil)

	p, err := svc.UpdateProfile(ctx, "u1", &UpdateProfileRequest{
		Name:         strPtr(" Ada "),
		Age:          intPtr(29),
		FitnessLevel: strPtr("intermediate"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
	assert.False(t, p.IsProfileComplete)

	c, err := svc.GetCompletion(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, c.Percentage)
	assert.ElementsMatch(t, []string{"fitnessGoals", "preferredWorkouts", "location"}, c.Missing)

	p, err = svc.UpdateProfile(ctx, "u1", &UpdateProfileRequest{
		FitnessGoals:      []string{"strength"},
		PreferredWorkouts: []string{"running"},
		Location:          &LocationInput{Coordinates: coords(-0.1276, 51.5072), Address: "London"},
	})
	require.NoError(t, err)
	assert.True(t, p.IsProfileComplete)
	assert.Equal(t, 29, *p.Age)

	stored, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, stored.IsProfileComplete)
	assert.Equal(t, "London", stored.Location.Address)
}

func TestUpdateProfileRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepo(&Profile{ID: "u1"}), nil)

	tests := []struct {
		name string
		req  *UpdateProfileRequest
		want error
	}{
		{"out of range coordinates", &UpdateProfileRequest{Location: &LocationInput{Coordinates: coords(200, 10)}}, ErrInvalidLocation},
		{"slot ends before start", &UpdateProfileRequest{Availability: []TimeSlot{{Day: "monday", StartTime: "10:00", EndTime: "09:00"}}}, ErrInvalidTimeSlot},
		{"zero length slot", &UpdateProfileRequest{Availability: []TimeSlot{{Day: "monday", StartTime: "10:00", EndTime: "10:00"}}}, ErrInvalidTimeSlot},
		{"age range inverted", &UpdateProfileRequest{PreferredAgeMin: intPtr(40), PreferredAgeMax: intPtr(30)}, ErrInvalidAgeRange},
		{"unknown user", nil, ErrProfileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := "u1"
			req := tt.req
			if req == nil {
				id, req = "missing", &UpdateProfileRequest{}
			}
			_, err := svc.UpdateProfile(ctx, id, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetProfileHidesInactiveAccounts(t *testing.T) {
	ctx := context.Background()
	hidden := activeProfile("hidden", UserTypeUser, 1, 1)
	hidden.IsActive = false
	svc := newTestService(newMemoryRepo(activeProfile("visible", UserTypeUser, 1, 1), hidden), nil)

	p, err := svc.GetProfile(ctx, "visible")
	require.NoError(t, err)
	assert.Equal(t, "visible", p.ID)
	assert.NotNil(t, p.FitnessGoals)

	_, err = svc.GetProfile(ctx, "hidden")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestDeactivateAndReactivate(t *testing.T) {
	ctx := context.Background()
	suspended := activeProfile("s", UserTypeUser, 0, 0)
	suspended.AccountStatus = AccountStatusSuspended
	repo := newMemoryRepo(activeProfile("u1", UserTypeUser, 0, 0), suspended)
	svc := newTestService(repo, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	require.NoError(t, svc.DeactivateAccount(ctx, "u1"))
	p, _ := repo.GetByID(ctx, "u1")
	assert.False(t, p.IsActive)
	require.NotNil(t, p.DeactivatedAt)
	assert.Equal(t, fixed, *p.DeactivatedAt)
	assert.False(t, p.IsMatchable())

	require.NoError(t, svc.ReactivateAccount(ctx, "u1"))
	p, _ = repo.GetByID(ctx, "u1")
	assert.True(t, p.IsActive)
	assert.Nil(t, p.DeactivatedAt)

	assert.ErrorIs(t, svc.ReactivateAccount(ctx, "s"), ErrAccountLocked)
	assert.ErrorIs(t, svc.DeactivateAccount(ctx, "missing"), ErrProfileNotFound)
}

func TestNearbySortsAndFilters(t *testing.T) {
	ctx := context.Background()
	// 0.009 degrees of latitude is roughly one kilometer
	me := activeProfile("me", UserTypeUser, 3.0, 6.5)
	near := activeProfile("near", UserTypeUser, 3.0, 6.509)
	mid := activeProfile("mid", UserTypeUser, 3.0, 6.545)
	far := activeProfile("far", UserTypeUser, 3.0, 6.7)
	coach := activeProfile("coach", UserTypeInstructor, 3.0, 6.518)
	unset := activeProfile("unset", UserTypeUser, 0, 0)
	svc := newTestService(newMemoryRepo(me, near, mid, far, coach, unset), nil)

	users, err := svc.NearbyUsers(ctx, "me", 10)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"near", "coach", "mid"}, []string{users[0].ID, users[1].ID, users[2].ID})
	assert.InDelta(t, 1.0, users[0].DistanceKm, 0.05)
	assert.Equal(t, UserTypeInstructor, users[1].UserType)

	instructors, err := svc.NearbyInstructors(ctx, "me", 10)
	require.NoError(t, err)
	require.Len(t, instructors, 1)
	assert.Equal(t, "coach", instructors[0].ID)

	_, err = svc.NearbyUsers(ctx, "me", 0)
	assert.ErrorIs(t, err, ErrInvalidRadius)
	_, err = svc.NearbyUsers(ctx, "me", 501)
	assert.ErrorIs(t, err, ErrInvalidRadius)
	_, err = svc.NearbyInstructors(ctx, "me", math.NaN())
	assert.ErrorIs(t, err, ErrInvalidRadius)
	_, err = svc.NearbyUsers(ctx, "unset", 10)
	assert.ErrorIs(t, err, ErrLocationNotSet)
}

func TestProfileImageUploads(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(activeProfile("u1", UserTypeUser, 0, 0))

	disabled := newTestService(repo, nil)
	_, err := disabled.RequestImageUpload(ctx, "u1", "image/png")
	assert.ErrorIs(t, err, ErrUploadsDisabled)

	svc := newTestService(repo, fakeUploader{})
	upload, err := svc.RequestImageUpload(ctx, "u1", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "PUT", upload.Method)

	_, err = svc.RequestImageUpload(ctx, "u1", "image/gif")
	assert.ErrorIs(t, err, ErrInvalidImageFormat)

	_, err = svc.UpdateProfileImage(ctx, "u1", "https://elsewhere.test/a.jpg")
	assert.ErrorIs(t, err, ErrForeignImageURL)

	p, err := svc.UpdateProfileImage(ctx, "u1", upload.ImageURL)
	require.NoError(t, err)
	require.NotNil(t, p.ProfileImage)
	assert.Equal(t, upload.ImageURL, *p.ProfileImage)
}

func TestRegisterDeviceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo(activeProfile("u1", UserTypeUser, 0, 0))
	svc := newTestService(repo, nil)

	require.NoError(t, svc.RegisterDevice(ctx, "u1", " token-abcdef "))
	require.NoError(t, svc.RegisterDevice(ctx, "u1", "token-abcdef"))

	p, _ := repo.GetByID(ctx, "u1")
	assert.Equal(t, []string{"token-abcdef"}, p.DeviceTokens)
}
