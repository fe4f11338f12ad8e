package matching

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/logging"
	"github.com/imadgeboyega/fitbuddy-backend/internal/profile"
)

func newTestMatcher(profiles *fakeProfiles, matches *memoryMatches) *Matcher {
	profiles.matches = matches
	return NewMatcher(profiles, matches, testMatchingConfig(), logging.Discard())
}

func findOpts() Options {
	return Options{MaxDistanceKm: 20, Limit: 10}
}

func TestFindPotentialMatches(t *testing.T) {
	near := member("near")
	far := member("far")
	far.Location = at(3.38, 8.0)
	matched := member("matched")

	profiles := newFakeProfiles(member("me"), near, far, matched)
	matches := newMemoryMatches(&Match{ID: "m1", InitiatorID: "matched", ReceiverID: "me", Status: StatusRejected})

	got, err := newTestMatcher(profiles, matches).FindPotentialMatches(context.Background(), "me", findOpts())
	require.NoError(t, err)
	assert.Equal(t, []string{"near"}, ids(got))
	assert.Equal(t, 90, got[0].Score)
}

func TestFindPotentialMatchesPushesFiltersDown(t *testing.T) {
	me := member("me")
	me.PreferredGender = "male"
	me.PreferredAgeMin = intPtr(21)
	profiles := newFakeProfiles(me)

	_, err := newTestMatcher(profiles, newMemoryMatches()).FindPotentialMatches(context.Background(), "me", findOpts())
	require.NoError(t, err)

	q := profiles.lastQuery
	require.NotNil(t, q)
	assert.Equal(t, "me", q.ExcludeID)
	assert.Equal(t, profile.UserTypeUser, q.UserType)
	assert.Equal(t, "male", q.Gender)
	assert.Equal(t, 21, q.MinAge)
	assert.Equal(t, 100, q.MaxAge)
	assert.True(t, q.RequireActive)
	assert.True(t, q.RequireComplete)
	assert.Equal(t, "me", q.UnmatchedWith)
	require.NotNil(t, q.Near)
	assert.Equal(t, me.Location.Coordinates, *q.Near)
	assert.Equal(t, 20.0, q.RadiusKm)
	assert.Equal(t, 200, q.Limit)
}

func TestFindPotentialMatchesPoolSkipsMatchedUsers(t *testing.T) {
	profiles := newFakeProfiles(member("me"), member("a1"), member("a2"), member("z9"))
	matches := newMemoryMatches(
		&Match{ID: "m1", InitiatorID: "me", ReceiverID: "a1", Status: StatusAccepted, IsActive: true},
		&Match{ID: "m2", InitiatorID: "a2", ReceiverID: "me", Status: StatusRejected},
	)
	profiles.matches = matches

	cfg := testMatchingConfig()
	cfg.CandidatePoolSize = 2
	matcher := NewMatcher(profiles, matches, cfg, logging.Discard())

	got, err := matcher.FindPotentialMatches(context.Background(), "me", findOpts())
	require.NoError(t, err)
	assert.Equal(t, []string{"z9"}, ids(got))
	assert.Equal(t, 2, profiles.lastQuery.Limit)
}

func TestFindPotentialMatchesWithoutLocationSkipsRadius(t *testing.T) {
	me := member("me")
	me.Location = profile.Location{}
	profiles := newFakeProfiles(me)

	_, err := newTestMatcher(profiles, newMemoryMatches()).FindPotentialMatches(context.Background(), "me", findOpts())
	require.NoError(t, err)
	assert.Nil(t, profiles.lastQuery.Near)
	assert.Zero(t, profiles.lastQuery.RadiusKm)
}

func TestFindPotentialMatchesErrors(t *testing.T) {
	storeDown := errors.New("connection refused")

	incomplete := member("me")
	incomplete.IsProfileComplete = false

	tests := []struct {
		name      string
		requester *profile.Profile
		opts      Options
		setup     func(p *fakeProfiles, m *memoryMatches)
		want      error
		category  error
	}{
		{name: "unknown requester", opts: findOpts(), want: ErrUserNotFound, category: ErrNotFound},
		{name: "incomplete profile", requester: incomplete, opts: findOpts(), want: ErrProfileIncomplete, category: ErrPreconditionFailed},
		{name: "zero distance", requester: member("me"), opts: Options{Limit: 10}, want: ErrInvalidDistance, category: ErrInvalidArgument},
		{name: "negative distance", requester: member("me"), opts: Options{MaxDistanceKm: -1, Limit: 10}, want: ErrInvalidDistance, category: ErrInvalidArgument},
		{name: "excessive distance", requester: member("me"), opts: Options{MaxDistanceKm: 101, Limit: 10}, want: ErrInvalidDistance, category: ErrInvalidArgument},
		{name: "NaN distance", requester: member("me"), opts: Options{MaxDistanceKm: math.NaN(), Limit: 10}, want: ErrInvalidDistance, category: ErrInvalidArgument},
		{name: "zero limit", requester: member("me"), opts: Options{MaxDistanceKm: 10}, want: ErrInvalidLimit, category: ErrInvalidArgument},
		{name: "excessive limit", requester: member("me"), opts: Options{MaxDistanceKm: 10, Limit: 51}, want: ErrInvalidLimit, category: ErrInvalidArgument},
		{name: "negative min score", requester: member("me"), opts: Options{MaxDistanceKm: 10, Limit: 10, MinScore: -1}, want: ErrInvalidMinScore, category: ErrInvalidArgument},
		{name: "min score above 100", requester: member("me"), opts: Options{MaxDistanceKm: 10, Limit: 10, MinScore: 101}, want: ErrInvalidMinScore, category: ErrInvalidArgument},
		{
			name: "requester lookup fails", requester: member("me"), opts: findOpts(),
			setup:    func(p *fakeProfiles, _ *memoryMatches) { p.getErr = storeDown },
			want:     storeDown,
			category: ErrUnavailable,
		},
		{
			name: "candidate fetch fails", requester: member("me"), opts: findOpts(),
			setup:    func(p *fakeProfiles, _ *memoryMatches) { p.findErr = storeDown },
			want:     storeDown,
			category: ErrUnavailable,
		},
		{
			name: "match fetch fails", requester: member("me"), opts: findOpts(),
			setup:    func(_ *fakeProfiles, m *memoryMatches) { m.listErr = storeDown },
			want:     storeDown,
			category: ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := newFakeProfiles(member("other"))
			if tt.requester != nil {
				profiles.profiles[tt.requester.ID] = tt.requester
			}
			matches := newMemoryMatches()
			if tt.setup != nil {
				tt.setup(profiles, matches)
			}

			got, err := newTestMatcher(profiles, matches).FindPotentialMatches(context.Background(), "me", tt.opts)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.category)
		})
	}
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "not_found", outcome(ErrUserNotFound))
	assert.Equal(t, "incomplete_profile", outcome(ErrProfileIncomplete))
	assert.Equal(t, "invalid_argument", outcome(ErrInvalidLimit))
	assert.Equal(t, "unavailable", outcome(unavailable("x", errors.New("boom"))))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}
