package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/geo"
	"github.com/imadgeboyega/fitbuddy-backend/internal/profile"
)

func slot(day, start, end string) profile.TimeSlot {
	return profile.TimeSlot{Day: day, StartTime: start, EndTime: end}
}

func at(lng, lat float64) profile.Location {
	return profile.Location{Coordinates: geo.NewPoint(lng, lat)}
}

func TestCompatibilityThreeKilometrePartner(t *testing.T) {
	requester := &profile.Profile{
		FitnessGoals:      []string{"weight_loss", "endurance"},
		PreferredWorkouts: []string{"running", "cycling"},
		FitnessLevel:      "intermediate",
		Location:          at(3.0, 6.0),
		Availability: profile.Availability{
			slot("monday", "06:00", "07:00"),
			slot("wednesday", "18:00", "19:00"),
		},
	}
	candidate := &profile.Profile{
		FitnessGoals:      []string{"weight_loss"},
		PreferredWorkouts: []string{"cycling", "yoga"},
		FitnessLevel:      "intermediate",
		// ~3km north
		Location:     at(3.0, 6.027),
		Availability: profile.Availability{slot("monday", "06:30", "07:30")},
	}

	sub := Compatibility(requester, candidate)
	assert.InDelta(t, 0.5, sub.Goals, 1e-9)
	assert.InDelta(t, 1.0/3, sub.Workouts, 1e-9)
	assert.Equal(t, 1.0, sub.Level)
	assert.Equal(t, 0.8, sub.Location)
	assert.InDelta(t, 2.0/3, sub.Availability, 1e-9)
	assert.Equal(t, 61, sub.Total())

	assert.Equal(t, CompatibilityFactors{
		FitnessGoals:        50,
		WorkoutPreferences:  33,
		ExperienceLevel:     100,
		LocationProximity:   80,
		AvailabilityOverlap: 67,
	}, sub.Factors())
}

func TestCompatibilityIsSymmetric(t *testing.T) {
	a := &profile.Profile{
		FitnessGoals:      []string{"strength", "mobility", "endurance"},
		PreferredWorkouts: []string{"weights"},
		FitnessLevel:      "beginner",
		Location:          at(-0.12, 51.5),
		Availability:      profile.Availability{slot("friday", "07:00", "08:00"), slot("sunday", "10:00", "11:00")},
	}
	b := &profile.Profile{
		FitnessGoals:      []string{"strength"},
		PreferredWorkouts: []string{"weights", "swimming"},
		FitnessLevel:      "advanced",
		Location:          at(-0.10, 51.52),
		Availability:      profile.Availability{slot("Friday", "07:30", "09:00")},
	}

	ab := Compatibility(a, b)
	ba := Compatibility(b, a)
	assert.Equal(t, ab.Goals, ba.Goals)
	assert.Equal(t, ab.Workouts, ba.Workouts)
	assert.Equal(t, ab.Level, ba.Level)
	assert.Equal(t, ab.Location, ba.Location)
	assert.Equal(t, ab.Availability, ba.Availability)
	assert.Equal(t, ab.Total(), ba.Total())
}

func TestSubScoresStayInRange(t *testing.T) {
	profiles := []*profile.Profile{
		{},
		{FitnessGoals: []string{"a"}, FitnessLevel: "professional", Location: at(1, 1)},
		{FitnessGoals: []string{"a", "a", "b"}, PreferredWorkouts: []string{"x"}, FitnessLevel: "beginner"},
		{
			FitnessLevel: "unknown",
			Location:     at(179.9, -45),
			Availability: profile.Availability{
				slot("monday", "00:00", "23:59"),
				slot("monday", "01:00", "02:00"),
				slot("tuesday", "25:00", "26:00"),
			},
		},
		{
			Location:     at(179.95, -45.01),
			Availability: profile.Availability{slot("monday", "00:30", "01:30"), slot("MONDAY", "05:00", "06:00")},
		},
	}

	for _, a := range profiles {
		for _, b := range profiles {
			sub := Compatibility(a, b)
			for _, v := range []float64{sub.Goals, sub.Workouts, sub.Level, sub.Location, sub.Availability} {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
			assert.GreaterOrEqual(t, sub.Total(), 0)
			assert.LessOrEqual(t, sub.Total(), 100)
		}
	}
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 0.0, jaccard(nil, []string{"a"}))
	assert.Equal(t, 0.0, jaccard([]string{"a"}, []string{}))
	assert.Equal(t, 1.0, jaccard([]string{"a", "b"}, []string{"b", "a"}))
	assert.Equal(t, 0.0, jaccard([]string{"a"}, []string{"b"}))
	// duplicates collapse
	assert.InDelta(t, 0.5, jaccard([]string{"a", "a", "b"}, []string{"a"}), 1e-9)
}

func TestLevelScore(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"intermediate", "intermediate", 1},
		{"beginner", "professional", 0},
		{"beginner", "intermediate", 2.0 / 3},
		{"advanced", "intermediate", 2.0 / 3},
		{"beginner", "advanced", 1.0 / 3},
		{"", "advanced", 0.5},
		{"elite", "advanced", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, levelScore(tt.a, tt.b), 1e-9)
		})
	}
}

func TestLocationScore(t *testing.T) {
	origin := at(3.0, 6.0)

	assert.Equal(t, 1.0, locationScore(origin, origin))
	assert.Equal(t, 0.0, locationScore(origin, profile.Location{}))
	assert.Equal(t, 0.0, locationScore(profile.Location{}, profile.Location{}))
	// ~111km
	assert.Equal(t, 0.0, locationScore(origin, at(3.0, 7.0)))

	buckets := []struct {
		km   float64
		want float64
	}{
		{0, 1}, {1, 1}, {1.01, 0.8}, {5, 0.8}, {7.5, 0.6}, {10, 0.6},
		{15, 0.4}, {20, 0.4}, {49.9, 0.2}, {50, 0.2}, {50.1, 0}, {500, 0},
	}
	for _, b := range buckets {
		assert.Equal(t, b.want, proximityScore(b.km), "%.2fkm", b.km)
	}
}

func TestAvailabilityScore(t *testing.T) {
	tests := []struct {
		name string
		a, b profile.Availability
		want float64
	}{
		{
			name: "either side empty",
			a:    profile.Availability{slot("monday", "06:00", "07:00")},
			want: 0,
		},
		{
			name: "same slot",
			a:    profile.Availability{slot("monday", "06:00", "07:00")},
			b:    profile.Availability{slot("monday", "06:00", "07:00")},
			want: 1,
		},
		{
			name: "touching edges do not overlap",
			a:    profile.Availability{slot("monday", "06:00", "07:00")},
			b:    profile.Availability{slot("monday", "07:00", "08:00")},
			want: 0,
		},
		{
			name: "different days",
			a:    profile.Availability{slot("monday", "06:00", "07:00")},
			b:    profile.Availability{slot("tuesday", "06:00", "07:00")},
			want: 0,
		},
		{
			name: "one overlap counted per day",
			a:    profile.Availability{slot("monday", "06:00", "07:00"), slot("monday", "18:00", "19:00")},
			b:    profile.Availability{slot("monday", "06:30", "18:30")},
			want: 1.0 / 1.5,
		},
		{
			name: "day names are case-insensitive",
			a:    profile.Availability{slot("Monday", "06:00", "07:00")},
			b:    profile.Availability{slot("monday", "06:30", "07:30")},
			want: 1,
		},
		{
			name: "malformed slots are ignored",
			a:    profile.Availability{slot("monday", "06:00", "07:00"), slot("monday", "6am", "7am")},
			b:    profile.Availability{slot("monday", "06:30", "07:30")},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, availabilityScore(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, availabilityScore(tt.b, tt.a), 1e-9)
		})
	}
}

func TestEmptyGoalsScoreZero(t *testing.T) {
	a := &profile.Profile{FitnessGoals: []string{"strength"}}
	b := &profile.Profile{}

	sub := Compatibility(a, b)
	require.Equal(t, 0.0, sub.Goals)
	assert.Equal(t, 0.0, Compatibility(b, b).Goals)
}
