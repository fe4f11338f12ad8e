// internal/matching/scoring.go

package matching

import (
	"math"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/geo"
	"github.com/imadgeboyega/fitbuddy-backend/internal/common/utils"
	"github.com/imadgeboyega/fitbuddy-backend/internal/profile"
)

// Factor weights; they sum to 100
const (
	weightGoals        = 30
	weightWorkouts     = 25
	weightLevel        = 15
	weightLocation     = 20
	weightAvailability = 10
)

// neutralLevelScore is used when either fitness level is missing or unknown
const neutralLevelScore = 0.5

// SubScores holds each factor's score in [0,1]
type SubScores struct {
	Goals        float64
	Workouts     float64
	Level        float64
	Location     float64
	Availability float64
}

// Total is the weighted overall score rounded to an integer in [0,100]
func (s SubScores) Total() int {
	return int(math.Round(weightGoals*s.Goals +
		weightWorkouts*s.Workouts +
		weightLevel*s.Level +
		weightLocation*s.Location +
		weightAvailability*s.Availability))
}

// Factors scales every sub-score to 0-100 for display
func (s SubScores) Factors() CompatibilityFactors {
	return CompatibilityFactors{
		FitnessGoals:        percent(s.Goals),
		WorkoutPreferences:  percent(s.Workouts),
		ExperienceLevel:     percent(s.Level),
		LocationProximity:   percent(s.Location),
		AvailabilityOverlap: percent(s.Availability),
	}
}

// Compatibility scores a pair of profiles. Missing optional data lowers the
// affected sub-score instead of failing.
func Compatibility(a, b *profile.Profile) SubScores {
	return SubScores{
		Goals:        jaccard(a.FitnessGoals, b.FitnessGoals),
		Workouts:     jaccard(a.PreferredWorkouts, b.PreferredWorkouts),
		Level:        levelScore(a.FitnessLevel, b.FitnessLevel),
		Location:     locationScore(a.Location, b.Location),
		Availability: availabilityScore(a.Availability, b.Availability),
	}
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := mapset.NewThreadUnsafeSet(a...)
	setB := mapset.NewThreadUnsafeSet(b...)

	union := setA.Union(setB).Cardinality()
	if union == 0 {
		return 0
	}
	return float64(setA.Intersect(setB).Cardinality()) / float64(union)
}

func levelOrdinal(level string) (int, bool) {
	for i, l := range profile.FitnessLevels {
		if l == level {
			return i, true
		}
	}
	return 0, false
}

func levelScore(a, b string) float64 {
	la, okA := levelOrdinal(a)
	lb, okB := levelOrdinal(b)
	if !okA || !okB {
		return neutralLevelScore
	}
	maxGap := float64(len(profile.FitnessLevels) - 1)
	return 1 - math.Abs(float64(la-lb))/maxGap
}

func locationScore(a, b profile.Location) float64 {
	if !a.IsSet() || !b.IsSet() {
		return 0
	}
	return proximityScore(geo.DistanceKm(a.Coordinates, b.Coordinates))
}

func proximityScore(km float64) float64 {
	switch {
	case km <= 1:
		return 1
	case km <= 5:
		return 0.8
	case km <= 10:
		return 0.6
	case km <= 20:
		return 0.4
	case km <= 50:
		return 0.2
	default:
		return 0
	}
}

type window struct{ start, end int }

// weeklyWindows groups well-formed slots by day in minutes since midnight
func weeklyWindows(slots profile.Availability) (map[string][]window, int) {
	byDay := make(map[string][]window)
	n := 0
	for _, s := range slots {
		start, ok1 := utils.ParseClock(s.StartTime)
		end, ok2 := utils.ParseClock(s.EndTime)
		if !ok1 || !ok2 || s.Day == "" {
			continue
		}
		day := strings.ToLower(s.Day)
		byDay[day] = append(byDay[day], window{start, end})
		n++
	}
	return byDay, n
}

// availabilityScore counts days on which some slot of each side overlaps,
// normalized by the mean slot count of the two sides
func availabilityScore(a, b profile.Availability) float64 {
	daysA, nA := weeklyWindows(a)
	daysB, nB := weeklyWindows(b)
	if nA == 0 || nB == 0 {
		return 0
	}

	overlapDays := 0
	for day, wa := range daysA {
		if anyOverlap(wa, daysB[day]) {
			overlapDays++
		}
	}

	score := float64(overlapDays) / (float64(nA+nB) / 2)
	return math.Min(1, score)
}

func anyOverlap(a, b []window) bool {
	for _, x := range a {
		for _, y := range b {
			if x.start < y.end && y.start < x.end {
				return true
			}
		}
	}
	return false
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}
