// internal/matching/filters.go

package matching

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/imadgeboyega/fitbuddy-backend/internal/common/geo"
	"github.com/imadgeboyega/fitbuddy-backend/internal/profile"
)

// eligibility holds the hard filters for one requester. A candidate that
// fails any of them is never scored.
type eligibility struct {
	requester     *profile.Profile
	excluded      mapset.Set[string]
	maxDistanceKm float64
	minAge        int
	maxAge        int // 0 means unbounded
}

func newEligibility(requester *profile.Profile, matches []*Match, opts Options) *eligibility {
	excluded := mapset.NewThreadUnsafeSet[string]()
	for _, m := range matches {
		if m.Involves(requester.ID) {
			excluded.Add(m.Counterpart(requester.ID))
		}
	}

	minAge, maxAge := opts.DefaultMinAge, opts.DefaultMaxAge
	if requester.PreferredAgeMin != nil {
		minAge = *requester.PreferredAgeMin
	}
	if requester.PreferredAgeMax != nil {
		maxAge = *requester.PreferredAgeMax
	}

	return &eligibility{
		requester:     requester,
		excluded:      excluded,
		maxDistanceKm: opts.MaxDistanceKm,
		minAge:        minAge,
		maxAge:        maxAge,
	}
}

// allows reports whether c passes every hard filter
func (e *eligibility) allows(c *profile.Profile) bool {
	return c.ID != e.requester.ID &&
		c.IsActive && c.AccountStatus == profile.AccountStatusActive &&
		c.IsProfileComplete &&
		e.genderMatches(c) &&
		e.ageMatches(c) &&
		e.withinDistance(c) &&
		!e.excluded.Contains(c.ID) &&
		c.UserType == profile.UserTypeUser
}

func (e *eligibility) genderMatches(c *profile.Profile) bool {
	pref := e.requester.PreferredGender
	if pref == "" || pref == profile.PreferredGenderAny {
		return true
	}
	return c.Gender == pref
}

func (e *eligibility) ageMatches(c *profile.Profile) bool {
	if c.Age == nil {
		return false
	}
	if *c.Age < e.minAge {
		return false
	}
	return e.maxAge == 0 || *c.Age <= e.maxAge
}

// withinDistance is skipped when the requester has no location
func (e *eligibility) withinDistance(c *profile.Profile) bool {
	if !e.requester.Location.IsSet() {
		return true
	}
	if !c.Location.IsSet() {
		return false
	}
	return geo.DistanceKm(e.requester.Location.Coordinates, c.Location.Coordinates) <= e.maxDistanceKm
}
