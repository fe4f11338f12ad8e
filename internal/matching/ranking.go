// internal/matching/ranking.go

package matching

import (
	"sort"

	"github.com/imadgeboyega/fitbuddy-backend/internal/profile"
)

// Rank applies the hard filters to candidates, scores the survivors against
// requester and returns at most opts.Limit of them with score >= opts.MinScore,
// best first. Equal scores are ordered by candidate id. Rank does no I/O.
func Rank(requester *profile.Profile, candidates []*profile.Profile, matches []*Match, opts Options) []*ScoredCandidate {
	filter := newEligibility(requester, matches, opts)

	ranked := make([]*ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || !filter.allows(c) {
			continue
		}
		sub := Compatibility(requester, c)
		score := sub.Total()
		if score < opts.MinScore {
			continue
		}
		ranked = append(ranked, &ScoredCandidate{
			User:    c.Public(),
			Score:   score,
			Details: sub.Factors(),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].User.ID < ranked[j].User.ID
	})

	if opts.Limit > 0 && len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}
	return ranked
}
