// internal/matching/matcher.go

package matching

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/imadgeboyega/fitbuddy-backend/internal/config"
	"github.com/imadgeboyega/fitbuddy-backend/internal/profile"
)

// ProfileSource is the slice of the profile store the matcher reads
type ProfileSource interface {
	GetByID(ctx context.Context, id string) (*profile.Profile, error)
	FindCandidates(ctx context.Context, q *profile.CandidateQuery) ([]*profile.Profile, error)
}

// MatchLister returns every match a user is part of
type MatchLister interface {
	ListInvolving(ctx context.Context, userID string) ([]*Match, error)
}

// Matcher ranks potential workout partners for a requester
type Matcher struct {
	profiles ProfileSource
	matches  MatchLister
	cfg      config.MatchingConfig
	logger   *slog.Logger
}

// NewMatcher creates a matcher over the given stores
func NewMatcher(profiles ProfileSource, matches MatchLister, cfg config.MatchingConfig, logger *slog.Logger) *Matcher {
	return &Matcher{profiles: profiles, matches: matches, cfg: cfg, logger: logger}
}

// FindPotentialMatches loads the requester, fetches the candidate pool and the
// requester's existing matches concurrently, and ranks the pool. Any store
// failure fails the whole call.
func (m *Matcher) FindPotentialMatches(ctx context.Context, requesterID string, opts Options) (result []*ScoredCandidate, err error) {
	start := time.Now()
	evaluated := 0
	defer func() {
		recordSuggestion(outcome(err), evaluated, result, time.Since(start))
	}()

	requester, err := m.profiles.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, unavailable("load requester", err)
	}
	if !requester.IsProfileComplete {
		return nil, ErrProfileIncomplete
	}

	opts = m.withDefaults(opts)
	if err := m.validate(opts); err != nil {
		return nil, err
	}

	var (
		candidates []*profile.Profile
		existing   []*Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = m.profiles.FindCandidates(gctx, m.candidateQuery(requester, opts))
		if err != nil {
			return unavailable("fetch candidates", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		existing, err = m.matches.ListInvolving(gctx, requester.ID)
		if err != nil {
			return unavailable("fetch existing matches", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	evaluated = len(candidates)
	result = Rank(requester, candidates, existing, opts)

	m.logger.Debug("ranked candidates",
		slog.String("user_id", requester.ID),
		slog.Int("candidates", evaluated),
		slog.Int("excluded_matches", len(existing)),
		slog.Int("returned", len(result)))

	return result, nil
}

func (m *Matcher) withDefaults(opts Options) Options {
	if opts.DefaultMinAge == 0 {
		opts.DefaultMinAge = m.cfg.DefaultMinAge
	}
	if opts.DefaultMaxAge == 0 {
		opts.DefaultMaxAge = m.cfg.DefaultMaxAge
	}
	return opts
}

func (m *Matcher) validate(opts Options) error {
	if !(opts.MaxDistanceKm > 0 && opts.MaxDistanceKm <= m.cfg.MaxDistanceKm) {
		return ErrInvalidDistance
	}
	if opts.Limit <= 0 || opts.Limit > m.cfg.MaxLimit {
		return ErrInvalidLimit
	}
	if opts.MinScore < 0 || opts.MinScore > 100 {
		return ErrInvalidMinScore
	}
	return nil
}

// candidateQuery pushes the hard filters down to the store, existing matches
// included, so the pool limit only counts eligible rows. Rank still applies
// every filter to what comes back.
func (m *Matcher) candidateQuery(requester *profile.Profile, opts Options) *profile.CandidateQuery {
	f := newEligibility(requester, nil, opts)

	q := &profile.CandidateQuery{
		ExcludeID:       requester.ID,
		UserType:        profile.UserTypeUser,
		RequireActive:   true,
		RequireComplete: true,
		UnmatchedWith:   requester.ID,
		MinAge:          f.minAge,
		MaxAge:          f.maxAge,
		Limit:           m.cfg.CandidatePoolSize,
	}
	if pref := requester.PreferredGender; pref != "" && pref != profile.PreferredGenderAny {
		q.Gender = pref
	}
	if requester.Location.IsSet() {
		center := requester.Location.Coordinates
		q.Near = &center
		q.RadiusKm = opts.MaxDistanceKm
	}
	return q
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrPreconditionFailed):
		return "incomplete_profile"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
