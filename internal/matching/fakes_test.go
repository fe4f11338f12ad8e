package matching

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/imadgeboyega/fitbuddy-backend/internal/config"
	"github.com/imadgeboyega/fitbuddy-backend/internal/notification"
	"github.com/imadgeboyega/fitbuddy-backend/internal/profile"
)

type fakeProfiles struct {
	mu        sync.Mutex
	profiles  map[string]*profile.Profile
	getErr    error
	findErr   error
	lastQuery *profile.CandidateQuery
	// matches backs the UnmatchedWith predicate when set
	matches *memoryMatches
}

func newFakeProfiles(ps ...*profile.Profile) *fakeProfiles {
	f := &fakeProfiles{profiles: make(map[string]*profile.Profile)}
	for _, p := range ps {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) GetByID(_ context.Context, id string) (*profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return p, nil
}

// FindCandidates honours ExcludeID, UnmatchedWith and Limit in id order; the
// ranker is responsible for the remaining filters
func (f *fakeProfiles) FindCandidates(_ context.Context, q *profile.CandidateQuery) ([]*profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*profile.Profile
	for id, p := range f.profiles {
		if id == q.ExcludeID {
			continue
		}
		if q.UnmatchedWith != "" && f.matches != nil && f.matches.pairExists(q.UnmatchedWith, id) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

type memoryMatches struct {
	mu      sync.Mutex
	matches map[string]*Match
	listErr error
	err     error
}

func newMemoryMatches(ms ...*Match) *memoryMatches {
	r := &memoryMatches{matches: make(map[string]*Match)}
	for _, m := range ms {
		r.matches[m.ID] = m
	}
	return r
}

func (r *memoryMatches) Create(_ context.Context, m *Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	m.MatchedAt = time.Now()
	c := *m
	r.matches[m.ID] = &c
	return nil
}

func (r *memoryMatches) GetByID(_ context.Context, id string) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	m, ok := r.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	c := *m
	return &c, nil
}

func (r *memoryMatches) ExistsBetween(_ context.Context, a, b string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	for _, m := range r.matches {
		if m.Involves(a) && m.Involves(b) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryMatches) pairExists(a, b string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.matches {
		if m.Involves(a) && m.Involves(b) {
			return true
		}
	}
	return false
}

func (r *memoryMatches) ListInvolving(_ context.Context, userID string) ([]*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*Match
	for _, m := range r.matches {
		if m.Involves(userID) {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memoryMatches) ListForUser(_ context.Context, userID string, status MatchStatus) ([]*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*Match
	for _, m := range r.matches {
		if m.Involves(userID) && m.Status == status && m.IsActive {
			c := *m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryMatches) Respond(_ context.Context, id string, status MatchStatus, at time.Time) (*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	if m.Status != StatusPending || !at.Before(m.ExpiresAt) {
		return nil, ErrMatchNotPending
	}
	m.Status = status
	m.RespondedAt = &at
	c := *m
	return &c, nil
}

func (r *memoryMatches) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return ErrMatchNotFound
	}
	m.IsActive = false
	return nil
}

func (r *memoryMatches) ExpirePending(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, m := range r.matches {
		if m.Status == StatusPending && !now.Before(m.ExpiresAt) {
			m.Status = StatusExpired
			n++
		}
	}
	return n, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*notification.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg *notification.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *recordingNotifier) all() []*notification.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*notification.Notification(nil), n.sent...)
}

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		SuggestionDistanceKm: 10,
		FindDistanceKm:       20,
		MaxDistanceKm:        100,
		DefaultLimit:         10,
		MaxLimit:             50,
		MinScore:             0,
		DefaultMinAge:        18,
		DefaultMaxAge:        100,
		CandidatePoolSize:    200,
		MatchExpiry:          7 * 24 * time.Hour,
	}
}
