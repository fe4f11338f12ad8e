// internal/presence/store.go

package presence

import (
	"context"
	"sort"
	"sync"
)

// Store tracks which users have at least one live connection. Connect is
// called when a websocket registers and Disconnect when it goes away.
type Store interface {
	Connect(ctx context.Context, userID, connID string) error
	Disconnect(ctx context.Context, userID, connID string) error
	// Refresh extends a connection's lease after a heartbeat
	Refresh(ctx context.Context, userID, connID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
	OnlineUsers(ctx context.Context) ([]string, error)
}

// MemoryStore is a single-process Store
type MemoryStore struct {
	mu    sync.RWMutex
	conns map[string]map[string]struct{}
}

// NewMemoryStore creates an empty in-memory presence store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{conns: make(map[string]map[string]struct{})}
}

func (s *MemoryStore) Connect(_ context.Context, userID, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.conns[userID]
	if !ok {
		set = make(map[string]struct{})
		s.conns[userID] = set
	}
	set[connID] = struct{}{}
	return nil
}

func (s *MemoryStore) Disconnect(_ context.Context, userID, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.conns[userID]
	if !ok {
		return nil
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(s.conns, userID)
	}
	return nil
}

// Refresh is a no-op; in-memory connections do not expire
func (s *MemoryStore) Refresh(context.Context, string, string) error {
	return nil
}

func (s *MemoryStore) IsOnline(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns[userID]) > 0, nil
}

func (s *MemoryStore) OnlineUsers(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.conns))
	for id := range s.conns {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}
