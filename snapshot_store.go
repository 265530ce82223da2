package dialoguesdk

import (
	"context"
	"errors"
	"sync"
)

// ──────────────────────────────────────────────
// SessionStore — pluggable snapshot persistence
// ──────────────────────────────────────────────

// ErrSnapshotNotFound is returned by Load for unknown session ids.
var ErrSnapshotNotFound = errors.New("session snapshot not found")

// SessionStore persists session snapshots so a session can be recovered
// after a restart. Implementations must be safe for concurrent use.
type SessionStore interface {
	Save(ctx context.Context, snap *SessionSnapshot) error
	Load(ctx context.Context, sessionID string) (*SessionSnapshot, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

// InMemorySessionStore is a thread-safe in-memory SessionStore for
// development and tests. Data is lost on restart.
type InMemorySessionStore struct {
	mu    sync.RWMutex
	snaps map[string]*SessionSnapshot
}

// NewInMemorySessionStore creates an empty in-memory store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{snaps: make(map[string]*SessionSnapshot)}
}

func (s *InMemorySessionStore) Save(_ context.Context, snap *SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.ID] = snap
	return nil
}

func (s *InMemorySessionStore) Load(_ context.Context, sessionID string) (*SessionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[sessionID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return snap, nil
}

func (s *InMemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, sessionID)
	return nil
}

func (s *InMemorySessionStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.snaps))
	for id := range s.snaps {
		ids = append(ids, id)
	}
	return ids, nil
}
