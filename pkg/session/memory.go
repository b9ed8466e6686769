package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory.
//
// Visible graphs hold their whole permanent graph, so sessions cannot be
// shared between instances; route clients to the instance that created
// their session.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	max      int
	now      func() time.Time
}

// NewMemoryStore returns an empty store holding at most max sessions.
// A max of zero means unlimited. When full, Set evicts the session closest
// to expiry.
func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		max:      max,
		now:      time.Now,
	}
}

// Get returns the session with sessionID.
func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	now := m.now()
	if s.isExpiredAt(now) {
		delete(m.sessions, sessionID)
		return nil, ErrExpired
	}
	s.touch(now)
	return s, nil
}

// Set stores s, evicting the session closest to expiry if the store is full.
func (m *MemoryStore) Set(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; !ok && m.max > 0 && len(m.sessions) >= m.max {
		var victim *Session
		for _, c := range m.sessions {
			if victim == nil || c.expiresAt.Load() < victim.expiresAt.Load() {
				victim = c
			}
		}
		delete(m.sessions, victim.ID)
	}
	m.sessions[s.ID] = s
	return nil
}

// Delete removes the session with sessionID.
func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// Cleanup removes expired sessions.
func (m *MemoryStore) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, s := range m.sessions {
		if s.isExpiredAt(now) {
			delete(m.sessions, id)
		}
	}
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

var _ Store = (*MemoryStore)(nil)
