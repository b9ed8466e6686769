// Package session keeps visible commit graphs alive between HTTP requests.
//
// A session owns one uploaded commit log: the permanent graph built from it,
// the commit metadata, and the current view. Views can be rebuilt with a
// different sort or filter without rebuilding the permanent graph, so the
// Bek order and reachability index are computed once per session.
//
// # Usage
//
//	store := session.NewMemoryStore(0)
//	sess := session.New(log, permanent, view, session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, session.ErrExpired) || sess == nil {
//	    // gone
//	}
//
// Every successful Get extends the session's lifetime by its TTL.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/commitgraph/pkg/graph"
	"github.com/matzehuels/commitgraph/pkg/visible"
)

// ErrExpired is returned when a session has exceeded its TTL.
var ErrExpired = errors.New("expired")

// DefaultTTL is the default idle lifetime of a session.
const DefaultTTL = time.Hour

// Session is one uploaded commit log and its current view.
type Session struct {
	ID        string
	Log       *graph.Log
	Permanent *visible.Permanent[string]
	CreatedAt time.Time

	ttl       time.Duration
	expiresAt atomic.Int64

	mu   sync.RWMutex
	view *visible.Graph[string]
	// index maps commit ids to their metadata.
	index map[string]*graph.Commit
}

// New creates a session with a fresh id.
func New(l *graph.Log, p *visible.Permanent[string], view *visible.Graph[string], ttl time.Duration) *Session {
	now := time.Now()
	s := &Session{
		ID:        GenerateID(),
		Log:       l,
		Permanent: p,
		CreatedAt: now,
		ttl:       ttl,
		view:      view,
		index:     l.Index(),
	}
	s.touch(now)
	return s
}

// GenerateID returns a random session id.
func GenerateID() string {
	return uuid.NewString()
}

// View returns the current view.
func (s *Session) View() *visible.Graph[string] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetView replaces the current view.
func (s *Session) SetView(v *visible.Graph[string]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// Commits returns the metadata index of the session's log.
func (s *Session) Commits() map[string]*graph.Commit { return s.index }

// ExpiresAt returns when the session expires unless used again.
func (s *Session) ExpiresAt() time.Time {
	return time.Unix(0, s.expiresAt.Load())
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s.isExpiredAt(time.Now())
}

func (s *Session) isExpiredAt(now time.Time) bool {
	return now.UnixNano() > s.expiresAt.Load()
}

func (s *Session) touch(now time.Time) {
	s.expiresAt.Store(now.Add(s.ttl).UnixNano())
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID and extends its lifetime.
	// Returns nil, nil if the session doesn't exist.
	// Returns nil, ErrExpired if the session exists but has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}
