// Package auth issues session tokens and keeps the registry of live sessions.
package auth

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/jonboulle/clockwork"

	"weight_tracker/internal/domain"
)

// ErrSessionNotFound is returned for unknown, revoked or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionRegistry tracks which sessions are currently logged in.
type SessionRegistry interface {
	// Save records a session until its ExpiresAt.
	Save(ctx context.Context, sess domain.Session) error
	// Lookup returns the live session with the given ID or ErrSessionNotFound.
	Lookup(ctx context.Context, id string) (domain.Session, error)
	// Revoke forgets the session. Revoking an unknown ID is not an error.
	Revoke(ctx context.Context, id string) error
}

// Ensure MemorySessions implements SessionRegistry
var _ SessionRegistry = (*MemorySessions)(nil)

// MemorySessions is a process-local SessionRegistry.
type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	clock    clockwork.Clock
}

func NewMemorySessions(clock clockwork.Clock) *MemorySessions {
	return &MemorySessions{
		sessions: make(map[string]domain.Session),
		clock:    clock,
	}
}

// Save records the session and drops any that have already expired
func (s *MemorySessions) Save(_ context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	maps.DeleteFunc(s.sessions, func(_ string, old domain.Session) bool {
		return old.Expired(now)
	})
	if !sess.Expired(now) {
		s.sessions[sess.ID] = sess
	}
	return nil
}

func (s *MemorySessions) Lookup(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Session{}, ErrSessionNotFound
	}
	if sess.Expired(s.clock.Now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return domain.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (s *MemorySessions) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
