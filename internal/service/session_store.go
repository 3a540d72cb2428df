package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bookstore_api/internal/utils"
)

// SessionStore holds the in-memory location selections of open checkouts.
// Sessions are not persisted; a restart starts every checkout from Idle.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]*LocationSelection
	directory LocationDirectory
	quoter    CartQuoter
}

// NewSessionStore creates an empty store.
func NewSessionStore(directory LocationDirectory, quoter CartQuoter) *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]*LocationSelection),
		directory: directory,
		quoter:    quoter,
	}
}

// Create registers a new selection and starts it. The session is kept even
// when Start fails so the caller can read its error state.
func (s *SessionStore) Create(ctx context.Context) (*LocationSelection, error) {
	sel := NewLocationSelection(uuid.New().String(), s.directory, s.quoter)

	s.mu.Lock()
	s.sessions[sel.ID()] = sel
	s.mu.Unlock()

	return sel, sel.Start(ctx)
}

// Get returns a session by id.
func (s *SessionStore) Get(id string) (*LocationSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sel, ok := s.sessions[id]
	if !ok {
		return nil, utils.ErrSessionNotFound
	}
	return sel, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return utils.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of open sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many.
func (s *SessionStore) Sweep(now time.Time, maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sel := range s.sessions {
		if sel.IdleSince(now) > maxIdle {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Int("remaining", len(s.sessions)).Msg("Checkout sessions swept")
	}
	return removed
}
