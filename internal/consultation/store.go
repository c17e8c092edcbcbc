package consultation

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("consultation session not found")

// DefaultSessionTTL is how long a finished consultation stays retrievable.
const DefaultSessionTTL = 30 * time.Minute

type session struct {
	result    Result
	expiresAt time.Time
}

// Store keeps finished consultations in memory until their TTL passes.
// Nothing is written to disk.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]session
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewStore creates a store. A non-positive ttl uses DefaultSessionTTL.
func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Save stores r under r.ID, replacing any previous entry.
func (s *Store) Save(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[r.ID] = session{result: r, expiresAt: s.now().Add(s.ttl)}
}

// Get returns the consultation stored under id.
func (s *Store) Get(id string) (Result, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || !s.now().Before(sess.expiresAt) {
		return Result{}, ErrSessionNotFound
	}
	return sess.result, nil
}

// Delete forgets id and reports whether a live session was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok && s.now().Before(sess.expiresAt)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("expired consultation sessions removed", zap.Int("removed", n))
			}
		}
	}
}
