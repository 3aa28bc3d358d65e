package registry

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"codepair/internal/metrics"
	"codepair/internal/models"
)

// ErrNotFound reports an operation against a session id the store does
// not hold.
var ErrNotFound = errors.New("session not found")

// Store is the in-memory session registry. All methods are safe for
// concurrent use; lookups return value copies so callers never alias a
// record the store may mutate later.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	ttl      time.Duration
	log      *zap.Logger
}

// NewStore builds an empty registry whose records expire after ttl of
// inactivity. A non-positive ttl falls back to DefaultSessionTTL.
func NewStore(ttl time.Duration, log *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
		log:      log,
	}
}

// Create inserts a fresh session under id and returns a copy of it.
// Callers supply unique ids; a colliding id overwrites the existing
// record, which is surfaced in the log but is not an error.
func (s *Store) Create(id string) models.Session {
	now := time.Now()
	session := &models.Session{
		ID:           id,
		Code:         models.DefaultCode,
		Language:     models.DefaultLanguage,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	s.mu.Lock()
	if _, exists := s.sessions[id]; exists {
		s.log.Warn("session id collision, overwriting record", zap.String("session_id", id))
	}
	s.sessions[id] = session
	size := len(s.sessions)
	s.mu.Unlock()

	metrics.SessionsCreated.Inc()
	metrics.SessionsActive.Set(float64(size))
	return *session
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(id string) (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return models.Session{}, false
	}
	return *session, true
}

// UpdateCode replaces the session's code buffer verbatim (the empty
// string is a valid buffer) and bumps its activity timestamp.
func (s *Store) UpdateCode(id, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	session.Code = code
	session.LastActiveAt = time.Now()
	return nil
}

// UpdateLanguage replaces the session's language and bumps its activity
// timestamp. The store does not validate the value; the protocol layer
// rejects unknown languages before calling in.
func (s *Store) UpdateLanguage(id string, lang models.Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	session.Language = lang
	session.LastActiveAt = time.Now()
	return nil
}

// Exists reports whether a session with the given id is held.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

// Count returns the number of sessions currently held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SweepExpired removes every session idle longer than the store's ttl
// and returns how many were removed. Records that predate the activity
// timestamp fall back to their creation time.
func (s *Store) SweepExpired() int {
	now := time.Now()

	s.mu.Lock()
	var removed int
	for id, session := range s.sessions {
		last := session.LastActiveAt
		if last.IsZero() {
			last = session.CreatedAt
		}
		if now.Sub(last) >= s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	size := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		metrics.SessionsSwept.Add(float64(removed))
	}
	metrics.SessionsActive.Set(float64(size))
	return removed
}
