package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service issues opaque session keys that anchor anonymous carts. Keys are
// held in memory with a TTL; a restart invalidates them, which only costs
// guests their cart association.
type Service struct {
	mu   sync.RWMutex
	keys map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func New() *Service {
	return &Service{
		keys: make(map[string]time.Time),
		ttl:  30 * 24 * time.Hour,
		now:  time.Now,
	}
}

// Issue creates and registers a new session key.
func (s *Service) Issue() string {
	key := uuid.NewString()
	s.mu.Lock()
	s.keys[key] = s.now().Add(s.ttl)
	s.mu.Unlock()
	return key
}

// Validate reports whether the key is known and unexpired. Expired keys are
// evicted on access.
func (s *Service) Validate(key string) bool {
	s.mu.RLock()
	expiry, ok := s.keys[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if s.now().After(expiry) {
		s.mu.Lock()
		delete(s.keys, key)
		s.mu.Unlock()
		return false
	}
	return true
}

// TTLSeconds exposes the session lifetime for response payloads.
func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}
