package engine

import (
	"sync"
	"time"
)

// Candidate is a discoverable profile as presented by the discovery deck.
// Immutable for the duration of a session; a refresh swaps the whole pool.
type Candidate struct {
	ID           uint64
	DisplayName  string
	Age          int
	Gender       string
	AudienceType string
	State        string
	City         string
	Interests    []string
	MediaRef     string
	Verified     bool
	LastActiveAt time.Time
}

// Store holds the fetched candidate pool. The pool is read-only between
// refreshes; Swap replaces it atomically.
type Store struct {
	mu   sync.RWMutex
	pool []Candidate
}

func NewStore(pool []Candidate) *Store {
	return &Store{pool: pool}
}

// Swap atomically replaces the candidate pool.
func (s *Store) Swap(pool []Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool = pool
}

// All returns a copy of the current pool.
func (s *Store) All() []Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Candidate, len(s.pool))
	copy(out, s.pool)
	return out
}

// Len returns the pool size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pool)
}
