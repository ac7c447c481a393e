// Package session holds uploaded datasets as process-local,
// session-scoped state. Nothing is persisted: a dataset lives from
// upload until replacement, expiry, or shutdown.
package session

import (
	"errors"
	"sync"
	"time"

	"ridepulse/internal/pipeline"
)

// ErrStoreFull is returned when the live-session cap is reached and no
// entry could be evicted.
var ErrStoreFull = errors.New("session store is full")

type entry struct {
	dataset    *pipeline.Dataset
	lastAccess time.Time
}

// Store is a TTL-bound in-memory dataset store. Reads refresh the TTL,
// uploads into an existing session replace the dataset in place.
type Store struct {
	mu          sync.Mutex
	entries     map[string]*entry
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
}

func NewStore(ttl time.Duration, maxSessions int) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxSessions <= 0 {
		maxSessions = 64
	}
	return &Store{
		entries:     make(map[string]*entry),
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

func (s *Store) Get(id string) (*pipeline.Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.lastAccess) > s.ttl {
		delete(s.entries, id)
		return nil, false
	}
	e.lastAccess = s.now()
	return e.dataset, true
}

func (s *Store) Put(id string, ds *pipeline.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked()

	if _, exists := s.entries[id]; !exists && len(s.entries) >= s.maxSessions {
		if !s.evictOldestLocked() {
			return ErrStoreFull
		}
	}

	s.entries[id] = &entry{dataset: ds, lastAccess: s.now()}
	return nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) evictExpiredLocked() {
	now := s.now()
	for id, e := range s.entries {
		if now.Sub(e.lastAccess) > s.ttl {
			delete(s.entries, id)
		}
	}
}

func (s *Store) evictOldestLocked() bool {
	var oldestID string
	var oldest time.Time
	for id, e := range s.entries {
		if oldestID == "" || e.lastAccess.Before(oldest) {
			oldestID = id
			oldest = e.lastAccess
		}
	}
	if oldestID == "" {
		return false
	}
	delete(s.entries, oldestID)
	return true
}
