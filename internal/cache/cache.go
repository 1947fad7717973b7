package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// Entry represents a cached dataset with its fetch time
type Entry struct {
	Value     interface{}
	Timestamp time.Time
}

// Store is a TTL cache for full-page datasets (dashboard, detailed costs,
// recommendations). The backend keeps its own cache; this one only avoids
// refetching while the user flips between views. A force refresh bypasses
// both layers.
type Store struct {
	ttl     time.Duration
	entries sync.Map
}

// New creates a dataset cache with the given TTL.
func New(ttl time.Duration) *Store {
	return &Store{ttl: ttl}
}

// Key generates a cache key for an endpoint and user.
func Key(endpoint string, userID int) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte(fmt.Sprintf("/%d", userID)))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get returns the cached value if present and not expired.
func (s *Store) Get(key string) (interface{}, bool) {
	val, ok := s.entries.Load(key)
	if !ok {
		return nil, false
	}
	entry := val.(Entry)
	if time.Since(entry.Timestamp) > s.ttl {
		s.entries.Delete(key)
		return nil, false
	}
	return entry.Value, true
}

// Put stores a value under the key.
func (s *Store) Put(key string, value interface{}) {
	s.entries.Store(key, Entry{
		Value:     value,
		Timestamp: time.Now(),
	})
}

// Invalidate removes a cached entry, used when a force refresh is requested.
func (s *Store) Invalidate(key string) {
	s.entries.Delete(key)
}
