// Package cache holds the single cached dataset slot.
package cache

import (
	"sync/atomic"
	"time"

	"github.com/at-ishikawa/eventcal/internal/event"
)

const DefaultTTL = 5 * time.Minute

// Entry is a cached dataset and the time it stops being fresh.
type Entry struct {
	Dataset   event.Dataset
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Store keeps at most one Entry. A Put replaces the entry as a whole, and
// nothing removes it, so an expired entry stays readable as a fallback.
// Store is safe for concurrent use.
type Store struct {
	entry atomic.Pointer[Entry]
	ttl   time.Duration
	now   func() time.Time
}

func NewStore(ttl time.Duration, now func() time.Time) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		ttl: ttl,
		now: now,
	}
}

// Get returns the current entry whether or not it is fresh.
func (s *Store) Get() (*Entry, bool) {
	entry := s.entry.Load()
	return entry, entry != nil
}

// IsFresh reports whether the entry has not expired yet.
func (s *Store) IsFresh(entry *Entry) bool {
	return entry != nil && s.now().Before(entry.ExpiresAt)
}

// Put replaces the entry with the dataset, expiring after the TTL.
// An empty dataset is not stored, so the next read fetches again.
// It reports whether the dataset was stored.
func (s *Store) Put(dataset event.Dataset) bool {
	if dataset.IsEmpty() {
		return false
	}
	now := s.now()
	s.entry.Store(&Entry{
		Dataset:   dataset,
		StoredAt:  now,
		ExpiresAt: now.Add(s.ttl),
	})
	return true
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}
