// Package cache is the in-process TTL store for resolved rate quotes.
package cache

import (
	"sync"
	"time"

	"github.com/moedaspro/conversor/internal/entities"
)

type entry struct {
	quote     entities.RateQuote
	expiresAt time.Time
}

// Store keeps the most recent known-good quote per currency pair. Entries are
// replaced on re-fetch, never mutated in place, and expire lazily on read.
type Store struct {
	mu      sync.RWMutex
	entries map[entities.RatePair]entry
}

func New() *Store {
	return &Store{
		entries: make(map[entities.RatePair]entry),
	}
}

// Get returns the quote for pair if an unexpired entry exists. Expired
// entries behave as absent; the next Put overwrites them.
func (s *Store) Get(pair entities.RatePair) (entities.RateQuote, bool) {
	s.mu.RLock()
	e, ok := s.entries[pair]
	s.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return entities.RateQuote{}, false
	}

	return e.quote, true
}

// Put inserts or overwrites the entry for pair with expiry now+ttl. A
// non-positive ttl skips storage entirely, making every read a miss.
func (s *Store) Put(pair entities.RatePair, quote entities.RateQuote, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	s.mu.Lock()
	s.entries[pair] = entry{quote: quote, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
}

// Invalidate removes any entry for pair, forcing the next resolution through
// the provider chain.
func (s *Store) Invalidate(pair entities.RatePair) {
	s.mu.Lock()
	delete(s.entries, pair)
	s.mu.Unlock()
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[entities.RatePair]entry)
	s.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
