package ratelimit

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Endpoint categories with distinct budgets. Anything else falls back to the
// default rate.
const (
	CategoryDefault = "default"
	CategoryContact = "contact"
	CategoryUpload  = "upload"
)

// maxIdle is how long a limiter may sit unused before cleanup removes it.
const maxIdle = 30 * time.Minute

// Store manages limiters keyed by client identity and endpoint category, so
// one chatty client cannot starve another and a client throttled on the
// contact form can still browse.
type Store struct {
	// limiters maps "category|clientID" to the client's bucket
	limiters map[string]*Limiter

	// rates defines the budget per category
	rates map[string]Rate

	// mu protects concurrent access to the limiters map
	mu sync.RWMutex

	// cleanupInterval is how often idle limiters are evicted
	cleanupInterval time.Duration
}

// NewStore creates a store with the given default rate and starts the
// background eviction of idle limiters.
func NewStore(defaultRate Rate, cleanupInterval time.Duration) *Store {
	store := &Store{
		limiters:        make(map[string]*Limiter),
		rates:           make(map[string]Rate),
		cleanupInterval: cleanupInterval,
	}

	store.rates[CategoryDefault] = defaultRate

	go store.cleanupRoutine()

	return store
}

// GetLimiter returns the limiter for the given client and category, creating
// one at the category's rate on first sight.
func (s *Store) GetLimiter(clientID string, category string) *Limiter {
	key := category + "|" + clientID

	s.mu.RLock()
	limiter, exists := s.limiters[key]
	s.mu.RUnlock()

	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have created it while we upgraded the lock.
	if limiter, exists = s.limiters[key]; exists {
		return limiter
	}

	rate, ok := s.rates[category]
	if !ok {
		rate = s.rates[CategoryDefault]
	}

	limiter = NewLimiter(rate.RequestsPerSecond, rate.Burst)
	s.limiters[key] = limiter
	return limiter
}

// SetRate sets the budget for a category. New limiters in that category pick
// it up; existing ones keep their original rate until evicted.
func (s *Store) SetRate(category string, rate Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[category] = rate
}

// cleanupRoutine periodically evicts idle limiters. Runs for the life of the
// process.
func (s *Store) cleanupRoutine() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.cleanup()
	}
}

// cleanup drops limiters that have not been consulted within maxIdle, so
// one-time clients do not accumulate forever.
func (s *Store) cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, limiter := range s.limiters {
		if limiter.idleSince(now) > maxIdle {
			delete(s.limiters, key)
			removed++
		}
	}

	if removed > 0 {
		log.Debug().Int("evicted", removed).Int("remaining", len(s.limiters)).Msg("Rate limiter cleanup")
	}
}
