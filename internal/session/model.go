// Package session implements anonymous viewing sessions: short-lived,
// request-budgeted grants that gate access to protected gallery images.
// Sessions live only in the cache; losing the cache logs every viewer out
// and nothing else.
package session

import (
	"time"
)

// ViewingSession is the cached state of one anonymous viewer.
type ViewingSession struct {
	Token         string    `json:"token"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	ClientIP      string    `json:"client_ip"`
	UserAgent     string    `json:"user_agent"`
	ImageRequests int       `json:"image_requests"`
	MaxRequests   int       `json:"max_requests"`
	IsActive      bool      `json:"is_active"`
}

// IsExpired reports whether the session's deadline has passed.
func (s *ViewingSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// QuotaExceeded reports whether the session has used up its image budget.
func (s *ViewingSession) QuotaExceeded() bool {
	return s.ImageRequests >= s.MaxRequests
}

// RemainingRequests returns how many image requests the session has left.
func (s *ViewingSession) RemainingRequests() int {
	remaining := s.MaxRequests - s.ImageRequests
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingTime returns how long until the session expires, never negative.
func (s *ViewingSession) RemainingTime(now time.Time) time.Duration {
	remaining := s.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Stats is the read-only usage summary exposed to session holders.
type Stats struct {
	Token             string    `json:"token"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
	ImageRequests     int       `json:"image_requests"`
	MaxRequests       int       `json:"max_requests"`
	RemainingRequests int       `json:"remaining_requests"`
	ExpiresInSeconds  int64     `json:"expires_in_seconds"`
	IsActive          bool      `json:"is_active"`
}
