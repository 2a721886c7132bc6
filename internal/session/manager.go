package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/amanksolutions/galleryguard/internal/cache"
	"github.com/amanksolutions/galleryguard/internal/config"
	"github.com/amanksolutions/galleryguard/internal/constants"
)

// Validation outcomes. Every failure is reported to clients with the same
// status; the distinct errors exist for logging and for the stats endpoint.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionDeactivated   = errors.New("session deactivated")
	ErrSessionExpired       = errors.New("session expired")
	ErrSessionQuotaExceeded = errors.New("session request quota exceeded")

	// ErrRateLimited is returned by Create when an address has claimed too
	// many sessions inside the current window.
	ErrRateLimited = errors.New("session creation rate limit exceeded")
)

// Manager creates, validates and retires viewing sessions against the
// shared cache.
type Manager struct {
	store cache.Store
	cfg   config.SessionSettings

	// now is swappable for tests
	now func() time.Time
}

// NewManager creates a session manager on the given cache.
func NewManager(store cache.Store, cfg config.SessionSettings) *Manager {
	return &Manager{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// sessionKey returns the cache key for a session token.
func sessionKey(token string) string {
	return constants.SessionKeyPrefix + token
}

// rateKey returns the cache key for an address's issuance counter.
func rateKey(clientIP string) string {
	return constants.RateLimitKeyPrefix + clientIP
}

// Create issues a new viewing session for the client, subject to the
// per-address issuance limit. The limit uses a fixed window: the counter is
// only consumed after all checks pass, so a rejected request does not eat
// into the caller's budget.
func (m *Manager) Create(ctx context.Context, clientIP, userAgent string) (*ViewingSession, error) {
	if err := m.checkRateLimit(ctx, clientIP); err != nil {
		return nil, err
	}

	now := m.now().UTC()
	sess := &ViewingSession{
		Token:         uuid.NewString(),
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.cfg.TTL),
		ClientIP:      clientIP,
		UserAgent:     userAgent,
		ImageRequests: 0,
		MaxRequests:   m.cfg.MaxRequests,
		IsActive:      true,
	}

	if err := m.save(ctx, sess, m.cfg.TTL); err != nil {
		return nil, err
	}

	if _, err := m.store.Increment(ctx, rateKey(clientIP), m.cfg.RateLimitWindow); err != nil {
		// The session exists; a lost counter bump only loosens the limit.
		log.Warn().Err(err).Str("client_ip", clientIP).Msg("Failed to record session issuance")
	}

	log.Info().
		Str("event", constants.LogEventSessionCreated).
		Str("client_ip", clientIP).
		Time("expires_at", sess.ExpiresAt).
		Msg("Viewing session created")

	return sess, nil
}

// checkRateLimit rejects creation when the address has already claimed its
// budget of sessions inside the current window.
func (m *Manager) checkRateLimit(ctx context.Context, clientIP string) error {
	data, err := m.store.Get(ctx, rateKey(clientIP))
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("reading issuance counter: %w", err)
	}

	var count int
	if _, err := fmt.Sscanf(string(data), "%d", &count); err != nil {
		return fmt.Errorf("parsing issuance counter: %w", err)
	}

	if count >= m.cfg.RateLimit {
		log.Warn().Str("client_ip", clientIP).Int("count", count).Msg("Session creation rate limited")
		return ErrRateLimited
	}
	return nil
}

// Get returns the session stored under token, without validating it.
func (m *Manager) Get(ctx context.Context, token string) (*ViewingSession, error) {
	data, err := m.store.Get(ctx, sessionKey(token))
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var sess ViewingSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &sess, nil
}

// Validate checks a token and returns the live session behind it. Checks run
// in a fixed order: existence, active flag, expiry, quota. An expired
// session is deleted on sight so the cache does not serve it again even if
// the backend missed the TTL.
func (m *Manager) Validate(ctx context.Context, token string) (*ViewingSession, error) {
	sess, err := m.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if !sess.IsActive {
		return nil, ErrSessionDeactivated
	}

	if sess.IsExpired(m.now()) {
		if err := m.store.Delete(ctx, sessionKey(token)); err != nil {
			log.Warn().Err(err).Msg("Failed to delete expired session")
		}
		return nil, ErrSessionExpired
	}

	if sess.QuotaExceeded() {
		return nil, ErrSessionQuotaExceeded
	}

	return sess, nil
}

// IncrementUsage records one image request against the session. The cache
// entry keeps its original deadline.
func (m *Manager) IncrementUsage(ctx context.Context, sess *ViewingSession) error {
	sess.ImageRequests++
	return m.save(ctx, sess, sess.RemainingTime(m.now()))
}

// Refresh extends a valid session's deadline by a full TTL from now.
func (m *Manager) Refresh(ctx context.Context, token string) (*ViewingSession, error) {
	sess, err := m.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	sess.ExpiresAt = m.now().UTC().Add(m.cfg.TTL)
	if err := m.save(ctx, sess, m.cfg.TTL); err != nil {
		return nil, err
	}
	return sess, nil
}

// Revoke deactivates a session. The entry stays in the cache for its
// remaining lifetime so later validation reports deactivation rather than
// absence.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	sess, err := m.Get(ctx, token)
	if err != nil {
		return err
	}

	sess.IsActive = false
	if err := m.save(ctx, sess, sess.RemainingTime(m.now())); err != nil {
		return err
	}

	log.Info().
		Str("event", constants.LogEventSessionRevoked).
		Str("client_ip", sess.ClientIP).
		Msg("Viewing session revoked")
	return nil
}

// Stats returns the usage summary for a session. Unlike Validate, a session
// that has spent its quota still reports stats; only missing, deactivated
// and expired sessions are refused.
func (m *Manager) Stats(ctx context.Context, token string) (*Stats, error) {
	sess, err := m.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if !sess.IsActive {
		return nil, ErrSessionDeactivated
	}

	now := m.now()
	if sess.IsExpired(now) {
		return nil, ErrSessionExpired
	}

	return &Stats{
		Token:             sess.Token,
		CreatedAt:         sess.CreatedAt,
		ExpiresAt:         sess.ExpiresAt,
		ImageRequests:     sess.ImageRequests,
		MaxRequests:       sess.MaxRequests,
		RemainingRequests: sess.RemainingRequests(),
		ExpiresInSeconds:  int64(sess.RemainingTime(now).Seconds()),
		IsActive:          sess.IsActive,
	}, nil
}

// save marshals and stores the session under its token.
func (m *Manager) save(ctx context.Context, sess *ViewingSession, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := m.store.Set(ctx, sessionKey(sess.Token), data, ttl); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}
