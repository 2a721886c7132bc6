// Package handlers provides HTTP request handlers for the gallery guard API.
package handlers

import (
	"context"

	"github.com/amanksolutions/galleryguard/internal/session"
)

// SessionManagerInterface defines methods required from the session manager.
// This interface is used by the session handlers to manage viewing sessions
// without being tightly coupled to the cache-backed implementation.
type SessionManagerInterface interface {
	// Create issues a new viewing session for the given client.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - clientIP: The requesting client's IP address, used for rate limiting
	//   - userAgent: The requesting client's User-Agent header
	//
	// Returns:
	//   - The newly created viewing session
	//   - session.ErrRateLimited when the client has created too many sessions,
	//     or another error if creation fails
	Create(ctx context.Context, clientIP, userAgent string) (*session.ViewingSession, error)

	// Validate checks a token and returns its live session.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - token: The viewing-session token to validate
	//
	// Returns:
	//   - The session when it is live
	//   - One of the session sentinel errors describing why it is not
	Validate(ctx context.Context, token string) (*session.ViewingSession, error)

	// Refresh extends a live session's expiry to a full TTL from now.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - token: The viewing-session token to refresh
	//
	// Returns:
	//   - The refreshed session
	//   - One of the session sentinel errors when the session is not live
	Refresh(ctx context.Context, token string) (*session.ViewingSession, error)

	// Revoke deactivates a session so it fails validation from now on.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - token: The viewing-session token to revoke
	//
	// Returns:
	//   - An error if the session does not exist or revocation fails
	Revoke(ctx context.Context, token string) error

	// Stats returns a usage summary for a session.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - token: The viewing-session token to summarize
	//
	// Returns:
	//   - The session's usage counters and remaining lifetime
	//   - An error if the session does not exist
	Stats(ctx context.Context, token string) (*session.Stats, error)
}
