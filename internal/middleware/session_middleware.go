// Package middleware provides HTTP middleware components.
package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/amanksolutions/galleryguard/internal/constants"
	"github.com/amanksolutions/galleryguard/internal/session"
	"github.com/amanksolutions/galleryguard/internal/utils"
)

// ContextKey is a custom type for context keys to prevent collisions.
type ContextKey string

// SessionContextKey is the context key for the validated viewing session.
const SessionContextKey ContextKey = constants.SessionContextKey

// RequireViewingSession guards image endpoints. It extracts the session
// token from the X-Session-Token header, validates the session, charges one
// image request against its budget, and stashes it in the request context.
func RequireViewingSession(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(constants.HeaderXSessionToken)
			if token == "" {
				utils.Error(w, constants.StatusUnauthorized, constants.CodeMissingToken, constants.MsgMissingSessionToken, nil)
				return
			}

			sess, err := manager.Validate(r.Context(), token)
			if err != nil {
				writeSessionError(w, r, err)
				return
			}

			if err := manager.IncrementUsage(r.Context(), sess); err != nil {
				log.Error().Err(err).Msg("Failed to charge session usage")
				utils.InternalServerError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetViewingSession returns the validated session from the context.
func GetViewingSession(ctx context.Context) (*session.ViewingSession, bool) {
	sess, ok := ctx.Value(SessionContextKey).(*session.ViewingSession)
	return sess, ok
}

// writeSessionError maps a validation failure onto the wire. Every failure
// is a 401 with a reason message; unexpected errors stay opaque.
func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	var message string
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		message = constants.MsgSessionNotFound
	case errors.Is(err, session.ErrSessionDeactivated):
		message = constants.MsgSessionDeactivated
	case errors.Is(err, session.ErrSessionExpired):
		message = constants.MsgSessionExpired
	case errors.Is(err, session.ErrSessionQuotaExceeded):
		message = constants.MsgSessionQuotaExceeded
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Session validation failed")
		utils.InternalServerError(w, err)
		return
	}

	log.Debug().
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Str("reason", message).
		Msg("Rejected image request")
	utils.Error(w, constants.StatusUnauthorized, constants.CodeSessionInvalid, message, nil)
}

// ClientIP extracts the client address, honoring the usual proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
