package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/amanksolutions/galleryguard/internal/constants"
	"github.com/amanksolutions/galleryguard/internal/utils"
)

// ContextKey is a custom type for context keys to prevent collisions.
type ContextKey string

// ManagerContextKey is the context key for the authenticated manager subject.
const ManagerContextKey ContextKey = constants.ManagerContextKey

// RequireManager guards management endpoints. It expects a bearer token in
// the Authorization header and stashes the verified subject in the request
// context.
func RequireManager(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractBearerToken(r)
			if !ok {
				utils.Unauthorized(w, "")
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				log.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Msg("Rejected management request")
				utils.ErrorFromAppError(w, utils.ParseError(err))
				return
			}

			ctx := context.WithValue(r.Context(), ManagerContextKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetManager returns the manager subject from the context, if present.
func GetManager(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(ManagerContextKey).(string)
	return subject, ok && subject != ""
}

// extractBearerToken pulls the token out of an "Authorization: Bearer ..."
// header.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
