package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/amanksolutions/galleryguard/internal/constants"
	"github.com/amanksolutions/galleryguard/internal/utils"
	"github.com/amanksolutions/galleryguard/internal/utils/ratelimit"
)

// SecurityHeaders sets the standard browser hardening headers on every
// response.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Frame-Options", constants.FrameOptionsDeny)
			h.Set("X-Content-Type-Options", constants.ContentTypeOptionsNoSniff)
			h.Set("X-XSS-Protection", constants.XSSProtectionModeBlock)
			h.Set("Referrer-Policy", constants.ReferrerPolicyStrictOrigin)
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit throttles abuse-prone endpoints per client address using the
// token bucket store. Session issuance has its own cache-backed fixed
// window; this covers the contact form and management uploads.
func RateLimit(store *ratelimit.Store, category string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ClientIP(r)

			if isExemptedPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if !store.GetLimiter(clientIP, category).Allow() {
				log.Warn().
					Str("client_ip", clientIP).
					Str("path", r.URL.Path).
					Str("category", category).
					Msg("Rate limit exceeded")

				w.Header().Set(constants.HeaderRetryAfter, "60")
				utils.Error(w, constants.StatusTooManyRequests, constants.CodeRateLimited,
					"Rate limit exceeded. Please try again later.", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isExemptedPath reports whether the path skips throttling entirely.
func isExemptedPath(path string) bool {
	exemptPrefixes := []string{
		constants.HealthPath,
		"/version",
	}

	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
