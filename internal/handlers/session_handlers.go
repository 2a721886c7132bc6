package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/amanksolutions/galleryguard/internal/constants"
	"github.com/amanksolutions/galleryguard/internal/middleware"
	"github.com/amanksolutions/galleryguard/internal/session"
	"github.com/amanksolutions/galleryguard/internal/utils"
)

// SessionHandler handles viewing-session routes.
type SessionHandler struct {
	sessions   SessionManagerInterface
	rateWindow time.Duration
}

// NewSessionHandler creates a new SessionHandler. rateWindow is the
// session-creation rate-limit window, advertised to rejected clients as
// their retry hint.
func NewSessionHandler(sessions SessionManagerInterface, rateWindow time.Duration) *SessionHandler {
	return &SessionHandler{
		sessions:   sessions,
		rateWindow: rateWindow,
	}
}

// TokenRequest carries a viewing-session token in a request body.
type TokenRequest struct {
	SessionToken string `json:"session_token" validate:"required"`
}

// SessionGrantResponse is returned when a session is created or refreshed.
// The token field is omitted on refresh since the caller already holds it.
type SessionGrantResponse struct {
	Success          bool      `json:"success"`
	SessionToken     string    `json:"session_token,omitempty"`
	ExpiresAt        time.Time `json:"expires_at"`
	ExpiresInSeconds int64     `json:"expires_in_seconds"`
	MaxImageRequests int       `json:"max_image_requests"`
}

// CreateSession issues a new anonymous viewing session for the caller.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	clientIP := middleware.ClientIP(r)

	sess, err := h.sessions.Create(r.Context(), clientIP, r.UserAgent())
	if err != nil {
		if errors.Is(err, session.ErrRateLimited) {
			utils.JSON(w, constants.StatusTooManyRequests, map[string]interface{}{
				"success":     constants.ResponseFailure,
				"message":     constants.MsgSessionRateLimited,
				"retry_after": int64(h.rateWindow.Seconds()),
			})
			return
		}
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusCreated, SessionGrantResponse{
		Success:          constants.ResponseSuccess,
		SessionToken:     sess.Token,
		ExpiresAt:        sess.ExpiresAt,
		ExpiresInSeconds: int64(sess.RemainingTime(time.Now()).Seconds()),
		MaxImageRequests: sess.MaxRequests,
	})
}

// ValidateSession reports whether a token is currently valid. Unlike the
// gated image routes this endpoint always answers 200; invalidity is data
// here, not an authorization failure. A missing or empty token counts as
// a session that does not exist.
func (h *SessionHandler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil || req.SessionToken == "" {
		utils.JSON(w, constants.StatusOK, map[string]interface{}{
			"valid":   false,
			"message": constants.MsgSessionNotFound,
		})
		return
	}

	_, err := h.sessions.Validate(r.Context(), req.SessionToken)
	if err != nil {
		message, known := sessionFailureMessage(err)
		if !known {
			log.Error().Err(err).Msg("Session validation failed")
			utils.InternalServerError(w, err)
			return
		}
		utils.JSON(w, constants.StatusOK, map[string]interface{}{
			"valid":   false,
			"message": message,
		})
		return
	}

	utils.JSON(w, constants.StatusOK, map[string]interface{}{
		"valid":   true,
		"message": constants.MsgSessionValid,
	})
}

// RefreshSession extends a live session's expiry to a full TTL from now.
func (h *SessionHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	sess, err := h.sessions.Refresh(r.Context(), req.SessionToken)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	utils.JSON(w, constants.StatusOK, SessionGrantResponse{
		Success:          constants.ResponseSuccess,
		ExpiresAt:        sess.ExpiresAt,
		ExpiresInSeconds: int64(sess.RemainingTime(time.Now()).Seconds()),
		MaxImageRequests: sess.MaxRequests,
	})
}

// RevokeSession deactivates a session on behalf of a manager.
func (h *SessionHandler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	if err := h.sessions.Revoke(r.Context(), req.SessionToken); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			utils.NotFound(w, constants.MsgSessionNotFound)
			return
		}
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, map[string]interface{}{
		"success": constants.ResponseSuccess,
		"message": constants.MsgSessionRevoked,
	})
}

// SessionStats returns a session's usage counters for a manager.
func (h *SessionHandler) SessionStats(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, constants.ParamToken)
	if token == "" {
		utils.BadRequest(w, constants.MsgMissingSessionToken, nil)
		return
	}

	stats, err := h.sessions.Stats(r.Context(), token)
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	utils.JSON(w, constants.StatusOK, map[string]interface{}{
		"success": constants.ResponseSuccess,
		"stats":   stats,
	})
}

// respondSessionError writes a session sentinel as a 401 with its reason,
// and anything else as an opaque 500.
func (h *SessionHandler) respondSessionError(w http.ResponseWriter, err error) {
	message, known := sessionFailureMessage(err)
	if !known {
		log.Error().Err(err).Msg("Session operation failed")
		utils.InternalServerError(w, err)
		return
	}
	if errors.Is(err, session.ErrSessionNotFound) {
		utils.Error(w, constants.StatusNotFound, constants.CodeNotFound, message, nil)
		return
	}
	utils.Error(w, constants.StatusUnauthorized, constants.CodeSessionInvalid, message, nil)
}

// sessionFailureMessage translates the session sentinels into their
// user-facing messages. known is false for unexpected errors.
func sessionFailureMessage(err error) (message string, known bool) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return constants.MsgSessionNotFound, true
	case errors.Is(err, session.ErrSessionDeactivated):
		return constants.MsgSessionDeactivated, true
	case errors.Is(err, session.ErrSessionExpired):
		return constants.MsgSessionExpired, true
	case errors.Is(err, session.ErrSessionQuotaExceeded):
		return constants.MsgSessionQuotaExceeded, true
	}
	return "", false
}
