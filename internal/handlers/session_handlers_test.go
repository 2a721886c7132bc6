package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amanksolutions/galleryguard/internal/handlers"
	"github.com/amanksolutions/galleryguard/internal/session"
)

// MockSessionManager is a mock implementation of the session manager
type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) Create(ctx context.Context, clientIP, userAgent string) (*session.ViewingSession, error) {
	args := m.Called(ctx, clientIP, userAgent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.ViewingSession), args.Error(1)
}

func (m *MockSessionManager) Validate(ctx context.Context, token string) (*session.ViewingSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.ViewingSession), args.Error(1)
}

func (m *MockSessionManager) Refresh(ctx context.Context, token string) (*session.ViewingSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.ViewingSession), args.Error(1)
}

func (m *MockSessionManager) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionManager) Stats(ctx context.Context, token string) (*session.Stats, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Stats), args.Error(1)
}

func liveSession(token string) *session.ViewingSession {
	now := time.Now()
	return &session.ViewingSession{
		Token:       token,
		CreatedAt:   now,
		ExpiresAt:   now.Add(2 * time.Hour),
		ClientIP:    "203.0.113.9",
		MaxRequests: 200,
		IsActive:    true,
	}
}

func tokenBody(t *testing.T, token string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]string{"session_token": token})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestCreateSession(t *testing.T) {
	t.Run("Successful creation", func(t *testing.T) {
		// Arrange
		mockManager := new(MockSessionManager)
		handler := handlers.NewSessionHandler(mockManager, time.Hour)
		sess := liveSession("tok-1")
		mockManager.On("Create", mock.Anything, "203.0.113.9", "test-agent").Return(sess, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		req.Header.Set("User-Agent", "test-agent")
		rr := httptest.NewRecorder()

		// Act
		handler.CreateSession(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		assert.Equal(t, "tok-1", resp["session_token"])
		assert.Equal(t, float64(200), resp["max_image_requests"])
		assert.InDelta(t, 7200, resp["expires_in_seconds"], 5)
		mockManager.AssertExpectations(t)
	})

	t.Run("Rate limited creation carries a retry hint", func(t *testing.T) {
		// Arrange
		mockManager := new(MockSessionManager)
		handler := handlers.NewSessionHandler(mockManager, time.Hour)
		mockManager.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, session.ErrRateLimited)

		req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
		rr := httptest.NewRecorder()

		// Act
		handler.CreateSession(rr, req)

		// Assert
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, float64(3600), resp["retry_after"])
	})
}

func TestValidateSession(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantValid   bool
		wantMessage string
	}{
		{"Live session is valid", nil, true, "Session is valid"},
		{"Unknown token", session.ErrSessionNotFound, false, "Session not found or expired"},
		{"Revoked session", session.ErrSessionDeactivated, false, "Session has been deactivated"},
		{"Expired session", session.ErrSessionExpired, false, "Session has expired"},
		{"Exhausted session", session.ErrSessionQuotaExceeded, false, "Session request limit exceeded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockManager := new(MockSessionManager)
			handler := handlers.NewSessionHandler(mockManager, time.Hour)
			if tc.err == nil {
				mockManager.On("Validate", mock.Anything, "tok-v").Return(liveSession("tok-v"), nil)
			} else {
				mockManager.On("Validate", mock.Anything, "tok-v").Return(nil, tc.err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/sessions/validate", tokenBody(t, "tok-v"))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			// Act
			handler.ValidateSession(rr, req)

			// Assert: introspection always answers 200
			assert.Equal(t, http.StatusOK, rr.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantValid, resp["valid"])
			assert.Equal(t, tc.wantMessage, resp["message"])
		})
	}

	t.Run("Missing token reads as a session that does not exist", func(t *testing.T) {
		mockManager := new(MockSessionManager)
		handler := handlers.NewSessionHandler(mockManager, time.Hour)

		req := httptest.NewRequest(http.MethodPost, "/api/sessions/validate", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.ValidateSession(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["valid"])
		assert.Equal(t, "Session not found or expired", resp["message"])
		mockManager.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
	})

	t.Run("Malformed body reads as a session that does not exist", func(t *testing.T) {
		mockManager := new(MockSessionManager)
		handler := handlers.NewSessionHandler(mockManager, time.Hour)

		req := httptest.NewRequest(http.MethodPost, "/api/sessions/validate", bytes.NewBufferString(`{"session_token":`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.ValidateSession(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"valid":false`)
		mockManager.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
	})
}

func TestRefreshSession(t *testing.T) {
	t.Run("Successful refresh omits the token", func(t *testing.T) {
		// Arrange
		mockManager := new(MockSessionManager)
		handler := handlers.NewSessionHandler(mockManager, time.Hour)
		mockManager.On("Refresh", mock.Anything, "tok-r").Return(liveSession("tok-r"), nil)

		req := httptest.NewRequest(http.MethodPost, "/api/sessions/refresh", tokenBody(t, "tok-r"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler.RefreshSession(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		assert.NotContains(t, resp, "session_token")
		assert.Equal(t, float64(200), resp["max_image_requests"])
	})

	t.Run("Expired session cannot be refreshed", func(t *testing.T) {
		mockManager := new(MockSessionManager)
		handler := handlers.NewSessionHandler(mockManager, time.Hour)
		mockManager.On("Refresh", mock.Anything, "tok-r").Return(nil, session.ErrSessionExpired)

		req := httptest.NewRequest(http.MethodPost, "/api/sessions/refresh", tokenBody(t, "tok-r"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.RefreshSession(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Session has expired")
	})
}

func TestRevokeSession(t *testing.T) {
	t.Run("Successful revocation", func(t *testing.T) {
		// Arrange
		mockManager := new(MockSessionManager)
		handler := handlers.NewSessionHandler(mockManager, time.Hour)
		mockManager.On("Revoke", mock.Anything, "tok-x").Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/sessions/revoke", tokenBody(t, "tok-x"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		// Act
		handler.RevokeSession(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Session revoked successfully")
		mockManager.AssertExpectations(t)
	})

	t.Run("Unknown token is not found", func(t *testing.T) {
		mockManager := new(MockSessionManager)
		handler := handlers.NewSessionHandler(mockManager, time.Hour)
		mockManager.On("Revoke", mock.Anything, "tok-x").Return(session.ErrSessionNotFound)

		req := httptest.NewRequest(http.MethodPost, "/api/sessions/revoke", tokenBody(t, "tok-x"))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		handler.RevokeSession(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestSessionStats(t *testing.T) {
	statsRequest := func(token string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+token+"/stats", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("token", token)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("Successful stats read", func(t *testing.T) {
		// Arrange
		mockManager := new(MockSessionManager)
		handler := handlers.NewSessionHandler(mockManager, time.Hour)
		mockManager.On("Stats", mock.Anything, "tok-s").Return(&session.Stats{
			Token:             "tok-s",
			ImageRequests:     42,
			MaxRequests:       200,
			RemainingRequests: 158,
			IsActive:          true,
		}, nil)

		rr := httptest.NewRecorder()

		// Act
		handler.SessionStats(rr, statsRequest("tok-s"))

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Success bool          `json:"success"`
			Stats   session.Stats `json:"stats"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 42, resp.Stats.ImageRequests)
		assert.Equal(t, 158, resp.Stats.RemainingRequests)
	})

	t.Run("Unknown token is not found", func(t *testing.T) {
		mockManager := new(MockSessionManager)
		handler := handlers.NewSessionHandler(mockManager, time.Hour)
		mockManager.On("Stats", mock.Anything, "tok-s").Return(nil, session.ErrSessionNotFound)

		rr := httptest.NewRecorder()

		handler.SessionStats(rr, statsRequest("tok-s"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
