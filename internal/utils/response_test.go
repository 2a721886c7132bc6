package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanksolutions/galleryguard/internal/constants"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSON(t *testing.T) {
	t.Run("Writes payload as-is with JSON content type", func(t *testing.T) {
		// Arrange
		rec := httptest.NewRecorder()
		payload := map[string]interface{}{"success": true, "token": "abc"}

		// Act
		JSON(rec, http.StatusCreated, payload)

		// Assert
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, constants.ContentTypeJSON, rec.Header().Get(constants.HeaderContentType))
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "abc", body["token"])
	})

	t.Run("Unmarshalable payload degrades to a generic error body", func(t *testing.T) {
		// Arrange: channels cannot be marshaled
		rec := httptest.NewRecorder()

		// Act
		JSON(rec, http.StatusOK, map[string]interface{}{"ch": make(chan int)})

		// Assert
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "internal_error", body["error"])
	})
}

func TestError(t *testing.T) {
	t.Run("Flat failure envelope", func(t *testing.T) {
		// Arrange
		rec := httptest.NewRecorder()

		// Act
		Error(rec, http.StatusNotFound, constants.CodeNotFound, "Image not found", nil)

		// Assert
		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, constants.CodeNotFound, body["error"])
		assert.Equal(t, "Image not found", body["message"])
		assert.NotContains(t, body, "details")
	})

	t.Run("Details included when provided", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Error(rec, http.StatusBadRequest, constants.CodeValidationError, "Validation failed",
			map[string]string{"email": "Must be a valid email address"})

		body := decodeBody(t, rec)
		details, ok := body["details"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Must be a valid email address", details["email"])
	})
}

func TestErrorFromAppError(t *testing.T) {
	tests := []struct {
		name       string
		appErr     *AppError
		wantStatus int
		wantCode   string
	}{
		{"NotFound", NewNotFoundError(""), http.StatusNotFound, constants.CodeNotFound},
		{"PathEscapeMapsToNotFound", NewPathEscapeError("../x", ""), http.StatusNotFound, constants.CodeNotFound},
		{"Unauthorized", NewUnauthorizedError(""), http.StatusUnauthorized, constants.CodeUnauthorized},
		{"RateLimited", NewRateLimitError("x"), http.StatusTooManyRequests, constants.CodeRateLimited},
		{"ExpiredToken", NewExpiredTokenError(), http.StatusUnauthorized, constants.CodeTokenExpired},
		{"Internal", NewInternalServerError(nil), http.StatusInternalServerError, constants.CodeInternalError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorFromAppError(rec, tc.appErr)

			assert.Equal(t, tc.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tc.wantCode, body["error"])
		})
	}

	t.Run("Validation field becomes a details entry", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ErrorFromAppError(rec, NewValidationError("name", "This field is required"))

		body := decodeBody(t, rec)
		details, ok := body["details"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "This field is required", details["name"])
	})
}

func TestResponseHelpers(t *testing.T) {
	t.Run("NoContent writes 204 and nothing else", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NoContent(rec)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.Bytes())
	})

	t.Run("Unauthorized falls back to default message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Unauthorized(rec, "")
		body := decodeBody(t, rec)
		assert.Equal(t, constants.MsgAuthRequired, body["message"])
	})

	t.Run("NotFound uses supplied message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NotFound(rec, constants.MsgImageNotFound)
		body := decodeBody(t, rec)
		assert.Equal(t, constants.MsgImageNotFound, body["message"])
	})

	t.Run("InternalServerError never leaks the cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		InternalServerError(rec, assert.AnError)
		body := decodeBody(t, rec)
		assert.Equal(t, constants.MsgInternalServerError, body["message"])
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	})

	t.Run("ValidationError carries the field map", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ValidationError(rec, map[string]string{"subject": "Must be at most 200 characters long"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		details := body["details"].(map[string]interface{})
		assert.Contains(t, details, "subject")
	})
}
