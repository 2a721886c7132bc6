package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorError(t *testing.T) {
	t.Run("Message without field", func(t *testing.T) {
		err := NewBadRequestError("bad input")
		assert.Equal(t, "bad input", err.Error())
	})

	t.Run("Field prefixed when present", func(t *testing.T) {
		err := NewValidationError("email", "Must be a valid email address")
		assert.Equal(t, "email: Must be a valid email address", err.Error())
	})
}

func TestAppErrorUnwrap(t *testing.T) {
	t.Run("Unwraps to sentinel", func(t *testing.T) {
		err := NewNotFoundError("")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("Wrapped AppError still matches sentinel", func(t *testing.T) {
		inner := NewRateLimitError("slow down")
		wrapped := fmt.Errorf("creating session: %w", inner)
		assert.True(t, errors.Is(wrapped, ErrRateLimited))
	})
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantStatus int
		wantIs     error
	}{
		{"NotFound", NewNotFoundError(""), http.StatusNotFound, ErrNotFound},
		{"Unauthorized", NewUnauthorizedError(""), http.StatusUnauthorized, ErrUnauthorized},
		{"Forbidden", NewForbiddenError(""), http.StatusForbidden, ErrForbidden},
		{"BadRequest", NewBadRequestError("x"), http.StatusBadRequest, ErrBadRequest},
		{"Validation", NewValidationError("f", "m"), http.StatusBadRequest, ErrValidation},
		{"RateLimit", NewRateLimitError("x"), http.StatusTooManyRequests, ErrRateLimited},
		{"Internal", NewInternalServerError(errors.New("boom")), http.StatusInternalServerError, ErrInternalServer},
		{"ExpiredToken", NewExpiredTokenError(), http.StatusUnauthorized, ErrExpiredToken},
		{"InvalidToken", NewInvalidTokenError(), http.StatusUnauthorized, ErrInvalidToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantStatus, tc.err.StatusCode)
			assert.True(t, errors.Is(tc.err, tc.wantIs))
			assert.NotEmpty(t, tc.err.Message)
		})
	}
}

func TestNewPathEscapeError(t *testing.T) {
	t.Run("Presents as a plain not found", func(t *testing.T) {
		// Arrange & Act
		err := NewPathEscapeError("../../etc/passwd", "")

		// Assert: status and message match a missing resource exactly
		assert.Equal(t, http.StatusNotFound, err.StatusCode)
		assert.Equal(t, NewNotFoundError("").Message, err.Message)
	})

	t.Run("Candidate path kept for internal logging only", func(t *testing.T) {
		err := NewPathEscapeError("../../etc/passwd", "")
		assert.Contains(t, err.DevInfo, "../../etc/passwd")
		assert.NotContains(t, err.Message, "etc/passwd")
	})

	t.Run("Distinguishable from a genuine not found", func(t *testing.T) {
		assert.True(t, IsPathEscapeError(NewPathEscapeError("x", "")))
		assert.False(t, IsPathEscapeError(NewNotFoundError("")))
	})
}

func TestEncodeDecodeErrors(t *testing.T) {
	t.Run("Decode failure hides detail from clients", func(t *testing.T) {
		err := NewDecodeError(errors.New("unexpected EOF"))
		assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
		assert.Contains(t, err.DevInfo, "unexpected EOF")
		assert.NotContains(t, err.Message, "EOF")
	})

	t.Run("Encode failure names the format internally", func(t *testing.T) {
		err := NewEncodeError("webp")
		assert.True(t, errors.Is(err, ErrEncode))
		assert.Contains(t, err.DevInfo, "webp")
	})
}

func TestParseError(t *testing.T) {
	t.Run("AppError passes through unchanged", func(t *testing.T) {
		original := NewRateLimitError("slow down")
		parsed := ParseError(original)
		assert.Same(t, original, parsed)
	})

	t.Run("Sentinel errors map to their constructors", func(t *testing.T) {
		parsed := ParseError(fmt.Errorf("lookup: %w", ErrNotFound))
		require.NotNil(t, parsed)
		assert.Equal(t, http.StatusNotFound, parsed.StatusCode)
	})

	t.Run("Unknown errors become internal server errors", func(t *testing.T) {
		parsed := ParseError(errors.New("mystery"))
		assert.Equal(t, http.StatusInternalServerError, parsed.StatusCode)
		assert.Equal(t, "mystery", parsed.DevInfo)
	})
}

func TestErrorPredicates(t *testing.T) {
	t.Run("IsNotFoundError covers path escapes too", func(t *testing.T) {
		assert.True(t, IsNotFoundError(NewNotFoundError("")))
		assert.True(t, IsNotFoundError(NewPathEscapeError("x", "")))
		assert.False(t, IsNotFoundError(NewBadRequestError("x")))
	})

	t.Run("IsRateLimitError", func(t *testing.T) {
		assert.True(t, IsRateLimitError(NewRateLimitError("x")))
		assert.False(t, IsRateLimitError(NewNotFoundError("")))
	})

	t.Run("IsValidationError", func(t *testing.T) {
		assert.True(t, IsValidationError(NewValidationError("f", "m")))
		assert.False(t, IsValidationError(NewBadRequestError("x")))
	})
}

func TestStatusCode(t *testing.T) {
	t.Run("AppError status is used", func(t *testing.T) {
		assert.Equal(t, http.StatusTooManyRequests, StatusCode(NewRateLimitError("x")))
	})

	t.Run("Plain errors default to 500", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
	})
}
