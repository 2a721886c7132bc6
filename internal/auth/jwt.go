// Package auth provides token-based authorization for gallery management
// endpoints. Viewers never authenticate; they hold viewing sessions. Only
// the host platform that uploads and deletes images carries a manager token.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/amanksolutions/galleryguard/internal/config"
	"github.com/amanksolutions/galleryguard/internal/utils"
)

var (
	ErrInvalidSigningMethod = errors.New("invalid signing method")
)

// ManagerClaims are the claims carried by a management token.
type ManagerClaims struct {
	Subject string `json:"manager"`
	jwt.RegisteredClaims
}

// TokenService issues and validates manager tokens.
type TokenService struct {
	config *config.ManagerAuthSettings
}

// NewTokenService creates a TokenService with the given settings.
func NewTokenService(cfg *config.ManagerAuthSettings) *TokenService {
	return &TokenService{config: cfg}
}

// Generate issues a signed manager token for the named subject.
func (s *TokenService) Generate(subject string) (string, error) {
	now := time.Now()
	claims := ManagerClaims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiry)),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a manager token and returns its claims.
func (s *TokenService) Validate(tokenString string) (*ManagerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ManagerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, utils.NewExpiredTokenError()
		}
		return nil, utils.NewInvalidTokenError()
	}

	if !token.Valid {
		return nil, utils.NewInvalidTokenError()
	}

	claims, ok := token.Claims.(*ManagerClaims)
	if !ok {
		return nil, utils.NewInvalidTokenError()
	}

	if s.config.Issuer != "" && claims.Issuer != s.config.Issuer {
		return nil, utils.NewInvalidTokenError()
	}

	return claims, nil
}
