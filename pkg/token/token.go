// Package token issues and verifies the HS256 bearer tokens that carry the
// authenticated user identity between requests.
package token

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	apperrors "github.com/timschopinski/hotel-management-system/pkg/errors"
)

type Manager struct {
	secret []byte
	expiry time.Duration
}

func NewManager(secret string, expiry time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Sign returns a signed token whose subject is the user id.
func (m *Manager) Sign(userID string) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:   userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(m.expiry).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the user id. Every
// failure collapses into the same UNAUTHORIZED error so callers cannot probe
// which part of the token was wrong.
func (m *Manager) Verify(tokenStr string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.StandardClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", apperrors.Unauthorized("invalid or expired token")
	}

	claims, ok := parsed.Claims.(*jwt.StandardClaims)
	if !ok || claims.Subject == "" {
		return "", apperrors.Unauthorized("invalid or expired token")
	}

	return claims.Subject, nil
}
