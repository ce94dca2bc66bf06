package utils // package utils provides helpers for signing short-lived tokens

import (
	"errors" // errors reports malformed payloads
	"time"   // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// FlashClaims carries pending flash messages between two requests.  The
// messages are opaque to this package; callers store category/text pairs.
type FlashClaims struct {
	Messages [][2]string `json:"msgs"`
	jwt.RegisteredClaims
}

// SignFlash builds and signs an HS256 JWT holding msgs that expires after
// ttl.
func SignFlash(secret string, msgs [][2]string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := FlashClaims{
		Messages: msgs,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseFlash verifies raw with secret and returns the carried messages.
// Tokens signed with another method, another secret, or already expired
// are rejected.
func ParseFlash(secret, raw string) ([][2]string, error) {
	var claims FlashClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid flash token")
	}
	return claims.Messages, nil
}
