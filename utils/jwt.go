package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenClaims holds the claims the gateway cares about from the upstream
// bearer token. The upstream issues and verifies tokens; the gateway never
// holds the signing secret, so claims are decoded without verification and
// a 401 from the upstream is the only authority on validity.
type TokenClaims struct {
	Subject  string
	Username string
	Role     string
	Expiry   time.Time
}

// DecodeTokenClaims extracts claims from a bearer token without verifying
// its signature. Returns an error for structurally malformed tokens.
func DecodeTokenClaims(tokenString string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}

	out := &TokenClaims{}
	if sub, ok := claims["sub"].(string); ok {
		out.Subject = sub
	}
	if username, ok := claims["username"].(string); ok {
		out.Username = username
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.Expiry = time.Unix(int64(exp), 0)
	}
	if out.Subject == "" && out.Username == "" {
		return nil, errors.New("token does not carry a subject or username claim")
	}
	return out, nil
}
