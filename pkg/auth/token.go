package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// BearerClaims is what the client reads out of a backend token. The signature
// is never verified here; the backend does that on every request.
type BearerClaims struct {
	UserID string `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// InspectToken decodes the claims of a bearer token without verifying it.
func InspectToken(tokenString string) (*BearerClaims, error) {
	trimmed := strings.TrimSpace(tokenString)
	if trimmed == "" {
		return nil, fmt.Errorf("token is empty")
	}
	claims := &BearerClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(trimmed, claims); err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	return claims, nil
}

// Expired reports whether the token's exp claim is at or before now. Tokens
// without an exp claim never expire from the client's point of view.
func (c *BearerClaims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}
