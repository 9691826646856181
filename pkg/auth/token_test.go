package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mint(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestInspectTokenReadsClaimsWithoutSecret(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	token := mint(t, BearerClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})

	claims, err := InspectToken(token)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.UserID != "u-1" {
		t.Fatalf("unexpected user id %q", claims.UserID)
	}
	if claims.Expired(now) {
		t.Fatal("token should still be valid")
	}
	if !claims.Expired(now.Add(time.Hour)) {
		t.Fatal("token should be expired at exp")
	}
}

func TestInspectTokenWithoutExp(t *testing.T) {
	claims, err := InspectToken(mint(t, jwt.MapClaims{"id": "u-2"}))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.Expired(time.Now()) {
		t.Fatal("token without exp must not be treated as expired")
	}
}

func TestInspectTokenRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := InspectToken(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
