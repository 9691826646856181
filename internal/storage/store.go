// Package storage persists small key/value documents for a storefront profile.
package storage

import (
	"context"
	"fmt"
	"strings"
)

// Keys written by the storefront client.
const (
	KeyCartItems = "cartItems"
	KeyToken     = "token"
	KeyUserID    = "userId"
)

// Store is the durable key/value surface used by the cart and the session.
// Writes are last-write-wins; Load reports whether the key existed.
type Store interface {
	Save(ctx context.Context, key string, value []byte) error
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Remove(ctx context.Context, key string) error
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage key is required")
	}
	if strings.ContainsAny(key, `/\:`) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
