// Package session keeps the shopper's bearer token and user id in the
// persistent store.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/minimarket-client/internal/storage"
	"github.com/angelmondragon/minimarket-client/internal/storefront"
	"github.com/angelmondragon/minimarket-client/pkg/auth"
	pkgerrors "github.com/angelmondragon/minimarket-client/pkg/errors"
	"github.com/angelmondragon/minimarket-client/pkg/logger"
	"go.uber.org/multierr"
)

var (
	ErrNoCredential       = pkgerrors.New(pkgerrors.CodeUnauthorized, "no valid session, log in first")
	ErrAccountDeactivated = pkgerrors.New(pkgerrors.CodeUnauthorized, "account is deactivated")
)

type userFetcher interface {
	Me(ctx context.Context) (*storefront.User, error)
}

// Manager reads and writes the session keys.
type Manager struct {
	store storage.Store
	logg  *logger.Logger
	now   func() time.Time
}

func NewManager(store storage.Store, logg *logger.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if logg == nil {
		logg = logger.Discard()
	}
	return &Manager{store: store, logg: logg, now: time.Now}, nil
}

// Login stores a new bearer token and forgets the previous user id.
func (m *Manager) Login(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	claims, err := auth.InspectToken(token)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "token is not a valid jwt")
	}
	if claims.Expired(m.now()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "token is already expired")
	}
	if err := m.store.Save(ctx, storage.KeyToken, []byte(token)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving token")
	}
	if err := m.store.Remove(ctx, storage.KeyUserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resetting user id")
	}
	return nil
}

// Token returns the stored bearer token, or ErrNoCredential when it is
// missing, unreadable or expired.
func (m *Manager) Token(ctx context.Context) (string, error) {
	raw, found, err := m.store.Load(ctx, storage.KeyToken)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading token")
	}
	if !found || len(raw) == 0 {
		return "", ErrNoCredential
	}
	token := string(raw)
	claims, err := auth.InspectToken(token)
	if err != nil {
		m.logg.Warn(ctx, "stored token is not a jwt")
		return "", ErrNoCredential
	}
	if claims.Expired(m.now()) {
		m.logg.Info(ctx, "stored token expired")
		return "", ErrNoCredential
	}
	return token, nil
}

// UserID returns the id recorded by the last SyncUser.
func (m *Manager) UserID(ctx context.Context) (string, error) {
	raw, found, err := m.store.Load(ctx, storage.KeyUserID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user id")
	}
	if !found || strings.TrimSpace(string(raw)) == "" {
		return "", ErrNoCredential
	}
	return string(raw), nil
}

// SyncUser asks the backend who the token belongs to and records the user id.
func (m *Manager) SyncUser(ctx context.Context, api userFetcher) (*storefront.User, error) {
	user, err := api.Me(ctx)
	if err != nil {
		return nil, err
	}
	if user.Deleted {
		return user, ErrAccountDeactivated
	}
	if strings.TrimSpace(user.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user/me response missing _id")
	}
	if err := m.store.Save(ctx, storage.KeyUserID, []byte(user.ID)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving user id")
	}
	return user, nil
}

// Logout removes both session keys.
func (m *Manager) Logout(ctx context.Context) error {
	err := multierr.Combine(
		m.store.Remove(ctx, storage.KeyToken),
		m.store.Remove(ctx, storage.KeyUserID),
	)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing session")
	}
	return nil
}
