package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/minimarket-client/pkg/config"
	"github.com/angelmondragon/minimarket-client/pkg/db"
	"github.com/angelmondragon/minimarket-client/pkg/db/models"
	"github.com/angelmondragon/minimarket-client/pkg/logger"
	"github.com/angelmondragon/minimarket-client/pkg/redis"
)

// Opened is a ready store plus the release hook for its backing connection.
type Opened struct {
	Store  Store
	Driver string
	close  func() error
	ping   func(context.Context) error
}

// Ping checks the backing connection. Local drivers are always ready.
func (o *Opened) Ping(ctx context.Context) error {
	if o == nil || o.ping == nil {
		return nil
	}
	return o.ping(ctx)
}

// Close releases the backing connection, if any.
func (o *Opened) Close() error {
	if o == nil || o.close == nil {
		return nil
	}
	return o.close()
}

// Open builds the backend selected by STOREFRONT_STORE_DRIVER.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Opened, error) {
	profile := cfg.App.Profile
	driver := strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"store_driver": driver, "profile": profile})
	}

	switch driver {
	case config.StoreDriverMemory:
		return &Opened{Store: NewMemoryStore(), Driver: driver}, nil

	case config.StoreDriverFile:
		store, err := NewFileStore(cfg.Store.StateDir, profile)
		if err != nil {
			return nil, err
		}
		return &Opened{Store: store, Driver: driver}, nil

	case config.StoreDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("connecting redis store: %w", err)
		}
		store, err := NewRedisStore(client, profile)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &Opened{Store: store, Driver: driver, close: client.Close, ping: client.Ping}, nil

	case config.StoreDriverSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("connecting sql store: %w", err)
		}
		if err := client.AutoMigrate(ctx, &models.KVEntry{}); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("migrating kv_entries: %w", err)
		}
		store, err := NewSQLStore(client, profile)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &Opened{Store: store, Driver: driver, close: client.Close, ping: client.Ping}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
