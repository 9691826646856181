package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:3333" {
		t.Fatalf("unexpected api base url %q", cfg.API.BaseURL)
	}
	if cfg.Store.Driver != StoreDriverFile {
		t.Fatalf("expected default file driver, got %q", cfg.Store.Driver)
	}
	if got := cfg.Checkout.SubmitTimeout; got != 15*time.Second {
		t.Fatalf("expected submit timeout 15s, got %v", got)
	}
	if !cfg.App.IsDev() {
		t.Fatalf("expected dev env by default, got %q", cfg.App.Env)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAPIBaseURL); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAPIBaseURL, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreDriver, "indexeddb")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown store driver to be rejected")
	}
}

func TestLoad_RedisDriverNeedsAddress(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreDriver, StoreDriverRedis)

	if _, err := Load(); err == nil {
		t.Fatal("expected redis driver without url to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	if _, err := Load(); err != nil {
		t.Fatalf("expected redis driver with url to load, got %v", err)
	}
}

func TestLoad_SQLiteDefaultsIntoStateDir(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreDriver, StoreDriverSQL)
	t.Setenv(EnvStateDir, "/tmp/mm")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if want := filepath.Join("/tmp/mm", "storefront.db"); cfg.DB.DSN != want {
		t.Fatalf("expected sqlite dsn %q, got %q", want, cfg.DB.DSN)
	}
}

func TestLoad_PostgresLegacyDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreDriver, StoreDriverSQL)
	t.Setenv(EnvDBDialect, DialectPostgres)

	if _, err := Load(); err == nil {
		t.Fatal("expected postgres without dsn or host parts to fail")
	}

	t.Setenv(EnvDBHost, "db")
	t.Setenv(EnvDBUser, "mm")
	t.Setenv(EnvDBName, "market")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.DB.DSN != "postgres://mm@db:5432/market?sslmode=disable" {
		t.Fatalf("unexpected dsn %q", cfg.DB.DSN)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAPIBaseURL, "http://localhost:3333")
}
