package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/minimarket-client/api/responses"
	"github.com/angelmondragon/minimarket-client/pkg/config"
	pkgerrors "github.com/angelmondragon/minimarket-client/pkg/errors"
	"github.com/angelmondragon/minimarket-client/pkg/logger"
)

const envHeader = "X-Storefront-Env"

// Pinger reports whether a backing connection is usable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the state store backend.
func HealthReady(cfg *config.Config, store Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "state store unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "store": cfg.Store.Driver})
	}
}
