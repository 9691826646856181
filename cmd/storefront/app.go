package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/minimarket-client/internal/cart"
	"github.com/angelmondragon/minimarket-client/internal/cartview"
	"github.com/angelmondragon/minimarket-client/internal/checkout"
	"github.com/angelmondragon/minimarket-client/internal/orders"
	"github.com/angelmondragon/minimarket-client/internal/session"
	"github.com/angelmondragon/minimarket-client/internal/storage"
	"github.com/angelmondragon/minimarket-client/internal/storefront"
	"github.com/angelmondragon/minimarket-client/pkg/config"
	"github.com/angelmondragon/minimarket-client/pkg/logger"
	"github.com/angelmondragon/minimarket-client/pkg/metrics"
)

const serviceName = "storefront"

// app is the object graph every command runs against.
type app struct {
	cfg       *config.Config
	logg      *logger.Logger
	opened    *storage.Opened
	session   *session.Manager
	api       *storefront.Client
	cart      *cart.State
	submitter *checkout.Submitter
	latest    *checkout.LatestNotifier
	view      *cartview.View
	orders    orders.Service
	registry  *prometheus.Registry
}

func loadConfig(ctx context.Context) (*config.Config, *logger.Logger, error) {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Debug(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	return cfg, logg, nil
}

func newApp(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*app, error) {
	opened, err := storage.Open(ctx, cfg, logg)
	if err != nil {
		return nil, fmt.Errorf("opening state store: %w", err)
	}

	a, err := wire(ctx, cfg, logg, opened)
	if err != nil {
		_ = opened.Close()
		return nil, err
	}
	return a, nil
}

func wire(ctx context.Context, cfg *config.Config, logg *logger.Logger, opened *storage.Opened) (*app, error) {
	sess, err := session.NewManager(opened.Store, logg)
	if err != nil {
		return nil, err
	}

	api, err := storefront.NewClient(cfg.API.BaseURL, sess, storefront.WithTimeout(cfg.API.RequestTimeout))
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cartState, err := cart.Load(ctx, cart.Deps{
		Store:    opened.Store,
		Logger:   logg,
		Recorder: metrics.NewCartMetrics(registry),
	})
	if err != nil {
		return nil, err
	}

	users := &userResolver{session: sess, api: api}
	latest := &checkout.LatestNotifier{}
	submitter, err := checkout.NewSubmitter(checkout.Deps{
		Cart:     cartState,
		Orders:   api,
		Users:    users,
		Notifier: latest,
		Recorder: metrics.NewCheckoutMetrics(registry),
		Logger:   logg,
		Timeout:  cfg.Checkout.SubmitTimeout,
	})
	if err != nil {
		return nil, err
	}

	view, err := cartview.New(cartState, submitter)
	if err != nil {
		return nil, err
	}

	ordersSvc, err := orders.NewService(api, users)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logg:      logg,
		opened:    opened,
		session:   sess,
		api:       api,
		cart:      cartState,
		submitter: submitter,
		latest:    latest,
		view:      view,
		orders:    ordersSvc,
		registry:  registry,
	}, nil
}

func (a *app) Close() error {
	if a == nil {
		return nil
	}
	return a.opened.Close()
}

// userResolver reads the stored user id and falls back to asking the backend
// when login happened without a successful sync.
type userResolver struct {
	session *session.Manager
	api     *storefront.Client
}

func (u *userResolver) UserID(ctx context.Context) (string, error) {
	id, err := u.session.UserID(ctx)
	if err == nil || !errors.Is(err, session.ErrNoCredential) {
		return id, err
	}
	user, err := u.session.SyncUser(ctx, u.api)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}
