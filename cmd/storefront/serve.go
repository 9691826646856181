package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/angelmondragon/minimarket-client/api/routes"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cart view over HTTP",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			if addr == "" {
				addr = a.cfg.View.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return serve(ctx, a, addr)
		}),
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to STOREFRONT_VIEW_ADDR)")
	return cmd
}

func serve(ctx context.Context, a *app, addr string) error {
	handler, err := routes.NewRouter(a.cfg, a.logg, routes.Deps{
		View:          a.view,
		Cart:          a.cart,
		Checkout:      a.submitter,
		Notifications: a.latest,
		Catalog:       a.api,
		Orders:        a.orders,
		Store:         a.opened,
		Gatherer:      a.registry,
	})
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logCtx := a.logg.WithFields(ctx, map[string]any{
		"env":          a.cfg.App.Env,
		"addr":         listener.Addr().String(),
		"store_driver": a.opened.Driver,
	})
	a.logg.Info(logCtx, "starting view server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logg.Info(logCtx, "view server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if serveErr := <-errCh; !errors.Is(serveErr, http.ErrServerClosed) {
		err = multierr.Append(err, serveErr)
	}
	return err
}
