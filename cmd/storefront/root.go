package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

type appKey struct{}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Minimarket storefront cart and checkout client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, logg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			a, err := newApp(ctx, cfg, logg)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(ctx, appKey{}, a))
			return nil
		},
	}

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newProductsCmd(),
		newAddCmd(),
		newCartCmd(),
		newIncCmd(),
		newDecCmd(),
		newQtyCmd(),
		newRmCmd(),
		newClearCmd(),
		newCheckoutCmd(),
		newOrdersCmd(),
		newOrderCmd(),
		newStatsCmd(),
		newServeCmd(),
	)
	return root
}

func appFrom(cmd *cobra.Command) (*app, error) {
	a, ok := cmd.Context().Value(appKey{}).(*app)
	if !ok || a == nil {
		return nil, errors.New("storefront not initialised")
	}
	return a, nil
}

// withApp runs fn against the command's app and closes the app afterwards.
func withApp(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, a.Close())
		}()
		return fn(cmd, a, args)
	}
}
