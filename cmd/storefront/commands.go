package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/minimarket-client/internal/cartview"
	"github.com/angelmondragon/minimarket-client/internal/checkout"
	"github.com/angelmondragon/minimarket-client/internal/orders"
	"github.com/angelmondragon/minimarket-client/internal/session"
	"github.com/angelmondragon/minimarket-client/internal/storefront"
	pkgerrors "github.com/angelmondragon/minimarket-client/pkg/errors"
	"github.com/angelmondragon/minimarket-client/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

var errCheckoutNotCompleted = errors.New("checkout was not completed")

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <token>",
		Short: "Store a bearer token and resolve the shopper",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			if err := a.session.Login(ctx, args[0]); err != nil {
				return err
			}
			user, err := a.session.SyncUser(ctx, a.api)
			if errors.Is(err, session.ErrAccountDeactivated) {
				return multierr.Combine(err, a.session.Logout(ctx))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", displayName(user))
			return nil
		}),
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

func newProductsCmd() *cobra.Command {
	var category, search string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			products, err := a.api.ListProducts(cmd.Context())
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), cartview.FilterProducts(products, category, search))
			return nil
		}),
	}
	cmd.Flags().StringVar(&category, "category", "", "only products of this category id")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive name filter")
	return cmd
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a catalog product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			products, err := a.api.ListProducts(ctx)
			if err != nil {
				return err
			}
			product, ok := findProduct(products, args[0])
			if !ok {
				return pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s not found", args[0])
			}
			if err := a.view.ClickAdd(ctx, product); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), a.view)
			return nil
		}),
	}
}

func newCartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			printCart(cmd.OutOrStdout(), a.view)
			return nil
		}),
	}
}

func newIncCmd() *cobra.Command {
	return itemCmd("inc <product-id>", "Increase a line's quantity by one", func(cmd *cobra.Command, a *app, id string) error {
		return a.view.ClickIncrement(cmd.Context(), id)
	})
}

func newDecCmd() *cobra.Command {
	return itemCmd("dec <product-id>", "Decrease a line's quantity by one, never below one", func(cmd *cobra.Command, a *app, id string) error {
		return a.view.ClickDecrement(cmd.Context(), id)
	})
}

func newRmCmd() *cobra.Command {
	return itemCmd("rm <product-id>", "Remove a line from the cart", func(cmd *cobra.Command, a *app, id string) error {
		return a.view.ClickRemove(cmd.Context(), id)
	})
}

func newQtyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "qty <product-id> <value>",
		Short: "Set a line's quantity as typed text",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.view.TypeQuantity(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), a.view)
			return nil
		}),
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := a.view.ClickClear(cmd.Context()); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), a.view)
			return nil
		}),
	}
}

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Submit the cart as an order and wait for the outcome",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			sub, err := a.view.ClickFinalize(cmd.Context())
			if err != nil {
				return err
			}
			outcome, err := sub.Wait(cmd.Context())
			if err != nil {
				return err
			}
			printNotification(cmd.OutOrStdout(), outcome.Notification)
			if outcome.Notification.Kind != checkout.NotifySuccess {
				return errCheckoutNotCompleted
			}
			return nil
		}),
	}
}

func newOrdersCmd() *cobra.Command {
	var params pagination.Params
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List past orders, newest first",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			list, err := a.orders.List(cmd.Context())
			if err != nil {
				return err
			}
			page, err := orders.Paginate(list, params)
			if err != nil {
				return err
			}
			printOrders(cmd.OutOrStdout(), page)
			return nil
		}),
	}
	cmd.Flags().IntVar(&params.Limit, "limit", pagination.DefaultLimit, "orders per page")
	cmd.Flags().StringVar(&params.Cursor, "cursor", "", "cursor printed by the previous page")
	return cmd
}

func newOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "order <order-id>",
		Short: "Show one order with its products",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			detail, err := a.orders.Detail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printOrderDetail(cmd.OutOrStdout(), detail)
			return nil
		}),
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise order history",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			stats, err := a.orders.Stats(cmd.Context())
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		}),
	}
}

func itemCmd(use, short string, action func(cmd *cobra.Command, a *app, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := action(cmd, a, strings.TrimSpace(args[0])); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), a.view)
			return nil
		}),
	}
}

func findProduct(products []storefront.Product, id string) (storefront.Product, bool) {
	id = strings.TrimSpace(id)
	for _, p := range products {
		if p.ID == id && !p.Deleted {
			return p, true
		}
	}
	return storefront.Product{}, false
}

func displayName(u *storefront.User) string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

func printProducts(w io.Writer, products []storefront.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", p.ID, p.Name, cartview.FormatPrice(p.Price), p.Quantity)
	}
	_ = tw.Flush()
}

func printCart(w io.Writer, view *cartview.View) {
	rows := view.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(w, "Cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tUNIT\tTOTAL")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.ProductID, r.Name, r.Quantity, formatAmount(r.UnitPrice), formatAmount(r.LineTotal))
	}
	_ = tw.Flush()
	totals := view.Totals()
	fmt.Fprintf(w, "%d item(s), total %s\n", totals.ItemCount, formatAmount(totals.Total))
}

func printNotification(w io.Writer, n checkout.Notification) {
	fmt.Fprintf(w, "%s: %s\n", n.Title, n.Message)
	if n.OrderID != "" {
		fmt.Fprintf(w, "Order %s, total %s\n", n.OrderID, cartview.FormatPrice(n.Total))
	}
}

func printOrders(w io.Writer, page *orders.OrderPage) {
	if len(page.Orders) == 0 {
		fmt.Fprintln(w, "No orders yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTATUS\tITEMS\tTOTAL")
	for _, o := range page.Orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", o.ID, o.CreatedAt.Local().Format("02/01/2006 15:04"), o.StatusLabel, o.TotalItems, cartview.FormatPrice(o.Price))
	}
	_ = tw.Flush()
	if page.NextCursor != "" {
		fmt.Fprintf(w, "More: --cursor %s\n", page.NextCursor)
	}
}

func printOrderDetail(w io.Writer, d *orders.OrderDetail) {
	fmt.Fprintf(w, "Order %s (%s) placed %s\n", d.ID, d.StatusLabel, d.CreatedAt.Local().Format("02/01/2006 15:04"))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tCATEGORY\tQTY\tUNIT\tTOTAL")
	for _, l := range d.Lines {
		name := l.Name
		if !l.InCatalog {
			name = l.ProductID + " (unavailable)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", name, l.Category, l.Quantity, cartview.FormatPrice(l.UnitPrice), cartview.FormatPrice(l.LineTotal))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d item(s), total %s\n", d.TotalItems, cartview.FormatPrice(d.Price))
}

func printStats(w io.Writer, s *orders.Stats) {
	fmt.Fprintf(w, "Pending: %d (%s)\n", s.Active, cartview.FormatPrice(s.ActiveValue))
	fmt.Fprintf(w, "Completed: %d (%s)\n", s.Completed, cartview.FormatPrice(s.CompletedValue))
	fmt.Fprintf(w, "Canceled: %d\n", s.Canceled)
}

func formatAmount(fixed string) string {
	d, err := decimal.NewFromString(fixed)
	if err != nil {
		return fixed
	}
	return cartview.FormatPrice(d)
}
