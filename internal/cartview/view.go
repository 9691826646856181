// Package cartview adapts the cart and the checkout submitter to what the
// screens show and to the gestures a shopper makes.
package cartview

import (
	"context"
	"fmt"

	"github.com/angelmondragon/minimarket-client/internal/cart"
	"github.com/angelmondragon/minimarket-client/internal/checkout"
	"github.com/angelmondragon/minimarket-client/internal/storefront"
	"github.com/angelmondragon/minimarket-client/pkg/enums"
	"github.com/shopspring/decimal"
)

type cartState interface {
	AddItem(ctx context.Context, p cart.Product, qty int) error
	SetQuantity(ctx context.Context, productID string, qty int) error
	IncrementQuantity(ctx context.Context, productID string) error
	DecrementQuantity(ctx context.Context, productID string) error
	RemoveItem(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
	Items() []cart.LineItem
	Total() decimal.Decimal
	ItemCount() int
}

type submitter interface {
	Submit(ctx context.Context) (*checkout.Submission, error)
	State() enums.SubmissionState
}

// Badge is the item counter on the cart icon.
type Badge struct {
	Count   int  `json:"count"`
	Visible bool `json:"visible"`
}

// Row is one line of the cart dialog.
type Row struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

// Totals is the footer of the cart dialog.
type Totals struct {
	Total     string                `json:"total"`
	ItemCount int                   `json:"item_count"`
	CanSubmit bool                  `json:"can_submit"`
	State     enums.SubmissionState `json:"state"`
}

// View binds a cart and a submitter.
type View struct {
	cart      cartState
	submitter submitter
}

func New(c cartState, s submitter) (*View, error) {
	if c == nil {
		return nil, fmt.Errorf("cart required")
	}
	if s == nil {
		return nil, fmt.Errorf("submitter required")
	}
	return &View{cart: c, submitter: s}, nil
}

func (v *View) Badge() Badge {
	count := v.cart.ItemCount()
	return Badge{Count: count, Visible: count > 0}
}

func (v *View) Rows() []Row {
	items := v.cart.Items()
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, Row{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal().StringFixed(2),
		})
	}
	return rows
}

// Totals reports CanSubmit only for a non-empty cart with no submission in flight.
func (v *View) Totals() Totals {
	count := v.cart.ItemCount()
	state := v.submitter.State()
	return Totals{
		Total:     v.cart.Total().StringFixed(2),
		ItemCount: count,
		CanSubmit: count > 0 && state != enums.SubmissionPending,
		State:     state,
	}
}

// ClickAdd adds one unit of a catalog product.
func (v *View) ClickAdd(ctx context.Context, p storefront.Product) error {
	return v.cart.AddItem(ctx, cart.Product{ID: p.ID, Name: p.Name, UnitPrice: p.Price}, 1)
}

func (v *View) ClickIncrement(ctx context.Context, productID string) error {
	return v.cart.IncrementQuantity(ctx, productID)
}

func (v *View) ClickDecrement(ctx context.Context, productID string) error {
	return v.cart.DecrementQuantity(ctx, productID)
}

// TypeQuantity applies text typed into the quantity box. Text without a
// leading number leaves the quantity as it was.
func (v *View) TypeQuantity(ctx context.Context, productID, raw string) error {
	qty, ok := ParseQuantity(raw)
	if !ok {
		return nil
	}
	return v.cart.SetQuantity(ctx, productID, qty)
}

func (v *View) ClickRemove(ctx context.Context, productID string) error {
	return v.cart.RemoveItem(ctx, productID)
}

func (v *View) ClickClear(ctx context.Context) error {
	return v.cart.Clear(ctx)
}

// ClickFinalize starts checkout.
func (v *View) ClickFinalize(ctx context.Context) (*checkout.Submission, error) {
	return v.submitter.Submit(ctx)
}
