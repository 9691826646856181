package orders

import (
	"time"

	"github.com/angelmondragon/minimarket-client/pkg/enums"
	"github.com/shopspring/decimal"
)

// OrderSummary is one row of the order history list.
type OrderSummary struct {
	ID          string            `json:"id"`
	Status      enums.OrderStatus `json:"status"`
	StatusLabel string            `json:"status_label"`
	Price       decimal.Decimal   `json:"price"`
	TotalItems  int               `json:"total_items"`
	CreatedAt   time.Time         `json:"created_at"`
}

// OrderPage is one page of the history list.
type OrderPage struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// DetailLine joins an order line with the catalog.
type DetailLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	InCatalog bool            `json:"in_catalog"`
}

// OrderDetail is the purchase detail page.
type OrderDetail struct {
	OrderSummary
	UpdatedAt time.Time    `json:"updated_at"`
	Lines     []DetailLine `json:"lines"`
}

// Stats aggregates the dashboard counters.
type Stats struct {
	Active         int             `json:"active"`
	Completed      int             `json:"completed"`
	Canceled       int             `json:"canceled"`
	CompletedValue decimal.Decimal `json:"completed_value"`
	ActiveValue    decimal.Decimal `json:"active_value"`
	Latest         []OrderSummary  `json:"latest"`
}
