package storefront

import (
	"time"

	"github.com/angelmondragon/minimarket-client/pkg/enums"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Quantity is the stock on hand.
type Product struct {
	ID         string          `json:"_id"`
	Name       string          `json:"PRODUCT_NAME"`
	CategoryID string          `json:"PRODUCT_CATEGORY"`
	Quantity   int             `json:"PRODUCT_QUANTITY"`
	Price      decimal.Decimal `json:"PRODUCT_PRICE"`
	Deleted    bool            `json:"PRODUCT_DELETED,omitempty"`
}

type Category struct {
	ID      string `json:"_id"`
	Name    string `json:"CATEGORY_NAME"`
	Deleted bool   `json:"CATEGORY_DELETED,omitempty"`
}

// User is the authenticated shopper returned by /user/me.
type User struct {
	ID      string `json:"_id"`
	Name    string `json:"USER_NAME"`
	Email   string `json:"USER_EMAIL"`
	Deleted bool   `json:"USER_DELETED"`
}

// OrderLine is one product reference inside an order.
type OrderLine struct {
	ProductID string `json:"PRODUCT_ID"`
	Quantity  int    `json:"PRODUCT_QUANTITY"`
}

// Order is a submitted cart as stored by the backend.
type Order struct {
	ID        string            `json:"_id"`
	UserID    string            `json:"CART_USER_ID"`
	Lines     []OrderLine       `json:"CART_PRODUCT"`
	Price     decimal.Decimal   `json:"CART_PRICE"`
	Status    enums.OrderStatus `json:"CART_STATUS"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// OrderRequest is the immutable body sent to POST /cart/create.
type OrderRequest struct {
	UserID string      `json:"CART_USER_ID"`
	Lines  []OrderLine `json:"CART_PRODUCT"`
}

// RejectionKind separates business conflicts from everything else.
type RejectionKind string

const (
	RejectionConflict RejectionKind = "conflict"
	RejectionFailure  RejectionKind = "failure"
)

// OrderResult is either an accepted order id or a rejection with the
// server-provided title and message.
type OrderResult struct {
	Accepted   bool
	OrderID    string
	Kind       RejectionKind
	Title      string
	Message    string
	StatusCode int
}
