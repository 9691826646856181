package cart

import (
	"strings"

	pkgerrors "github.com/angelmondragon/minimarket-client/pkg/errors"
	"github.com/shopspring/decimal"
)

// Quantity bounds for a single line item.
const (
	MinQuantity = 1
	MaxQuantity = 99
)

// Product is the catalog entry a shopper adds to the cart.
type Product struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
}

// LineItem is one product in the cart.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal is unit price times quantity.
func (l LineItem) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ClampQuantity forces qty into [MinQuantity, MaxQuantity].
func ClampQuantity(qty int) int {
	if qty < MinQuantity {
		return MinQuantity
	}
	if qty > MaxQuantity {
		return MaxQuantity
	}
	return qty
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if p.UnitPrice.IsNegative() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "product %s has a negative price", p.ID)
	}
	return nil
}

func cloneItems(items []LineItem) []LineItem {
	if len(items) == 0 {
		return []LineItem{}
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func indexOf(items []LineItem, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func sumTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func sumCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
