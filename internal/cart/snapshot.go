package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is an immutable copy of the cart taken at a point in time.
type Snapshot struct {
	Version uint64
	Items   []LineItem
}

// Total is the sum of line totals in the snapshot.
func (s Snapshot) Total() decimal.Decimal {
	return sumTotal(s.Items)
}

// ItemCount is the sum of quantities in the snapshot.
func (s Snapshot) ItemCount() int {
	return sumCount(s.Items)
}

// stored is the document kept under the cartItems key.
type stored struct {
	Version uint64     `json:"version"`
	SavedAt time.Time  `json:"saved_at"`
	Items   []LineItem `json:"items"`
}

// legacyItem is the pre-versioned layout: a bare array of catalog products
// whose PRODUCT_QUANTITY holds the cart quantity.
type legacyItem struct {
	ID       string          `json:"_id"`
	Name     string          `json:"PRODUCT_NAME"`
	Price    decimal.Decimal `json:"PRODUCT_PRICE"`
	Quantity int             `json:"PRODUCT_QUANTITY"`
}

func encodeStored(doc stored) ([]byte, error) {
	if doc.Items == nil {
		doc.Items = []LineItem{}
	}
	return json.Marshal(doc)
}

func decodeStored(raw []byte) (stored, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return stored{}, fmt.Errorf("empty cart document")
	}
	if trimmed[0] == '[' {
		var legacy []legacyItem
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return stored{}, fmt.Errorf("decoding legacy cart: %w", err)
		}
		items := make([]LineItem, 0, len(legacy))
		for _, l := range legacy {
			items = append(items, LineItem{ProductID: l.ID, Name: l.Name, UnitPrice: l.Price, Quantity: l.Quantity})
		}
		return stored{Items: items}, nil
	}
	var doc stored
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return stored{}, fmt.Errorf("decoding cart: %w", err)
	}
	return doc, nil
}

// normalize drops unusable rows, clamps quantities and merges duplicate
// product ids so a restored cart satisfies the same rules as a live one.
func normalize(items []LineItem) (out []LineItem, dropped int) {
	out = make([]LineItem, 0, len(items))
	for _, item := range items {
		if validateProduct(Product{ID: item.ProductID, UnitPrice: item.UnitPrice}) != nil {
			dropped++
			continue
		}
		item.Quantity = ClampQuantity(item.Quantity)
		if idx := indexOf(out, item.ProductID); idx >= 0 {
			out[idx].Quantity = ClampQuantity(out[idx].Quantity + item.Quantity)
			continue
		}
		out = append(out, item)
	}
	return out, dropped
}
