package cartview

import (
	"strings"

	"github.com/angelmondragon/minimarket-client/internal/storefront"
)

// FilterProducts keeps products in category (any when empty) whose name
// contains search, ignoring case. Deleted products are never listed.
func FilterProducts(products []storefront.Product, category, search string) []storefront.Product {
	needle := strings.ToLower(strings.TrimSpace(search))
	category = strings.TrimSpace(category)

	out := make([]storefront.Product, 0, len(products))
	for _, p := range products {
		if p.Deleted {
			continue
		}
		if category != "" && p.CategoryID != category {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}
