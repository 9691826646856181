package cartview

import (
	"strconv"
	"strings"

	"github.com/angelmondragon/minimarket-client/internal/cart"
)

// ParseQuantity reads the leading integer of raw, the way a number box does
// while the shopper is typing ("12x" is 12, "x12" is nothing). The result is
// clamped to the cart's quantity range.
func ParseQuantity(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	digits := strings.TrimLeft(s[:end], "0")
	if end == 0 {
		return 0, false
	}
	if len(digits) > 3 {
		if sign == "-" {
			return cart.MinQuantity, true
		}
		return cart.MaxQuantity, true
	}
	if digits == "" {
		digits = "0"
	}
	n, err := strconv.Atoi(sign + digits)
	if err != nil {
		return 0, false
	}
	return cart.ClampQuantity(n), true
}
