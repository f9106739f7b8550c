package projection

import (
	"strconv"
	"strings"

	"github.com/floorsync/core/internal/model"
)

// GetQuantityBySKU sums every stock row whose upper-cased name contains
// every whitespace-delimited token of sku (also upper-cased), normalizing
// a comma decimal separator to a dot in both sku and name before comparing.
// It is associative under any permutation of stock (§8.5): summation order
// never changes the result.
func GetQuantityBySKU(sku string, stock []model.Stock) float64 {
	tokens := strings.Fields(strings.ToUpper(strings.ReplaceAll(sku, ",", ".")))
	if len(tokens) == 0 {
		return 0
	}

	var total float64

	for _, s := range stock {
		name := strings.ToUpper(strings.ReplaceAll(s.Name, ",", "."))

		matches := true

		for _, tok := range tokens {
			if !strings.Contains(name, tok) {
				matches = false
				break
			}
		}

		if !matches {
			continue
		}

		total += normalizeQuantity(s.Quantity)
	}

	return total
}

// normalizeQuantity exists only to document the comma/dot normalization
// rule; model.Stock.Quantity is already a float64 by the time it reaches
// this package, so there's nothing left to convert -- the normalization
// itself happens in stockparser before persistence.
func normalizeQuantity(q float64) float64 {
	return q
}

func parseCommaFloat(raw string) (float64, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}
