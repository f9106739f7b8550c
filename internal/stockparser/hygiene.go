package stockparser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/floorsync/core/internal/model"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// hygiene applies the collapse/trim/upper-case pass required of every
// parser's output before it reaches C5 (§4.4).
func hygiene(r model.Stock) model.Stock {
	r.Name = normalizeName(r.Name)
	r.Supplier = strings.ToUpper(strings.TrimSpace(r.Supplier))

	return r
}

func normalizeName(name string) string {
	name = whitespaceRun.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	return strings.ToUpper(name)
}

// parseQuantity parses a spreadsheet quantity cell, normalizing a comma
// decimal separator to a dot first (§4.9 uses the same normalization for
// stock aggregation). Returns ok=false for non-numeric cells, which callers
// must treat as "drop the row" per §4.4.
func parseQuantity(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, ",", ".")

	if raw == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}
