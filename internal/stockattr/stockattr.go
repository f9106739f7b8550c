// Package stockattr implements C10: deriving in-stock/out-of-stock flips for
// the IoR-side "Наличие" attribute from the reconciler's stock snapshot, and
// batching only the products whose value actually needs to change.
package stockattr

import (
	"github.com/floorsync/core/internal/iorclient"
	"github.com/floorsync/core/internal/model"
	"github.com/floorsync/core/internal/projection"
)

const (
	attrName  = "Наличие"
	inStockAt = 2.0

	inStockValue    = "В наличии (2-3 раб. дня)"
	outOfStockValue = "Под заказ (5-8 недель)"
)

// sentinels is the pair of attribute values this attribute toggles between.
// The literal values are fixed by the catalog's attribute dictionary, but we
// still require both to actually appear somewhere in the snapshot before
// writing either one, so a dictionary change upstream is caught as a skip
// rather than silently mis-tagging every product.
type sentinels struct {
	inStock    string
	outOfStock string
}

// Compute derives the set of stock-attribute patches needed across products,
// given the current IoR snapshot and the freshest stock rows. It returns no
// updates (and ok=false) when the two sentinel values can't be discovered,
// since there is then nothing safe to write.
func Compute(products []model.IoRProduct, stock []model.Stock) ([]iorclient.StockAttributeUpdate, bool) {
	sv, ok := discoverSentinels(products)
	if !ok {
		return nil, false
	}

	var updates []iorclient.StockAttributeUpdate

	for _, p := range products {
		current, hasAttr := currentValue(p.Attributes)
		if !hasAttr {
			continue
		}

		want := sv.outOfStock
		if projection.GetQuantityBySKU(p.Article, stock) > inStockAt {
			want = sv.inStock
		}

		if current == want {
			continue
		}

		updates = append(updates, iorclient.StockAttributeUpdate{ProductID: p.ID, Value: want})
	}

	return updates, true
}

func currentValue(attrs []model.IoRAttribute) (string, bool) {
	for _, a := range attrs {
		if a.Name == attrName {
			return a.ResolvedValue(), true
		}
	}

	return "", false
}

// discoverSentinels confirms both known sentinel literals are actually
// present among the snapshot's "Наличие" values before returning them,
// per §4.10: "skipped with a logged error (non-fatal)" when they can't be
// discovered.
func discoverSentinels(products []model.IoRProduct) (sentinels, bool) {
	var sawIn, sawOut bool

	for _, p := range products {
		v, ok := currentValue(p.Attributes)
		if !ok {
			continue
		}

		switch v {
		case inStockValue:
			sawIn = true
		case outOfStockValue:
			sawOut = true
		}
	}

	if !sawIn || !sawOut {
		return sentinels{}, false
	}

	return sentinels{inStock: inStockValue, outOfStock: outOfStockValue}, true
}
