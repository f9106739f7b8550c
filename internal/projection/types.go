// Package projection implements C9: the pure function that turns one IoR
// product plus reference snapshots into a storefront-shaped payload (or
// none, when the product has no storefront category). It performs no I/O
// and is deterministic, the unit property-based tests target (§4.9, §8.4).
package projection

import "github.com/floorsync/core/internal/model"

// MsData is the IoR-side reference snapshot for one reconcile cycle:
// currencies keyed by char code (the IoR catalog's sale-price currency
// references resolve to the char code as their trailing path component),
// countries/units keyed by the id their MetaRef resolves against.
type MsData struct {
	CurrenciesByID map[string]model.Currency
	CountriesByID  map[string]model.Country
	UnitsByID      map[string]model.Unit
}

// WooData is the storefront-side reference snapshot: categories and
// attributes keyed by their display name.
type WooData struct {
	CategoriesByName map[string]model.Cat
	AttributesByName map[string]model.Attr
}
