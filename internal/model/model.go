// Package model holds the plain data types shared across pipeline stages:
// the four persisted entities of the schema, plus the in-memory snapshot
// types the reconciler builds once per cycle.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BaseCurrencyCode is the fixed-rate base unit; its rate is always 1.0 and
// it must exist after every successful currency cycle.
const BaseCurrencyCode = "RUB"

// Currency is an FX snapshot row: rubles-per-unit for a given ISO-ish code.
type Currency struct {
	ID        uuid.UUID
	CharCode  string
	Name      string
	Rate      decimal.Decimal
	UpdatedAt time.Time
}

// Stock is one supplier's reported quantity for one normalized product name.
type Stock struct {
	ID        uuid.UUID
	Supplier  string
	Name      string
	Quantity  float64
	UpdatedAt time.Time
}

// PriceKey is the natural upsert key for Price rows.
type PriceKey struct {
	Supplier     string
	Manufacturer string
	Collection   string
}

// Price is a catalog price-list entry, keyed by (supplier, manufacturer,
// collection). At least one of the four price fields must be non-nil;
// callers validate this before Upsert.
type Price struct {
	ID          uuid.UUID
	PriceKey
	Widths      []float64
	ThicknessMM *float64
	Composition *string

	PurchasePriceRoll      *decimal.Decimal
	RecommendedPriceRoll   *decimal.Decimal
	PurchasePriceCoupon    *decimal.Decimal
	RecommendedPriceCoupon *decimal.Decimal

	UpdatedAt time.Time
}

// HasAnyPrice reports whether at least one of the four price fields is set,
// the invariant required before a Price row may be persisted.
func (p Price) HasAnyPrice() bool {
	return p.PurchasePriceRoll != nil ||
		p.RecommendedPriceRoll != nil ||
		p.PurchasePriceCoupon != nil ||
		p.RecommendedPriceCoupon != nil
}

// EventAction is the kind of change an MsEvent describes.
type EventAction string

const (
	EventCreate EventAction = "CREATE"
	EventUpdate EventAction = "UPDATE"
	EventDelete EventAction = "DELETE"
)

// MsEvent is a durable, at-least-once change notification from the IoR.
type MsEvent struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	Action     EventAction
	Fields     []string
	Processed  bool
	ReceivedAt time.Time
}

// IsStockOnly reports whether this event carries only the stock-attribute
// field, in which case C6 drops it (handled instead by C10).
func (e MsEvent) IsStockOnly(stockFieldName string) bool {
	return len(e.Fields) == 1 && e.Fields[0] == stockFieldName
}
