package dbx

import (
	"context"
	"time"

	"github.com/alcionai/clues"
	"github.com/google/uuid"

	"github.com/floorsync/core/internal/model"
)

// UpsertPrice inserts or updates a Price keyed by (supplier, manufacturer,
// collection). Callers must have already checked model.Price.HasAnyPrice.
func (s *Store) UpsertPrice(ctx context.Context, p model.Price) error {
	if !p.HasAnyPrice() {
		return clues.New("price has no purchase or recommended value set").
			With("supplier", p.Supplier, "manufacturer", p.Manufacturer, "collection", p.Collection)
	}

	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	_, err := s.Pool.Exec(ctx, `
		INSERT INTO prices (
			id, supplier, manufacturer, collection, widths, thickness_mm, composition,
			purchase_price_roll, recommended_price_roll, purchase_price_coupon, recommended_price_coupon,
			updated
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (supplier, manufacturer, collection) DO UPDATE SET
			widths = EXCLUDED.widths,
			thickness_mm = EXCLUDED.thickness_mm,
			composition = EXCLUDED.composition,
			purchase_price_roll = EXCLUDED.purchase_price_roll,
			recommended_price_roll = EXCLUDED.recommended_price_roll,
			purchase_price_coupon = EXCLUDED.purchase_price_coupon,
			recommended_price_coupon = EXCLUDED.recommended_price_coupon,
			updated = EXCLUDED.updated
	`, id, p.Supplier, p.Manufacturer, p.Collection, p.Widths, p.ThicknessMM, p.Composition,
		p.PurchasePriceRoll, p.RecommendedPriceRoll, p.PurchasePriceCoupon, p.RecommendedPriceCoupon,
		time.Now().UTC())
	if err != nil {
		return clues.Wrap(err, "upserting price").
			With("supplier", p.Supplier, "manufacturer", p.Manufacturer, "collection", p.Collection)
	}

	return nil
}

// GetPricesBySupplier lists every price row for a given supplier.
func (s *Store) GetPricesBySupplier(ctx context.Context, supplier string) ([]model.Price, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, supplier, manufacturer, collection, widths, thickness_mm, composition,
			purchase_price_roll, recommended_price_roll, purchase_price_coupon, recommended_price_coupon, updated
		FROM prices WHERE supplier = $1
		ORDER BY manufacturer, collection
	`, supplier)
	if err != nil {
		return nil, clues.Wrap(err, "getting prices by supplier").With("supplier", supplier)
	}
	defer rows.Close()

	return scanPriceRows(rows)
}

// FindPrices performs a simple paginated, case-insensitive substring search
// across manufacturer and collection.
func (s *Store) FindPrices(ctx context.Context, query string, limit, offset int) ([]model.Price, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	rows, err := s.Pool.Query(ctx, `
		SELECT id, supplier, manufacturer, collection, widths, thickness_mm, composition,
			purchase_price_roll, recommended_price_roll, purchase_price_coupon, recommended_price_coupon, updated
		FROM prices
		WHERE manufacturer ILIKE '%' || $1 || '%' OR collection ILIKE '%' || $1 || '%'
		ORDER BY manufacturer, collection
		LIMIT $2 OFFSET $3
	`, query, limit, offset)
	if err != nil {
		return nil, clues.Wrap(err, "finding prices").With("query", query)
	}
	defer rows.Close()

	return scanPriceRows(rows)
}

func scanPriceRows(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]model.Price, error) {
	var out []model.Price

	for rows.Next() {
		var p model.Price

		if err := rows.Scan(
			&p.ID, &p.Supplier, &p.Manufacturer, &p.Collection, &p.Widths, &p.ThicknessMM, &p.Composition,
			&p.PurchasePriceRoll, &p.RecommendedPriceRoll, &p.PurchasePriceCoupon, &p.RecommendedPriceCoupon, &p.UpdatedAt,
		); err != nil {
			return nil, clues.Wrap(err, "scanning price row")
		}

		out = append(out, p)
	}

	return out, rows.Err()
}
