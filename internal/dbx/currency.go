package dbx

import (
	"context"
	"time"

	"github.com/alcionai/clues"
	"github.com/google/uuid"

	"github.com/floorsync/core/internal/model"
)

// UpsertCurrency inserts or updates a currency row keyed by char_code.
// Missing codes on a given poll are never deleted (§4.1): this is purely
// additive/refreshing.
func (s *Store) UpsertCurrency(ctx context.Context, c model.Currency) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO currencies (id, name, char_code, rate, updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (char_code) DO UPDATE
		SET name = EXCLUDED.name, rate = EXCLUDED.rate, updated = EXCLUDED.updated
	`, c.ID, c.Name, c.CharCode, c.Rate, c.UpdatedAt)
	if err != nil {
		return clues.Wrap(err, "upserting currency").With("char_code", c.CharCode)
	}

	return nil
}

// EnsureBaseCurrency guarantees the RUB row exists with rate 1.0, per the
// invariant in §8.2.
func (s *Store) EnsureBaseCurrency(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO currencies (id, name, char_code, rate, updated)
		VALUES ($1, 'Российский рубль', $2, 1.0, $3)
		ON CONFLICT (char_code) DO NOTHING
	`, uuid.New(), model.BaseCurrencyCode, time.Now().UTC())
	if err != nil {
		return clues.Wrap(err, "ensuring base currency")
	}

	return nil
}

// GetCurrency looks up a single currency by char_code.
func (s *Store) GetCurrency(ctx context.Context, charCode string) (model.Currency, error) {
	var c model.Currency

	row := s.Pool.QueryRow(ctx, `
		SELECT id, name, char_code, rate, updated FROM currencies WHERE char_code = $1
	`, charCode)

	if err := row.Scan(&c.ID, &c.Name, &c.CharCode, &c.Rate, &c.UpdatedAt); err != nil {
		return model.Currency{}, clues.Wrap(err, "getting currency").With("char_code", charCode)
	}

	return c, nil
}

// ListCurrencies returns every currency row, used by the reconciler to
// build the IoR reference snapshot.
func (s *Store) ListCurrencies(ctx context.Context) ([]model.Currency, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, char_code, rate, updated FROM currencies`)
	if err != nil {
		return nil, clues.Wrap(err, "listing currencies")
	}
	defer rows.Close()

	var out []model.Currency

	for rows.Next() {
		var c model.Currency
		if err := rows.Scan(&c.ID, &c.Name, &c.CharCode, &c.Rate, &c.UpdatedAt); err != nil {
			return nil, clues.Wrap(err, "scanning currency row")
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

// DeleteStaleCurrencies removes rows older than one month, per the MAY
// clause in §4.1.
func (s *Store) DeleteStaleCurrencies(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, -1, 0)

	tag, err := s.Pool.Exec(ctx, `DELETE FROM currencies WHERE updated < $1 AND char_code != $2`, cutoff, model.BaseCurrencyCode)
	if err != nil {
		return 0, clues.Wrap(err, "deleting stale currencies")
	}

	return tag.RowsAffected(), nil
}
