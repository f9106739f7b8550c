package dbx

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/alcionai/clues"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floorsync/core/internal/model"
)

// ReplaceSupplierStock performs the full-replace write described in §4.5:
// for every supplier present in items, delete all of its existing rows and
// insert items, atomically. The two counts are returned for logging.
func (s *Store) ReplaceSupplierStock(ctx context.Context, items []model.Stock) (deleted, inserted int64, err error) {
	if len(items) == 0 {
		return 0, 0, nil
	}

	suppliers := distinctSuppliers(items)

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, 0, clues.Wrap(err, "beginning stock replace transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM stock WHERE supplier = ANY($1)`, suppliers)
	if err != nil {
		return 0, 0, clues.Wrap(err, "deleting existing supplier stock").With("suppliers", suppliers)
	}

	deleted = tag.RowsAffected()

	now := time.Now().UTC()

	batch := &pgx.Batch{}

	for _, item := range items {
		id := item.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		updatedAt := item.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = now
		}

		batch.Queue(`
			INSERT INTO stock (id, supplier, name, stock, updated)
			VALUES ($1, $2, $3, $4, $5)
		`, id, item.Supplier, item.Name, item.Quantity, updatedAt)
	}

	br := tx.SendBatch(ctx, batch)

	for range items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, 0, clues.Wrap(err, "inserting stock row")
		}
	}

	if err := br.Close(); err != nil {
		return 0, 0, clues.Wrap(err, "closing stock insert batch")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, clues.Wrap(err, "committing stock replace transaction")
	}

	inserted = int64(len(items))

	return deleted, inserted, nil
}

func distinctSuppliers(items []model.Stock) []string {
	seen := map[string]struct{}{}

	var out []string

	for _, it := range items {
		if _, ok := seen[it.Supplier]; ok {
			continue
		}

		seen[it.Supplier] = struct{}{}
		out = append(out, it.Supplier)
	}

	return out
}

const stockPageCap = 100

// GetStock returns a paginated page of stock rows, capped at 100 per §4.5.
func (s *Store) GetStock(ctx context.Context, limit, offset int) ([]model.Stock, error) {
	if limit <= 0 || limit > stockPageCap {
		limit = stockPageCap
	}

	rows, err := s.Pool.Query(ctx, `
		SELECT id, supplier, name, stock, updated FROM stock
		ORDER BY supplier, name
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, clues.Wrap(err, "paging stock")
	}
	defer rows.Close()

	return scanStockRows(rows)
}

// AllStock pages through the entire stock table 500 rows at a time, the
// shape the reconciler (C8) needs to materialize its in-memory snapshot.
func (s *Store) AllStock(ctx context.Context) ([]model.Stock, error) {
	const pageSize = 500

	var all []model.Stock

	offset := 0

	for {
		rows, err := s.Pool.Query(ctx, `
			SELECT id, supplier, name, stock, updated FROM stock
			ORDER BY supplier, name
			LIMIT $1 OFFSET $2
		`, pageSize, offset)
		if err != nil {
			return nil, clues.Wrap(err, "paging full stock snapshot")
		}

		page, err := scanStockRows(rows)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)

		if len(page) < pageSize {
			break
		}

		offset += pageSize
	}

	return all, nil
}

func scanStockRows(rows pgx.Rows) ([]model.Stock, error) {
	defer rows.Close()

	var out []model.Stock

	for rows.Next() {
		var st model.Stock
		if err := rows.Scan(&st.ID, &st.Supplier, &st.Name, &st.Quantity, &st.UpdatedAt); err != nil {
			return nil, clues.Wrap(err, "scanning stock row")
		}

		out = append(out, st)
	}

	return out, rows.Err()
}

// FindStock performs the regex search over name described in §4.5: each
// whitespace-delimited token of query becomes `<token>[\s,\-]*` in order;
// if query has more than two tokens, the final token is softened with
// optional trailing unit suffixes. Results are capped at 100.
func (s *Store) FindStock(ctx context.Context, query string) ([]model.Stock, error) {
	pattern := BuildFindPattern(query)
	if pattern == "" {
		return nil, nil
	}

	rows, err := s.Pool.Query(ctx, `
		SELECT id, supplier, name, stock, updated FROM stock
		WHERE name ~* $1
		ORDER BY supplier, name
		LIMIT $2
	`, pattern, stockPageCap)
	if err != nil {
		return nil, clues.Wrap(err, "finding stock").With("query", query)
	}

	return scanStockRows(rows)
}

// BuildFindPattern builds the POSIX regex used by FindStock, extracted so
// it can be unit tested without a database. The pattern carries its own
// case-insensitive flag, and a softened last token has any trailing unit
// suffix stripped before the optional suffix group is appended.
func BuildFindPattern(query string) string {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return ""
	}

	parts := make([]string, len(tokens))

	for i, tok := range tokens {
		esc := regexp.QuoteMeta(tok)

		if len(tokens) > 2 && i == len(tokens)-1 {
			esc = regexp.QuoteMeta(strings.TrimRight(tok, "mМм")) + "(?:м|М|m)?"
		}

		parts[i] = esc + `[\s,\-]*`
	}

	return "(?i)" + strings.Join(parts, "")
}
