package dbx

import (
	"context"
	"time"

	"github.com/alcionai/clues"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floorsync/core/internal/model"
)

// InsertEvents persists a batch of already-validated events, per §4.6. Each
// event is its own INSERT statement; all of them are queued in one pgx batch
// and sent in a single round trip, not as one multi-row statement.
func (s *Store) InsertEvents(ctx context.Context, events []model.MsEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	for _, e := range events {
		batch.Queue(`
			INSERT INTO ms_events (id, product_id, action, fields, processed, received)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.ID, e.ProductID, string(e.Action), e.Fields, e.Processed, e.ReceivedAt)
	}

	br := s.Pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return clues.Wrap(err, "inserting ms_event")
		}
	}

	return nil
}

// PendingEvents selects up to limit unprocessed events, oldest first, for
// C7's poll batch.
func (s *Store) PendingEvents(ctx context.Context, limit int) ([]model.MsEvent, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, product_id, action, fields, processed, received
		FROM ms_events
		WHERE processed = false
		ORDER BY received ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, clues.Wrap(err, "selecting pending events")
	}
	defer rows.Close()

	var out []model.MsEvent

	for rows.Next() {
		var (
			e      model.MsEvent
			action string
		)

		if err := rows.Scan(&e.ID, &e.ProductID, &action, &e.Fields, &e.Processed, &e.ReceivedAt); err != nil {
			return nil, clues.Wrap(err, "scanning ms_event row")
		}

		e.Action = model.EventAction(action)
		out = append(out, e)
	}

	return out, rows.Err()
}

// MarkProcessed flips processed=true for a single event. Invariant §8.3:
// once true, never reset -- this statement is write-only in that
// direction, there is no corresponding "unmark".
func (s *Store) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	_, err := s.Pool.Exec(ctx, `UPDATE ms_events SET processed = true WHERE id = $1`, id)
	if err != nil {
		return clues.Wrap(err, "marking event processed")
	}

	return nil
}

// GCProcessedEvents deletes events that have already been processed and
// are older than the retention window, per §4.7.
func (s *Store) GCProcessedEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	tag, err := s.Pool.Exec(ctx, `DELETE FROM ms_events WHERE processed = true AND received < $1`, cutoff)
	if err != nil {
		return 0, clues.Wrap(err, "garbage collecting processed events")
	}

	return tag.RowsAffected(), nil
}
