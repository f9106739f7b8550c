// Package stockstore implements C5: the fan-in writer that merges C2's and
// C3's Fetch streams, parses each cycle's blobs via stockparser, and
// replaces the affected suppliers' rows in the store.
package stockstore

import (
	"context"

	"github.com/floorsync/core/internal/logger"
	"github.com/floorsync/core/internal/model"
	"github.com/floorsync/core/internal/stockmail"
	"github.com/floorsync/core/internal/stockparser"
	"github.com/floorsync/core/pkg/fault"
)

// Store is the subset of *dbx.Store the writer needs.
type Store interface {
	ReplaceSupplierStock(ctx context.Context, items []model.Stock) (deleted, inserted int64, err error)
}

// Writer consumes Fetches from a fan-in channel and persists them.
type Writer struct {
	store Store
}

// New constructs a Writer.
func New(store Store) *Writer {
	return &Writer{store: store}
}

// FanIn merges any number of Fetch-producing channels into one, closing the
// output once every input is closed.
func FanIn(ctx context.Context, ins ...<-chan stockmail.Fetch) <-chan stockmail.Fetch {
	out := make(chan stockmail.Fetch)

	done := make(chan struct{}, len(ins))

	for _, in := range ins {
		in := in

		go func() {
			defer func() { done <- struct{}{} }()

			for {
				select {
				case <-ctx.Done():
					return
				case f, ok := <-in:
					if !ok {
						return
					}

					select {
					case out <- f:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		for range ins {
			<-done
		}

		close(out)
	}()

	return out
}

// Run consumes one Fetch at a time, parses it, and replaces the supplier's
// stock rows. Each Fetch is handled independently: a bad blob doesn't block
// later fetches.
func (w *Writer) Run(ctx context.Context, in <-chan stockmail.Fetch) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-in:
			if !ok {
				return
			}

			w.handle(ctx, f)
		}
	}
}

func (w *Writer) handle(ctx context.Context, f stockmail.Fetch) {
	log := logger.Ctx(ctx)
	errs := fault.New(false)

	rows := stockparser.FanOut(ctx, map[string]stockmail.Fetch{f.Supplier: f}, errs)

	for _, e := range errs.Recovered() {
		log.Infow("stock parse error", "supplier", f.Supplier, "error", e)
	}

	if len(rows) == 0 {
		log.Infow("no stock rows parsed, skipping replace", "supplier", f.Supplier)
		return
	}

	deleted, inserted, err := w.store.ReplaceSupplierStock(ctx, rows)
	if err != nil {
		log.Errorw("replacing supplier stock failed", "supplier", f.Supplier, "error", err)
		return
	}

	log.Infow("replaced supplier stock", "supplier", f.Supplier, "deleted", deleted, "inserted", inserted)
}
