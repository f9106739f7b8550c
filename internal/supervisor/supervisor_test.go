package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorsync/core/internal/events"
	"github.com/floorsync/core/internal/iorclient"
	"github.com/floorsync/core/internal/model"
	"github.com/floorsync/core/internal/reconcile"
)

// fakeStock and fakeIoR satisfy reconcile.StockStore/reconcile.IoR with
// empty catalogs, so a reconcile cycle built on them always succeeds
// without needing a Storefront implementation (no SKUs means no batches).
type fakeStock struct {
	err error
}

func (f *fakeStock) AllStock(ctx context.Context) ([]model.Stock, error) { return nil, f.err }
func (f *fakeStock) ListCurrencies(ctx context.Context) ([]model.Currency, error) {
	return nil, nil
}

type fakeIoR struct{}

func (f *fakeIoR) ListProducts(ctx context.Context) ([]model.IoRProduct, error) { return nil, nil }
func (f *fakeIoR) ListCountries(ctx context.Context) ([]model.Country, error)   { return nil, nil }
func (f *fakeIoR) ListUnits(ctx context.Context) ([]model.Unit, error)          { return nil, nil }
func (f *fakeIoR) BatchUpdateStockAttribute(ctx context.Context, updates []iorclient.StockAttributeUpdate) error {
	return nil
}

func TestConsumeEvents_AcksOnlyAfterSuccessfulReconcile(t *testing.T) {
	reconciler := reconcile.New(&fakeStock{}, &fakeIoR{})

	in := make(chan events.EventBatch, 1)
	var acked []uuid.UUID

	in <- events.EventBatch{
		Events: []model.MsEvent{{ID: uuid.New()}, {ID: uuid.New()}},
		Ack: func(ctx context.Context, id uuid.UUID) error {
			acked = append(acked, id)
			return nil
		},
	}
	close(in)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	consumeEvents(ctx, in, reconciler)

	assert.Len(t, acked, 2, "every event in a batch must be acked once its reconcile cycle succeeds")
}

func TestConsumeEvents_LeavesBatchUnackedOnReconcileFailure(t *testing.T) {
	reconciler := reconcile.New(&fakeStock{err: errors.New("boom")}, &fakeIoR{})

	in := make(chan events.EventBatch, 1)
	acked := 0

	in <- events.EventBatch{
		Events: []model.MsEvent{{ID: uuid.New()}},
		Ack: func(ctx context.Context, id uuid.UUID) error {
			acked++
			return nil
		},
	}
	close(in)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	consumeEvents(ctx, in, reconciler)

	require.Equal(t, 0, acked, "a failed on-demand reconcile must not ack any event in the batch")
}
