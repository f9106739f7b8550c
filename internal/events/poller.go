package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/floorsync/core/internal/logger"
	"github.com/floorsync/core/internal/model"
)

const (
	pollCadence = 5 * time.Minute
	gcCadence   = 24 * time.Hour
	batchSize   = 50
)

// EventBatch is one handoff unit from C7 to the reconciler: the events,
// plus a callback the reconciler invokes per-event once its corresponding
// outbound mutation has been dispatched (§4.7: ack only after dispatch, so
// a failed ack simply means the event is re-attempted next cycle).
type EventBatch struct {
	Events []model.MsEvent
	Ack    func(ctx context.Context, id uuid.UUID) error
}

// Poller scans for PENDING events and hands batches to the reconciler via a
// bounded channel (cap ~10, per §5), applying backpressure naturally: a
// slow reconciler means the poller blocks on send and simply retries next
// cycle once unblocked.
type Poller struct {
	store Store
}

// NewPoller constructs a Poller.
func NewPoller(store Store) *Poller {
	return &Poller{store: store}
}

// Run is the infinite poll loop.
func (p *Poller) Run(ctx context.Context, out chan<- EventBatch) {
	log := logger.Ctx(ctx)

	for {
		pending, err := p.store.PendingEvents(ctx, batchSize)
		if err != nil {
			log.Errorw("selecting pending events failed", "error", err)
		} else if len(pending) > 0 {
			select {
			case out <- EventBatch{Events: pending, Ack: p.store.MarkProcessed}:
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(pollCadence):
		}
	}
}

// GCLoop periodically deletes processed events older than retention.
func (p *Poller) GCLoop(ctx context.Context, retention time.Duration) {
	log := logger.Ctx(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(gcCadence):
		}

		n, err := p.store.GCProcessedEvents(ctx, retention)
		if err != nil {
			log.Errorw("event gc failed", "error", err)
			continue
		}

		log.Infow("gc'd processed events", "count", n)
	}
}
