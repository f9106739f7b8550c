// Package supervisor implements C11: it owns every long-running task's
// goroutine and retry loop, wires the stock/event channels between stages,
// and coordinates cooperative shutdown on SIGINT/SIGTERM.
package supervisor

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/floorsync/core/internal/currency"
	"github.com/floorsync/core/internal/dbx"
	"github.com/floorsync/core/internal/events"
	"github.com/floorsync/core/internal/logger"
	"github.com/floorsync/core/internal/reconcile"
	"github.com/floorsync/core/internal/stockmail"
	"github.com/floorsync/core/internal/stockstore"
	"github.com/floorsync/core/internal/stockweb"
)

const (
	eventBatchBuffer = 10
	fetchBuffer      = 2
	eventGCRetention = 30 * 24 * time.Hour
)

// Deps collects every constructed component the supervisor wires together.
// The caller (cmd/fridaysyncd) is responsible for constructing each one;
// Supervisor only owns their lifecycles.
type Deps struct {
	Store       *dbx.Store
	Currency    *currency.Poller
	StockMail   *stockmail.Poller
	StockWeb    *stockweb.Poller
	StockStore  *stockstore.Writer
	EventIntake *events.Intake
	EventPoller *events.Poller
	Reconciler  *reconcile.Reconciler
}

// Supervisor runs every pipeline task and cancels them together on shutdown.
type Supervisor struct {
	deps Deps
}

// New constructs a Supervisor.
func New(deps Deps) *Supervisor {
	return &Supervisor{deps: deps}
}

// Run blocks until the process receives SIGINT/SIGTERM, then cancels every
// task and waits for them to return. Shutdown is cooperative: in-flight
// work may complete or be discarded, there is no flush guarantee.
func (s *Supervisor) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log := logger.Ctx(ctx)

	var wg sync.WaitGroup

	fetchA := make(chan stockmail.Fetch, fetchBuffer)
	fetchB := make(chan stockmail.Fetch, fetchBuffer)
	merged := stockstore.FanIn(ctx, fetchA, fetchB)

	eventBatches := make(chan events.EventBatch, eventBatchBuffer)

	spawn := func(name string, fn func(ctx context.Context)) {
		wg.Add(1)

		go func() {
			defer wg.Done()
			defer log.Infow("task stopped", "task", name)

			log.Infow("task starting", "task", name)
			fn(ctx)
		}()
	}

	spawn("currency-poller", s.deps.Currency.Run)
	spawn("stock-mail-poller", func(ctx context.Context) { s.deps.StockMail.Run(ctx, fetchA) })
	spawn("stock-web-poller", func(ctx context.Context) { s.deps.StockWeb.Run(ctx, fetchB) })
	spawn("stock-store-writer", func(ctx context.Context) { s.deps.StockStore.Run(ctx, merged) })
	spawn("event-poller", func(ctx context.Context) { s.deps.EventPoller.Run(ctx, eventBatches) })
	spawn("event-gc", func(ctx context.Context) { s.deps.EventPoller.GCLoop(ctx, eventGCRetention) })
	spawn("event-consumer", func(ctx context.Context) { consumeEvents(ctx, eventBatches, s.deps.Reconciler) })
	spawn("reconciler", s.deps.Reconciler.Run)

	select {
	case <-ctx.Done():
	case sig := <-sigCh:
		log.Infow("shutdown signal received", "signal", sig.String())
	}

	cancel()
	wg.Wait()
}

// consumeEvents drains event batches, triggers an on-demand reconcile cycle
// per batch, and only then acknowledges each MsEvent. §4.7 requires that an
// event is marked processed=true only after its corresponding outbound
// mutation has been dispatched; since a batch's events are all satisfied by
// the same reconcile cycle, a failed cycle leaves the whole batch unacked
// for the poller to hand back next pass.
func consumeEvents(ctx context.Context, in <-chan events.EventBatch, reconciler *reconcile.Reconciler) {
	log := logger.Ctx(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-in:
			if !ok {
				return
			}

			if err := reconciler.RunOnce(ctx); err != nil {
				log.Errorw("on-demand reconcile failed, leaving batch unacked", "error", err)
				continue
			}

			for _, ev := range batch.Events {
				if err := batch.Ack(ctx, ev.ID); err != nil {
					log.Errorw("acking event failed", "event_id", ev.ID, "error", err)
				}
			}
		}
	}
}

