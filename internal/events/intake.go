// Package events implements C6 (webhook intake) and C7 (the dedup-poller /
// worker-handoff / GC loop) for the at-least-once IoR change-event queue.
package events

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/floorsync/core/internal/logger"
	"github.com/floorsync/core/internal/model"
)

// stockOnlyField is the single field name that marks an event as a
// stock-attribute-only update, handled separately by C10 rather than a
// full reconcile pass (§4.6).
const stockOnlyField = "Наличие"

// Store is the subset of persistence C6/C7 need.
type Store interface {
	InsertEvents(ctx context.Context, events []model.MsEvent) error
	PendingEvents(ctx context.Context, limit int) ([]model.MsEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	GCProcessedEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// webhookBody is the shape of the inbound POST /webhooks/ms payload (§4.6).
type webhookBody struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Meta struct {
		Href string `json:"href"`
	} `json:"meta"`
	Action        string   `json:"action"`
	UpdatedFields []string `json:"updatedFields"`
}

var trailingUUID = regexp.MustCompile(`([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})/?$`)

// Intake validates and persists a webhook payload, per §4.6. It always
// succeeds from the caller's point of view (the HTTP handler always
// returns 200 regardless of this return value); the error is for logging
// only, and individual malformed events are dropped rather than failing
// the whole batch.
type Intake struct {
	store Store
}

// NewIntake constructs an Intake backed by store.
func NewIntake(store Store) *Intake {
	return &Intake{store: store}
}

// Handle parses and persists body, dropping any event whose href does not
// end in a UUID, and optionally dropping stock-attribute-only events.
func (in *Intake) Handle(ctx context.Context, body []byte) error {
	var wb webhookBody

	if err := json.Unmarshal(body, &wb); err != nil {
		return err
	}

	now := time.Now().UTC()
	log := logger.Ctx(ctx)

	var toInsert []model.MsEvent

	for _, we := range wb.Events {
		m := trailingUUID.FindStringSubmatch(we.Meta.Href)
		if m == nil {
			log.Infow("dropping event with unparseable href", "href", we.Meta.Href)
			continue
		}

		productID, err := uuid.Parse(m[1])
		if err != nil {
			log.Infow("dropping event with invalid uuid", "href", we.Meta.Href, "error", err)
			continue
		}

		ev := model.MsEvent{
			ID:         uuid.New(),
			ProductID:  productID,
			Action:     model.EventAction(we.Action),
			Fields:     we.UpdatedFields,
			Processed:  false,
			ReceivedAt: now,
		}

		if ev.IsStockOnly(stockOnlyField) {
			log.Debugw("dropping stock-only event, handled by stock attribute updater", "product_id", productID)
			continue
		}

		toInsert = append(toInsert, ev)
	}

	if len(toInsert) == 0 {
		return nil
	}

	return in.store.InsertEvents(ctx, toInsert)
}
