// Package reconcile implements C8: the periodic job that diffs the IoR
// catalog against each storefront catalog and dispatches the resulting
// create/update/delete batches, plus driving C10's stock-attribute patch.
package reconcile

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alcionai/clues"

	"github.com/floorsync/core/internal/iorclient"
	"github.com/floorsync/core/internal/logger"
	"github.com/floorsync/core/internal/model"
	"github.com/floorsync/core/internal/projection"
	"github.com/floorsync/core/internal/stockattr"
	"github.com/floorsync/core/internal/storefront"
	"github.com/floorsync/core/pkg/fault"
)

const (
	cycleRetry   = time.Hour
	staleAfter   = 24 * time.Hour
	storeTimeout = 10 * time.Minute
)

// StockStore is the subset of *dbx.Store the reconciler pages stock from.
type StockStore interface {
	AllStock(ctx context.Context) ([]model.Stock, error)
	ListCurrencies(ctx context.Context) ([]model.Currency, error)
}

// IoR is the subset of *iorclient.Client the reconciler needs.
type IoR interface {
	ListProducts(ctx context.Context) ([]model.IoRProduct, error)
	ListCountries(ctx context.Context) ([]model.Country, error)
	ListUnits(ctx context.Context) ([]model.Unit, error)
	BatchUpdateStockAttribute(ctx context.Context, updates []iorclient.StockAttributeUpdate) error
}

// Storefront is the subset of *storefront.Client the reconciler needs, one
// instance per downstream catalog.
type Storefront interface {
	ListProducts(ctx context.Context) ([]model.SFProduct, error)
	ListAttributes(ctx context.Context) ([]model.Attr, error)
	ListCategories(ctx context.Context) ([]model.Cat, error)
	BatchCreate(ctx context.Context, payloads []model.ProductPayload) error
	BatchUpdate(ctx context.Context, payloads []model.ProductPayload) error
	BatchDelete(ctx context.Context, storefrontIDs []string) error
}

// Reconciler owns one reconcile cycle against the IoR catalog and N
// downstream storefronts.
type Reconciler struct {
	stock       StockStore
	ior         IoR
	storefronts []Storefront

	cycleMu sync.Mutex // held for the whole of each runCycle.
}

// New constructs a Reconciler. storefronts are typically the two *storefront.Client
// instances (A and B); compile-time satisfied via the Storefront interface.
func New(stock StockStore, ior IoR, storefronts ...Storefront) *Reconciler {
	return &Reconciler{stock: stock, ior: ior, storefronts: storefronts}
}

// Run executes cycles on the §4.8 schedule: one immediately, then aligned
// to local midnight with a 24h cadence, retrying a failed cycle after 1h.
func (r *Reconciler) Run(ctx context.Context) {
	log := logger.Ctx(ctx)

	if err := r.runCycle(ctx); err != nil {
		log.Errorw("reconcile cycle failed, retrying in 1h", "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(cycleRetry):
		}

		if err := r.runCycle(ctx); err != nil {
			log.Errorw("reconcile retry failed, resuming normal cadence", "error", err)
		}
	}

	for {
		wait := untilNextMidnight(time.Now())

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if err := r.runCycle(ctx); err != nil {
			log.Errorw("reconcile cycle failed, retrying in 1h", "error", err)

			select {
			case <-ctx.Done():
				return
			case <-time.After(cycleRetry):
			}

			if err := r.runCycle(ctx); err != nil {
				log.Errorw("reconcile retry failed, resuming normal cadence", "error", err)
			}
		}
	}
}

// RunOnce executes a single reconcile cycle synchronously, independent of
// Run's midnight schedule. This is the on-demand trigger §4.8 calls for: the
// event consumer invokes it per batch so that a batch's events are only
// acked (processed=true, §4.7) once the cycle they triggered has actually
// dispatched its outbound mutations.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	return r.runCycle(ctx)
}

func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}

// runCycle is one full reconcile pass. Cycles never overlap: each pass holds
// cycleMu, so Run's scheduled cycles and RunOnce callers run strictly
// serially.
func (r *Reconciler) runCycle(ctx context.Context) error {
	r.cycleMu.Lock()
	defer r.cycleMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	log := logger.Ctx(ctx)
	errs := fault.New(false)

	stock, err := r.stock.AllStock(ctx)
	if err != nil {
		return clues.Wrap(err, "paging stock snapshot")
	}

	snap, err := r.fetchSnapshot(ctx)
	if err != nil {
		return clues.Wrap(err, "fetching reference snapshot")
	}

	if updates, ok := stockattr.Compute(snap.iorProducts, stock); ok {
		if len(updates) > 0 {
			if err := r.ior.BatchUpdateStockAttribute(ctx, updates); err != nil {
				errs.AddRecoverable(ctx, fault.Wrap(err, "patching ior stock attributes"))
			}
		}
	} else {
		log.Errorw("stock attribute sentinels not discoverable this cycle, skipping C10")
	}

	ms := projection.MsData{
		CurrenciesByID: snap.currenciesByID,
		CountriesByID:  indexCountries(snap.countries),
		UnitsByID:      indexUnits(snap.units),
	}

	for i, sf := range r.storefronts {
		woo := projection.WooData{
			CategoriesByName: indexCategories(snap.categories[i]),
			AttributesByName: indexAttributes(snap.attributes[i]),
		}

		if err := r.reconcileStorefront(ctx, sf, snap.iorProducts, snap.sfProducts[i], ms, woo, stock); err != nil {
			errs.AddRecoverable(ctx, fault.Wrap(err, "reconciling storefront"))
		}
	}

	for _, e := range errs.Recovered() {
		log.Infow("reconcile cycle recoverable error", "error", e)
	}

	return nil
}

func (r *Reconciler) reconcileStorefront(
	ctx context.Context,
	sf Storefront,
	iorProducts []model.IoRProduct,
	sfProducts []model.SFProduct,
	ms projection.MsData,
	woo projection.WooData,
	stock []model.Stock,
) error {
	log := logger.Ctx(ctx)

	sfBySKU := make(map[string]model.SFProduct, len(sfProducts))
	for _, p := range sfProducts {
		sfBySKU[strings.ToUpper(p.SKU)] = p
	}

	iorBySKU := make(map[string]model.IoRProduct, len(iorProducts))

	var creates, updates []model.ProductPayload

	for _, ior := range iorProducts {
		sku := strings.ToUpper(ior.Article)
		if sku == "" {
			continue
		}

		iorBySKU[sku] = ior

		// An archived IoR product is always removed via the delete batch
		// below (§4.8 step 5b), never created or updated here.
		if ior.Archived {
			continue
		}

		sfp, exists := sfBySKU[sku]
		if exists && skipStale(ior, sfp) {
			continue
		}

		payload := projection.Project(ior, ms, woo, stock)
		if payload == nil {
			continue
		}

		if exists {
			payload.StorefrontID = sfp.ID
			updates = append(updates, *payload)
		} else {
			creates = append(creates, *payload)
		}
	}

	var deleteIDs []string

	for sku, sfp := range sfBySKU {
		ior, present := iorBySKU[sku]
		if !present || ior.Archived {
			deleteIDs = append(deleteIDs, sfp.ID)
		}
	}

	if len(creates) > 0 {
		if err := sf.BatchCreate(ctx, creates); err != nil {
			log.Errorw("storefront batch create failed", "error", err, "count", len(creates))
		}
	}

	if len(updates) > 0 {
		if err := sf.BatchUpdate(ctx, updates); err != nil {
			log.Errorw("storefront batch update failed", "error", err, "count", len(updates))
		}
	}

	if len(deleteIDs) > 0 {
		if err := sf.BatchDelete(ctx, deleteIDs); err != nil {
			log.Errorw("storefront batch delete failed", "error", err, "count", len(deleteIDs))
		}
	}

	return nil
}

// skipStale applies the two update-skip edge cases: IoR updated more than
// 24h ago, or IoR older than the storefront's own copy.
func skipStale(ior model.IoRProduct, sfp model.SFProduct) bool {
	if time.Since(ior.UpdatedAt) > staleAfter {
		return true
	}

	return ior.UpdatedAt.Before(sfp.UpdatedAt)
}

func indexCountries(countries []model.Country) map[string]model.Country {
	out := make(map[string]model.Country, len(countries))
	for _, c := range countries {
		out[c.ID] = c
	}

	return out
}

func indexUnits(units []model.Unit) map[string]model.Unit {
	out := make(map[string]model.Unit, len(units))
	for _, u := range units {
		out[u.ID] = u
	}

	return out
}

func indexCategories(cats []model.Cat) map[string]model.Cat {
	out := make(map[string]model.Cat, len(cats))
	for _, c := range cats {
		out[c.Name] = c
	}

	return out
}

func indexAttributes(attrs []model.Attr) map[string]model.Attr {
	out := make(map[string]model.Attr, len(attrs))
	for _, a := range attrs {
		out[a.Name] = a
	}

	return out
}
