package reconcile

import (
	"context"
	"sync"

	"github.com/alcionai/clues"

	"github.com/floorsync/core/internal/model"
)

// snapshot is the joined result of §4.8 step 2: the reference data every
// storefront diff needs, fetched once per cycle.
type snapshot struct {
	iorProducts    []model.IoRProduct
	countries      []model.Country
	units          []model.Unit
	currenciesByID map[string]model.Currency

	sfProducts [][]model.SFProduct // one slice per r.storefronts entry.
	attributes [][]model.Attr
	categories [][]model.Cat
}

// fetchSnapshot fans out the IoR and per-storefront reference fetches
// concurrently and joins them, per §4.8 step 2. The first error encountered
// is returned once every task has finished.
func (r *Reconciler) fetchSnapshot(ctx context.Context) (*snapshot, error) {
	snap := &snapshot{
		sfProducts: make([][]model.SFProduct, len(r.storefronts)),
		attributes: make([][]model.Attr, len(r.storefronts)),
		categories: make([][]model.Cat, len(r.storefronts)),
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()

		if firstErr == nil {
			firstErr = err
		}
	}

	run := func(task func() error) {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := task(); err != nil {
				fail(err)
			}
		}()
	}

	run(func() error {
		products, err := r.ior.ListProducts(ctx)
		if err != nil {
			return clues.Wrap(err, "listing ior products")
		}

		snap.iorProducts = products

		return nil
	})

	run(func() error {
		countries, err := r.ior.ListCountries(ctx)
		if err != nil {
			return clues.Wrap(err, "listing ior countries")
		}

		snap.countries = countries

		return nil
	})

	run(func() error {
		units, err := r.ior.ListUnits(ctx)
		if err != nil {
			return clues.Wrap(err, "listing ior units")
		}

		snap.units = units

		return nil
	})

	run(func() error {
		currencies, err := r.stock.ListCurrencies(ctx)
		if err != nil {
			return clues.Wrap(err, "listing currencies")
		}

		snap.currenciesByID = indexCurrencies(currencies)

		return nil
	})

	for i, sf := range r.storefronts {
		i, sf := i, sf

		run(func() error {
			products, err := sf.ListProducts(ctx)
			if err != nil {
				return clues.Wrap(err, "listing storefront products")
			}

			snap.sfProducts[i] = products

			return nil
		})

		run(func() error {
			attrs, err := sf.ListAttributes(ctx)
			if err != nil {
				return clues.Wrap(err, "listing storefront attributes")
			}

			snap.attributes[i] = attrs

			return nil
		})

		run(func() error {
			cats, err := sf.ListCategories(ctx)
			if err != nil {
				return clues.Wrap(err, "listing storefront categories")
			}

			snap.categories[i] = cats

			return nil
		})
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	return snap, nil
}

// indexCurrencies keys currencies by char code, since the IoR catalog's sale
// price currency references resolve to the char code as their trailing path
// component (see DESIGN.md, "currency reference resolution").
func indexCurrencies(currencies []model.Currency) map[string]model.Currency {
	out := make(map[string]model.Currency, len(currencies))
	for _, c := range currencies {
		out[c.CharCode] = c
	}

	return out
}
