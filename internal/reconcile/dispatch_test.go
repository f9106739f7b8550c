package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorsync/core/internal/model"
	"github.com/floorsync/core/internal/projection"
)

type fakeStorefront struct {
	created, updated []model.ProductPayload
	deleted          []string
}

func (f *fakeStorefront) ListProducts(ctx context.Context) ([]model.SFProduct, error) { return nil, nil }
func (f *fakeStorefront) ListAttributes(ctx context.Context) ([]model.Attr, error)     { return nil, nil }
func (f *fakeStorefront) ListCategories(ctx context.Context) ([]model.Cat, error)      { return nil, nil }

func (f *fakeStorefront) BatchCreate(ctx context.Context, payloads []model.ProductPayload) error {
	f.created = append(f.created, payloads...)
	return nil
}

func (f *fakeStorefront) BatchUpdate(ctx context.Context, payloads []model.ProductPayload) error {
	f.updated = append(f.updated, payloads...)
	return nil
}

func (f *fakeStorefront) BatchDelete(ctx context.Context, ids []string) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}

func testMsWoo() (projection.MsData, projection.WooData) {
	return projection.MsData{
			CurrenciesByID: map[string]model.Currency{"RUB": {CharCode: "RUB", Rate: decimal.NewFromInt(1)}},
			CountriesByID:  map[string]model.Country{},
			UnitsByID:      map[string]model.Unit{},
		}, projection.WooData{
			CategoriesByName: map[string]model.Cat{"Ковролин": {ID: "10", Name: "Ковролин"}},
			AttributesByName: map[string]model.Attr{},
		}
}

func iorForSKU(sku string, archived bool, updated time.Time) model.IoRProduct {
	return model.IoRProduct{
		ID:        "ior-" + sku,
		Article:   sku,
		Name:      "product " + sku,
		PathName:  "Ковролин/Бытовой",
		Archived:  archived,
		UpdatedAt: updated,
		SalePrices: []model.SalePrice{
			{Name: "Цена продажи", Value: 1000, Currency: "RUB"},
		},
	}
}

func TestReconcileStorefront_CreatesMissingProduct(t *testing.T) {
	r := &Reconciler{}
	sf := &fakeStorefront{}
	ms, woo := testMsWoo()

	err := r.reconcileStorefront(context.Background(), sf, []model.IoRProduct{iorForSKU("sku1", false, time.Now())}, nil, ms, woo, nil)
	require.NoError(t, err)

	require.Len(t, sf.created, 1)
	assert.Equal(t, "SKU1", sf.created[0].SKU)
	assert.Empty(t, sf.updated)
	assert.Empty(t, sf.deleted)
}

func TestReconcileStorefront_UpdatesExistingFreshProduct(t *testing.T) {
	r := &Reconciler{}
	sf := &fakeStorefront{}
	ms, woo := testMsWoo()

	ior := []model.IoRProduct{iorForSKU("sku1", false, time.Now())}
	sfp := []model.SFProduct{{ID: "42", SKU: "SKU1", UpdatedAt: time.Now().Add(-time.Hour)}}

	err := r.reconcileStorefront(context.Background(), sf, ior, sfp, ms, woo, nil)
	require.NoError(t, err)

	require.Len(t, sf.updated, 1)
	assert.Equal(t, "42", sf.updated[0].StorefrontID)
	assert.Empty(t, sf.created)
	assert.Empty(t, sf.deleted)
}

func TestReconcileStorefront_SkipsStaleUpdate(t *testing.T) {
	r := &Reconciler{}
	sf := &fakeStorefront{}
	ms, woo := testMsWoo()

	ior := []model.IoRProduct{iorForSKU("sku1", false, time.Now().Add(-48*time.Hour))}
	sfp := []model.SFProduct{{ID: "42", SKU: "SKU1", UpdatedAt: time.Now().Add(-72 * time.Hour)}}

	err := r.reconcileStorefront(context.Background(), sf, ior, sfp, ms, woo, nil)
	require.NoError(t, err)

	assert.Empty(t, sf.updated, "ior updated_at older than 24h must be skipped")
	assert.Empty(t, sf.created)
	assert.Empty(t, sf.deleted)
}

func TestReconcileStorefront_DeletesOrphanedStorefrontProduct(t *testing.T) {
	r := &Reconciler{}
	sf := &fakeStorefront{}
	ms, woo := testMsWoo()

	sfp := []model.SFProduct{{ID: "99", SKU: "GONE", UpdatedAt: time.Now()}}

	err := r.reconcileStorefront(context.Background(), sf, nil, sfp, ms, woo, nil)
	require.NoError(t, err)

	require.Len(t, sf.deleted, 1)
	assert.Equal(t, "99", sf.deleted[0])
}

func TestReconcileStorefront_DeletesArchivedIoRCounterpart(t *testing.T) {
	r := &Reconciler{}
	sf := &fakeStorefront{}
	ms, woo := testMsWoo()

	ior := []model.IoRProduct{iorForSKU("sku1", true, time.Now())}
	sfp := []model.SFProduct{{ID: "7", SKU: "SKU1", UpdatedAt: time.Now().Add(-time.Hour)}}

	err := r.reconcileStorefront(context.Background(), sf, ior, sfp, ms, woo, nil)
	require.NoError(t, err)

	require.Len(t, sf.deleted, 1)
	assert.Equal(t, "7", sf.deleted[0])
	assert.Empty(t, sf.updated)
}
