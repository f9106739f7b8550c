package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorsync/core/internal/model"
)

type fakeStore struct {
	upserted         []model.Currency
	ensuredBaseCalls int
}

func (f *fakeStore) UpsertCurrency(ctx context.Context, c model.Currency) error {
	f.upserted = append(f.upserted, c)
	return nil
}

func (f *fakeStore) EnsureBaseCurrency(ctx context.Context) error {
	f.ensuredBaseCalls++
	return nil
}

func TestPollOnce_UpsertsAndEnsuresBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Valute":{"USD":{"CharCode":"USD","Name":"US Dollar","Value":90.5}}}`))
	}))
	defer srv.Close()

	store := &fakeStore{}
	p := New(store, srv.URL)

	err := p.pollOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, store.upserted, 1)
	assert.Equal(t, "USD", store.upserted[0].CharCode)
	assert.Equal(t, 1, store.ensuredBaseCalls, "pollOnce must ensure the base currency after upserting")
}

func TestPollOnce_EmptyDocumentIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Valute":{}}`))
	}))
	defer srv.Close()

	store := &fakeStore{}
	p := New(store, srv.URL)

	err := p.pollOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, store.ensuredBaseCalls)
}

func TestPollOnce_SkipsEntriesWithoutCharCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Valute":{"x":{"CharCode":"","Name":"broken","Value":1}}}`))
	}))
	defer srv.Close()

	store := &fakeStore{}
	p := New(store, srv.URL)

	err := p.pollOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, store.upserted)
}
