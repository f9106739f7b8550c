package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorsync/core/internal/events"
	"github.com/floorsync/core/internal/model"
)

type fakeStore struct {
	inserted []model.MsEvent
}

func (f *fakeStore) InsertEvents(ctx context.Context, evs []model.MsEvent) error {
	f.inserted = append(f.inserted, evs...)
	return nil
}

func (f *fakeStore) PendingEvents(ctx context.Context, limit int) ([]model.MsEvent, error) {
	return nil, nil
}

func (f *fakeStore) MarkProcessed(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeStore) GCProcessedEvents(ctx context.Context, retention time.Duration) (int64, error) {
	return 0, nil
}

func TestHandle_DropsUnparseableHref(t *testing.T) {
	store := &fakeStore{}
	in := events.NewIntake(store)

	body := []byte(`{"events":[{"meta":{"href":"https://ior.example/entity/product/not-a-uuid"},"action":"UPDATE","updatedFields":["Name"]}]}`)

	err := in.Handle(context.Background(), body)
	require.NoError(t, err)
	assert.Empty(t, store.inserted)
}

func TestHandle_DropsStockOnlyEvent(t *testing.T) {
	store := &fakeStore{}
	in := events.NewIntake(store)

	id := uuid.New()
	body := []byte(`{"events":[{"meta":{"href":"https://ior.example/entity/product/` + id.String() + `"},"action":"UPDATE","updatedFields":["Наличие"]}]}`)

	err := in.Handle(context.Background(), body)
	require.NoError(t, err)
	assert.Empty(t, store.inserted, "a stock-only field update is handled by C10, not C7")
}

func TestHandle_PersistsValidEvent(t *testing.T) {
	store := &fakeStore{}
	in := events.NewIntake(store)

	id := uuid.New()
	body := []byte(`{"events":[{"meta":{"href":"https://ior.example/entity/product/` + id.String() + `"},"action":"CREATE","updatedFields":["Name","Price"]}]}`)

	err := in.Handle(context.Background(), body)
	require.NoError(t, err)
	require.Len(t, store.inserted, 1)

	assert.Equal(t, id, store.inserted[0].ProductID)
	assert.Equal(t, model.EventCreate, store.inserted[0].Action)
	assert.False(t, store.inserted[0].Processed)
}

func TestHandle_MalformedJSON(t *testing.T) {
	store := &fakeStore{}
	in := events.NewIntake(store)

	err := in.Handle(context.Background(), []byte(`not json`))
	assert.Error(t, err)
}

func TestHandle_MixedBatchKeepsValidEvents(t *testing.T) {
	store := &fakeStore{}
	in := events.NewIntake(store)

	goodID := uuid.New()
	body := []byte(`{"events":[
		{"meta":{"href":"bad-href"},"action":"UPDATE","updatedFields":["Name"]},
		{"meta":{"href":"https://ior.example/entity/product/` + goodID.String() + `"},"action":"DELETE","updatedFields":["Name"]}
	]}`)

	err := in.Handle(context.Background(), body)
	require.NoError(t, err)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, goodID, store.inserted[0].ProductID)
}
