// Package currency implements C1: the daily FX poller that keeps the
// currencies table in sync with a public FX endpoint.
package currency

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alcionai/clues"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/floorsync/core/internal/httpx"
	"github.com/floorsync/core/internal/logger"
	"github.com/floorsync/core/internal/model"
)

const (
	successCadence = 24 * time.Hour
	failureCadence = time.Hour
)

// fxDocument is the shape of the public FX endpoint's payload: a mapping of
// code -> valute details, nested under "Valute".
type fxDocument struct {
	Valute map[string]fxValute `json:"Valute"`
}

type fxValute struct {
	CharCode string  `json:"CharCode"`
	Name     string  `json:"Name"`
	Value    float64 `json:"Value"`
}

// Store is the subset of stockstore-like persistence this poller needs.
type Store interface {
	UpsertCurrency(ctx context.Context, c model.Currency) error
	EnsureBaseCurrency(ctx context.Context) error
}

// Poller fetches the FX snapshot on a daily cadence and upserts rows.
type Poller struct {
	store    Store
	client   *httpx.Client
	endpoint string
}

// New constructs a Poller against the given FX endpoint.
func New(store Store, endpoint string) *Poller {
	return &Poller{
		store:    store,
		client:   httpx.New(10 * time.Second),
		endpoint: endpoint,
	}
}

// Run is the infinite poll loop; it returns only when ctx is cancelled by
// the supervisor. The loop never crashes: every failure is logged and
// retried on the failure cadence.
func (p *Poller) Run(ctx context.Context) {
	log := logger.Ctx(ctx)

	if err := p.store.EnsureBaseCurrency(ctx); err != nil {
		log.Errorw("ensuring base currency at startup", "error", err)
	}

	for {
		sleep := successCadence

		if err := p.pollOnce(ctx); err != nil {
			log.Errorw("currency poll failed", "error", err)
			sleep = failureCadence
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) error {
	resp, err := p.client.Get(ctx, p.endpoint, nil)
	if err != nil {
		return clues.Wrap(err, "fetching fx document")
	}

	body, err := httpx.ReadAll(resp)
	if err != nil {
		return clues.Wrap(err, "reading fx response body")
	}

	var doc fxDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return clues.Wrap(err, "decoding fx document")
	}

	if len(doc.Valute) == 0 {
		return clues.New("fx document contained no currencies")
	}

	now := time.Now().UTC()

	for _, v := range doc.Valute {
		if v.CharCode == "" {
			continue
		}

		c := model.Currency{
			ID:        uuid.New(),
			CharCode:  v.CharCode,
			Name:      v.Name,
			Rate:      decimal.NewFromFloat(v.Value),
			UpdatedAt: now,
		}

		if err := p.store.UpsertCurrency(ctx, c); err != nil {
			logger.Ctx(ctx).Errorw("upserting currency", "char_code", v.CharCode, "error", err)
		}
	}

	return p.store.EnsureBaseCurrency(ctx)
}
