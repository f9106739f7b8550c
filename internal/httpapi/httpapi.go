// Package httpapi implements C12: a thin chi router exposing the read
// endpoints of §6 plus the webhook intake and liveness check. Handlers hold
// no business logic; they adapt query parameters to store calls and marshal
// results.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/floorsync/core/internal/logger"
	"github.com/floorsync/core/internal/model"
)

// CurrencyStore is the subset of *dbx.Store the currency endpoints need.
type CurrencyStore interface {
	ListCurrencies(ctx context.Context) ([]model.Currency, error)
	GetCurrency(ctx context.Context, charCode string) (model.Currency, error)
}

// StockStore is the subset of *dbx.Store the stock endpoint needs.
type StockStore interface {
	GetStock(ctx context.Context, limit, offset int) ([]model.Stock, error)
	FindStock(ctx context.Context, query string) ([]model.Stock, error)
}

// PriceStore is the subset of *dbx.Store the price endpoints need.
type PriceStore interface {
	FindPrices(ctx context.Context, query string, limit, offset int) ([]model.Price, error)
	GetPricesBySupplier(ctx context.Context, supplier string) ([]model.Price, error)
	UpsertPrice(ctx context.Context, p model.Price) error
}

// EventIntake is the subset of *events.Intake the webhook endpoint needs.
type EventIntake interface {
	Handle(ctx context.Context, body []byte) error
}

// Deps collects the handlers' dependencies.
type Deps struct {
	Currencies CurrencyStore
	Stock      StockStore
	Prices     PriceStore
	Intake     EventIntake
}

// New builds the chi router for the full API surface.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)

	r.Route("/api/v1/currencies", func(r chi.Router) {
		r.Get("/", deps.listCurrencies)
		r.Get("/{char_code}", deps.getCurrency)
	})

	r.Get("/api/v1/stock", deps.listStock)

	r.Route("/api/v1/prices", func(r chi.Router) {
		r.Get("/", deps.listPrices)
		r.Post("/", deps.createPrice)
		r.Get("/{supplier}", deps.getPricesBySupplier)
	})

	r.Post("/webhooks/ms", deps.handleWebhook)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (d Deps) listCurrencies(w http.ResponseWriter, r *http.Request) {
	rows, err := d.Currencies.ListCurrencies(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, rows)
}

func (d Deps) getCurrency(w http.ResponseWriter, r *http.Request) {
	charCode := chi.URLParam(r, "char_code")

	row, err := d.Currencies.GetCurrency(r.Context(), charCode)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, row)
}

func (d Deps) listStock(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	if search != "" {
		rows, err := d.Stock.FindStock(r.Context(), search)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, rows)

		return
	}

	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	rows, err := d.Stock.GetStock(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, rows)
}

func (d Deps) listPrices(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	rows, err := d.Prices.FindPrices(r.Context(), search, limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, rows)
}

func (d Deps) getPricesBySupplier(w http.ResponseWriter, r *http.Request) {
	supplier := chi.URLParam(r, "supplier")

	rows, err := d.Prices.GetPricesBySupplier(r.Context(), supplier)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, rows)
}

func (d Deps) createPrice(w http.ResponseWriter, r *http.Request) {
	var p model.Price

	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "malformed price payload", http.StatusBadRequest)
		return
	}

	if err := d.Prices.UpsertPrice(r.Context(), p); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// handleWebhook always returns 200, per §6: the IoR's webhook delivery
// retries on non-2xx, and a malformed body is a Validation-class error that
// drops the specific event, not the whole request.
func (d Deps) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Ctx(r.Context()).Errorw("reading webhook body", "error", err)
		w.WriteHeader(http.StatusOK)

		return
	}

	if err := d.Intake.Handle(r.Context(), body); err != nil {
		logger.Ctx(r.Context()).Errorw("handling webhook", "error", err)
	}

	w.WriteHeader(http.StatusOK)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}

	return v
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Ctx(context.Background()).Errorw("encoding json response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Ctx(r.Context()).Errorw("api handler error", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
