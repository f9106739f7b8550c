// Package storefront is the consumer-key/secret authenticated REST client
// shared by both downstream storefront catalogs (§6): list_all for
// products/attributes/categories, plus batch create/update/delete.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/alcionai/clues"

	"github.com/floorsync/core/internal/httpx"
	"github.com/floorsync/core/internal/model"
)

// Client is one storefront instance's API handle. Two instances (A and B)
// are constructed and used identically by the reconciler.
type Client struct {
	Name   string // "A" or "B", used only for logging.
	host   string
	key    string
	secret string
	http   *httpx.Client
}

// New constructs a storefront Client.
func New(name, host, key, secret string) *Client {
	return &Client{Name: name, host: host, key: key, secret: secret, http: httpx.New(30 * time.Second)}
}

func (c *Client) authedURL(path string) string {
	v := url.Values{"consumer_key": {c.key}, "consumer_secret": {c.secret}}
	return c.host + path + "?" + v.Encode()
}

type productDTO struct {
	ID       int    `json:"id"`
	SKU      string `json:"sku"`
	Modified string `json:"date_modified_gmt"`
}

const sfTimestampLayout = "2006-01-02T15:04:05"

// ListProducts fetches every product via repeated list_all pages.
func (c *Client) ListProducts(ctx context.Context) ([]model.SFProduct, error) {
	var all []model.SFProduct

	page := 1

	for {
		url := c.authedURL("/products") + "&per_page=100&page=" + itoa(page)

		resp, err := c.http.Get(ctx, url, nil)
		if err != nil {
			return nil, clues.Wrap(err, "listing storefront products").With("storefront", c.Name)
		}

		body, err := httpx.ReadAll(resp)
		if err != nil {
			return nil, clues.Wrap(err, "reading storefront products body").With("storefront", c.Name)
		}

		var rows []productDTO
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, clues.Wrap(err, "decoding storefront products").With("storefront", c.Name)
		}

		for _, r := range rows {
			modified, _ := time.Parse(sfTimestampLayout, r.Modified)

			all = append(all, model.SFProduct{
				ID:        itoa(r.ID),
				SKU:       r.SKU,
				UpdatedAt: modified,
			})
		}

		if len(rows) < 100 {
			break
		}

		page++
	}

	return all, nil
}

type attrDTO struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Options []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"options"`
}

// ListAttributes fetches every product attribute with its options.
func (c *Client) ListAttributes(ctx context.Context) ([]model.Attr, error) {
	resp, err := c.http.Get(ctx, c.authedURL("/products/attributes")+"&per_page=100", nil)
	if err != nil {
		return nil, clues.Wrap(err, "listing storefront attributes").With("storefront", c.Name)
	}

	body, err := httpx.ReadAll(resp)
	if err != nil {
		return nil, clues.Wrap(err, "reading storefront attributes body").With("storefront", c.Name)
	}

	var rows []attrDTO
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, clues.Wrap(err, "decoding storefront attributes").With("storefront", c.Name)
	}

	out := make([]model.Attr, len(rows))

	for i, r := range rows {
		a := model.Attr{ID: itoa(r.ID), Name: r.Name, Options: map[string]string{}}
		for _, o := range r.Options {
			a.Options[o.Name] = itoa(o.ID)
		}

		out[i] = a
	}

	return out, nil
}

type catDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ListCategories fetches every product category.
func (c *Client) ListCategories(ctx context.Context) ([]model.Cat, error) {
	resp, err := c.http.Get(ctx, c.authedURL("/products/categories")+"&per_page=100", nil)
	if err != nil {
		return nil, clues.Wrap(err, "listing storefront categories").With("storefront", c.Name)
	}

	body, err := httpx.ReadAll(resp)
	if err != nil {
		return nil, clues.Wrap(err, "reading storefront categories body").With("storefront", c.Name)
	}

	var rows []catDTO
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, clues.Wrap(err, "decoding storefront categories").With("storefront", c.Name)
	}

	out := make([]model.Cat, len(rows))
	for i, r := range rows {
		out[i] = model.Cat{ID: itoa(r.ID), Name: r.Name}
	}

	return out, nil
}

// BatchCreate/BatchUpdate/BatchDelete map directly onto the WooCommerce-
// style batch endpoint: POST /products/batch with {create|update|delete}.
func (c *Client) BatchCreate(ctx context.Context, payloads []model.ProductPayload) error {
	return c.batch(ctx, map[string]any{"create": toWireProducts(payloads)})
}

func (c *Client) BatchUpdate(ctx context.Context, payloads []model.ProductPayload) error {
	return c.batch(ctx, map[string]any{"update": toWireProducts(payloads)})
}

func (c *Client) BatchDelete(ctx context.Context, storefrontIDs []string) error {
	return c.batch(ctx, map[string]any{"delete": storefrontIDs})
}

func (c *Client) batch(ctx context.Context, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return clues.Wrap(err, "marshalling storefront batch payload")
	}

	resp, err := c.http.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authedURL("/products/batch"), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}

		req.Header.Set("Content-Type", "application/json")

		return req, nil
	})
	if err != nil {
		return clues.Wrap(err, "posting storefront batch").With("storefront", c.Name)
	}

	defer resp.Body.Close()

	return nil
}

func itoa(n int) string {
	return fmtInt(n)
}
