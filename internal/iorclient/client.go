// Package iorclient is the token-authenticated REST client for the
// inventory-of-record system: full-page listing of products/countries/
// units, and the batch stock-attribute patch C10 issues.
package iorclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alcionai/clues"

	"github.com/floorsync/core/internal/httpx"
	"github.com/floorsync/core/internal/model"
)

// Client talks to the IoR REST API.
type Client struct {
	baseURL string
	token   string
	http    *httpx.Client
}

// New constructs a Client.
func New(baseURL, token string) *Client {
	return &Client{baseURL: baseURL, token: token, http: httpx.New(30 * time.Second)}
}

func (c *Client) authHeader(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
}

type page[T any] struct {
	Rows []T `json:"rows"`
	Meta struct {
		Size int `json:"size"`
	} `json:"meta"`
}

// listAll pages through a full-listing endpoint until a short page (or an
// empty one) signals the end, following the "full-page listing" contract
// of §6.
func listAll[T any](ctx context.Context, c *Client, path string, pageSize int) ([]T, error) {
	var all []T

	offset := 0

	for {
		url := fmt.Sprintf("%s%s?limit=%d&offset=%d", c.baseURL, path, pageSize, offset)

		resp, err := c.http.Get(ctx, url, c.authHeader)
		if err != nil {
			return nil, clues.Wrap(err, "listing ior page").With("path", path, "offset", offset)
		}

		body, err := httpx.ReadAll(resp)
		if err != nil {
			return nil, clues.Wrap(err, "reading ior page body").With("path", path)
		}

		var pg page[T]
		if err := json.Unmarshal(body, &pg); err != nil {
			return nil, clues.Wrap(err, "decoding ior page").With("path", path)
		}

		all = append(all, pg.Rows...)

		if len(pg.Rows) < pageSize {
			break
		}

		offset += pageSize
	}

	return all, nil
}

type countryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListCountries fetches the full country reference list.
func (c *Client) ListCountries(ctx context.Context) ([]model.Country, error) {
	rows, err := listAll[countryDTO](ctx, c, "/entity/country", 1000)
	if err != nil {
		return nil, err
	}

	out := make([]model.Country, len(rows))
	for i, r := range rows {
		out[i] = model.Country{ID: r.ID, Name: r.Name}
	}

	return out, nil
}

type uomDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListUnits fetches the full unit-of-measure reference list.
func (c *Client) ListUnits(ctx context.Context) ([]model.Unit, error) {
	rows, err := listAll[uomDTO](ctx, c, "/entity/uom", 1000)
	if err != nil {
		return nil, err
	}

	out := make([]model.Unit, len(rows))
	for i, r := range rows {
		out[i] = model.Unit{ID: r.ID, Name: r.Name}
	}

	return out, nil
}

type productDTO struct {
	ID          string `json:"id"`
	Article     string `json:"article"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PathName    string `json:"pathName"`
	Archived    bool   `json:"archived"`
	Updated     string `json:"updated"`

	Country struct {
		Name string `json:"name"`
		Meta string `json:"meta"`
	} `json:"country"`
	Uom struct {
		Name string `json:"name"`
		Meta string `json:"meta"`
	} `json:"uom"`

	SalePrices []struct {
		Name     string  `json:"name"`
		Value    float64 `json:"value"`
		Currency string  `json:"currency"`
	} `json:"salePrices"`

	Attributes []struct {
		Name       string `json:"name"`
		Value      string `json:"value"`
		CustomName string `json:"customName"`
		IsCustom   bool   `json:"isCustom"`
	} `json:"attributes"`
}

const iorTimestampLayout = "2006-01-02 15:04:05"

// ListProducts fetches the full product list, mapped to the internal
// IoRProduct shape.
func (c *Client) ListProducts(ctx context.Context) ([]model.IoRProduct, error) {
	rows, err := listAll[productDTO](ctx, c, "/entity/product", 500)
	if err != nil {
		return nil, err
	}

	out := make([]model.IoRProduct, len(rows))

	for i, r := range rows {
		updated, _ := time.Parse(iorTimestampLayout, r.Updated)

		p := model.IoRProduct{
			ID:          r.ID,
			Article:     r.Article,
			Name:        r.Name,
			Description: r.Description,
			PathName:    r.PathName,
			Archived:    r.Archived,
			UpdatedAt:   updated,
			Country:     model.MetaRef{Name: r.Country.Name, Meta: r.Country.Meta},
			Uom:         model.MetaRef{Name: r.Uom.Name, Meta: r.Uom.Meta},
		}

		for _, sp := range r.SalePrices {
			p.SalePrices = append(p.SalePrices, model.SalePrice{Name: sp.Name, Value: sp.Value, Currency: sp.Currency})
		}

		for _, a := range r.Attributes {
			p.Attributes = append(p.Attributes, model.IoRAttribute{
				Name: a.Name, Value: a.Value, CustomName: a.CustomName, IsCustom: a.IsCustom,
			})
		}

		out[i] = p
	}

	return out, nil
}

// StockAttributeUpdate is one product's new "Наличие" attribute value.
type StockAttributeUpdate struct {
	ProductID string
	Value     string
}

// BatchUpdateStockAttribute patches the stock-status attribute on a set of
// products in a single call, per C10.
func (c *Client) BatchUpdateStockAttribute(ctx context.Context, updates []StockAttributeUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	type item struct {
		ID         string `json:"id"`
		Attributes []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"attributes"`
	}

	body := make([]item, len(updates))

	for i, u := range updates {
		body[i] = item{ID: u.ProductID}
		body[i].Attributes = append(body[i].Attributes, struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		}{Name: "Наличие", Value: u.Value})
	}

	return c.postBatch(ctx, "/entity/product", body)
}

func (c *Client) postBatch(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return clues.Wrap(err, "marshalling ior batch payload")
	}

	resp, err := c.http.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}

		c.authHeader(req)
		req.Header.Set("Content-Type", "application/json")

		return req, nil
	})
	if err != nil {
		return clues.Wrap(err, "posting ior batch").With("path", path)
	}

	defer resp.Body.Close()

	return nil
}
