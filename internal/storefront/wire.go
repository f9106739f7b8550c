package storefront

import (
	"strconv"

	"github.com/floorsync/core/internal/model"
)

func fmtInt(n int) string {
	return strconv.Itoa(n)
}

// wireProduct is the WooCommerce-style wire shape a create/update batch
// entry is marshalled to.
type wireProduct struct {
	ID           int64               `json:"id,omitempty"`
	SKU          string              `json:"sku"`
	Name         string              `json:"name"`
	Categories   []map[string]string `json:"categories"`
	Description  string              `json:"description"`
	RegularPrice string              `json:"regular_price"`
	SalePrice    string              `json:"sale_price,omitempty"`
	ManageStock  bool                `json:"manage_stock"`
	Backorders   string              `json:"backorders"`
	StockStatus  string              `json:"stock_status"`
	StockQty     float64             `json:"stock_quantity"`
	Status       string              `json:"status"`
	CatalogVis   string              `json:"catalog_visibility"`
	Dimensions   wireDimensions      `json:"dimensions"`
	Attributes   []wireAttribute     `json:"attributes"`
	MetaData     []wireMeta          `json:"meta_data"`
}

type wireDimensions struct {
	Length string `json:"length"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

type wireAttribute struct {
	Name    string   `json:"name"`
	Visible bool     `json:"visible"`
	Options []string `json:"options"`
}

type wireMeta struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func toWireProducts(payloads []model.ProductPayload) []wireProduct {
	out := make([]wireProduct, len(payloads))

	for i, p := range payloads {
		attrs := make([]wireAttribute, len(p.Attributes))
		for j, a := range p.Attributes {
			attrs[j] = wireAttribute{Name: a.Name, Visible: a.Visible, Options: a.Options}
		}

		id, _ := strconv.ParseInt(p.StorefrontID, 10, 64)

		out[i] = wireProduct{
			ID:           id,
			SKU:          p.SKU,
			Name:         p.Name,
			Categories:   []map[string]string{{"id": p.CategoryID}},
			Description:  p.Description,
			RegularPrice: p.RegularPrice,
			SalePrice:    p.SalePrice,
			ManageStock:  p.ManageStock,
			Backorders:   p.Backorders,
			StockStatus:  string(p.StockStatus),
			StockQty:     p.StockQuantity,
			Status:       string(p.Status),
			CatalogVis:   string(p.Visibility),
			Dimensions: wireDimensions{
				Length: formatFloat(p.Length),
				Width:  formatFloat(p.Width),
				Height: formatFloat(p.Height),
			},
			Attributes: attrs,
			MetaData: []wireMeta{
				{Key: "country", Value: p.Country},
				{Key: "unit", Value: p.Unit},
				{Key: "min_quantity", Value: formatFloat(p.MinQuantity)},
				{Key: "quantity_step", Value: formatFloat(p.QuantityStep)},
			},
		}
	}

	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
