package projection

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/floorsync/core/internal/model"
)

const (
	priceNameRegular = "Цена продажи"
	priceNameSale    = "Акция"
	saleSuppressAt   = 2.0

	defaultCountry = "Россия"
	defaultUnit    = "м2"
	unitCarpetTile = "уп"

	descPrefixSquareMeter = "Цена указана за один квадратный метр."
	descPrefixPack        = "Цена указана за одну упаковку."
)

// Project is C9's pure function: IoR product + reference snapshots + the
// current stock snapshot -> a storefront payload, or nil when the product
// has no storefront home (§4.9, invariant §8.8).
func Project(ior model.IoRProduct, ms MsData, woo WooData, stock []model.Stock) *model.ProductPayload {
	pt := classify(ior.PathName)
	if pt == ProductOther {
		return nil
	}

	cat, ok := woo.CategoriesByName[pt.DisplayName()]
	if !ok {
		return nil
	}

	regularPrice, salePrice := computePrices(ior.SalePrices, ms.CurrenciesByID)

	country := resolveCountry(ior.Country, ms.CountriesByID)
	unit := resolveUnit(pt, ior.Uom, ms.UnitsByID)

	dims := deriveDimensions(pt, ior.Attributes)

	status, visibility := model.StatusPublish, model.VisibilityVisible
	if ior.Archived {
		status, visibility = model.StatusDraft, model.VisibilityHidden
	}

	return &model.ProductPayload{
		SKU:           strings.ToUpper(ior.Article),
		Name:          ior.Name,
		CategoryID:    cat.ID,
		Description:   applyDescriptionPrefix(pt, ior.Description),
		RegularPrice:  formatPrice(regularPrice),
		SalePrice:     formatOptionalPrice(salePrice),
		Country:       country,
		Unit:          unit,
		Width:         dims.width,
		Length:        dims.length,
		Height:        dims.height,
		MinQuantity:   dims.minQuantity,
		QuantityStep:  dims.step,
		StockQuantity: GetQuantityBySKU(ior.Article, stock),
		ManageStock:   true,
		Backorders:    "Yes",
		StockStatus:   model.StockStatusOnBackorder,
		Status:        status,
		Visibility:    visibility,
		Attributes:    projectAttributes(ior.Attributes, woo.AttributesByName),
	}
}

// computePrices implements the regular/sale price rule: value * rate / 100,
// with the currency resolved by the trailing id component of the sale
// price's Currency field, and sale price suppressed (returned as nil) when
// the unrounded value is <= 2.0 (§8.7).
func computePrices(prices []model.SalePrice, currencies map[string]model.Currency) (regular *float64, sale *float64) {
	for _, sp := range prices {
		rate, ok := lookupRate(sp.Currency, currencies)
		if !ok {
			continue
		}

		value := sp.Value * rate / 100

		switch sp.Name {
		case priceNameRegular:
			v := value
			regular = &v
		case priceNameSale:
			if value > saleSuppressAt {
				v := value
				sale = &v
			}
		}
	}

	return regular, sale
}

func lookupRate(currencyRef string, currencies map[string]model.Currency) (float64, bool) {
	id := trailingIDComponent(currencyRef)

	c, ok := currencies[id]
	if !ok {
		return 0, false
	}

	rate, _ := c.Rate.Float64()

	return rate, true
}

// trailingIDComponent extracts the final "/"-delimited segment of a
// possibly-href-shaped reference, e.g. ".../currency/<id>" -> "<id>".
func trailingIDComponent(ref string) string {
	ref = strings.TrimSuffix(ref, "/")

	if idx := strings.LastIndexByte(ref, '/'); idx >= 0 {
		return ref[idx+1:]
	}

	return ref
}

func resolveCountry(ref model.MetaRef, countries map[string]model.Country) string {
	if c, ok := countries[trailingIDComponent(ref.Meta)]; ok {
		return c.Name
	}

	return defaultCountry
}

func resolveUnit(pt ProductType, ref model.MetaRef, units map[string]model.Unit) string {
	if pt == ProductCarpetTile {
		return unitCarpetTile
	}

	if u, ok := units[trailingIDComponent(ref.Meta)]; ok {
		return u.Name
	}

	return defaultUnit
}

// applyDescriptionPrefix strips either known prefix (to avoid duplication
// on re-projection) then re-applies the one appropriate to pt.
func applyDescriptionPrefix(pt ProductType, description string) string {
	description = strings.TrimPrefix(description, descPrefixSquareMeter)
	description = strings.TrimPrefix(description, descPrefixPack)
	description = strings.TrimSpace(description)

	switch pt {
	case ProductCarpet, ProductMat:
		return descPrefixSquareMeter + " " + description
	case ProductCarpetTile:
		return descPrefixPack + " " + description
	default:
		return description
	}
}

func projectAttributes(iorAttrs []model.IoRAttribute, woo map[string]model.Attr) []model.ProductAttributePayload {
	var out []model.ProductAttributePayload

	for _, a := range iorAttrs {
		if _, ok := woo[a.Name]; !ok {
			continue
		}

		out = append(out, model.ProductAttributePayload{
			Name:    a.Name,
			Visible: true,
			Options: []string{a.ResolvedValue()},
		})
	}

	return out
}

func formatPrice(v *float64) string {
	if v == nil {
		return "0.00"
	}

	return formatTwoDecimals(*v)
}

func formatOptionalPrice(v *float64) string {
	if v == nil {
		return ""
	}

	return formatTwoDecimals(*v)
}

func formatTwoDecimals(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}
