package projection_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorsync/core/internal/model"
	"github.com/floorsync/core/internal/projection"
)

func baseCurrencies() map[string]model.Currency {
	return map[string]model.Currency{
		"RUB": {CharCode: "RUB", Rate: decimal.NewFromInt(1)},
	}
}

func baseMsData() projection.MsData {
	return projection.MsData{
		CurrenciesByID: baseCurrencies(),
		CountriesByID:  map[string]model.Country{},
		UnitsByID:      map[string]model.Unit{},
	}
}

func baseWooData() projection.WooData {
	return projection.WooData{
		CategoriesByName: map[string]model.Cat{
			"Ковролин": {ID: "10", Name: "Ковролин"},
		},
		AttributesByName: map[string]model.Attr{},
	}
}

func baseProduct() model.IoRProduct {
	return model.IoRProduct{
		ID:          "ior-1",
		Article:     "abc-123",
		Name:        "Тестовый ковролин",
		Description: "Плотный ворс, устойчив к истиранию.",
		PathName:    "Ковролин/Бытовой",
		UpdatedAt:   time.Now(),
		Country:   model.MetaRef{Name: "Россия", Meta: "country/1"},
		Uom:       model.MetaRef{Name: "м2", Meta: "uom/1"},
		SalePrices: []model.SalePrice{
			{Name: "Цена продажи", Value: 100000, Currency: "RUB"},
		},
	}
}

func TestProject_CategoryGate(t *testing.T) {
	p := baseProduct()
	p.PathName = "Плитка настенная/что-то" // not one of the four known prefixes

	payload := projection.Project(p, baseMsData(), baseWooData(), nil)
	assert.Nil(t, payload, "a product with no ProductType mapping must return none")
}

func TestProject_MissingCategoryMapping(t *testing.T) {
	p := baseProduct()

	woo := baseWooData()
	woo.CategoriesByName = map[string]model.Cat{} // Ковролин has no storefront category

	payload := projection.Project(p, baseMsData(), woo, nil)
	assert.Nil(t, payload)
}

func TestProject_ArchivedIsDraftHidden(t *testing.T) {
	p := baseProduct()
	p.Archived = true

	payload := projection.Project(p, baseMsData(), baseWooData(), nil)
	require.NotNil(t, payload)

	assert.Equal(t, model.StatusDraft, payload.Status)
	assert.Equal(t, model.VisibilityHidden, payload.Visibility)
}

func TestProject_PublishedIsVisible(t *testing.T) {
	payload := projection.Project(baseProduct(), baseMsData(), baseWooData(), nil)
	require.NotNil(t, payload)

	assert.Equal(t, model.StatusPublish, payload.Status)
	assert.Equal(t, model.VisibilityVisible, payload.Visibility)
	assert.Equal(t, model.StockStatusOnBackorder, payload.StockStatus)
	assert.True(t, payload.ManageStock)
	assert.Equal(t, "Yes", payload.Backorders)
}

func TestProject_SalePriceSuppressedAtOrBelowThreshold(t *testing.T) {
	p := baseProduct()
	p.SalePrices = append(p.SalePrices, model.SalePrice{Name: "Акция", Value: 200, Currency: "RUB"}) // 200*1/100 = 2.0

	payload := projection.Project(p, baseMsData(), baseWooData(), nil)
	require.NotNil(t, payload)

	assert.Equal(t, "", payload.SalePrice, "a sale price of exactly 2.0 must be suppressed")
}

func TestProject_SalePriceKeptAboveThreshold(t *testing.T) {
	p := baseProduct()
	p.SalePrices = append(p.SalePrices, model.SalePrice{Name: "Акция", Value: 1000, Currency: "RUB"}) // 10.0

	payload := projection.Project(p, baseMsData(), baseWooData(), nil)
	require.NotNil(t, payload)

	assert.Equal(t, "10.00", payload.SalePrice)
}

func TestProject_RegularPriceAppliesRate(t *testing.T) {
	p := baseProduct()

	ms := baseMsData()
	ms.CurrenciesByID["USD"] = model.Currency{CharCode: "USD", Rate: decimal.NewFromInt(90)}
	p.SalePrices[0].Currency = "USD"
	p.SalePrices[0].Value = 10 // 10 * 90 / 100 = 9.0

	payload := projection.Project(p, ms, baseWooData(), nil)
	require.NotNil(t, payload)

	assert.Equal(t, "9.00", payload.RegularPrice)
}

func TestProject_IsDeterministic(t *testing.T) {
	p := baseProduct()
	ms := baseMsData()
	woo := baseWooData()

	first := projection.Project(p, ms, woo, nil)
	second := projection.Project(p, ms, woo, nil)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
}

func TestProject_CarpetTileOverridesUnitAndDimensions(t *testing.T) {
	p := baseProduct()
	p.PathName = "Ковровая плитка/Офисная"
	p.Attributes = []model.IoRAttribute{{Name: "Размер плитки, см", Value: "50x50"}}

	woo := baseWooData()
	woo.CategoriesByName["Ковровая плитка"] = model.Cat{ID: "20", Name: "Ковровая плитка"}

	payload := projection.Project(p, baseMsData(), woo, nil)
	require.NotNil(t, payload)

	assert.Equal(t, "уп", payload.Unit)
	assert.Equal(t, 18.0, payload.Height)
}

func TestProject_DescriptionPrefixNotDuplicated(t *testing.T) {
	p := baseProduct()
	p.Description = "Цена указана за один квадратный метр. Плотный ворс, устойчив к истиранию."

	payload := projection.Project(p, baseMsData(), baseWooData(), nil)
	require.NotNil(t, payload)

	assert.Equal(t, 1, countOccurrences(payload.Description, "Цена указана за один квадратный метр."))
}

func TestProject_NameAndDescriptionProjectIndependently(t *testing.T) {
	p := baseProduct()

	payload := projection.Project(p, baseMsData(), baseWooData(), nil)
	require.NotNil(t, payload)

	assert.Equal(t, p.Name, payload.Name)
	assert.Contains(t, payload.Description, p.Description)
	assert.NotEqual(t, payload.Name, payload.Description)
}

func countOccurrences(haystack, needle string) int {
	count := 0
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			count++
		}
	}

	return count
}
