package stockattr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorsync/core/internal/model"
	"github.com/floorsync/core/internal/stockattr"
)

func attrProduct(article, value string) model.IoRProduct {
	return model.IoRProduct{
		ID:      "id-" + article,
		Article: article,
		Attributes: []model.IoRAttribute{
			{Name: "Наличие", Value: value},
		},
	}
}

func TestCompute_SkipsWhenSentinelsNotDiscoverable(t *testing.T) {
	products := []model.IoRProduct{attrProduct("a1", "В наличии (2-3 раб. дня)")}

	_, ok := stockattr.Compute(products, nil)
	assert.False(t, ok, "only one of the two sentinel values is present")
}

func TestCompute_FlipsOnlyWhenValueDiffers(t *testing.T) {
	products := []model.IoRProduct{
		attrProduct("a1", "Под заказ (5-8 недель)"), // currently out of stock, but stock says in-stock
		attrProduct("a2", "В наличии (2-3 раб. дня)"), // already correct, no change expected
	}

	stock := []model.Stock{
		{Name: "A1", Quantity: 10},
		{Name: "A2", Quantity: 10},
	}

	updates, ok := stockattr.Compute(products, stock)
	require.True(t, ok)
	require.Len(t, updates, 1)

	assert.Equal(t, "id-a1", updates[0].ProductID)
	assert.Equal(t, "В наличии (2-3 раб. дня)", updates[0].Value)
}

func TestCompute_FlipsToOutOfStock(t *testing.T) {
	products := []model.IoRProduct{
		attrProduct("a1", "В наличии (2-3 раб. дня)"),
		attrProduct("a2", "Под заказ (5-8 недель)"),
	}

	stock := []model.Stock{
		{Name: "A1", Quantity: 0},
	}

	updates, ok := stockattr.Compute(products, stock)
	require.True(t, ok)
	require.Len(t, updates, 1)

	assert.Equal(t, "id-a1", updates[0].ProductID)
	assert.Equal(t, "Под заказ (5-8 недель)", updates[0].Value)
}

func TestCompute_SkipsProductsWithoutTheAttribute(t *testing.T) {
	products := []model.IoRProduct{
		attrProduct("a1", "В наличии (2-3 раб. дня)"),
		attrProduct("a2", "Под заказ (5-8 недель)"),
		{ID: "id-a3", Article: "a3"},
	}

	updates, ok := stockattr.Compute(products, nil)
	require.True(t, ok)

	for _, u := range updates {
		assert.NotEqual(t, "id-a3", u.ProductID)
	}
}
