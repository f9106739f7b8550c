package projection_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/floorsync/core/internal/model"
	"github.com/floorsync/core/internal/projection"
)

func TestGetQuantityBySKU_SumsMatchingRows(t *testing.T) {
	stock := []model.Stock{
		{Name: "КОВРОЛИН СИНИЙ 4М", Quantity: 10},
		{Name: "ковролин синий 4м доп. партия", Quantity: 5},
		{Name: "другой товар", Quantity: 100},
	}

	total := projection.GetQuantityBySKU("синий ковролин", stock)
	assert.Equal(t, 15.0, total)
}

func TestGetQuantityBySKU_NoMatches(t *testing.T) {
	stock := []model.Stock{{Name: "ламинат дуб", Quantity: 7}}

	assert.Equal(t, 0.0, projection.GetQuantityBySKU("ковролин", stock))
}

func TestGetQuantityBySKU_EmptySKU(t *testing.T) {
	stock := []model.Stock{{Name: "ковролин", Quantity: 7}}

	assert.Equal(t, 0.0, projection.GetQuantityBySKU("", stock))
}

func TestGetQuantityBySKU_AssociativeUnderPermutation(t *testing.T) {
	stock := []model.Stock{
		{Name: "ковролин синий 4м", Quantity: 3},
		{Name: "ковролин синий 4м партия два", Quantity: 7},
		{Name: "ламинат", Quantity: 20},
		{Name: "ковролин синий 4м партия три", Quantity: 1},
	}

	want := projection.GetQuantityBySKU("ковролин синий", stock)

	shuffled := append([]model.Stock(nil), stock...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	assert.Equal(t, want, projection.GetQuantityBySKU("ковролин синий", shuffled))
}
