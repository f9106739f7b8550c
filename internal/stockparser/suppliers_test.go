package stockparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// newSheet builds an in-memory workbook with the given rows on its default
// sheet, letting each parser be exercised without touching a file on disk.
func newSheet(t *testing.T, rows [][]string) *excelize.File {
	t.Helper()

	wb := excelize.NewFile()
	sheet := wb.GetSheetList()[0]

	for r, row := range rows {
		for c, v := range row {
			cellRef, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, wb.SetCellValue(sheet, cellRef, v))
		}
	}

	return wb
}

func TestParseFox_CarriesNameAcrossRows(t *testing.T) {
	wb := newSheet(t, [][]string{
		{"", "", "Бельгийский ковролин"},
		{"", "", "", "", "", "", "12"},
	})

	out := parseFox(wb)
	require.Len(t, out, 1)
	assert.Equal(t, "Бельгийский ковролин", out[0].Name)
	assert.Equal(t, 12.0, out[0].Quantity)
}

func TestParseFenix_FirstAndLastColumn(t *testing.T) {
	wb := newSheet(t, [][]string{
		{"Покрытие А", "x", "7"},
	})

	out := parseFenix(wb)
	require.Len(t, out, 1)
	assert.Equal(t, "Покрытие А", out[0].Name)
	assert.Equal(t, 7.0, out[0].Quantity)
}

func TestParseOpus_MarkersThenMinLotFilter(t *testing.T) {
	wb := newSheet(t, [][]string{
		{"Ковровая плитка", "", "", "", "", "9"},
		{"Betap", "", "", "", "", "9"},
		{"Модель 100", "", "", "", "", "9"},
		{"Модель 200", "", "", "", "", "4"},
	})

	out := parseOpus(wb)
	require.Len(t, out, 1, "the row at or below the 5.0 minimum lot must be dropped")
	assert.Equal(t, "Ковровая плитка Betap Модель 100", out[0].Name)
	assert.Equal(t, 9.0, out[0].Quantity)
}

func TestParseSF_StripsUnitSuffixAndUsesCol3Col8(t *testing.T) {
	wb := newSheet(t, [][]string{
		{"", "", "", "Ковролин Standard", "", "", "", "", "15 шт."},
	})

	out := parseSF(wb)
	require.Len(t, out, 1)
	assert.Equal(t, "Ковролин Standard", out[0].Name)
	assert.Equal(t, 15.0, out[0].Quantity)
}

func TestParseZefir_EveryRowIndependent(t *testing.T) {
	wb := newSheet(t, [][]string{
		{"", "Ковролин Зефир 1", "", "3"},
		{"", "Ковролин Зефир 2", "", "8"},
	})

	out := parseZefir(wb)
	require.Len(t, out, 2)
	assert.Equal(t, "Ковролин Зефир 1", out[0].Name)
	assert.Equal(t, 3.0, out[0].Quantity)
	assert.Equal(t, "Ковролин Зефир 2", out[1].Name)
	assert.Equal(t, 8.0, out[1].Quantity)
}

func TestParseFancy_CompoundNameMinusReserved(t *testing.T) {
	wb := newSheet(t, [][]string{
		{"Forbo", "", "", "", "Modulyss 42"},
		{"", "", "", "", "20", "", "5"},
	})

	out := parseFancy(wb)
	require.Len(t, out, 1)
	assert.Equal(t, "Forbo Modulyss 42", out[0].Name)
	assert.Equal(t, 15.0, out[0].Quantity, "current(20) - reserved(5)")
}

func TestParseFancy_NonLatinHeaderIsNotANameRow(t *testing.T) {
	wb := newSheet(t, [][]string{
		{"Ковролин", "", "", "", "10", "", "2"},
	})

	out := parseFancy(wb)
	assert.Empty(t, out, "a Cyrillic column-0 value never matches the Latin-script header regex, so there's no carried name")
}

func TestParseOrtgraph_NameCol0QuantityCol3(t *testing.T) {
	wb := newSheet(t, [][]string{
		{"Ламинат Ясень", "", "", "6"},
	})

	out := parseOrtgraph(wb)
	require.Len(t, out, 1)
	assert.Equal(t, "Ламинат Ясень", out[0].Name)
	assert.Equal(t, 6.0, out[0].Quantity)
}

func TestParseCarpetland_FourColumnName(t *testing.T) {
	wb := newSheet(t, [][]string{
		{"Tarkett", "Sinteros", "Grey", "4m", "", "11"},
	})

	out := parseCarpetland(wb)
	require.Len(t, out, 1)
	assert.Equal(t, "Tarkett Sinteros Grey 4m", out[0].Name)
	assert.Equal(t, 11.0, out[0].Quantity)
}
