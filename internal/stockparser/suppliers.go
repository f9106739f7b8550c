package stockparser

import (
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/floorsync/core/internal/model"
)

// parseFox mirrors the original fox.rs state machine: column 2 carries a
// brand/name line on rows matching the Cyrillic-word regex, which is
// remembered until a later row's column 6 parses as a quantity.
func parseFox(wb *excelize.File) []model.Stock {
	nameRe := regexp.MustCompile(`^[А-Яа-я]+\s.+$`)

	var (
		out  []model.Stock
		name string
	)

	for _, row := range sheetRows(wb) {
		candidate := cell(row, 2)
		if nameRe.MatchString(candidate) {
			name = candidate
			continue
		}

		if qty, ok := parseQuantity(cell(row, 6)); ok && name != "" {
			out = append(out, model.Stock{Name: name, Quantity: qty})
		}
	}

	return out
}

// parseFenix mirrors fenix.rs: no compound-name state, just first column as
// name and last column as quantity.
func parseFenix(wb *excelize.File) []model.Stock {
	var out []model.Stock

	for _, row := range sheetRows(wb) {
		if len(row) == 0 {
			continue
		}

		qty, ok := parseQuantity(row[len(row)-1])
		if !ok {
			continue
		}

		out = append(out, model.Stock{Name: cell(row, 0), Quantity: qty})
	}

	return out
}

// opusProductTypes and opusBrands are column-0 markers from this supplier's
// sheet layout (opus.rs PRODUCT_TYPES/BRANDS): a row whose column 0 matches
// one of these sets a carried marker instead of being a SKU row itself.
var opusProductTypes = map[string]struct{}{
	"Грязезащита": {}, "Интернет-магазин": {}, "Искусственная трава": {},
	"Ковровая плитка": {}, "Контрактные обои": {}, "Мебель": {},
	"Осветительное оборудование": {}, "Паркет": {}, "ПВХ плитка": {},
	"ПВХ рулонные": {}, "Подвесные потолки": {}, "Резиновые покрытия": {},
	"Рулонные ковровые покрытия": {}, "Сопутствующие товары": {},
	"Стеновые панели": {}, "Фальшполы": {},
}

var opusBrands = map[string]struct{}{
	"Betap": {}, "Уличные покрытия": {}, "Desoma Grass": {}, "Bloq": {},
	"Innovflor": {}, "Interface": {}, "IVC (Mohawk)": {}, "Tapibel": {},
	"Виниловые покрытия": {}, "Флизелиновые обои под покраску": {},
	"Ресторация": {}, "CSVT": {}, "Navigator": {}, "ЛЕД-Эффект": {},
	"РУСВИТАЛЭЛЕКТРО": {}, "Barlinek": {}, "Coswick": {}, "Royal Parket": {},
	"Карелия Упофлор": {}, "паркет VOLVO": {}, "Спортивные системы": {},
	"ADO Floor": {}, "KBS floor": {}, "Tarkett": {}, "Vertigo": {},
	"Гомогенный": {}, "С защитой от статического электричества / токопроводящий": {},
	"Спортивный": {}, "МЕТАЛЛИЧЕСКИЕ ПОТОЛКИ": {}, "МЕТАЛЛИЧЕСКИЕ ПРОСТЫЕ ПОТОЛКИ": {},
	"МИНЕРАЛЬНЫЕ ПОТОЛКИ": {}, "Beka Rubber": {}, "Desoma Rubber Fitness Premium": {},
	"Beaulieu International Group": {}, "Betap Tufting B.V.": {}, "Condor carpets": {},
	"Haima": {}, "Luxemburg": {}, "Синтелон": {}, "Материалы для монтажа и ухода": {},
	"Плинтус": {}, "Подложка": {}, "Шнур сварочный": {}, "FORTIKA CDF": {},
	"FORTIKA HPL": {}, "Swiss KRONO CDF": {}, "CBI (Си-Би-Ай)": {}, "Fortika": {},
	"Perfaten, АСП": {}, "Конструктор (Аксиома)(Айрон)": {}, "Панели других производителей": {},
	"Стойки других производителей": {}, "Стрингеры": {},
}

const opusMinLot = 5.0

// parseOpus mirrors opus.rs: column 0 alternates between product-type
// markers, brand markers, and the SKU row itself; quantity lives in column
// 5 and must exceed 5.0 to count (a minimum-lot filter specific to this
// supplier's sheet layout). Both markers and the minimum-lot check only
// apply once column 5 parses as a quantity at all.
func parseOpus(wb *excelize.File) []model.Stock {
	var (
		out         []model.Stock
		productType string
		brand       string
	)

	for _, row := range sheetRows(wb) {
		qty, ok := parseQuantity(cell(row, 5))
		if !ok {
			continue
		}

		raw := cell(row, 0)

		if _, isType := opusProductTypes[raw]; isType {
			productType = raw
			continue
		}

		if _, isBrand := opusBrands[raw]; isBrand {
			brand = raw
			continue
		}

		if qty <= opusMinLot {
			continue
		}

		name := strings.TrimSpace(productType + " " + brand + " " + raw)
		out = append(out, model.Stock{Name: name, Quantity: qty})
	}

	return out
}

// parseSF mirrors sf.rs: column 3 is the name (whitespace-collapsed),
// column 8 is the quantity with trailing "шт."/"уп." unit suffixes
// stripped before parsing.
func parseSF(wb *excelize.File) []model.Stock {
	var out []model.Stock

	for _, row := range sheetRows(wb) {
		qtyRaw := cell(row, 8)
		qtyRaw = strings.ReplaceAll(qtyRaw, " шт.", "")
		qtyRaw = strings.ReplaceAll(qtyRaw, " уп.", "")

		qty, ok := parseQuantity(qtyRaw)
		if !ok {
			continue
		}

		name := whitespaceRun.ReplaceAllString(strings.TrimSpace(cell(row, 3)), " ")
		if name == "" {
			continue
		}

		out = append(out, model.Stock{Name: name, Quantity: qty})
	}

	return out
}

// parseZefir mirrors zefir.rs: every row is independent (no brand-carry
// state), column 1 is the name and column 3 the quantity.
func parseZefir(wb *excelize.File) []model.Stock {
	var out []model.Stock

	for _, row := range sheetRows(wb) {
		qty, ok := parseQuantity(cell(row, 3))
		if !ok {
			continue
		}

		out = append(out, model.Stock{Name: cell(row, 1), Quantity: qty})
	}

	return out
}

// fancyNameRow matches a compound-name header row: a Latin-script word
// followed by whitespace and more text (fancy.rs's `^([A-z]+)\s.+$`).
var fancyNameRow = regexp.MustCompile(`^[A-Za-z]+\s.+$`)

// parseFancy mirrors fancy.rs: column 0 rows matching fancyNameRow carry a
// compound name (column 0 + column 4) forward; subsequent rows whose
// column 4 parses as a quantity emit current(col4) minus reserved(col6)
// under that carried name.
func parseFancy(wb *excelize.File) []model.Stock {
	var (
		out  []model.Stock
		name string
	)

	for _, row := range sheetRows(wb) {
		first := cell(row, 0)

		if fancyNameRow.MatchString(first) {
			name = strings.TrimSpace(first + " " + cell(row, 4))
			continue
		}

		current, ok := parseQuantity(cell(row, 4))
		if !ok {
			continue
		}

		reserved, _ := parseQuantity(cell(row, 6))

		if name == "" {
			continue
		}

		out = append(out, model.Stock{Name: name, Quantity: current - reserved})
	}

	return out
}

// parseOrtgraph mirrors ortgraph.rs: column 0 is the name, column 3 the
// quantity.
func parseOrtgraph(wb *excelize.File) []model.Stock {
	var out []model.Stock

	for _, row := range sheetRows(wb) {
		qty, ok := parseQuantity(cell(row, 3))
		if !ok {
			continue
		}

		out = append(out, model.Stock{Name: cell(row, 0), Quantity: qty})
	}

	return out
}

// parseCarpetland mirrors carpetland.rs: name is brand(col0) + collection
// (col1) + color(col2) + width(col3) joined with spaces, quantity is
// column 5.
func parseCarpetland(wb *excelize.File) []model.Stock {
	var out []model.Stock

	for _, row := range sheetRows(wb) {
		qty, ok := parseQuantity(cell(row, 5))
		if !ok {
			continue
		}

		name := strings.TrimSpace(cell(row, 0) + " " + cell(row, 1) + " " + cell(row, 2) + " " + cell(row, 3))
		out = append(out, model.Stock{Name: name, Quantity: qty})
	}

	return out
}
