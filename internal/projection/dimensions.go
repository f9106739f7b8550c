package projection

import (
	"regexp"
	"strings"

	"github.com/floorsync/core/internal/model"
)

const (
	attrRollWidth = "Ширина рулона, м"
	attrThickness = "Общая толщина, мм"
	attrTileSize  = "Размер плитки, см"

	defaultDimension  = 1.0
	defaultMinQty     = 1.0
	defaultQtyStep    = 1.0
	carpetTileHeight  = 18.0
	defaultTileWidth  = 50.0
	defaultTileLength = 50.0
)

var tileSizePattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*[xXхХ]\s*(\d+(?:[.,]\d+)?)`)

type dimensions struct {
	width, length, height float64
	minQuantity, step     float64
}

// deriveDimensions applies §4.9's dimension rules: roll-width and
// thickness attributes drive width/length/height/min-qty/step for
// roll-goods product types; tile size drives width/length for carpet
// tile, with a forced height and a parsed "WxL" fallback to 50x50.
func deriveDimensions(pt ProductType, attrs []model.IoRAttribute) dimensions {
	d := dimensions{
		width: defaultDimension, length: defaultDimension, height: defaultDimension,
		minQuantity: defaultMinQty, step: defaultQtyStep,
	}

	if pt == ProductCarpetTile {
		if w, l, ok := parseTileSize(findAttr(attrs, attrTileSize)); ok {
			d.width, d.length = w, l
		} else {
			d.width, d.length = defaultTileWidth, defaultTileLength
		}

		d.height = carpetTileHeight

		return d
	}

	if v, ok := parseCommaFloat(findAttr(attrs, attrRollWidth)); ok && v > 0 {
		widthCM := v * 100
		d.width = widthCM
		d.length = 10000 / widthCM
		d.minQuantity = v * 2
		d.step = 0.1
	}

	if v, ok := parseCommaFloat(findAttr(attrs, attrThickness)); ok && v > 0 {
		d.height = v / 10 // mm -> cm
	}

	return d
}

func findAttr(attrs []model.IoRAttribute, name string) string {
	for _, a := range attrs {
		if a.Name == name {
			return a.ResolvedValue()
		}
	}

	return ""
}

func parseTileSize(raw string) (w, l float64, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, false
	}

	m := tileSizePattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, 0, false
	}

	w, wok := parseCommaFloat(m[1])
	l, lok := parseCommaFloat(m[2])

	if !wok || !lok {
		return 0, 0, false
	}

	return w, l, true
}
