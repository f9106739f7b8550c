package projection

import "strings"

// ProductType classifies an IoR product by the first path segment of its
// catalog placement (§4.9).
type ProductType int

const (
	ProductOther ProductType = iota
	ProductCarpet
	ProductCarpetTile
	ProductRug
	ProductMat
)

// DisplayName is the name this type is looked up under in the storefront
// category map.
func (t ProductType) DisplayName() string {
	switch t {
	case ProductCarpet:
		return "Ковролин"
	case ProductCarpetTile:
		return "Ковровая плитка"
	case ProductRug:
		return "Ковры"
	case ProductMat:
		return "Циновки"
	default:
		return ""
	}
}

// classify derives a ProductType from an IoR pathName, e.g.
// "Ковролин/Бытовой/...".
func classify(pathName string) ProductType {
	first := pathName
	if idx := strings.IndexByte(pathName, '/'); idx >= 0 {
		first = pathName[:idx]
	}

	switch first {
	case "Ковролин":
		return ProductCarpet
	case "Ковровая плитка":
		return ProductCarpetTile
	case "Ковры":
		return ProductRug
	case "Циновки":
		return ProductMat
	default:
		return ProductOther
	}
}
