package model

import "time"

// IoRProduct is the subset of the inventory-of-record product shape the
// reconciler and projection function need. Field names follow the IoR's own
// vocabulary (article, pathName, salePrices) rather than storefront terms.
type IoRProduct struct {
	ID          string
	Article     string // SKU source; upper-cased by callers before use as a key.
	Name        string
	Description string
	PathName    string // e.g. "Ковролин/Бытовой/..."
	Archived    bool
	UpdatedAt   time.Time

	Country MetaRef
	Uom     MetaRef

	SalePrices []SalePrice
	Attributes []IoRAttribute
}

// MetaRef is a reference into an IoR meta collection (country, unit) that
// must be resolved against a reference snapshot by name.
type MetaRef struct {
	Name string
	Meta string // raw meta href/id the entry is resolved against.
}

// SalePrice is one priced line on an IoR product, e.g. "Цена продажи" or
// "Акция".
type SalePrice struct {
	Name     string
	Value    float64
	Currency string // trailing id component resolves against Currency.CharCode.
}

// IoRAttribute is a named attribute value on an IoR product. Custom values
// carry a Name (resolved via CustomName); plain values carry Value only.
type IoRAttribute struct {
	Name       string
	Value      string
	CustomName string
	IsCustom   bool
}

// ResolvedValue returns the attribute's effective string value, following
// the "Custom" special case from the projection rules.
func (a IoRAttribute) ResolvedValue() string {
	if a.IsCustom {
		return a.CustomName
	}

	return a.Value
}

// ProductStatus mirrors the storefront lifecycle states.
type ProductStatus string

const (
	StatusDraft   ProductStatus = "Draft"
	StatusPublish ProductStatus = "Publish"
)

// ProductVisibility mirrors the storefront visibility states.
type ProductVisibility string

const (
	VisibilityHidden  ProductVisibility = "Hidden"
	VisibilityVisible ProductVisibility = "Visible"
)

// StockStatus mirrors the storefront stock-status enum; this sync always
// emits Onbackorder per the projection rules (backorders are always
// allowed; in/out of stock is conveyed via StockQuantity, not this field).
type StockStatus string

const StockStatusOnBackorder StockStatus = "Onbackorder"

// Attr is a storefront attribute definition keyed by display name.
type Attr struct {
	ID      string
	Name    string
	Options map[string]string // option display value -> option id.
}

// Cat is a storefront category keyed by display name.
type Cat struct {
	ID   string
	Name string
}

// SFProduct is a storefront-side product as read back from the storefront
// API, used only to detect deletes and skip-if-newer during reconciliation.
type SFProduct struct {
	ID        string
	SKU       string
	UpdatedAt time.Time
	Archived  bool // not populated by the storefront client or the reconciler; archival is read from the IoR product.
}

// ProductPayload is the projected, storefront-shaped create/update payload
// produced by C9.
type ProductPayload struct {
	StorefrontID  string // set by the reconciler on update, empty on create.
	SKU           string
	Name          string
	CategoryID    string
	Description   string
	RegularPrice  string // formatted decimal string, storefront API convention.
	SalePrice     string // empty string means "no sale price".
	Country       string
	Unit          string
	Width         float64
	Length        float64
	Height        float64
	MinQuantity   float64
	QuantityStep  float64
	StockQuantity float64
	ManageStock   bool
	Backorders    string
	StockStatus   StockStatus
	Status        ProductStatus
	Visibility    ProductVisibility
	Attributes    []ProductAttributePayload
}

// ProductAttributePayload is one emitted attribute on a ProductPayload.
type ProductAttributePayload struct {
	Name    string
	Visible bool
	Options []string
}

// BatchOp is the kind of outbound storefront mutation the reconciler emits.
type BatchOp string

const (
	BatchCreate BatchOp = "create"
	BatchUpdate BatchOp = "update"
	BatchDelete BatchOp = "delete"
)

// Country and Unit are reference-data rows resolved by name during
// projection.
type Country struct {
	ID   string
	Name string
}

type Unit struct {
	ID   string
	Name string
}
