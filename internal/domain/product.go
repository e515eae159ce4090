package domain

import "time"

// InventoryLevel is the granularity at which stock is tracked for a product.
// Exactly one of the three applies to a product at a time.
type InventoryLevel string

const (
	// InventoryNone means stock is not tracked; the product is always in stock.
	InventoryNone InventoryLevel = "none"
	// InventoryProduct means one shared quantity for the whole product.
	InventoryProduct InventoryLevel = "product"
	// InventoryVariant means a quantity per size/color combination.
	InventoryVariant InventoryLevel = "variant"
)

func (l InventoryLevel) Valid() bool {
	switch l {
	case InventoryNone, InventoryProduct, InventoryVariant:
		return true
	}
	return false
}

func (l InventoryLevel) String() string {
	return string(l)
}

type Product struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	SKU            string         `json:"sku,omitempty"`
	Price          int64          `json:"price"` // currency sub-units (cents)
	Available      bool           `json:"available"`
	Archived       bool           `json:"archived"`
	InventoryLevel InventoryLevel `json:"inventory_level"`
	StockQuantity  int            `json:"stock_quantity"` // meaningful only for InventoryProduct
	Variants       []Variant      `json:"variants,omitempty"`
	Images         []Image        `json:"images,omitempty"`
	CollectionIDs  []string       `json:"collection_ids,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ActuallyAvailable reports whether the product can currently be purchased.
// Once stock tracking is enabled the manual Available flag alone is never the
// truth; it is combined with the live stock count at the tracked level.
func (p Product) ActuallyAvailable() bool {
	if p.Archived || !p.Available {
		return false
	}
	switch p.InventoryLevel {
	case InventoryNone:
		return true
	case InventoryProduct:
		return p.StockQuantity > 0
	case InventoryVariant:
		for _, v := range p.Variants {
			if p.VariantAvailable(v) {
				return true
			}
		}
		return false
	default:
		// Untagged legacy rows behave as untracked.
		return true
	}
}

// VariantAvailable reports whether one variant of p can currently be
// purchased, honoring the product's inventory level.
func (p Product) VariantAvailable(v Variant) bool {
	if !v.Available {
		return false
	}
	switch p.InventoryLevel {
	case InventoryNone:
		return true
	case InventoryProduct:
		return p.StockQuantity > 0
	case InventoryVariant:
		return v.StockQuantity > 0
	default:
		return true
	}
}

// ProductInput is the mutable subset of Product sent on create/update.
type ProductInput struct {
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	SKU            string         `json:"sku,omitempty"`
	Price          int64          `json:"price"`
	Available      bool           `json:"available"`
	InventoryLevel InventoryLevel `json:"inventory_level"`
	StockQuantity  int            `json:"stock_quantity"`
	CollectionIDs  []string       `json:"collection_ids,omitempty"`
}

type Image struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	URL       string `json:"url"`
	AltText   string `json:"alt_text,omitempty"`
	Primary   bool   `json:"primary"`
	Position  int    `json:"position"`
}

type Collection struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	ProductIDs  []string `json:"product_ids,omitempty"`
}

// CollectionInput is the mutable subset of Collection sent on create/update.
type CollectionInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
