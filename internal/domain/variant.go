package domain

type Variant struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	Size          string `json:"size,omitempty"`
	Color         string `json:"color,omitempty"`
	SKU           string `json:"sku,omitempty"`
	Price         int64  `json:"price"` // currency sub-units (cents)
	Available     bool   `json:"available"`
	StockQuantity int    `json:"stock_quantity"` // meaningful only for InventoryVariant
}

// VariantInput is the mutable subset of Variant sent on create/update.
type VariantInput struct {
	Size          string `json:"size,omitempty"`
	Color         string `json:"color,omitempty"`
	SKU           string `json:"sku,omitempty"`
	Price         int64  `json:"price"`
	Available     bool   `json:"available"`
	StockQuantity int    `json:"stock_quantity"`
}

// VariantKey identifies a variant within a product for generation purposes.
type VariantKey struct {
	Size  string `json:"size"`
	Color string `json:"color"`
}

// MissingCombinations returns the size/color pairs from the Cartesian product
// of sizes and colors that have no counterpart in existing, preserving the
// input ordering. Generating from the result never duplicates a combination
// that is already present, so repeated generation with the same sets is a
// no-op.
func MissingCombinations(sizes, colors []string, existing []Variant) []VariantKey {
	have := make(map[VariantKey]struct{}, len(existing))
	for _, v := range existing {
		have[VariantKey{Size: v.Size, Color: v.Color}] = struct{}{}
	}

	var missing []VariantKey
	for _, size := range sizes {
		for _, color := range colors {
			key := VariantKey{Size: size, Color: color}
			if _, ok := have[key]; ok {
				continue
			}
			have[key] = struct{}{} // guard against duplicates in the inputs
			missing = append(missing, key)
		}
	}
	return missing
}
