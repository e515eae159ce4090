package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActuallyAvailable_Untracked(t *testing.T) {
	p := Product{Name: "Sticker", Available: true, InventoryLevel: InventoryNone}
	assert.True(t, p.ActuallyAvailable())

	p.Available = false
	assert.False(t, p.ActuallyAvailable())
}

func TestActuallyAvailable_ProductLevel(t *testing.T) {
	p := Product{
		Name:           "Mug",
		Available:      true,
		InventoryLevel: InventoryProduct,
		StockQuantity:  3,
	}
	assert.True(t, p.ActuallyAvailable())

	p.StockQuantity = 0
	assert.False(t, p.ActuallyAvailable(), "manual flag must not win once stock is tracked")
}

func TestActuallyAvailable_VariantLevelAllDepleted(t *testing.T) {
	p := Product{
		Name:           "Tee",
		Available:      true,
		InventoryLevel: InventoryVariant,
		Variants: []Variant{
			{Size: "S", Color: "Red", Available: true, StockQuantity: 0},
			{Size: "M", Color: "Red", Available: true, StockQuantity: 0},
		},
	}
	assert.False(t, p.ActuallyAvailable())
	for _, v := range p.Variants {
		assert.False(t, p.VariantAvailable(v))
	}
}

func TestActuallyAvailable_VariantLevelOneInStock(t *testing.T) {
	p := Product{
		Name:           "Tee",
		Available:      true,
		InventoryLevel: InventoryVariant,
		Variants: []Variant{
			{Size: "S", Color: "Red", Available: true, StockQuantity: 0},
			{Size: "M", Color: "Red", Available: true, StockQuantity: 5},
		},
	}
	assert.True(t, p.ActuallyAvailable())
	assert.False(t, p.VariantAvailable(p.Variants[0]))
	assert.True(t, p.VariantAvailable(p.Variants[1]))
}

func TestActuallyAvailable_ArchivedNeverAvailable(t *testing.T) {
	p := Product{Name: "Old", Available: true, Archived: true, InventoryLevel: InventoryNone}
	assert.False(t, p.ActuallyAvailable())
}

func TestVariantAvailable_ManualFlagOff(t *testing.T) {
	p := Product{Available: true, InventoryLevel: InventoryVariant}
	v := Variant{Size: "S", Available: false, StockQuantity: 10}
	assert.False(t, p.VariantAvailable(v))
}

func TestInventoryLevelValid(t *testing.T) {
	assert.True(t, InventoryNone.Valid())
	assert.True(t, InventoryProduct.Valid())
	assert.True(t, InventoryVariant.Valid())
	assert.False(t, InventoryLevel("weekly").Valid())
}
