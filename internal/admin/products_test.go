package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

// MockProductAPI implements ProductAPI for testing
type MockProductAPI struct {
	Products []domain.Product
	ListErr  error
}

func (m *MockProductAPI) ListAdminProducts(_ context.Context, includeArchived bool) ([]domain.Product, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if includeArchived {
		return m.Products, nil
	}
	var visible []domain.Product
	for _, p := range m.Products {
		if !p.Archived {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (m *MockProductAPI) CreateProduct(_ context.Context, in domain.ProductInput) (*domain.Product, error) {
	p := domain.Product{ID: "new", Name: in.Name, Price: in.Price, Available: in.Available, InventoryLevel: in.InventoryLevel}
	return &p, nil
}

func (m *MockProductAPI) UpdateProduct(_ context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	p := domain.Product{ID: id, Name: in.Name, Price: in.Price, Available: in.Available, InventoryLevel: in.InventoryLevel}
	return &p, nil
}

func (m *MockProductAPI) ArchiveProduct(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range m.Products {
		if p.ID == id {
			p.Archived = true
			return &p, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *MockProductAPI) UnarchiveProduct(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range m.Products {
		if p.ID == id {
			p.Archived = false
			return &p, nil
		}
	}
	return nil, errors.New("not found")
}

func catalog() []domain.Product {
	return []domain.Product{
		{ID: "p1", Name: "Aloha Tee", SKU: "TEE-1", Price: 2500, Available: true, InventoryLevel: domain.InventoryNone, UpdatedAt: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)},
		{ID: "p2", Name: "Beach Mug", SKU: "MUG-1", Price: 1500, Available: true, InventoryLevel: domain.InventoryProduct, StockQuantity: 0, UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "p3", Name: "Chamorro Hat", SKU: "HAT-1", Price: 3000, Available: true, Archived: true, InventoryLevel: domain.InventoryNone, UpdatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "p4", Name: "Island Sticker", SKU: "STK-1", Price: 500, Available: true, InventoryLevel: domain.InventoryNone, UpdatedAt: time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)},
	}
}

func loadedEditor(t *testing.T, includeArchived bool) (*ProductEditor, *MockProductAPI) {
	t.Helper()
	mock := &MockProductAPI{Products: catalog()}
	editor := NewProductEditor(mock, nil)
	require.NoError(t, editor.Load(context.Background(), includeArchived))
	return editor, mock
}

func TestLoad_IncludeArchivedControlsVisibility(t *testing.T) {
	withArchived, _ := loadedEditor(t, true)
	assert.Equal(t, 4, withArchived.List(ProductFilter{}, 1, 10).TotalItems)

	withoutArchived, _ := loadedEditor(t, false)
	assert.Equal(t, 3, withoutArchived.List(ProductFilter{}, 1, 10).TotalItems)
}

func TestList_SearchMatchesNameAndSKU(t *testing.T) {
	editor, _ := loadedEditor(t, true)

	byName := editor.List(ProductFilter{Query: "mug"}, 1, 10)
	require.Len(t, byName.Items, 1)
	assert.Equal(t, "p2", byName.Items[0].ID)

	bySKU := editor.List(ProductFilter{Query: "stk"}, 1, 10)
	require.Len(t, bySKU.Items, 1)
	assert.Equal(t, "p4", bySKU.Items[0].ID)
}

func TestList_OnlyAvailableUsesComputedAvailability(t *testing.T) {
	editor, _ := loadedEditor(t, true)

	page := editor.List(ProductFilter{OnlyAvailable: true}, 1, 10)

	ids := make([]string, 0, len(page.Items))
	for _, p := range page.Items {
		ids = append(ids, p.ID)
	}
	// p2 has a manual available flag but zero tracked stock; p3 is archived.
	assert.ElementsMatch(t, []string{"p1", "p4"}, ids)
}

func TestList_SortAndPaginate(t *testing.T) {
	editor, _ := loadedEditor(t, true)

	byPrice := editor.List(ProductFilter{Sort: SortByPrice}, 1, 2)
	require.Len(t, byPrice.Items, 2)
	assert.Equal(t, "p4", byPrice.Items[0].ID)
	assert.Equal(t, "p2", byPrice.Items[1].ID)
	assert.Equal(t, 2, byPrice.TotalPages)

	secondPage := editor.List(ProductFilter{Sort: SortByPrice}, 2, 2)
	require.Len(t, secondPage.Items, 2)
	assert.Equal(t, "p1", secondPage.Items[0].ID)
	assert.Equal(t, "p3", secondPage.Items[1].ID)

	byUpdated := editor.List(ProductFilter{Sort: SortByUpdated}, 1, 1)
	require.Len(t, byUpdated.Items, 1)
	assert.Equal(t, "p4", byUpdated.Items[0].ID, "most recently updated first")

	overflow := editor.List(ProductFilter{}, 99, 2)
	assert.Equal(t, 2, overflow.Number, "page number clamped to last page")
}

func TestArchive_PatchesCachedRow(t *testing.T) {
	editor, _ := loadedEditor(t, true)

	require.NoError(t, editor.Archive(context.Background(), "p1"))

	p, ok := editor.Get("p1")
	require.True(t, ok, "archived row stays in the admin cache")
	assert.True(t, p.Archived)

	require.NoError(t, editor.Unarchive(context.Background(), "p1"))
	p, _ = editor.Get("p1")
	assert.False(t, p.Archived)
}

func TestCreate_AppendsToCache(t *testing.T) {
	editor, _ := loadedEditor(t, true)

	created, err := editor.Create(context.Background(), domain.ProductInput{Name: "Zori", Price: 1200, Available: true, InventoryLevel: domain.InventoryNone})
	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)
	assert.Equal(t, 5, editor.List(ProductFilter{}, 1, 10).TotalItems)
}

func TestLoad_FailurePropagates(t *testing.T) {
	mock := &MockProductAPI{ListErr: errors.New("forbidden")}
	editor := NewProductEditor(mock, nil)

	require.Error(t, editor.Load(context.Background(), true))
	assert.False(t, editor.Loaded())
}
