package admin

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

// MockVariantAPI implements VariantAPI with the server's idempotent-by-key
// generation contract.
type MockVariantAPI struct {
	variants      []domain.Variant
	generateCalls int
	nextID        int
}

func (m *MockVariantAPI) ListVariants(context.Context, string) ([]domain.Variant, error) {
	return m.variants, nil
}

func (m *MockVariantAPI) CreateVariant(_ context.Context, productID string, in domain.VariantInput) (*domain.Variant, error) {
	m.nextID++
	v := domain.Variant{
		ID:        fmt.Sprintf("v%d", m.nextID),
		ProductID: productID,
		Size:      in.Size,
		Color:     in.Color,
		Price:     in.Price,
		Available: in.Available,
	}
	m.variants = append(m.variants, v)
	return &v, nil
}

func (m *MockVariantAPI) UpdateVariant(_ context.Context, id string, in domain.VariantInput) (*domain.Variant, error) {
	for i := range m.variants {
		if m.variants[i].ID == id {
			m.variants[i].Size = in.Size
			m.variants[i].Color = in.Color
			m.variants[i].StockQuantity = in.StockQuantity
			return &m.variants[i], nil
		}
	}
	return nil, fmt.Errorf("variant %s not found", id)
}

func (m *MockVariantAPI) DeleteVariant(_ context.Context, id string) error {
	for i := range m.variants {
		if m.variants[i].ID == id {
			m.variants = append(m.variants[:i], m.variants[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("variant %s not found", id)
}

func (m *MockVariantAPI) GenerateVariants(_ context.Context, productID string, combos []domain.VariantKey) (int, []domain.Variant, error) {
	m.generateCalls++
	created := 0
	for _, key := range combos {
		exists := false
		for _, v := range m.variants {
			if v.Size == key.Size && v.Color == key.Color {
				exists = true
				break
			}
		}
		if exists {
			continue // server skips existing combinations
		}
		m.nextID++
		m.variants = append(m.variants, domain.Variant{
			ID:        fmt.Sprintf("v%d", m.nextID),
			ProductID: productID,
			Size:      key.Size,
			Color:     key.Color,
			Available: true,
		})
		created++
	}
	return created, m.variants, nil
}

func TestGenerate_CreatesCartesianProduct(t *testing.T) {
	mock := &MockVariantAPI{}
	editor := NewVariantEditor(mock, "p1", nil)
	require.NoError(t, editor.Load(context.Background()))

	created, err := editor.Generate(context.Background(), []string{"S", "M"}, []string{"Red", "Blue"})
	require.NoError(t, err)
	assert.Equal(t, 4, created)
	assert.Len(t, editor.Variants(), 4)
}

func TestGenerate_SecondCallWithSameSetsChangesNothing(t *testing.T) {
	mock := &MockVariantAPI{}
	editor := NewVariantEditor(mock, "p1", nil)
	require.NoError(t, editor.Load(context.Background()))

	sizes, colors := []string{"S", "M", "L"}, []string{"Black", "White"}

	first, err := editor.Generate(context.Background(), sizes, colors)
	require.NoError(t, err)
	assert.Equal(t, 6, first)

	second, err := editor.Generate(context.Background(), sizes, colors)
	require.NoError(t, err)
	assert.Equal(t, 0, second)
	assert.Len(t, editor.Variants(), 6, "variant count unchanged after second call")
	assert.Equal(t, 1, mock.generateCalls, "second call short-circuits client-side")
}

func TestGenerate_AddsOnlyMissingCombinations(t *testing.T) {
	mock := &MockVariantAPI{variants: []domain.Variant{
		{ID: "v0", ProductID: "p1", Size: "S", Color: "Red"},
	}}
	editor := NewVariantEditor(mock, "p1", nil)
	require.NoError(t, editor.Load(context.Background()))

	created, err := editor.Generate(context.Background(), []string{"S", "M"}, []string{"Red"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Len(t, editor.Variants(), 2)
}

func TestVariantCRUD_PatchesCache(t *testing.T) {
	mock := &MockVariantAPI{}
	editor := NewVariantEditor(mock, "p1", nil)
	require.NoError(t, editor.Load(context.Background()))

	created, err := editor.Create(context.Background(), domain.VariantInput{Size: "S", Color: "Red", Price: 2500, Available: true})
	require.NoError(t, err)
	require.Len(t, editor.Variants(), 1)

	_, err = editor.Update(context.Background(), created.ID, domain.VariantInput{Size: "S", Color: "Red", StockQuantity: 9})
	require.NoError(t, err)
	assert.Equal(t, 9, editor.Variants()[0].StockQuantity)

	require.NoError(t, editor.Delete(context.Background(), created.ID))
	assert.Empty(t, editor.Variants())
}
