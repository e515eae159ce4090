package admin

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

// VariantAPI is the slice of the remote client the variant editor needs.
type VariantAPI interface {
	ListVariants(ctx context.Context, productID string) ([]domain.Variant, error)
	CreateVariant(ctx context.Context, productID string, in domain.VariantInput) (*domain.Variant, error)
	UpdateVariant(ctx context.Context, id string, in domain.VariantInput) (*domain.Variant, error)
	DeleteVariant(ctx context.Context, id string) error
	GenerateVariants(ctx context.Context, productID string, combos []domain.VariantKey) (int, []domain.Variant, error)
}

// VariantEditor manages the variants of one product.
type VariantEditor struct {
	api       VariantAPI
	log       *zap.Logger
	productID string

	mu       sync.Mutex
	variants []domain.Variant
}

func NewVariantEditor(api VariantAPI, productID string, log *zap.Logger) *VariantEditor {
	if log == nil {
		log = zap.NewNop()
	}
	return &VariantEditor{api: api, log: log, productID: productID}
}

func (e *VariantEditor) Load(ctx context.Context) error {
	variants, err := e.api.ListVariants(ctx, e.productID)
	if err != nil {
		e.log.Error("variant load failed", zap.String("product_id", e.productID), zap.Error(err))
		return err
	}
	e.mu.Lock()
	e.variants = variants
	e.mu.Unlock()
	return nil
}

func (e *VariantEditor) Variants() []domain.Variant {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Variant, len(e.variants))
	copy(out, e.variants)
	return out
}

func (e *VariantEditor) Create(ctx context.Context, in domain.VariantInput) (*domain.Variant, error) {
	created, err := e.api.CreateVariant(ctx, e.productID, in)
	if err != nil {
		e.log.Error("variant create failed", zap.Error(err))
		return nil, err
	}
	e.mu.Lock()
	e.variants = append(e.variants, *created)
	e.mu.Unlock()
	return created, nil
}

func (e *VariantEditor) Update(ctx context.Context, id string, in domain.VariantInput) (*domain.Variant, error) {
	updated, err := e.api.UpdateVariant(ctx, id, in)
	if err != nil {
		e.log.Error("variant update failed", zap.String("variant_id", id), zap.Error(err))
		return nil, err
	}
	e.mu.Lock()
	for i := range e.variants {
		if e.variants[i].ID == id {
			e.variants[i] = *updated
			break
		}
	}
	e.mu.Unlock()
	return updated, nil
}

func (e *VariantEditor) Delete(ctx context.Context, id string) error {
	if err := e.api.DeleteVariant(ctx, id); err != nil {
		e.log.Error("variant delete failed", zap.String("variant_id", id), zap.Error(err))
		return err
	}
	e.mu.Lock()
	for i := range e.variants {
		if e.variants[i].ID == id {
			e.variants = append(e.variants[:i], e.variants[i+1:]...)
			break
		}
	}
	e.mu.Unlock()
	return nil
}

// Generate requests the Cartesian product of sizes and colors as concrete
// variants. Only combinations missing from the current list are sent, and the
// server skips duplicates on its side too, so repeating the call with the
// same sets creates nothing. Returns the number of variants created.
func (e *VariantEditor) Generate(ctx context.Context, sizes, colors []string) (int, error) {
	e.mu.Lock()
	existing := make([]domain.Variant, len(e.variants))
	copy(existing, e.variants)
	e.mu.Unlock()

	combos := domain.MissingCombinations(sizes, colors, existing)
	if len(combos) == 0 {
		return 0, nil
	}

	created, variants, err := e.api.GenerateVariants(ctx, e.productID, combos)
	if err != nil {
		e.log.Error("variant generation failed", zap.String("product_id", e.productID), zap.Error(err))
		return 0, err
	}

	e.mu.Lock()
	e.variants = variants
	e.mu.Unlock()
	return created, nil
}
