// Package admin holds the back-office resource editors. Every editor follows
// the same pattern: bulk-fetch the full collection, filter/sort/paginate it
// client-side, and patch the in-memory list after each single-record
// mutation.
package admin

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

// ProductAPI is the slice of the remote client the product editor needs.
type ProductAPI interface {
	ListAdminProducts(ctx context.Context, includeArchived bool) ([]domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error)
	ArchiveProduct(ctx context.Context, id string) (*domain.Product, error)
	UnarchiveProduct(ctx context.Context, id string) (*domain.Product, error)
}

type ProductSort string

const (
	SortByName    ProductSort = "name"
	SortByPrice   ProductSort = "price"
	SortByUpdated ProductSort = "updated"
)

// ProductFilter narrows the in-memory listing.
type ProductFilter struct {
	Query         string // case-insensitive substring of name or SKU
	OnlyAvailable bool   // computed availability, not the manual flag
	OnlyArchived  bool
	Sort          ProductSort
}

type ProductEditor struct {
	api ProductAPI
	log *zap.Logger

	mu       sync.Mutex
	products []domain.Product
	loaded   bool
}

func NewProductEditor(api ProductAPI, log *zap.Logger) *ProductEditor {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductEditor{api: api, log: log}
}

// Load bulk-fetches the catalog. Admin views include archived and unpublished
// rows so they can be restored.
func (e *ProductEditor) Load(ctx context.Context, includeArchived bool) error {
	products, err := e.api.ListAdminProducts(ctx, includeArchived)
	if err != nil {
		e.log.Error("product load failed", zap.Error(err))
		return err
	}
	e.mu.Lock()
	e.products = products
	e.loaded = true
	e.mu.Unlock()
	return nil
}

func (e *ProductEditor) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// List applies the filter and sort over the cached collection and returns the
// requested page.
func (e *ProductEditor) List(filter ProductFilter, page, pageSize int) Page[domain.Product] {
	e.mu.Lock()
	products := make([]domain.Product, len(e.products))
	copy(products, e.products)
	e.mu.Unlock()

	filtered := products[:0]
	query := strings.ToLower(filter.Query)
	for _, p := range products {
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.SKU), query) {
			continue
		}
		if filter.OnlyAvailable && !p.ActuallyAvailable() {
			continue
		}
		if filter.OnlyArchived && !p.Archived {
			continue
		}
		filtered = append(filtered, p)
	}

	switch filter.Sort {
	case SortByPrice:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case SortByUpdated:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].UpdatedAt.After(filtered[j].UpdatedAt) })
	default:
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
		})
	}

	return paginate(filtered, page, pageSize)
}

func (e *ProductEditor) Get(id string) (domain.Product, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (e *ProductEditor) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	created, err := e.api.CreateProduct(ctx, in)
	if err != nil {
		e.log.Error("product create failed", zap.Error(err))
		return nil, err
	}
	e.mu.Lock()
	e.products = append(e.products, *created)
	e.mu.Unlock()
	return created, nil
}

func (e *ProductEditor) Update(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	updated, err := e.api.UpdateProduct(ctx, id, in)
	if err != nil {
		e.log.Error("product update failed", zap.String("product_id", id), zap.Error(err))
		return nil, err
	}
	e.patch(*updated)
	return updated, nil
}

// Archive soft-removes a product: it disappears from customer views but stays
// addressable for historical orders. Reversible via Unarchive.
func (e *ProductEditor) Archive(ctx context.Context, id string) error {
	updated, err := e.api.ArchiveProduct(ctx, id)
	if err != nil {
		e.log.Error("product archive failed", zap.String("product_id", id), zap.Error(err))
		return err
	}
	e.patch(*updated)
	return nil
}

func (e *ProductEditor) Unarchive(ctx context.Context, id string) error {
	updated, err := e.api.UnarchiveProduct(ctx, id)
	if err != nil {
		e.log.Error("product unarchive failed", zap.String("product_id", id), zap.Error(err))
		return err
	}
	e.patch(*updated)
	return nil
}

// patch replaces the cached row matching the mutated record.
func (e *ProductEditor) patch(p domain.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.products {
		if e.products[i].ID == p.ID {
			e.products[i] = p
			return
		}
	}
	e.products = append(e.products, p)
}
