package admin

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

// CollectionAPI is the slice of the remote client the collection editor needs.
type CollectionAPI interface {
	ListAdminCollections(ctx context.Context) ([]domain.Collection, error)
	CreateCollection(ctx context.Context, in domain.CollectionInput) (*domain.Collection, error)
	UpdateCollection(ctx context.Context, id string, in domain.CollectionInput) (*domain.Collection, error)
	DeleteCollection(ctx context.Context, id string) error
	SetCollectionProducts(ctx context.Context, id string, productIDs []string) (*domain.Collection, error)
}

type CollectionEditor struct {
	api CollectionAPI
	log *zap.Logger

	mu          sync.Mutex
	collections []domain.Collection
}

func NewCollectionEditor(api CollectionAPI, log *zap.Logger) *CollectionEditor {
	if log == nil {
		log = zap.NewNop()
	}
	return &CollectionEditor{api: api, log: log}
}

func (e *CollectionEditor) Load(ctx context.Context) error {
	collections, err := e.api.ListAdminCollections(ctx)
	if err != nil {
		e.log.Error("collection load failed", zap.Error(err))
		return err
	}
	e.mu.Lock()
	e.collections = collections
	e.mu.Unlock()
	return nil
}

func (e *CollectionEditor) Collections() []domain.Collection {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Collection, len(e.collections))
	copy(out, e.collections)
	return out
}

func (e *CollectionEditor) Create(ctx context.Context, in domain.CollectionInput) (*domain.Collection, error) {
	created, err := e.api.CreateCollection(ctx, in)
	if err != nil {
		e.log.Error("collection create failed", zap.Error(err))
		return nil, err
	}
	e.mu.Lock()
	e.collections = append(e.collections, *created)
	e.mu.Unlock()
	return created, nil
}

func (e *CollectionEditor) Update(ctx context.Context, id string, in domain.CollectionInput) (*domain.Collection, error) {
	updated, err := e.api.UpdateCollection(ctx, id, in)
	if err != nil {
		e.log.Error("collection update failed", zap.String("collection_id", id), zap.Error(err))
		return nil, err
	}
	e.patch(*updated)
	return updated, nil
}

func (e *CollectionEditor) Delete(ctx context.Context, id string) error {
	if err := e.api.DeleteCollection(ctx, id); err != nil {
		e.log.Error("collection delete failed", zap.String("collection_id", id), zap.Error(err))
		return err
	}
	e.mu.Lock()
	for i := range e.collections {
		if e.collections[i].ID == id {
			e.collections = append(e.collections[:i], e.collections[i+1:]...)
			break
		}
	}
	e.mu.Unlock()
	return nil
}

// SetProducts replaces the collection's product membership.
func (e *CollectionEditor) SetProducts(ctx context.Context, id string, productIDs []string) error {
	updated, err := e.api.SetCollectionProducts(ctx, id, productIDs)
	if err != nil {
		e.log.Error("collection membership update failed", zap.String("collection_id", id), zap.Error(err))
		return err
	}
	e.patch(*updated)
	return nil
}

func (e *CollectionEditor) patch(c domain.Collection) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.collections {
		if e.collections[i].ID == c.ID {
			e.collections[i] = c
			return
		}
	}
	e.collections = append(e.collections, c)
}
