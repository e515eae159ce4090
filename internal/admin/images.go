package admin

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

// ImageAPI is the slice of the remote client the image editor needs.
type ImageAPI interface {
	UploadImage(ctx context.Context, productID, filename string, file io.Reader, altText string) (*domain.Image, error)
	DeleteImage(ctx context.Context, id string) error
	SetPrimaryImage(ctx context.Context, id string) (*domain.Image, error)
}

// ImageEditor manages the images of one product. The list is seeded from the
// product record and patched in place after each mutation.
type ImageEditor struct {
	api       ImageAPI
	log       *zap.Logger
	productID string

	mu     sync.Mutex
	images []domain.Image
}

func NewImageEditor(api ImageAPI, productID string, seed []domain.Image, log *zap.Logger) *ImageEditor {
	if log == nil {
		log = zap.NewNop()
	}
	images := make([]domain.Image, len(seed))
	copy(images, seed)
	return &ImageEditor{api: api, log: log, productID: productID, images: images}
}

func (e *ImageEditor) Images() []domain.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Image, len(e.images))
	copy(out, e.images)
	return out
}

func (e *ImageEditor) Upload(ctx context.Context, filename string, file io.Reader, altText string) (*domain.Image, error) {
	img, err := e.api.UploadImage(ctx, e.productID, filename, file, altText)
	if err != nil {
		e.log.Error("image upload failed", zap.String("product_id", e.productID), zap.Error(err))
		return nil, err
	}
	e.mu.Lock()
	e.images = append(e.images, *img)
	e.mu.Unlock()
	return img, nil
}

func (e *ImageEditor) Delete(ctx context.Context, id string) error {
	if err := e.api.DeleteImage(ctx, id); err != nil {
		e.log.Error("image delete failed", zap.String("image_id", id), zap.Error(err))
		return err
	}
	e.mu.Lock()
	for i := range e.images {
		if e.images[i].ID == id {
			e.images = append(e.images[:i], e.images[i+1:]...)
			break
		}
	}
	e.mu.Unlock()
	return nil
}

// SetPrimary marks one image as the product's primary and clears the flag on
// the rest of the cached list.
func (e *ImageEditor) SetPrimary(ctx context.Context, id string) error {
	updated, err := e.api.SetPrimaryImage(ctx, id)
	if err != nil {
		e.log.Error("set primary image failed", zap.String("image_id", id), zap.Error(err))
		return err
	}
	e.mu.Lock()
	for i := range e.images {
		e.images[i].Primary = e.images[i].ID == updated.ID
	}
	e.mu.Unlock()
	return nil
}
