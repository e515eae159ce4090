package api

import (
	"context"
	"io"
	"net/http"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

// Admin endpoints. All of these require a bearer token with admin
// authorization; the server rejects session-only identity.

// ListAdminProducts returns the full catalog. With includeArchived the server
// also returns archived and unpublished rows.
func (c *Client) ListAdminProducts(ctx context.Context, includeArchived bool) ([]domain.Product, error) {
	path := "/admin/products"
	if includeArchived {
		path += "?include_archived=true"
	}
	var resp productsResponse
	if err := c.do(ctx, http.MethodGet, path, authBearer, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodPost, "/admin/products", authBearer, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodPut, "/admin/products/"+pathEscape(id), authBearer, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ArchiveProduct soft-removes a product. The record stays addressable for
// historical orders and can be restored with UnarchiveProduct.
func (c *Client) ArchiveProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodPost, "/admin/products/"+pathEscape(id)+"/archive", authBearer, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UnarchiveProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodPost, "/admin/products/"+pathEscape(id)+"/unarchive", authBearer, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type variantsResponse struct {
	Variants []domain.Variant `json:"variants"`
}

func (c *Client) ListVariants(ctx context.Context, productID string) ([]domain.Variant, error) {
	var resp variantsResponse
	if err := c.do(ctx, http.MethodGet, "/admin/products/"+pathEscape(productID)+"/variants", authBearer, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Variants, nil
}

func (c *Client) CreateVariant(ctx context.Context, productID string, in domain.VariantInput) (*domain.Variant, error) {
	var v domain.Variant
	if err := c.do(ctx, http.MethodPost, "/admin/products/"+pathEscape(productID)+"/variants", authBearer, in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) UpdateVariant(ctx context.Context, id string, in domain.VariantInput) (*domain.Variant, error) {
	var v domain.Variant
	if err := c.do(ctx, http.MethodPut, "/admin/variants/"+pathEscape(id), authBearer, in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) DeleteVariant(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/variants/"+pathEscape(id), authBearer, nil, nil)
}

type generateVariantsRequest struct {
	Combinations []domain.VariantKey `json:"combinations"`
}

type generateVariantsResponse struct {
	Created  int              `json:"created"`
	Variants []domain.Variant `json:"variants"`
}

// GenerateVariants asks the server to create the given size/color
// combinations. The server skips combinations that already exist, so
// repeating a call changes nothing.
func (c *Client) GenerateVariants(ctx context.Context, productID string, combos []domain.VariantKey) (int, []domain.Variant, error) {
	var resp generateVariantsResponse
	path := "/admin/products/" + pathEscape(productID) + "/variants/generate"
	if err := c.do(ctx, http.MethodPost, path, authBearer, generateVariantsRequest{Combinations: combos}, &resp); err != nil {
		return 0, nil, err
	}
	return resp.Created, resp.Variants, nil
}

func (c *Client) UploadImage(ctx context.Context, productID, filename string, file io.Reader, altText string) (*domain.Image, error) {
	var img domain.Image
	path := "/admin/products/" + pathEscape(productID) + "/images"
	extra := map[string]string{"alt_text": altText}
	if err := c.doMultipart(ctx, path, authBearer, "file", filename, file, extra, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

func (c *Client) DeleteImage(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/images/"+pathEscape(id), authBearer, nil, nil)
}

func (c *Client) SetPrimaryImage(ctx context.Context, id string) (*domain.Image, error) {
	var img domain.Image
	if err := c.do(ctx, http.MethodPost, "/admin/images/"+pathEscape(id)+"/primary", authBearer, nil, &img); err != nil {
		return nil, err
	}
	return &img, nil
}

func (c *Client) ListAdminCollections(ctx context.Context) ([]domain.Collection, error) {
	var resp collectionsResponse
	if err := c.do(ctx, http.MethodGet, "/admin/collections", authBearer, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Collections, nil
}

func (c *Client) CreateCollection(ctx context.Context, in domain.CollectionInput) (*domain.Collection, error) {
	var col domain.Collection
	if err := c.do(ctx, http.MethodPost, "/admin/collections", authBearer, in, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

func (c *Client) UpdateCollection(ctx context.Context, id string, in domain.CollectionInput) (*domain.Collection, error) {
	var col domain.Collection
	if err := c.do(ctx, http.MethodPut, "/admin/collections/"+pathEscape(id), authBearer, in, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

func (c *Client) DeleteCollection(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/collections/"+pathEscape(id), authBearer, nil, nil)
}

type setCollectionProductsRequest struct {
	ProductIDs []string `json:"product_ids"`
}

func (c *Client) SetCollectionProducts(ctx context.Context, id string, productIDs []string) (*domain.Collection, error) {
	var col domain.Collection
	path := "/admin/collections/" + pathEscape(id) + "/products"
	if err := c.do(ctx, http.MethodPut, path, authBearer, setCollectionProductsRequest{ProductIDs: productIDs}, &col); err != nil {
		return nil, err
	}
	return &col, nil
}

type importsResponse struct {
	Imports []domain.ImportJob `json:"imports"`
}

// UploadImport starts a server-side CSV import and returns the created job in
// its pending state.
func (c *Client) UploadImport(ctx context.Context, filename string, file io.Reader) (*domain.ImportJob, error) {
	var job domain.ImportJob
	if err := c.doMultipart(ctx, "/admin/imports", authBearer, "file", filename, file, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) GetImport(ctx context.Context, id string) (*domain.ImportJob, error) {
	var job domain.ImportJob
	if err := c.do(ctx, http.MethodGet, "/admin/imports/"+pathEscape(id), authBearer, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) ListImports(ctx context.Context) ([]domain.ImportJob, error) {
	var resp importsResponse
	if err := c.do(ctx, http.MethodGet, "/admin/imports", authBearer, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Imports, nil
}
