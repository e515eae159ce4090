package api

import (
	"context"
	"net/http"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

// GetConfig fetches the remote application configuration (test mode, payment
// feature flags). No identity attached.
func (c *Client) GetConfig(ctx context.Context) (*domain.AppConfig, error) {
	var cfg domain.AppConfig
	if err := c.do(ctx, http.MethodGet, "/config", authSession, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type rateQuoteRequest struct {
	Address domain.Address `json:"address"`
}

type rateQuoteResponse struct {
	Rates []domain.ShippingRate `json:"rates"`
}

// QuoteShippingRates asks for rate options to the given address. Works both
// anonymously (session identifier) and signed in (bearer token).
func (c *Client) QuoteShippingRates(ctx context.Context, addr domain.Address) ([]domain.ShippingRate, error) {
	var resp rateQuoteResponse
	if err := c.do(ctx, http.MethodPost, "/shipping/rates", authSession, rateQuoteRequest{Address: addr}, &resp); err != nil {
		return nil, err
	}
	return resp.Rates, nil
}

// CreateOrder submits an order assembled from the checkout draft and the
// current cart. The server computes the final charge.
func (c *Client) CreateOrder(ctx context.Context, req *domain.OrderRequest) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/orders", authSession, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrder fetches a placed order for the confirmation view.
func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+pathEscape(id), authSession, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type productsResponse struct {
	Products []domain.Product `json:"products"`
}

type collectionsResponse struct {
	Collections []domain.Collection `json:"collections"`
}

// ListProducts returns the customer-facing catalog (published, non-archived).
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var resp productsResponse
	if err := c.do(ctx, http.MethodGet, "/products", authSession, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+pathEscape(id), authSession, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	var resp collectionsResponse
	if err := c.do(ctx, http.MethodGet, "/collections", authSession, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Collections, nil
}

// CurrentUser fetches the authenticated user. Requires a bearer token.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/me", authBearer, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
