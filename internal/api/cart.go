package api

import (
	"context"
	"net/http"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

type cartResponse struct {
	Cart *domain.Cart `json:"cart"`
}

type addItemRequest struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type validateCartResponse struct {
	Issues []domain.CartIssue `json:"issues"`
}

// GetCart fetches the cart correlated to the session identifier (or the
// authenticated user, when signed in).
func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, http.MethodGet, "/cart", authSession, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cart, nil
}

// AddCartItem adds quantity of a variant. The server merges repeated adds of
// the same variant into one row.
func (c *Client) AddCartItem(ctx context.Context, variantID string, quantity int) error {
	req := addItemRequest{VariantID: variantID, Quantity: quantity}
	return c.do(ctx, http.MethodPost, "/cart/items", authSession, req, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID string, quantity int) error {
	req := updateQuantityRequest{Quantity: quantity}
	return c.do(ctx, http.MethodPut, "/cart/items/"+pathEscape(itemID), authSession, req, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/items/"+pathEscape(itemID), authSession, nil, nil)
}

// ClearCart deletes the server-side cart contents.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart", authSession, nil, nil)
}

// ValidateCart asks the server to re-verify every item against current stock
// and prices. An empty slice means the cart is good to submit.
func (c *Client) ValidateCart(ctx context.Context) ([]domain.CartIssue, error) {
	var resp validateCartResponse
	if err := c.do(ctx, http.MethodPost, "/cart/validate", authSession, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Issues, nil
}
