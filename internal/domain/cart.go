package domain

import "time"

// Cart mirrors the server-owned cart aggregate. ItemCount and Subtotal are
// computed server-side; the client reads them as-is and never re-derives them
// from the item list.
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"item_count"`
	Subtotal  int64      `json:"subtotal"` // currency sub-units (cents)
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) Empty() bool {
	return c == nil || c.ItemCount == 0
}

// CartItem is one (cart, variant) row. The server guarantees at most one row
// per variant; adding the same variant again increments Quantity instead.
type CartItem struct {
	ID        string `json:"id"`
	VariantID string `json:"variant_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// CartIssue is one availability or price problem reported by the cart
// validation endpoint.
type CartIssue struct {
	Type     IssueType `json:"type"`
	ItemName string    `json:"item_name"`
	Message  string    `json:"message"`
}

type IssueType string

const (
	IssueOutOfStock   IssueType = "out_of_stock"
	IssueUnavailable  IssueType = "unavailable"
	IssuePriceChanged IssueType = "price_changed"
)
