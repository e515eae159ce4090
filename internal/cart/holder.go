// Package cart holds the single in-process view of "what is in the cart right
// now" and the cart-panel visibility flag. The server owns the cart; the
// holder keeps a read-mostly mirror that is re-fetched after every mutation
// and never predicted locally.
package cart

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

var (
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")
	ErrInvalidVariant  = errors.New("cart: variant id is required")
	ErrInvalidItem     = errors.New("cart: item id is required")
)

// API is the slice of the remote client the holder needs.
type API interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	AddCartItem(ctx context.Context, variantID string, quantity int) error
	UpdateCartItem(ctx context.Context, itemID string, quantity int) error
	RemoveCartItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
	ValidateCart(ctx context.Context) ([]domain.CartIssue, error)
}

// Holder is injected wherever cart state is read (drawer, navigation badge,
// checkout); all mutation funnels through it.
type Holder struct {
	api API
	log *zap.Logger

	// mutateMu serializes mutations: each mutation and its re-fetch complete
	// before the next mutation starts, so the final state always reflects the
	// most recent user intent instead of whichever response lands last.
	mutateMu sync.Mutex

	// fetchGroup collapses concurrent refreshes into one request.
	fetchGroup singleflight.Group

	mu        sync.Mutex
	cart      *domain.Cart
	gen       uint64 // bumped on every server write; a fetch started before a write never stores
	loading   bool
	loaded    bool
	panelOpen bool
	observers []func()
}

func NewHolder(api API, log *zap.Logger) *Holder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Holder{api: api, log: log}
}

// OnChange registers an observer invoked after every state transition.
// Observers run on the mutating goroutine and must not call back into the
// holder's mutation methods.
func (h *Holder) OnChange(fn func()) {
	h.mu.Lock()
	h.observers = append(h.observers, fn)
	h.mu.Unlock()
}

func (h *Holder) notify() {
	h.mu.Lock()
	observers := make([]func(), len(h.observers))
	copy(observers, h.observers)
	h.mu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// Refresh fetches the current cart. On failure the previous snapshot stays
// untouched. Concurrent callers share one request. A fetch that started
// before a mutation landed is discarded rather than stored: the post-write
// snapshot must never be overwritten by pre-write data.
func (h *Holder) Refresh(ctx context.Context) error {
	h.setLoading(true)
	defer h.setLoading(false)

	h.mu.Lock()
	started := h.gen
	h.mu.Unlock()

	v, err, _ := h.fetchGroup.Do("cart", func() (interface{}, error) {
		return h.api.GetCart(ctx)
	})
	if err != nil {
		h.log.Error("cart fetch failed", zap.Error(err))
		h.markLoaded()
		return err
	}

	h.mu.Lock()
	if h.gen == started {
		h.cart = v.(*domain.Cart)
	}
	h.loaded = true
	h.mu.Unlock()
	h.notify()
	return nil
}

// AddItem sends the mutation, re-fetches, then opens the cart panel. There is
// no optimistic local increment, so there is nothing to roll back on failure.
func (h *Holder) AddItem(ctx context.Context, variantID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if variantID == "" {
		return ErrInvalidVariant
	}

	if err := h.mutate(ctx, "add item", func(ctx context.Context) error {
		return h.api.AddCartItem(ctx, variantID, quantity)
	}); err != nil {
		return err
	}
	h.OpenPanel()
	return nil
}

func (h *Holder) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if itemID == "" {
		return ErrInvalidItem
	}
	return h.mutate(ctx, "update quantity", func(ctx context.Context) error {
		return h.api.UpdateCartItem(ctx, itemID, quantity)
	})
}

func (h *Holder) RemoveItem(ctx context.Context, itemID string) error {
	if itemID == "" {
		return ErrInvalidItem
	}
	return h.mutate(ctx, "remove item", func(ctx context.Context) error {
		return h.api.RemoveCartItem(ctx, itemID)
	})
}

// mutate runs one server mutation followed by a re-fetch, holding the
// mutation queue for the whole round trip.
func (h *Holder) mutate(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	h.mutateMu.Lock()
	defer h.mutateMu.Unlock()

	h.setLoading(true)
	if err := fn(ctx); err != nil {
		h.log.Error("cart mutation failed", zap.String("op", op), zap.Error(err))
		h.setLoading(false)
		return err
	}
	defer h.setLoading(false)

	h.bumpGen()
	// A refresh begun before the write may still be in flight holding
	// pre-write data; drop it from the group so this fetch asks the server
	// again instead of adopting its result.
	h.fetchGroup.Forget("cart")
	if err := h.Refresh(ctx); err != nil {
		// The mutation landed; only the mirror is stale. Propagate so the
		// caller can surface it.
		return err
	}
	return nil
}

// Clear empties the server-side cart, then sets the local mirror to empty
// directly. Emptiness is the known outcome, so no re-fetch is needed.
func (h *Holder) Clear(ctx context.Context) error {
	h.mutateMu.Lock()
	defer h.mutateMu.Unlock()

	h.setLoading(true)
	defer h.setLoading(false)

	if err := h.api.ClearCart(ctx); err != nil {
		h.log.Error("cart clear failed", zap.Error(err))
		return err
	}

	h.mu.Lock()
	h.gen++
	h.cart = &domain.Cart{}
	h.loaded = true
	h.mu.Unlock()
	h.notify()
	return nil
}

// Validate asks the server to re-verify every item against current stock and
// prices. This is the sole defense against another shopper depleting stock
// between cart assembly and payment.
func (h *Holder) Validate(ctx context.Context) ([]domain.CartIssue, error) {
	issues, err := h.api.ValidateCart(ctx)
	if err != nil {
		h.log.Error("cart validation failed", zap.Error(err))
		return nil, err
	}
	return issues, nil
}

// ItemCount reads the server-supplied aggregate; it never sums line items.
func (h *Holder) ItemCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cart == nil {
		return 0
	}
	return h.cart.ItemCount
}

// Subtotal reads the server-supplied aggregate in currency sub-units.
func (h *Holder) Subtotal() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cart == nil {
		return 0
	}
	return h.cart.Subtotal
}

// Items returns a copy of the current line items.
func (h *Holder) Items() []domain.CartItem {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cart == nil {
		return nil
	}
	items := make([]domain.CartItem, len(h.cart.Items))
	copy(items, h.cart.Items)
	return items
}

// Loaded reports whether at least one fetch attempt has completed. The
// checkout redirect guard waits on this before trusting emptiness.
func (h *Holder) Loaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loaded
}

func (h *Holder) Loading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loading
}

func (h *Holder) PanelOpen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.panelOpen
}

func (h *Holder) OpenPanel()  { h.setPanel(true) }
func (h *Holder) ClosePanel() { h.setPanel(false) }

func (h *Holder) TogglePanel() {
	h.mu.Lock()
	h.panelOpen = !h.panelOpen
	h.mu.Unlock()
	h.notify()
}

func (h *Holder) setPanel(open bool) {
	h.mu.Lock()
	changed := h.panelOpen != open
	h.panelOpen = open
	h.mu.Unlock()
	if changed {
		h.notify()
	}
}

func (h *Holder) setLoading(v bool) {
	h.mu.Lock()
	h.loading = v
	h.mu.Unlock()
	h.notify()
}

func (h *Holder) bumpGen() {
	h.mu.Lock()
	h.gen++
	h.mu.Unlock()
}

func (h *Holder) markLoaded() {
	h.mu.Lock()
	h.loaded = true
	h.mu.Unlock()
}
