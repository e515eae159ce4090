// Package stubapi is an in-memory commerce API exhibiting the server
// contracts the client assumes: one cart row per variant, server-computed
// aggregates, authoritative stock checks at validation and order creation,
// idempotent variant generation, and import jobs that advance toward a
// terminal status. Tests run it through httptest; cmd/stubapi serves it
// standalone for local development.
package stubapi

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Shimizu-Technology/hafaloha-go/internal/api"
	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

type Server struct {
	mu sync.Mutex

	adminToken string
	userToken  string
	cfg        domain.AppConfig
	rates      []domain.ShippingRate

	products    map[string]*domain.Product
	collections map[string]*domain.Collection
	carts       map[string]*domain.Cart // session id -> cart
	orders      map[string]*domain.Order
	imports     map[string]*importState
	seq         int
}

// importState advances one step per status poll so watchers observe the fixed
// pending -> processing -> terminal progression.
type importState struct {
	job   domain.ImportJob
	polls int
}

type Option func(*Server)

func WithAdminToken(token string) Option {
	return func(s *Server) { s.adminToken = token }
}

// WithUserToken accepts a non-admin bearer token on /me.
func WithUserToken(token string) Option {
	return func(s *Server) { s.userToken = token }
}

func WithConfig(cfg domain.AppConfig) Option {
	return func(s *Server) { s.cfg = cfg }
}

func WithRates(rates []domain.ShippingRate) Option {
	return func(s *Server) { s.rates = rates }
}

func New(opts ...Option) *Server {
	s := &Server{
		adminToken: "stub-admin-token",
		cfg:        domain.AppConfig{TestMode: true, PickupEnabled: true, ShippingQuotes: true},
		rates: []domain.ShippingRate{
			{Carrier: "USPS", Service: "Priority Mail", Price: 899, DeliveryEstimate: "3-5 days"},
			{Carrier: "UPS", Service: "Ground", Price: 1299, DeliveryEstimate: "5-7 days"},
		},
		products:    make(map[string]*domain.Product),
		collections: make(map[string]*domain.Collection),
		carts:       make(map[string]*domain.Cart),
		orders:      make(map[string]*domain.Order),
		imports:     make(map[string]*importState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SeedProduct installs a product (with its variants) into the catalog.
func (s *Server) SeedProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.nextID("p")
	}
	for i := range p.Variants {
		if p.Variants[i].ID == "" {
			p.Variants[i].ID = s.nextID("v")
		}
		p.Variants[i].ProductID = p.ID
	}
	copied := p
	s.products[p.ID] = &copied
}

// SetVariantStock adjusts one variant's stock, simulating another shopper
// buying it out between cart assembly and checkout.
func (s *Server) SetVariantStock(variantID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		for i := range p.Variants {
			if p.Variants[i].ID == variantID {
				p.Variants[i].StockQuantity = quantity
				return
			}
		}
	}
}

// SetVariantPrice changes a variant's price, invalidating carts that hold the
// old one.
func (s *Server) SetVariantPrice(variantID string, price int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		for i := range p.Variants {
			if p.Variants[i].ID == variantID {
				p.Variants[i].Price = price
				return
			}
		}
	}
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/config", s.getConfig)
	r.Get("/products", s.listProducts)
	r.Get("/products/{id}", s.getProduct)
	r.Get("/collections", s.listCollections)
	r.Post("/shipping/rates", s.quoteRates)
	r.Get("/me", s.currentUser)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/cart", s.getCart)
		r.Delete("/cart", s.clearCart)
		r.Post("/cart/items", s.addCartItem)
		r.Put("/cart/items/{id}", s.updateCartItem)
		r.Delete("/cart/items/{id}", s.removeCartItem)
		r.Post("/cart/validate", s.validateCart)
		r.Post("/orders", s.createOrder)
		r.Get("/orders/{id}", s.getOrder)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/products", s.adminListProducts)
		r.Post("/products", s.adminCreateProduct)
		r.Put("/products/{id}", s.adminUpdateProduct)
		r.Post("/products/{id}/archive", s.adminArchiveProduct)
		r.Post("/products/{id}/unarchive", s.adminUnarchiveProduct)
		r.Get("/products/{id}/variants", s.adminListVariants)
		r.Post("/products/{id}/variants", s.adminCreateVariant)
		r.Post("/products/{id}/variants/generate", s.adminGenerateVariants)
		r.Put("/variants/{id}", s.adminUpdateVariant)
		r.Delete("/variants/{id}", s.adminDeleteVariant)
		r.Post("/products/{id}/images", s.adminUploadImage)
		r.Delete("/images/{id}", s.adminDeleteImage)
		r.Post("/images/{id}/primary", s.adminSetPrimaryImage)
		r.Get("/collections", s.adminListCollections)
		r.Post("/collections", s.adminCreateCollection)
		r.Put("/collections/{id}", s.adminUpdateCollection)
		r.Delete("/collections/{id}", s.adminDeleteCollection)
		r.Put("/collections/{id}/products", s.adminSetCollectionProducts)
		r.Post("/imports", s.adminUploadImport)
		r.Get("/imports", s.adminListImports)
		r.Get("/imports/{id}", s.adminGetImport)
	})

	return r
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(api.SessionHeader) == "" {
			respondError(w, http.StatusBadRequest, "missing_session", "session identifier header is required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bearer(r) != s.adminToken {
			respondError(w, http.StatusForbidden, "forbidden", "admin authorization required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func sessionID(r *http.Request) string {
	return r.Header.Get(api.SessionHeader)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": message, "code": code})
}

func respondValidationFailure(w http.ResponseWriter, issues []domain.CartIssue) {
	respondJSON(w, http.StatusConflict, map[string]interface{}{
		"error":  "cart validation failed",
		"code":   "cart_validation_failed",
		"issues": issues,
	})
}

func (s *Server) getConfig(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	token := bearer(r)
	switch {
	case token == s.adminToken:
		respondJSON(w, http.StatusOK, domain.User{ID: "admin", Email: "admin@hafaloha.example", Admin: true})
	case s.userToken != "" && token == s.userToken:
		respondJSON(w, http.StatusOK, domain.User{ID: "shopper", Email: "shopper@hafaloha.example"})
	default:
		respondError(w, http.StatusUnauthorized, "unauthenticated", "invalid or missing token")
	}
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	var visible []domain.Product
	for _, p := range s.products {
		if !p.Archived {
			visible = append(visible, *p)
		}
	}
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": visible})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.products[chi.URLParam(r, "id")]
	var copied domain.Product
	if ok {
		copied = *p
	}
	s.mu.Unlock()
	if !ok || copied.Archived {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	respondJSON(w, http.StatusOK, copied)
}

func (s *Server) listCollections(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	var out []domain.Collection
	for _, c := range s.collections {
		out = append(out, *c)
	}
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, map[string]interface{}{"collections": out})
}

func (s *Server) quoteRates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address domain.Address `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Address.Zip == "" || req.Address.Country == "" {
		respondError(w, http.StatusUnprocessableEntity, "invalid_address", "destination is incomplete")
		return
	}
	s.mu.Lock()
	rates := make([]domain.ShippingRate, len(s.rates))
	copy(rates, s.rates)
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, map[string]interface{}{"rates": rates})
}

// cartFor returns the session's cart, creating it on first use. Caller holds
// s.mu.
func (s *Server) cartFor(session string) *domain.Cart {
	cart, ok := s.carts[session]
	if !ok {
		cart = &domain.Cart{ID: "cart-" + session}
		s.carts[session] = cart
	}
	return cart
}

// findVariant locates a variant and its product. Caller holds s.mu.
func (s *Server) findVariant(variantID string) (*domain.Product, *domain.Variant) {
	for _, p := range s.products {
		for i := range p.Variants {
			if p.Variants[i].ID == variantID {
				return p, &p.Variants[i]
			}
		}
	}
	return nil, nil
}

// recompute refreshes the server-owned aggregates. Caller holds s.mu.
func recompute(cart *domain.Cart) {
	cart.ItemCount = 0
	cart.Subtotal = 0
	for i := range cart.Items {
		cart.Items[i].Subtotal = int64(cart.Items[i].Quantity) * cart.Items[i].UnitPrice
		cart.ItemCount += cart.Items[i].Quantity
		cart.Subtotal += cart.Items[i].Subtotal
	}
	cart.UpdatedAt = time.Now()
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cart := *s.cartFor(sessionID(r))
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, map[string]interface{}{"cart": cart})
}

func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VariantID string `json:"variant_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, variant := s.findVariant(req.VariantID)
	if variant == nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid_variant", "variant does not exist")
		return
	}
	if product.Archived || !product.VariantAvailable(*variant) {
		respondError(w, http.StatusUnprocessableEntity, "unavailable", variantName(product, variant)+" is not available")
		return
	}

	cart := s.cartFor(sessionID(r))
	var row *domain.CartItem
	for i := range cart.Items {
		if cart.Items[i].VariantID == req.VariantID {
			row = &cart.Items[i]
			break
		}
	}

	wanted := req.Quantity
	if row != nil {
		wanted += row.Quantity
	}
	if !stockCovers(product, variant, wanted) {
		respondError(w, http.StatusUnprocessableEntity, "insufficient_stock",
			fmt.Sprintf("only %d of %s in stock", trackedStock(product, variant), variantName(product, variant)))
		return
	}

	// One row per (cart, variant): a repeated add increments quantity.
	if row != nil {
		row.Quantity += req.Quantity
	} else {
		s.seq++
		cart.Items = append(cart.Items, domain.CartItem{
			ID:        fmt.Sprintf("item-%d", s.seq),
			VariantID: req.VariantID,
			Name:      variantName(product, variant),
			UnitPrice: variant.Price,
			Quantity:  req.Quantity,
		})
	}
	recompute(cart)
	respondJSON(w, http.StatusCreated, map[string]interface{}{"cart": *cart})
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartFor(sessionID(r))
	itemID := chi.URLParam(r, "id")
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items[i].Quantity = req.Quantity
			recompute(cart)
			respondJSON(w, http.StatusOK, map[string]interface{}{"cart": *cart})
			return
		}
	}
	respondError(w, http.StatusNotFound, "not_found", "cart item not found")
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartFor(sessionID(r))
	itemID := chi.URLParam(r, "id")
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			recompute(cart)
			respondJSON(w, http.StatusOK, map[string]interface{}{"cart": *cart})
			return
		}
	}
	respondError(w, http.StatusNotFound, "not_found", "cart item not found")
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cart := s.cartFor(sessionID(r))
	cart.Items = nil
	recompute(cart)
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, map[string]interface{}{"cart": *cart})
}

// cartIssues re-verifies every row against current stock and prices. Caller
// holds s.mu.
func (s *Server) cartIssues(cart *domain.Cart) []domain.CartIssue {
	var issues []domain.CartIssue
	for _, item := range cart.Items {
		product, variant := s.findVariant(item.VariantID)
		if variant == nil || product.Archived || !variant.Available {
			issues = append(issues, domain.CartIssue{
				Type:     domain.IssueUnavailable,
				ItemName: item.Name,
				Message:  item.Name + " is no longer available",
			})
			continue
		}
		if !stockCovers(product, variant, item.Quantity) {
			issues = append(issues, domain.CartIssue{
				Type:     domain.IssueOutOfStock,
				ItemName: item.Name,
				Message:  fmt.Sprintf("%s has only %d left in stock", item.Name, trackedStock(product, variant)),
			})
			continue
		}
		if variant.Price != item.UnitPrice {
			issues = append(issues, domain.CartIssue{
				Type:     domain.IssuePriceChanged,
				ItemName: item.Name,
				Message:  fmt.Sprintf("%s price changed from %d to %d", item.Name, item.UnitPrice, variant.Price),
			})
		}
	}
	return issues
}

func (s *Server) validateCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	issues := s.cartIssues(s.cartFor(sessionID(r)))
	s.mu.Unlock()
	if issues == nil {
		issues = []domain.CartIssue{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"issues": issues})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cartFor(sessionID(r))
	if len(cart.Items) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", "cart is empty")
		return
	}

	// Stock is checked and decremented in one critical section: the stub is
	// the lock-holder of record, exactly like the real backend.
	if issues := s.cartIssues(cart); len(issues) > 0 {
		respondValidationFailure(w, issues)
		return
	}
	for _, item := range cart.Items {
		product, variant := s.findVariant(item.VariantID)
		switch product.InventoryLevel {
		case domain.InventoryProduct:
			product.StockQuantity -= item.Quantity
		case domain.InventoryVariant:
			variant.StockQuantity -= item.Quantity
		}
	}

	order := &domain.Order{
		ID:        uuid.NewString(),
		Status:    domain.OrderPending,
		Items:     append([]domain.CartItem(nil), cart.Items...),
		Subtotal:  cart.Subtotal,
		Shipping:  req.ShippingMethod.Price,
		Total:     cart.Subtotal + req.ShippingMethod.Price,
		CreatedAt: time.Now(),
	}
	s.orders[order.ID] = order

	cart.Items = nil
	recompute(cart)

	respondJSON(w, http.StatusCreated, *order)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	order, ok := s.orders[chi.URLParam(r, "id")]
	var copied domain.Order
	if ok {
		copied = *order
	}
	s.mu.Unlock()
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}
	respondJSON(w, http.StatusOK, copied)
}

func variantName(p *domain.Product, v *domain.Variant) string {
	parts := []string{p.Name}
	if v.Size != "" {
		parts = append(parts, v.Size)
	}
	if v.Color != "" {
		parts = append(parts, v.Color)
	}
	return strings.Join(parts, " ")
}

// stockCovers answers whether quantity can be fulfilled at the product's
// tracked level.
func stockCovers(p *domain.Product, v *domain.Variant, quantity int) bool {
	switch p.InventoryLevel {
	case domain.InventoryNone:
		return true
	case domain.InventoryProduct:
		return p.StockQuantity >= quantity
	case domain.InventoryVariant:
		return v.StockQuantity >= quantity
	default:
		return true
	}
}

func trackedStock(p *domain.Product, v *domain.Variant) int {
	if p.InventoryLevel == domain.InventoryProduct {
		return p.StockQuantity
	}
	return v.StockQuantity
}
