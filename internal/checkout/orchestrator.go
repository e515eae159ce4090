// Package checkout drives a single checkout attempt from address entry to
// order confirmation. The draft lives only in memory; navigating away or a
// successful submission discards it.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Shimizu-Technology/hafaloha-go/internal/api"
	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

var (
	ErrConfigNotLoaded     = errors.New("checkout: configuration not loaded")
	ErrIncompleteAddress   = errors.New("checkout: address is incomplete")
	ErrNoRatesAvailable    = errors.New("checkout: no shipping rates offered for this address")
	ErrFormInvalid         = errors.New("checkout: required fields missing")
	ErrRateIndexOutOfRange = errors.New("checkout: no such rate")
)

// API is the slice of the remote client the orchestrator needs.
type API interface {
	GetConfig(ctx context.Context) (*domain.AppConfig, error)
	QuoteShippingRates(ctx context.Context, addr domain.Address) ([]domain.ShippingRate, error)
	CreateOrder(ctx context.Context, req *domain.OrderRequest) (*domain.Order, error)
}

// Cart is the slice of the cart holder the orchestrator needs.
type Cart interface {
	Validate(ctx context.Context) ([]domain.CartIssue, error)
	Clear(ctx context.Context) error
	Subtotal() int64
	ItemCount() int
	Loaded() bool
}

type Orchestrator struct {
	api      API
	cart     Cart
	log      *zap.Logger
	validate *validator.Validate

	status   Status
	cfg      *domain.AppConfig
	contact  domain.Contact
	method   DeliveryMethod
	address  domain.Address
	rates    []domain.ShippingRate
	selected *domain.ShippingRate

	confirmedOrderID string
	lastError        string
}

// New returns an orchestrator in the loading-config state. Call Start before
// anything else; the form does not render until configuration is known.
func New(apiClient API, cartState Cart, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		api:      apiClient,
		cart:     cartState,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		status:   StatusLoadingConfig,
		method:   DeliveryPickup,
	}
}

// Start loads the remote app configuration once.
func (o *Orchestrator) Start(ctx context.Context) error {
	cfg, err := o.api.GetConfig(ctx)
	if err != nil {
		o.log.Error("config load failed", zap.Error(err))
		o.lastError = api.UserMessage(err)
		return err
	}
	o.cfg = cfg
	o.status = StatusCollecting
	return nil
}

// ShouldRedirect reports whether the checkout view should bounce back to the
// storefront. True only when both the configuration and the cart have
// finished loading and the cart is confirmed empty; an in-flight initial cart
// fetch never triggers a false-positive redirect.
func (o *Orchestrator) ShouldRedirect() bool {
	return o.cfg != nil && o.cart.Loaded() && o.cart.ItemCount() == 0
}

func (o *Orchestrator) Status() Status { return o.status }

// LastError is the message the UI surfaces for the most recent failure.
func (o *Orchestrator) LastError() string { return o.lastError }

func (o *Orchestrator) ConfirmedOrderID() string { return o.confirmedOrderID }

func (o *Orchestrator) SetContact(c domain.Contact) {
	o.contact = c
	o.resumeCollecting()
}

// SetDeliveryMethod switches between pickup and shipping. Switching to pickup
// drops any quoted rates; they no longer gate form validity.
func (o *Orchestrator) SetDeliveryMethod(m DeliveryMethod) {
	o.method = m
	if m == DeliveryPickup {
		o.rates = nil
		o.selected = nil
	}
	o.resumeCollecting()
}

func (o *Orchestrator) SetAddress(a domain.Address) {
	o.address = a
	// A new destination invalidates previously quoted rates.
	o.rates = nil
	o.selected = nil
	o.resumeCollecting()
}

func (o *Orchestrator) resumeCollecting() {
	if o.status == StatusFailed || o.status == StatusRateSelected {
		o.status = StatusCollecting
	}
}

// CalculateRates quotes shipping options for the entered address and
// auto-selects the first offered rate (the server lists cheapest first); the
// user may override with SelectRate.
func (o *Orchestrator) CalculateRates(ctx context.Context) error {
	if o.cfg == nil {
		return ErrConfigNotLoaded
	}
	if err := o.validate.Struct(o.address); err != nil {
		return fmt.Errorf("%w: %v", ErrIncompleteAddress, err)
	}

	o.status = StatusCalculatingRates
	rates, err := o.api.QuoteShippingRates(ctx, o.address)
	if err != nil {
		o.log.Error("rate quote failed", zap.Error(err))
		o.lastError = api.UserMessage(err)
		o.status = StatusCollecting
		return err
	}
	if len(rates) == 0 {
		o.status = StatusCollecting
		o.lastError = "No shipping options are available for this address."
		return ErrNoRatesAvailable
	}

	o.rates = rates
	o.selected = &o.rates[0]
	o.status = StatusRateSelected
	o.lastError = ""
	return nil
}

func (o *Orchestrator) Rates() []domain.ShippingRate { return o.rates }

func (o *Orchestrator) SelectedRate() *domain.ShippingRate { return o.selected }

func (o *Orchestrator) SelectRate(i int) error {
	if i < 0 || i >= len(o.rates) {
		return ErrRateIndexOutOfRange
	}
	o.selected = &o.rates[i]
	o.status = StatusRateSelected
	return nil
}

// FormValid is the submission gate. Contact fields are always required.
// Shipping additionally needs a complete address and a selected rate; pickup
// needs neither because a fixed zero-cost pseudo-rate is substituted.
func (o *Orchestrator) FormValid() bool {
	if o.cfg == nil {
		return false
	}
	if err := o.validate.Struct(o.contact); err != nil {
		return false
	}
	if o.method == DeliveryPickup {
		return true
	}
	if err := o.validate.Struct(o.address); err != nil {
		return false
	}
	return o.selected != nil
}

// ShippingCost is the client-side display cost: zero for pickup, the selected
// rate's price for shipping.
func (o *Orchestrator) ShippingCost() int64 {
	if o.method == DeliveryPickup || o.selected == nil {
		return 0
	}
	return o.selected.Price
}

// Total is display-only: server subtotal plus shipping plus zero tax. The
// final charge is computed server-side at order creation.
func (o *Orchestrator) Total() int64 {
	const tax = 0
	return o.cart.Subtotal() + o.ShippingCost() + tax
}

// Submit validates the cart against live stock, then places the order. On
// success the cart is cleared and ConfirmedOrderID names the confirmation
// view's order. On failure the attempt returns to collecting with LastError
// set; nothing is retried.
func (o *Orchestrator) Submit(ctx context.Context) (*domain.Order, error) {
	if !o.FormValid() {
		return nil, ErrFormInvalid
	}
	o.status = StatusSubmitting

	issues, err := o.cart.Validate(ctx)
	if err != nil {
		return nil, o.fail(api.UserMessage(err), err)
	}
	if len(issues) > 0 {
		valErr := &api.CartValidationError{Issues: issues}
		return nil, o.fail(FormatIssues(issues), valErr)
	}

	order, err := o.api.CreateOrder(ctx, o.buildRequest())
	if err != nil {
		var valErr *api.CartValidationError
		if errors.As(err, &valErr) {
			return nil, o.fail(FormatIssues(valErr.Issues), err)
		}
		return nil, o.fail(api.UserMessage(err), err)
	}

	if err := o.cart.Clear(ctx); err != nil {
		// The order exists; a stale cart mirror is the lesser problem.
		o.log.Warn("cart clear after order failed", zap.String("order_id", order.ID), zap.Error(err))
	}

	o.confirmedOrderID = order.ID
	o.status = StatusConfirmed
	o.lastError = ""
	return order, nil
}

func (o *Orchestrator) fail(message string, err error) error {
	o.log.Error("checkout submission failed", zap.Error(err))
	o.lastError = message
	o.status = StatusFailed
	return err
}

func (o *Orchestrator) buildRequest() *domain.OrderRequest {
	req := &domain.OrderRequest{
		Contact:       o.contact,
		PaymentMethod: domain.PaymentCard,
	}
	if o.cfg.TestMode {
		req.PaymentMethod = domain.PaymentTest
	}
	if o.method == DeliveryPickup {
		req.Address = domain.PickupAddress
		req.ShippingMethod = domain.PickupRate
	} else {
		req.Address = o.address
		req.ShippingMethod = *o.selected
	}
	return req
}

// Reset discards the in-memory draft, as navigating away does.
func (o *Orchestrator) Reset() {
	o.contact = domain.Contact{}
	o.address = domain.Address{}
	o.method = DeliveryPickup
	o.rates = nil
	o.selected = nil
	o.confirmedOrderID = ""
	o.lastError = ""
	if o.cfg != nil {
		o.status = StatusCollecting
	} else {
		o.status = StatusLoadingConfig
	}
}

// FormatIssues renders cart validation issues as one bulleted line per issue,
// preserving server order.
func FormatIssues(issues []domain.CartIssue) string {
	var b strings.Builder
	for i, issue := range issues {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(issue.Message)
	}
	return b.String()
}
