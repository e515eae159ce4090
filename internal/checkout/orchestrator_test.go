package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/hafaloha-go/internal/api"
	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
)

// MockAPI implements API for testing
type MockAPI struct {
	Config    *domain.AppConfig
	ConfigErr error

	Rates    []domain.ShippingRate
	RatesErr error

	Order       *domain.Order
	OrderErr    error
	LastRequest *domain.OrderRequest
}

func (m *MockAPI) GetConfig(context.Context) (*domain.AppConfig, error) {
	return m.Config, m.ConfigErr
}

func (m *MockAPI) QuoteShippingRates(context.Context, domain.Address) ([]domain.ShippingRate, error) {
	return m.Rates, m.RatesErr
}

func (m *MockAPI) CreateOrder(_ context.Context, req *domain.OrderRequest) (*domain.Order, error) {
	m.LastRequest = req
	return m.Order, m.OrderErr
}

// MockCart implements Cart for testing
type MockCart struct {
	issues      []domain.CartIssue
	validateErr error
	subtotal    int64
	count       int
	loaded      bool
	cleared     bool
}

func (m *MockCart) Validate(context.Context) ([]domain.CartIssue, error) {
	return m.issues, m.validateErr
}

func (m *MockCart) Clear(context.Context) error {
	m.cleared = true
	m.count = 0
	m.subtotal = 0
	return nil
}

func (m *MockCart) Subtotal() int64 { return m.subtotal }
func (m *MockCart) ItemCount() int  { return m.count }
func (m *MockCart) Loaded() bool    { return m.loaded }

func validContact() domain.Contact {
	return domain.Contact{Name: "Ana Cruz", Email: "ana@example.com", Phone: "671-555-0100"}
}

func validAddress() domain.Address {
	return domain.Address{
		Name:    "Ana Cruz",
		Street1: "123 Marine Corps Dr",
		City:    "Hagåtña",
		State:   "GU",
		Zip:     "96910",
		Country: "US",
	}
}

func startedOrchestrator(t *testing.T, mock *MockAPI, cart *MockCart) *Orchestrator {
	t.Helper()
	if mock.Config == nil {
		mock.Config = &domain.AppConfig{TestMode: true, PickupEnabled: true, ShippingQuotes: true}
	}
	o := New(mock, cart, nil)
	require.NoError(t, o.Start(context.Background()))
	return o
}

func TestStart_LoadsConfigOnce(t *testing.T) {
	o := startedOrchestrator(t, &MockAPI{}, &MockCart{})
	assert.Equal(t, StatusCollecting, o.Status())
}

func TestShouldRedirect_WaitsForBothLoads(t *testing.T) {
	mock := &MockAPI{}
	cart := &MockCart{count: 0, loaded: false}
	o := New(mock, cart, nil)

	assert.False(t, o.ShouldRedirect(), "config not loaded yet")

	mock.Config = &domain.AppConfig{}
	require.NoError(t, o.Start(context.Background()))
	assert.False(t, o.ShouldRedirect(), "cart still loading")

	cart.loaded = true
	assert.True(t, o.ShouldRedirect(), "both loaded and cart empty")

	cart.count = 2
	assert.False(t, o.ShouldRedirect(), "cart has items")
}

func TestFormValid_PickupNeedsContactOnly(t *testing.T) {
	o := startedOrchestrator(t, &MockAPI{}, &MockCart{count: 1, loaded: true})
	o.SetDeliveryMethod(DeliveryPickup)

	assert.False(t, o.FormValid(), "contact missing")

	o.SetContact(validContact())
	assert.True(t, o.FormValid(), "pickup must not require an address or a rate")
}

func TestFormValid_ShippingNeedsAddressAndRate(t *testing.T) {
	mock := &MockAPI{Rates: []domain.ShippingRate{{Carrier: "USPS", Service: "Priority", Price: 899}}}
	o := startedOrchestrator(t, mock, &MockCart{count: 1, loaded: true})

	o.SetContact(validContact())
	o.SetDeliveryMethod(DeliveryShipping)
	assert.False(t, o.FormValid(), "no address yet")

	o.SetAddress(validAddress())
	assert.False(t, o.FormValid(), "no rate selected yet")

	require.NoError(t, o.CalculateRates(context.Background()))
	assert.True(t, o.FormValid())
}

func TestCalculateRates_RequiresCompleteAddress(t *testing.T) {
	o := startedOrchestrator(t, &MockAPI{}, &MockCart{})
	o.SetDeliveryMethod(DeliveryShipping)
	o.SetAddress(domain.Address{City: "Hagåtña"}) // missing everything else

	err := o.CalculateRates(context.Background())
	assert.ErrorIs(t, err, ErrIncompleteAddress)
}

func TestCalculateRates_AutoSelectsFirstRate(t *testing.T) {
	mock := &MockAPI{Rates: []domain.ShippingRate{
		{Carrier: "USPS", Service: "Priority", Price: 899},
		{Carrier: "UPS", Service: "Ground", Price: 1299},
	}}
	o := startedOrchestrator(t, mock, &MockCart{})
	o.SetDeliveryMethod(DeliveryShipping)
	o.SetAddress(validAddress())

	require.NoError(t, o.CalculateRates(context.Background()))

	require.NotNil(t, o.SelectedRate())
	assert.Equal(t, "USPS", o.SelectedRate().Carrier)
	assert.Equal(t, StatusRateSelected, o.Status())

	require.NoError(t, o.SelectRate(1))
	assert.Equal(t, "UPS", o.SelectedRate().Carrier)
	assert.ErrorIs(t, o.SelectRate(5), ErrRateIndexOutOfRange)
}

func TestCalculateRates_FailureSurfacesMessageWithoutRetry(t *testing.T) {
	mock := &MockAPI{RatesErr: &api.Error{StatusCode: 502, Message: "carrier unavailable"}}
	o := startedOrchestrator(t, mock, &MockCart{})
	o.SetDeliveryMethod(DeliveryShipping)
	o.SetAddress(validAddress())

	err := o.CalculateRates(context.Background())
	require.Error(t, err)
	assert.Equal(t, "carrier unavailable", o.LastError())
	assert.Equal(t, StatusCollecting, o.Status())
}

func TestTotal_SubtotalPlusShippingPlusZeroTax(t *testing.T) {
	mock := &MockAPI{Rates: []domain.ShippingRate{{Carrier: "USPS", Service: "Priority", Price: 899}}}
	cart := &MockCart{subtotal: 4500, count: 2, loaded: true}
	o := startedOrchestrator(t, mock, cart)

	o.SetDeliveryMethod(DeliveryPickup)
	assert.Equal(t, int64(4500), o.Total())

	o.SetDeliveryMethod(DeliveryShipping)
	o.SetAddress(validAddress())
	require.NoError(t, o.CalculateRates(context.Background()))
	assert.Equal(t, int64(5399), o.Total())
}

func TestSubmit_BlockedWhenFormInvalid(t *testing.T) {
	mock := &MockAPI{}
	o := startedOrchestrator(t, mock, &MockCart{count: 1, loaded: true})

	_, err := o.Submit(context.Background())
	assert.ErrorIs(t, err, ErrFormInvalid)
	assert.Nil(t, mock.LastRequest, "invalid form must not reach the network")
}

func TestSubmit_PickupUsesFixedAddressAndRate(t *testing.T) {
	mock := &MockAPI{Order: &domain.Order{ID: "ord-1"}}
	cart := &MockCart{subtotal: 2000, count: 1, loaded: true}
	o := startedOrchestrator(t, mock, cart)
	o.SetContact(validContact())
	o.SetDeliveryMethod(DeliveryPickup)

	order, err := o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)

	require.NotNil(t, mock.LastRequest)
	assert.Equal(t, domain.PickupAddress, mock.LastRequest.Address)
	assert.Equal(t, domain.PickupRate, mock.LastRequest.ShippingMethod)
	assert.Equal(t, domain.PaymentTest, mock.LastRequest.PaymentMethod, "test mode picks the test descriptor")

	assert.True(t, cart.cleared, "cart cleared on success")
	assert.Equal(t, "ord-1", o.ConfirmedOrderID())
	assert.Equal(t, StatusConfirmed, o.Status())
	assert.True(t, o.Status().IsTerminal())
}

func TestSubmit_LiveModeUsesCardDescriptor(t *testing.T) {
	mock := &MockAPI{
		Config: &domain.AppConfig{TestMode: false, CardPayments: true},
		Order:  &domain.Order{ID: "ord-2"},
	}
	o := startedOrchestrator(t, mock, &MockCart{count: 1, loaded: true})
	o.SetContact(validContact())
	o.SetDeliveryMethod(DeliveryPickup)

	_, err := o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCard, mock.LastRequest.PaymentMethod)
}

func TestSubmit_ValidationIssuesRenderOneBulletPerIssue(t *testing.T) {
	cart := &MockCart{
		count: 2, loaded: true,
		issues: []domain.CartIssue{
			{Type: domain.IssueOutOfStock, ItemName: "Tee", Message: "Tee is no longer available"},
			{Type: domain.IssuePriceChanged, ItemName: "Mug", Message: "Mug price changed from $10.00 to $12.00"},
		},
	}
	mock := &MockAPI{}
	o := startedOrchestrator(t, mock, cart)
	o.SetContact(validContact())
	o.SetDeliveryMethod(DeliveryPickup)

	_, err := o.Submit(context.Background())
	require.Error(t, err)

	var valErr *api.CartValidationError
	require.ErrorAs(t, err, &valErr)

	lines := strings.Split(o.LastError(), "\n")
	require.Len(t, lines, 2, "exactly one bulleted line per issue")
	assert.Equal(t, "• Tee is no longer available", lines[0])
	assert.Equal(t, "• Mug price changed from $10.00 to $12.00", lines[1])

	assert.Nil(t, mock.LastRequest, "order creation skipped when validation fails")
	assert.Equal(t, StatusFailed, o.Status())
	assert.False(t, cart.cleared)
}

func TestSubmit_ServerSideValidationFailureFormattedTheSameWay(t *testing.T) {
	mock := &MockAPI{OrderErr: &api.CartValidationError{
		StatusCode: 409,
		Issues: []domain.CartIssue{
			{Type: domain.IssueOutOfStock, Message: "Hat is no longer available"},
		},
	}}
	o := startedOrchestrator(t, mock, &MockCart{count: 1, loaded: true})
	o.SetContact(validContact())
	o.SetDeliveryMethod(DeliveryPickup)

	_, err := o.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "• Hat is no longer available", o.LastError())
}

func TestSubmit_GenericFailureSingleMessage(t *testing.T) {
	mock := &MockAPI{OrderErr: errors.New("connection reset")}
	cart := &MockCart{count: 1, loaded: true}
	o := startedOrchestrator(t, mock, cart)
	o.SetContact(validContact())
	o.SetDeliveryMethod(DeliveryPickup)

	_, err := o.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Something went wrong. Please try again.", o.LastError())
	assert.False(t, cart.cleared)

	// The next edit returns the attempt to collecting.
	o.SetContact(validContact())
	assert.Equal(t, StatusCollecting, o.Status())
}

func TestReset_DiscardsDraft(t *testing.T) {
	mock := &MockAPI{Rates: []domain.ShippingRate{{Carrier: "USPS", Service: "Priority", Price: 899}}}
	o := startedOrchestrator(t, mock, &MockCart{count: 1, loaded: true})
	o.SetContact(validContact())
	o.SetDeliveryMethod(DeliveryShipping)
	o.SetAddress(validAddress())
	require.NoError(t, o.CalculateRates(context.Background()))

	o.Reset()

	assert.Equal(t, StatusCollecting, o.Status())
	assert.Nil(t, o.SelectedRate())
	assert.Empty(t, o.Rates())
	assert.False(t, o.FormValid())
}
