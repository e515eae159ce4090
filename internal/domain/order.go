package domain

import "time"

// Contact is the always-required checkout contact block.
type Contact struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

// Address is the shipping destination entered during checkout. It lives only
// for the current checkout attempt.
type Address struct {
	Name    string `json:"name" validate:"required"`
	Street1 string `json:"street1" validate:"required"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// PickupAddress is substituted for the shipping address on pickup orders.
var PickupAddress = Address{
	Name:    "Hafaloha",
	Street1: "955 Pale San Vitores Rd",
	City:    "Tamuning",
	State:   "GU",
	Zip:     "96913",
	Country: "US",
}

// ShippingRate is one option returned by a rate quote.
type ShippingRate struct {
	Carrier          string `json:"carrier"`
	Service          string `json:"service"`
	Price            int64  `json:"price"` // currency sub-units (cents)
	DeliveryEstimate string `json:"delivery_estimate,omitempty"`
}

// PickupRate is the zero-cost pseudo-rate used for in-store pickup orders.
var PickupRate = ShippingRate{
	Carrier: "pickup",
	Service: "In-store pickup",
	Price:   0,
}

type PaymentMethod string

const (
	PaymentTest PaymentMethod = "test"
	PaymentCard PaymentMethod = "card"
)

// OrderRequest is the order-creation payload assembled from a checkout draft
// and the current cart.
type OrderRequest struct {
	Contact        Contact       `json:"contact"`
	Address        Address       `json:"address"`
	ShippingMethod ShippingRate  `json:"shipping_method"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
}

type Order struct {
	ID        string      `json:"id"`
	Status    OrderStatus `json:"status"`
	Items     []CartItem  `json:"items"`
	Subtotal  int64       `json:"subtotal"`
	Shipping  int64       `json:"shipping"`
	Total     int64       `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderCancelled OrderStatus = "cancelled"
)

// AppConfig is the remote application configuration fetched once per checkout.
type AppConfig struct {
	TestMode       bool `json:"test_mode"`
	CardPayments   bool `json:"card_payments"`
	PickupEnabled  bool `json:"pickup_enabled"`
	ShippingQuotes bool `json:"shipping_quotes"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}
