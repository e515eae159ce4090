package checkout

type Status string

const (
	StatusLoadingConfig    Status = "LOADING_CONFIG"
	StatusCollecting       Status = "COLLECTING"
	StatusCalculatingRates Status = "CALCULATING_RATES"
	StatusRateSelected     Status = "RATE_SELECTED"
	StatusSubmitting       Status = "SUBMITTING"
	StatusConfirmed        Status = "CONFIRMED"
	StatusFailed           Status = "FAILED"
)

// IsTerminal reports whether the checkout attempt is over. A failed attempt
// is not terminal: the next edit returns it to collecting.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryShipping DeliveryMethod = "shipping"
)
