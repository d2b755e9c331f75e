package models

// CheckoutRequest carries what the payment gateway needs to open a hosted
// checkout page. Amounts are in minor units.
type CheckoutRequest struct {
	ClientReference string
	CustomerEmail   string
	Currency        string
	SuccessURL      string
	CancelURL       string
	Lines           []CheckoutLine
}

type CheckoutLine struct {
	Name      string
	Image     string
	UnitCents int64
	Quantity  int64
}

// CheckoutSession is the gateway's answer to a checkout request.
type CheckoutSession struct {
	ID              string `json:"id"`
	URL             string `json:"url,omitempty"`
	Paid            bool   `json:"paid"`
	Status          string `json:"status,omitempty"`
	ClientReference string `json:"-"`
}
