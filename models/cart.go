package models

import "github.com/shopspring/decimal"

// CartItem is a snapshot of a product taken when it was added to the cart.
type CartItem struct {
	ID       string          `bson:"id" json:"id"`
	Title    string          `bson:"title" json:"title"`
	Image    string          `bson:"image,omitempty" json:"image,omitempty"`
	Price    decimal.Decimal `bson:"price" json:"price"`       // unit price
	Quantity int             `bson:"quantity" json:"quantity"` // always >= 1 while in the cart
}

// Subtotal returns price * quantity for the line.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartView is what the cart endpoints render.
type CartView struct {
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}
