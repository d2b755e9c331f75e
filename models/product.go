package models

import "github.com/shopspring/decimal"

// Product is a catalog entry after identifier normalization.
type Product struct {
	ID    string          `bson:"id" json:"id"`
	Title string          `bson:"title" json:"title"`
	Image string          `bson:"image,omitempty" json:"image,omitempty"`
	Price decimal.Decimal `bson:"price" json:"price"`
}

// ProductPayload is the shape products arrive in from the browser and the
// backend API. Older pages send productId, the backend sends _id, and the
// checkout page nests the whole product.
type ProductPayload struct {
	ID        string           `json:"id,omitempty"`
	ProductID string           `json:"productId,omitempty"`
	MongoID   string           `json:"_id,omitempty"`
	Product   *ProductPayload  `json:"product,omitempty"`
	Title     string           `json:"title,omitempty"`
	Name      string           `json:"name,omitempty"`
	Image     string           `json:"image,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}
