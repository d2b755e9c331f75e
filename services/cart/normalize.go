package cart

import (
	"errors"
	"strings"

	"creditcoach/models"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingProductID = errors.New("product has no identifier")
	ErrNegativePrice    = errors.New("product price cannot be negative")
)

// NormalizeProduct resolves the identifier of a product payload and returns
// the internal Product. The identifier is taken from the first non-empty of
// id, productId, _id and product._id. A nested product also supplies any
// display field the outer payload lacks.
func NormalizeProduct(p models.ProductPayload) (models.Product, error) {
	id := resolveID(p)
	if id == "" {
		return models.Product{}, ErrMissingProductID
	}

	title := firstNonEmpty(p.Title, p.Name)
	image := p.Image
	price := p.Price
	if p.Product != nil {
		title = firstNonEmpty(title, p.Product.Title, p.Product.Name)
		image = firstNonEmpty(image, p.Product.Image)
		if price == nil {
			price = p.Product.Price
		}
	}

	out := models.Product{ID: id, Title: title, Image: image, Price: decimal.Zero}
	if price != nil {
		if price.IsNegative() {
			return models.Product{}, ErrNegativePrice
		}
		out.Price = *price
	}
	return out, nil
}

func resolveID(p models.ProductPayload) string {
	id := firstNonEmpty(p.ID, p.ProductID, p.MongoID)
	if id == "" && p.Product != nil {
		id = firstNonEmpty(p.Product.MongoID, p.Product.ID, p.Product.ProductID)
	}
	return id
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
