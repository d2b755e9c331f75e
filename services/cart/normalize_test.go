package cart

import (
	"testing"

	"creditcoach/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNormalizeProduct(t *testing.T) {
	tests := []struct {
		name      string
		in        models.ProductPayload
		wantID    string
		wantTitle string
		wantPrice string
		wantErr   error
	}{
		{name: "id", in: models.ProductPayload{ID: "p1", Title: "Guide", Price: price("10")}, wantID: "p1", wantTitle: "Guide", wantPrice: "10"},
		{name: "productId", in: models.ProductPayload{ProductID: "p2", Name: "Kit"}, wantID: "p2", wantTitle: "Kit", wantPrice: "0"},
		{name: "id wins over productId", in: models.ProductPayload{ID: "a", ProductID: "b"}, wantID: "a", wantPrice: "0"},
		{name: "mongo id", in: models.ProductPayload{MongoID: "6650f0"}, wantID: "6650f0", wantPrice: "0"},
		{
			name:      "nested product",
			in:        models.ProductPayload{Product: &models.ProductPayload{MongoID: "n1", Title: "Nested", Price: price("4.25")}},
			wantID:    "n1",
			wantTitle: "Nested",
			wantPrice: "4.25",
		},
		{name: "whitespace id", in: models.ProductPayload{ID: "  "}, wantErr: ErrMissingProductID},
		{name: "empty", in: models.ProductPayload{}, wantErr: ErrMissingProductID},
		{name: "negative price", in: models.ProductPayload{ID: "p", Price: price("-1")}, wantErr: ErrNegativePrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeProduct(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
			assert.Equal(t, tt.wantTitle, got.Title)
			assert.Equal(t, tt.wantPrice, got.Price.String())
		})
	}
}
