package auth

import (
	"context"
	"testing"
	"time"

	"creditcoach/services/booking"
	"creditcoach/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestJWTVerifier(t *testing.T) {
	v, err := NewJWTVerifier(secret)
	require.NoError(t, err)
	ctx := context.Background()

	token, err := utils.GenerateToken([]byte(secret), "user-42", "ana@example.com", time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", id.UserID)
	assert.Equal(t, "ana@example.com", id.Email)
	assert.Equal(t, token, id.RawToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), id.ExpiresAt, time.Minute)

	tests := []struct {
		name  string
		token func() string
	}{
		{"garbage", func() string { return "not.a.jwt" }},
		{"wrong secret", func() string {
			tok, _ := utils.GenerateToken([]byte("other"), "user-42", "", time.Hour)
			return tok
		}},
		{"expired", func() string {
			tok, _ := utils.GenerateToken([]byte(secret), "user-42", "", -time.Minute)
			return tok
		}},
		{"no subject", func() string {
			tok, _ := utils.GenerateToken([]byte(secret), "", "", time.Hour)
			return tok
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(ctx, tt.token())
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewVerifier(t *testing.T) {
	v, err := NewVerifier(context.Background(), "jwt", secret, "")
	require.NoError(t, err)
	assert.IsType(t, &JWTVerifier{}, v)

	_, err = NewVerifier(context.Background(), "jwt", "", "")
	assert.Error(t, err)

	_, err = NewVerifier(context.Background(), "saml", secret, "")
	assert.Error(t, err)
}

func TestIdentityIsTokenSource(t *testing.T) {
	var src booking.TokenSource = &Identity{RawToken: "abc"}
	tok, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	var none *Identity
	tok, err = none.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tok)
}
