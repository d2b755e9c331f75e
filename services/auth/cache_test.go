package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingVerifier struct {
	calls     int
	expiresAt time.Time
}

func (c *countingVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	c.calls++
	if token == "bad" {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: "u-" + token, Email: token + "@example.com", ExpiresAt: c.expiresAt, RawToken: token}, nil
}

func TestCachedVerifier(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingVerifier{}
	v := NewCachedVerifier(inner, client, 5*time.Minute, nil)
	ctx := context.Background()

	first, err := v.Verify(ctx, "tok")
	require.NoError(t, err)
	second, err := v.Verify(ctx, "tok")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, "tok", second.RawToken)

	// The raw token never lands in Redis.
	for _, key := range mr.Keys() {
		val, _ := mr.Get(key)
		assert.NotContains(t, val, `"tok"`)
		assert.NotContains(t, key, "tok")
	}

	// Failures are not cached.
	_, err = v.Verify(ctx, "bad")
	assert.True(t, errors.Is(err, ErrInvalidToken))
	_, err = v.Verify(ctx, "bad")
	assert.Error(t, err)
	assert.Equal(t, 3, inner.calls)

	require.NoError(t, v.Forget(ctx, "tok"))
	_, err = v.Verify(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls)

	// Cache outage falls through to the provider.
	mr.Close()
	id, err := v.Verify(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u-tok", id.UserID)
}

func TestCachedVerifier_EntryNeverOutlivesToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	inner := &countingVerifier{expiresAt: now.Add(30 * time.Second)}
	v := NewCachedVerifier(inner, client, 5*time.Minute, nil)
	v.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := v.Verify(ctx, "short")
	require.NoError(t, err)
	ttl := mr.TTL(authSessionKey("short"))
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, 30*time.Second)

	// Past the expiry a cached entry is not trusted.
	v.now = func() time.Time { return now.Add(time.Minute) }
	_, err = v.Verify(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)

	// An already expired identity is not cached at all.
	inner.expiresAt = now
	_, err = v.Verify(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, mr.Exists(authSessionKey("stale")))
}
