package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const authSessionPrefix = "authSession:"

// CachedVerifier remembers verified tokens in Redis so a signed-in browser
// is not re-verified against the identity provider on every request. Only
// successful verifications are cached, never past the token's expiry; keys
// are token hashes.
type CachedVerifier struct {
	next   Verifier
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewCachedVerifier(next Verifier, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedVerifier{next: next, client: client, ttl: ttl, now: time.Now, logger: logger}
}

func authSessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return authSessionPrefix + hex.EncodeToString(sum[:])
}

func (v *CachedVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	key := authSessionKey(token)

	data, err := v.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var id Identity
		if jsonErr := json.Unmarshal(data, &id); jsonErr == nil && id.UserID != "" && !v.expired(&id) {
			id.RawToken = token
			return &id, nil
		}
	case err != redis.Nil:
		v.logger.Warn("auth: session cache read failed", zap.Error(err))
	}

	id, err := v.next.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	ttl := v.entryTTL(id)
	if ttl <= 0 {
		return id, nil
	}
	if b, err := json.Marshal(id); err == nil {
		if err := v.client.Set(ctx, key, b, ttl).Err(); err != nil {
			v.logger.Warn("auth: session cache write failed", zap.Error(err))
		}
	}
	return id, nil
}

func (v *CachedVerifier) expired(id *Identity) bool {
	return !id.ExpiresAt.IsZero() && !v.now().Before(id.ExpiresAt)
}

// entryTTL is the cache lifetime for id: ttl, cut short by the token expiry.
func (v *CachedVerifier) entryTTL(id *Identity) time.Duration {
	if id.ExpiresAt.IsZero() {
		return v.ttl
	}
	return min(v.ttl, id.ExpiresAt.Sub(v.now()))
}

// Forget drops a cached token, for sign-out.
func (v *CachedVerifier) Forget(ctx context.Context, token string) error {
	return v.client.Del(ctx, authSessionKey(token)).Err()
}
