package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creditcoach/utils"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the signed-in user behind a bearer token.
type Identity struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	RawToken  string    `json:"-"`
}

// Token returns the bearer token to forward to the backend. A nil identity
// yields "", which callers treat as signed out.
func (i *Identity) Token(context.Context) (string, error) {
	if i == nil {
		return "", nil
	}
	return i.RawToken, nil
}

// Verifier checks bearer tokens issued by the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// JWTVerifier accepts HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("auth: JWT_SECRET is not set")
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	claims, err := utils.ExtractClaims(v.secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &Identity{UserID: claims.Subject, Email: claims.Email, ExpiresAt: claims.ExpiresAt, RawToken: token}, nil
}

// FirebaseVerifier checks Firebase Authentication ID tokens.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier initializes the admin SDK from a service account file.
// An empty path uses application default credentials.
func NewFirebaseVerifier(ctx context.Context, credentialsFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	t, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	email, _ := t.Claims["email"].(string)
	return &Identity{UserID: t.UID, Email: email, ExpiresAt: time.Unix(t.Expires, 0), RawToken: token}, nil
}

// NewVerifier picks the verifier named by provider ("jwt" or "firebase").
func NewVerifier(ctx context.Context, provider, jwtSecret, firebaseCredentials string) (Verifier, error) {
	switch provider {
	case "", "jwt":
		return NewJWTVerifier(jwtSecret)
	case "firebase":
		return NewFirebaseVerifier(ctx, firebaseCredentials)
	default:
		return nil, fmt.Errorf("auth: unknown provider %q", provider)
	}
}
