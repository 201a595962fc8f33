// Package auth issues and verifies the opaque identity tokens consumed
// by the REST surface and the control-channel join flow.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const identityKey ctxKey = 1

// WithIdentity attaches a verified identity to the context.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// Identity extracts the verified identity, empty when unauthenticated.
func Identity(ctx context.Context) string {
	v, _ := ctx.Value(identityKey).(string)
	return v
}

// JWT wraps an HS256 signing secret.
type JWT struct{ secret []byte }

func New(secret string) *JWT { return &JWT{secret: []byte(secret)} }

// Sign creates a token whose subject is the identity.
func (j *JWT) Sign(identity string, ttl time.Duration) (string, error) {
	if identity == "" {
		return "", errors.New("empty identity")
	}
	claims := jwt.MapClaims{
		"sub": identity,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// Verify checks a token and returns its subject.
func (j *JWT) Verify(tok string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("no subject claim")
	}
	return sub, nil
}
