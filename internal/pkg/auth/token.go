package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/exception"
)

const DefaultLoginPath = "/login"

var ErrMissingToken = exception.ApplicationError{
	StatusCode: http.StatusUnauthorized,
	Kind:       exception.KindUnauthorized,
	Message:    "missing bearer token",
}

var ErrInvalidToken = exception.ApplicationError{
	StatusCode: http.StatusUnauthorized,
	Kind:       exception.KindUnauthorized,
	Message:    "invalid or expired token",
}

type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

type credentials struct {
	raw    string
	claims *Claims
}

// ParseToken verifies an HS256 token signed with secret.
func ParseToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken.WithCause(err)
	}

	return claims, nil
}

// IssueToken signs a token for subject. The gateway never logs users in itself; this
// serves local tooling and tests.
func IssueToken(secret, subject, email string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	return strings.TrimSpace(header[len(prefix):]), true
}

func WithCredentials(ctx context.Context, raw string, claims *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, credentials{raw: raw, claims: claims})
}

func TokenFromContext(ctx context.Context) (string, bool) {
	c, ok := ctx.Value(ctxKey{}).(credentials)
	if !ok || c.raw == "" {
		return "", false
	}

	return c.raw, true
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(credentials)
	if !ok || c.claims == nil {
		return nil, false
	}

	return c.claims, true
}
