// Package auth resolves bearer tokens into identities. Token issuance is
// owned by an external identity provider; this package only verifies.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"trustflow-service/internal/errs"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the resolved caller of a request. Core services depend on
// this, never on token internals.
type Identity struct {
	UserID int64
	Role   string
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator from the shared signing secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Authenticate resolves a raw token into an identity. Invalid, expired or
// malformed tokens fail with the unauthorized error.
func (a *Authenticator) Authenticate(token string) (Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", errs.ErrUnauthorized)
	}
	if !parsed.Valid {
		return Identity{}, fmt.Errorf("invalid token: %w", errs.ErrUnauthorized)
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, fmt.Errorf("invalid subject claim: %w", errs.ErrUnauthorized)
	}
	if c.Role == "" {
		return Identity{}, fmt.Errorf("missing role claim: %w", errs.ErrUnauthorized)
	}

	return Identity{UserID: userID, Role: c.Role}, nil
}

// Sign issues a token for the given identity. Used by tests and local
// tooling; production tokens come from the identity provider.
func (a *Authenticator) Sign(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(a.secret)
}
