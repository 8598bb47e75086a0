package jwtx

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTL constants for the cookie session pair.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 10 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 30 * time.Minute
)

// TokenType distinguishes the two halves of a session pair. Access and
// refresh tokens are also signed with different secrets, the type claim just
// makes a mix-up fail loudly.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the session token claims. Refresh tokens leave Role empty.
type Claims struct {
	jwt.RegisteredClaims

	UserID int64     `json:"user_id"`
	Role   string    `json:"role,omitempty"`
	Type   TokenType `json:"typ"`
}

// NewAccessClaims builds claims for a short-lived access token.
func NewAccessClaims(userID int64, role, issuer string, ttl time.Duration, now time.Time) Claims {
	c := newClaims(userID, TokenTypeAccess, issuer, ttl, now)
	c.Role = role
	return c
}

// NewRefreshClaims builds claims for a refresh token. It carries only the
// user id so a refresh always re-reads the role from the store.
func NewRefreshClaims(userID int64, issuer string, ttl time.Duration, now time.Time) Claims {
	return newClaims(userID, TokenTypeRefresh, issuer, ttl, now)
}

func newClaims(userID int64, typ TokenType, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		UserID: userID,
		Type:   typ,
	}
}

// NewJTI returns a random identifier for the "jti" claim so two tokens minted
// in the same second still differ.
func NewJTI() string {
	return uuid.NewString()
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateType ensures the token is the kind the caller asked for.
func (c *Claims) ValidateType(expected TokenType) error {
	if c.Type != expected {
		return ErrWrongType
	}
	return nil
}
