package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType marks which slot a token is valid for. A token presented in the
// wrong slot is rejected even when its signature checks out.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Default token TTLs. Short-lived access tokens, week-long refresh tokens.
const (
	DefaultAccessTokenTTL  = 24 * time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the payload carried by both access and refresh tokens. The
// subject claim holds the user id.
type Claims struct {
	jwt.RegisteredClaims

	// Email is the user's login email at issue time.
	Email string `json:"email,omitempty"`

	// Username is the user's display identity at issue time.
	Username string `json:"username,omitempty"`

	// TokenType is "access" or "refresh".
	TokenType TokenType `json:"type,omitempty"`
}

// UserID returns the subject claim.
func (c *Claims) UserID() string { return c.Subject }

// Identity is the user snapshot a token is minted from.
type Identity struct {
	UserID   string
	Email    string
	Username string
}

// TokenPair bundles a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// newJTI returns a URL-safe random identifier for the "jti" claim.
func newJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

func newClaims(id Identity, typ TokenType, issuer, audience string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		Email:     id.Email,
		Username:  id.Username,
		TokenType: typ,
	}
}
