package jwtx

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalid covers any token that fails verification for a reason other
	// than expiry: bad signature, wrong issuer/audience, malformed structure,
	// or the wrong token type for the slot it was presented in.
	ErrInvalid = errors.New("jwtx: invalid token")

	// ErrExpired is kept distinct from ErrInvalid so clients can decide
	// whether a refresh attempt is worthwhile.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrWrongType still satisfies errors.Is(err, ErrInvalid); callers must
	// not treat it more favourably than a bad signature.
	ErrWrongType = fmt.Errorf("%w: unexpected token type", ErrInvalid)
)

const bearerPrefix = "Bearer "

// Config carries the signing material and claim constants for a Service.
// Access and refresh tokens are signed with distinct secrets.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Audience      string
}

// Service issues and verifies HS256-signed access and refresh tokens. It is
// a pure function of its configuration and safe for concurrent use.
type Service struct {
	cfg Config
}

// NewService validates the configuration and returns a token service.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("jwtx: access and refresh secrets are required")
	}
	if subtle.ConstantTimeCompare(cfg.AccessSecret, cfg.RefreshSecret) == 1 {
		return nil, errors.New("jwtx: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTokenTTL
	}
	return &Service{cfg: cfg}, nil
}

// GenerateAccessToken mints a signed access token for the given identity.
func (s *Service) GenerateAccessToken(id Identity) (string, error) {
	return s.generate(id, TokenTypeAccess)
}

// GenerateRefreshToken mints a signed refresh token for the given identity.
func (s *Service) GenerateRefreshToken(id Identity) (string, error) {
	return s.generate(id, TokenTypeRefresh)
}

// GenerateTokenPair mints both tokens from the same identity snapshot.
func (s *Service) GenerateTokenPair(id Identity) (TokenPair, error) {
	access, err := s.GenerateAccessToken(id)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.GenerateRefreshToken(id)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) generate(id Identity, typ TokenType) (string, error) {
	secret, ttl := s.cfg.AccessSecret, s.cfg.AccessTTL
	if typ == TokenTypeRefresh {
		secret, ttl = s.cfg.RefreshSecret, s.cfg.RefreshTTL
	}

	claims := newClaims(id, typ, s.cfg.Issuer, s.cfg.Audience, ttl, time.Now().UTC())
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: signing %s token: %w", typ, err)
	}
	return signed, nil
}

// VerifyAccessToken verifies signature, issuer, audience, expiry and type
// against the access secret.
func (s *Service) VerifyAccessToken(token string) (Claims, error) {
	return s.verify(token, TokenTypeAccess, s.cfg.AccessSecret)
}

// VerifyRefreshToken verifies signature, issuer, audience, expiry and type
// against the refresh secret.
func (s *Service) VerifyRefreshToken(token string) (Claims, error) {
	return s.verify(token, TokenTypeRefresh, s.cfg.RefreshSecret)
}

func (s *Service) verify(token string, typ TokenType, secret []byte) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if claims.TokenType != typ {
		return Claims{}, ErrWrongType
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalid)
	}

	return claims, nil
}

// ExtractTokenFromHeader pulls the raw token out of an Authorization header.
// Anything other than exactly "Bearer <token>" yields the empty string.
func ExtractTokenFromHeader(header string) string {
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return header[len(bearerPrefix):]
}

// TokenExpiry decodes (without verifying) a token and returns its expiry
// claim. The second return is false when the token cannot be decoded or
// carries no expiry.
func TokenExpiry(token string) (time.Time, bool) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// IsTokenExpired reports whether a token's expiry claim has passed. A token
// that fails to decode is treated as expired.
func IsTokenExpired(token string) bool {
	exp, ok := TokenExpiry(token)
	if !ok {
		return true
	}
	return exp.Before(time.Now())
}
