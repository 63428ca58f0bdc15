package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cinefeed/cinefeed/internal/api/domain"
	"github.com/cinefeed/cinefeed/pkg/cryptox"
	"github.com/cinefeed/cinefeed/pkg/jwtx"
	"github.com/cinefeed/cinefeed/pkg/slogx"
)

// AuthService wires the user directory to the token issuer. It owns the
// register/login/refresh/logout flows.
type AuthService struct {
	Users  *UserService
	Tokens *jwtx.Service
}

// WeakPasswordError carries the individual strength failures so the HTTP
// layer can report all of them.
type WeakPasswordError struct {
	Failures []string
	Score    int
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("%v: %d rule(s) failed", ErrWeakPassword, len(e.Failures))
}

func (e *WeakPasswordError) Unwrap() error { return ErrWeakPassword }

// Register creates a new account. It returns the created user's public
// record only; no tokens are issued, clients log in explicitly.
func (s *AuthService) Register(ctx context.Context, p CreateUserParams) (domain.User, error) {
	if res := cryptox.ValidateStrength(p.Password); !res.Valid {
		return domain.User{}, &WeakPasswordError{Failures: res.Errors, Score: res.Score}
	}

	u, err := s.Users.Create(ctx, p)
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered",
		slog.String("user_id", u.ID),
		slog.String("username", u.Username),
	)
	return u, nil
}

// Login exchanges credentials for the user record plus an access/refresh
// token pair, stamping last_login on the way through. All credential
// failures surface as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, jwtx.TokenPair, error) {
	u, err := s.Users.GetByCredentials(ctx, email, password)
	if err != nil {
		return domain.User{}, jwtx.TokenPair{}, err
	}

	pair, err := s.Tokens.GenerateTokenPair(jwtx.Identity{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
	})
	if err != nil {
		return domain.User{}, jwtx.TokenPair{}, err
	}

	if err := s.Users.UpdateLastLogin(ctx, u.ID); err != nil {
		// Login still succeeds; the stamp is best-effort.
		slogx.FromContext(ctx).Warn("failed to stamp last_login",
			slog.String("user_id", u.ID), slog.Any("error", err))
	}

	slogx.FromContext(ctx).Info("user logged in", slog.String("user_id", u.ID))
	return u, pair, nil
}

// RefreshAccessToken mints a fresh access token for an identity that already
// passed the refresh gate. No rotation: the refresh token stays valid until
// its own expiry.
func (s *AuthService) RefreshAccessToken(ctx context.Context, id jwtx.Identity) (string, error) {
	token, err := s.Tokens.GenerateAccessToken(id)
	if err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("access token refreshed", slog.String("user_id", id.UserID))
	return token, nil
}

// Logout confirms the account exists. Tokens are stateless and stay valid
// until expiry; clients discard them on logout.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("user logged out", slog.String("user_id", userID))
	return nil
}
