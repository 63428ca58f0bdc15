package service

import (
	"context"
	"errors"
	"strings"

	"github.com/cinefeed/cinefeed/internal/api/domain"
	"github.com/cinefeed/cinefeed/internal/api/store"
	"github.com/cinefeed/cinefeed/pkg/cryptox"
	"github.com/cinefeed/cinefeed/pkg/idx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrWeakPassword       = errors.New("weak_password")
	ErrAccountDisabled    = errors.New("account_disabled")
)

// dummyHash keeps the credentials path constant-time when the email does not
// exist: we verify the supplied password against it and discard the result.
const dummyHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// UserService is the user directory. Password hashing happens here, at the
// persistence boundary; callers above pass plaintext and never see hashes.
type UserService struct {
	Store store.Store
}

type CreateUserParams struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Create registers a new user record. The email is normalised to lowercase
// before storage so lookups are case-insensitive. A username or email already
// in use yields store.ErrAlreadyExists.
func (s *UserService) Create(ctx context.Context, p CreateUserParams) (domain.User, error) {
	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     p.Username,
		Email:        strings.ToLower(strings.TrimSpace(p.Email)),
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		IsActive:     true,
		Preferences: domain.Preferences{
			Languages: []string{"en"},
		},
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}

	// Re-read through the default path so the returned record carries DB
	// defaults and no hash.
	return s.Store.Users().GetUserByID(ctx, u.ID)
}

func (s *UserService) GetByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.Store.Users().GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// GetByCredentials resolves an email + password to an active user in one
// call. Unknown email, wrong password and deactivated account all fail with
// ErrInvalidCredentials so callers cannot tell them apart.
func (s *UserService) GetByCredentials(ctx context.Context, email, password string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByEmailWithHash(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, dummyHash)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if !u.IsActive {
		return domain.User{}, ErrInvalidCredentials
	}

	u.PasswordHash = ""
	return u, nil
}

func (s *UserService) UpdateLastLogin(ctx context.Context, userID string) error {
	return s.Store.Users().UpdateLastLogin(ctx, userID)
}

// UpdateProfile applies the non-nil fields and returns the fresh record.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (domain.User, error) {
	if err := s.Store.Users().UpdateProfile(ctx, userID, upd); err != nil {
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, userID)
}

// UpdatePreferences replaces the recommendation preferences wholesale.
func (s *UserService) UpdatePreferences(ctx context.Context, userID string, p domain.Preferences) (domain.User, error) {
	if len(p.Languages) == 0 {
		p.Languages = []string{"en"}
	}
	if err := s.Store.Users().UpdatePreferences(ctx, userID, p); err != nil {
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, userID)
}

func (s *UserService) AddFavorite(ctx context.Context, userID string, movieID int) error {
	return s.Store.Users().AddFavorite(ctx, userID, movieID)
}

func (s *UserService) RemoveFavorite(ctx context.Context, userID string, movieID int) error {
	return s.Store.Users().RemoveFavorite(ctx, userID, movieID)
}

func (s *UserService) Deactivate(ctx context.Context, userID string) error {
	return s.Store.Users().DeactivateUser(ctx, userID)
}
