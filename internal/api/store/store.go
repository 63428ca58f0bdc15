package store

import (
	"context"
	"errors"

	"github.com/cinefeed/cinefeed/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Watchlists() Watchlists
	Ratings() Ratings

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// A username or email collision yields ErrAlreadyExists; the unique
	// index is the final arbiter for concurrent registrations.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id. The password hash is not selected.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail returns a user by lowercase email. The password hash
	// is not selected.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByEmailWithHash is the one read that selects password_hash.
	// Reserved for the credentials path.
	GetUserByEmailWithHash(ctx context.Context, email string) (domain.User, error)

	// UpdateLastLogin stamps last_login and bumps updated_at.
	UpdateLastLogin(ctx context.Context, userID string) error

	// UpdateProfile applies the non-nil fields of upd.
	UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) error

	// UpdatePreferences replaces the user's recommendation preferences.
	UpdatePreferences(ctx context.Context, userID string, p domain.Preferences) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// AddFavorite is idempotent; re-adding an existing favorite is a no-op.
	AddFavorite(ctx context.Context, userID string, movieID int) error

	// RemoveFavorite removes a favorite; removing a missing one is a no-op.
	RemoveFavorite(ctx context.Context, userID string, movieID int) error

	// DeactivateUser flips is_active off. Users are never hard-deleted.
	DeactivateUser(ctx context.Context, userID string) error
}

type Watchlists interface {
	// CreateWatchlist inserts a new empty list (id is ULID).
	CreateWatchlist(ctx context.Context, wl domain.Watchlist) error

	// GetWatchlistByID returns the list with its movie ids.
	GetWatchlistByID(ctx context.Context, id string) (domain.Watchlist, error)

	// ListUserWatchlists returns all of a user's lists, newest first.
	ListUserWatchlists(ctx context.Context, userID string) ([]domain.Watchlist, error)

	// RenameWatchlist updates the name and bumps updated_at.
	RenameWatchlist(ctx context.Context, id, name string) error

	// DeleteWatchlist removes the list and cascades to its movie rows.
	DeleteWatchlist(ctx context.Context, id string) error

	// AddMovie is idempotent per (watchlist, movie).
	AddMovie(ctx context.Context, watchlistID string, movieID int) error

	// RemoveMovie removes one movie from the list.
	RemoveMovie(ctx context.Context, watchlistID string, movieID int) error
}

type Ratings interface {
	// CreateRating inserts a new rating row. A second row for the same
	// (user, movie) yields ErrAlreadyExists.
	CreateRating(ctx context.Context, r domain.Rating) error

	// GetUserRatingForMovie returns the user's rating record for a movie.
	GetUserRatingForMovie(ctx context.Context, userID string, movieID int) (domain.Rating, error)

	// ListMovieRatings returns all rating records for a movie, newest first.
	ListMovieRatings(ctx context.Context, movieID int) ([]domain.Rating, error)

	// UpdateRating overwrites the non-nil rating/review fields of the
	// existing (user, movie) record.
	UpdateRating(ctx context.Context, r domain.Rating) error
}
