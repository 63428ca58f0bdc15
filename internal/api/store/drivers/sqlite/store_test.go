package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cinefeed/cinefeed/internal/api/domain"
	"github.com/cinefeed/cinefeed/internal/api/store"
	"github.com/cinefeed/cinefeed/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	s, err := NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s *Store, username, email string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
		Preferences: domain.Preferences{
			FavoriteGenres: []int{28, 12},
			MinRating:      6,
			Languages:      []string{"en"},
		},
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsersCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seeded := seedUser(t, s, "alice", "alice@example.com")

	got, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, seeded.ID, got.ID)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, []int{28, 12}, got.Preferences.FavoriteGenres)
	require.Equal(t, []string{"en"}, got.Preferences.Languages)
	require.True(t, got.IsActive)
	require.Nil(t, got.LastLogin)

	// The default read never surfaces the hash.
	require.Empty(t, got.PasswordHash)

	withHash, err := s.Users().GetUserByEmailWithHash(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, withHash.PasswordHash)
}

func TestUsersDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "alice", "alice@example.com")

	dup := domain.User{
		ID:           idx.New().String(),
		Username:     "alice2",
		Email:        "alice@example.com",
		PasswordHash: "x",
		IsActive:     true,
	}
	err := s.Users().CreateUser(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	dup.Username = "alice"
	dup.Email = "other@example.com"
	err = s.Users().CreateUser(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsersNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.Users().UpdateLastLogin(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersUpdateProfileAndPreferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "bob", "bob@example.com")

	name := "Robert"
	require.NoError(t, s.Users().UpdateProfile(ctx, u.ID, domain.ProfileUpdate{FirstName: &name}))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Robert", got.FirstName)
	require.Equal(t, "User", got.LastName) // untouched

	prefs := domain.Preferences{
		FavoriteGenres:    []int{18},
		FavoriteDirectors: []int{1032},
		MinRating:         7.5,
		Languages:         []string{"en", "fr"},
	}
	require.NoError(t, s.Users().UpdatePreferences(ctx, u.ID, prefs))

	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, prefs, got.Preferences)
}

func TestUsersFavoritesIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "carol", "carol@example.com")

	require.NoError(t, s.Users().AddFavorite(ctx, u.ID, 550))
	require.NoError(t, s.Users().AddFavorite(ctx, u.ID, 550))
	require.NoError(t, s.Users().AddFavorite(ctx, u.ID, 680))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []int{550, 680}, got.Favorites)

	require.NoError(t, s.Users().RemoveFavorite(ctx, u.ID, 550))
	require.NoError(t, s.Users().RemoveFavorite(ctx, u.ID, 550))

	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []int{680}, got.Favorites)
}

func TestUsersDeactivate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "dave", "dave@example.com")

	require.NoError(t, s.Users().DeactivateUser(ctx, u.ID))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
}

func TestWatchlistsLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "erin", "erin@example.com")

	wl := domain.Watchlist{ID: idx.New().String(), UserID: u.ID, Name: "Weekend"}
	require.NoError(t, s.Watchlists().CreateWatchlist(ctx, wl))

	require.NoError(t, s.Watchlists().AddMovie(ctx, wl.ID, 603))
	require.NoError(t, s.Watchlists().AddMovie(ctx, wl.ID, 603)) // idempotent
	require.NoError(t, s.Watchlists().AddMovie(ctx, wl.ID, 604))

	got, err := s.Watchlists().GetWatchlistByID(ctx, wl.ID)
	require.NoError(t, err)
	require.Equal(t, "Weekend", got.Name)
	require.Equal(t, []int{603, 604}, got.Movies)

	require.NoError(t, s.Watchlists().RenameWatchlist(ctx, wl.ID, "Holiday"))
	require.NoError(t, s.Watchlists().RemoveMovie(ctx, wl.ID, 603))

	lists, err := s.Watchlists().ListUserWatchlists(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	require.Equal(t, "Holiday", lists[0].Name)
	require.Equal(t, []int{604}, lists[0].Movies)

	require.NoError(t, s.Watchlists().DeleteWatchlist(ctx, wl.ID))
	_, err = s.Watchlists().GetWatchlistByID(ctx, wl.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRatingsOnePerUserMovie(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "frank", "frank@example.com")

	score := 8
	rec := domain.Rating{
		ID:      idx.New().String(),
		UserID:  u.ID,
		MovieID: 27205,
		Rating:  &score,
	}
	require.NoError(t, s.Ratings().CreateRating(ctx, rec))

	rec.ID = idx.New().String()
	err := s.Ratings().CreateRating(ctx, rec)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestRatingsUpdateKeepsOtherField(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "grace", "grace@example.com")

	score := 7
	require.NoError(t, s.Ratings().CreateRating(ctx, domain.Rating{
		ID:      idx.New().String(),
		UserID:  u.ID,
		MovieID: 157336,
		Rating:  &score,
	}))

	review := "Stunning visuals."
	require.NoError(t, s.Ratings().UpdateRating(ctx, domain.Rating{
		UserID:  u.ID,
		MovieID: 157336,
		Review:  &review,
	}))

	got, err := s.Ratings().GetUserRatingForMovie(ctx, u.ID, 157336)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	require.Equal(t, 7, *got.Rating) // rating untouched by review-only update
	require.NotNil(t, got.Review)
	require.Equal(t, review, *got.Review)

	ratings, err := s.Ratings().ListMovieRatings(ctx, 157336)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
}
