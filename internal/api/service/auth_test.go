package service_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cinefeed/cinefeed/internal/api/service"
	"github.com/cinefeed/cinefeed/internal/api/store"
	"github.com/cinefeed/cinefeed/internal/api/store/drivers/sqlite"
	"github.com/cinefeed/cinefeed/pkg/cryptox"
	"github.com/cinefeed/cinefeed/pkg/jwtx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "pepper")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newAuthService(t *testing.T) (*service.AuthService, *sqlite.Store) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	tokens, err := jwtx.NewService(jwtx.Config{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		Issuer:        "cinefeed",
		Audience:      "cinefeed-users",
	})
	require.NoError(t, err)

	return &service.AuthService{
		Users:  &service.UserService{Store: st},
		Tokens: tokens,
	}, st
}

func register(t *testing.T, auth *service.AuthService, username, email string) {
	t.Helper()

	_, err := auth.Register(context.Background(), service.CreateUserParams{
		Username: username,
		Email:    email,
		Password: "Sup3r$ecret",
	})
	require.NoError(t, err)
}

func TestRegisterReturnsUserWithoutTokens(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	u, err := auth.Register(ctx, service.CreateUserParams{
		Username:  "alice",
		Email:     "Alice@Example.COM",
		Password:  "Sup3r$ecret",
		FirstName: "Alice",
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "alice@example.com", u.Email) // normalised
	require.Empty(t, u.PasswordHash)
	require.True(t, u.IsActive)
	require.Equal(t, []string{"en"}, u.Preferences.Languages)
}

func TestRegisterWeakPassword(t *testing.T) {
	auth, _ := newAuthService(t)

	_, err := auth.Register(context.Background(), service.CreateUserParams{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "short",
	})
	require.ErrorIs(t, err, service.ErrWeakPassword)

	var weak *service.WeakPasswordError
	require.ErrorAs(t, err, &weak)
	require.NotEmpty(t, weak.Failures)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth, _ := newAuthService(t)

	register(t, auth, "carol", "carol@example.com")

	_, err := auth.Register(context.Background(), service.CreateUserParams{
		Username: "carol2",
		Email:    "carol@example.com",
		Password: "Sup3r$ecret",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

// Concurrent registrations with the same email: exactly one wins, the rest
// see the conflict error from the unique index.
func TestRegisterConcurrentSameEmail(t *testing.T) {
	auth, _ := newAuthService(t)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = auth.Register(context.Background(), service.CreateUserParams{
				Username: "dave",
				Email:    "dave@example.com",
				Password: "Sup3r$ecret",
			})
		}(i)
	}
	wg.Wait()

	var won int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, store.ErrAlreadyExists)
		}
	}
	require.Equal(t, 1, won)
}

func TestLoginIssuesTokensAndStampsLastLogin(t *testing.T) {
	auth, st := newAuthService(t)
	ctx := context.Background()

	register(t, auth, "erin", "erin@example.com")

	u, pair, err := auth.Login(ctx, "erin@example.com", "Sup3r$ecret")
	require.NoError(t, err)
	require.Empty(t, u.PasswordHash)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := auth.Tokens.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.UserID())
	require.Equal(t, "erin@example.com", claims.Email)

	stamped, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stamped.LastLogin)
	require.WithinDuration(t, time.Now(), *stamped.LastLogin, 5*time.Second)
}

// Unknown email, wrong password and deactivated account are
// indistinguishable to the caller.
func TestLoginUniformFailure(t *testing.T) {
	auth, st := newAuthService(t)
	ctx := context.Background()

	register(t, auth, "frank", "frank@example.com")

	_, _, err := auth.Login(ctx, "nobody@example.com", "Sup3r$ecret")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = auth.Login(ctx, "frank@example.com", "WrongPass1!")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	u, err := st.Users().GetUserByEmail(ctx, "frank@example.com")
	require.NoError(t, err)
	require.NoError(t, st.Users().DeactivateUser(ctx, u.ID))

	_, _, err = auth.Login(ctx, "frank@example.com", "Sup3r$ecret")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRefreshAccessToken(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	register(t, auth, "grace", "grace@example.com")
	u, pair, err := auth.Login(ctx, "grace@example.com", "Sup3r$ecret")
	require.NoError(t, err)

	claims, err := auth.Tokens.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	access, err := auth.RefreshAccessToken(ctx, jwtx.Identity{
		UserID:   claims.UserID(),
		Email:    claims.Email,
		Username: claims.Username,
	})
	require.NoError(t, err)

	got, err := auth.Tokens.VerifyAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID())

	// The minted token is an access token, never a refresh one.
	_, err = auth.Tokens.VerifyRefreshToken(access)
	require.ErrorIs(t, err, jwtx.ErrInvalid)
}

func TestLogoutUnknownUser(t *testing.T) {
	auth, _ := newAuthService(t)

	err := auth.Logout(context.Background(), "01K0000000000000000000000X")
	require.ErrorIs(t, err, store.ErrNotFound)
}
