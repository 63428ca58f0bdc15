package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cinefeed/cinefeed/internal/api/service"
	"github.com/cinefeed/cinefeed/internal/api/store/drivers/sqlite"
	"github.com/cinefeed/cinefeed/internal/api/tmdb"
	"github.com/cinefeed/cinefeed/pkg/cryptox"
	"github.com/cinefeed/cinefeed/pkg/jwtx"
	"github.com/cinefeed/cinefeed/pkg/slogx"
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

type testEnv struct {
	router *Router
	store  *sqlite.Store
	tokens *jwtx.Service
}

func newTestEnv(t *testing.T, tokenCfg jwtx.Config) *testEnv {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	if len(tokenCfg.AccessSecret) == 0 {
		tokenCfg = jwtx.Config{
			AccessSecret:  []byte("access-secret-for-tests"),
			RefreshSecret: []byte("refresh-secret-for-tests"),
			Issuer:        "cinefeed",
			Audience:      "cinefeed-users",
		}
	}
	tokens, err := jwtx.NewService(tokenCfg)
	require.NoError(t, err)

	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(tmdb.Page{Page: 1, Results: []tmdb.Movie{{ID: 1, Title: "Stub"}}})
	}))
	t.Cleanup(fake.Close)

	logger := slogx.New(slogx.Config{Service: "test", Format: "text", Level: "error"})

	users := &service.UserService{Store: st}
	router := NewRouter(tokens, "test", st, logger)
	router.UserService = users
	router.AuthService = &service.AuthService{Users: users, Tokens: tokens}
	router.MovieService = &service.MovieService{
		TMDB:  tmdb.NewClient(fake.URL, "test-key"),
		Users: users,
	}
	router.WatchlistService = &service.WatchlistService{Store: st}
	router.RatingService = &service.RatingService{Store: st}
	router.ApplyRoutes()

	return &testEnv{router: router, store: st, tokens: tokens}
}

func (e *testEnv) register(t *testing.T, username, email string) {
	t.Helper()

	_, err := e.router.AuthService.Register(context.Background(), service.CreateUserParams{
		Username: username,
		Email:    email,
		Password: "Sup3r$ecret",
	})
	require.NoError(t, err)
}

func (e *testEnv) login(t *testing.T, email string) (string, jwtx.TokenPair) {
	t.Helper()

	u, pair, err := e.router.AuthService.Login(context.Background(), email, "Sup3r$ecret")
	require.NoError(t, err)
	return u.ID, pair
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

func TestRequireAuthRejectsMissingAndGarbageTokens(t *testing.T) {
	env := newTestEnv(t, jwtx.Config{})

	w, body := doJSON(t, env.router, http.MethodGet, "/v1/auth/profile", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, false, body["success"])
	require.Equal(t, "unauthorized", body["error"])

	w, _ = doJSON(t, env.router, http.MethodGet, "/v1/auth/profile", "not.a.jwt", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthExpiredTokenDistinctCode(t *testing.T) {
	env := newTestEnv(t, jwtx.Config{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		AccessTTL:     time.Nanosecond,
		Issuer:        "cinefeed",
		Audience:      "cinefeed-users",
	})

	env.register(t, "alice", "alice@example.com")
	_, pair := env.login(t, "alice@example.com")

	time.Sleep(5 * time.Millisecond)

	w, body := doJSON(t, env.router, http.MethodGet, "/v1/auth/profile", pair.AccessToken, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "token_expired", body["error"])
}

// A valid token stops working the moment the account is deactivated.
func TestRequireAuthDeactivatedAccount(t *testing.T) {
	env := newTestEnv(t, jwtx.Config{})
	ctx := context.Background()

	env.register(t, "bob", "bob@example.com")
	userID, pair := env.login(t, "bob@example.com")

	w, _ := doJSON(t, env.router, http.MethodGet, "/v1/auth/profile", pair.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, env.store.Users().DeactivateUser(ctx, userID))

	w, body := doJSON(t, env.router, http.MethodGet, "/v1/auth/profile", pair.AccessToken, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "unauthorized", body["error"])
}

// Optional-auth endpoints serve anonymous requests and swallow bad tokens.
func TestOptionalAuthGraceful(t *testing.T) {
	env := newTestEnv(t, jwtx.Config{})

	w, _ := doJSON(t, env.router, http.MethodGet, "/v1/movies/popular", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, env.router, http.MethodGet, "/v1/movies/popular", "garbage-token", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshGateRejectsAccessToken(t *testing.T) {
	env := newTestEnv(t, jwtx.Config{})

	env.register(t, "carol", "carol@example.com")
	_, pair := env.login(t, "carol@example.com")

	// An access token in the refresh slot must be rejected.
	w, body := doJSON(t, env.router, http.MethodPost, "/v1/auth/refresh", "",
		`{"refreshToken":"`+pair.AccessToken+`"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "invalid_refresh_token", body["error"])
}

func TestRefreshGateDeactivatedAccount(t *testing.T) {
	env := newTestEnv(t, jwtx.Config{})
	ctx := context.Background()

	env.register(t, "dave", "dave@example.com")
	userID, pair := env.login(t, "dave@example.com")

	require.NoError(t, env.store.Users().DeactivateUser(ctx, userID))

	w, _ := doJSON(t, env.router, http.MethodPost, "/v1/auth/refresh", "",
		`{"refreshToken":"`+pair.RefreshToken+`"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidationReportsAllViolations(t *testing.T) {
	env := newTestEnv(t, jwtx.Config{})

	w, body := doJSON(t, env.router, http.MethodPost, "/v1/auth/register", "",
		`{"username":"x!","email":"not-an-email","password":"whatever"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "validation_failed", body["error"])

	details, ok := body["details"].([]any)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(details), 2) // username and email both reported
}
