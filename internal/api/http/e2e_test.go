package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cinefeed/cinefeed/pkg/jwtx"
)

// Full session lifecycle over the real router: register, log in, use the
// access token, confirm token type isolation, refresh, and use the new
// access token.
func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t, jwtx.Config{})

	// Register. The response carries the profile but no tokens.
	w, body := doJSON(t, env.router, http.MethodPost, "/v1/auth/register", "",
		`{"username":"erin","email":"Erin@Example.com","password":"Sup3r$ecret","firstName":"Erin"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	user := data["user"].(map[string]any)
	require.Equal(t, "erin@example.com", user["email"])
	require.NotContains(t, data, "tokens")
	require.NotContains(t, w.Body.String(), "passwordHash")

	// Log in with the same credentials (email case-insensitive).
	w, body = doJSON(t, env.router, http.MethodPost, "/v1/auth/login", "",
		`{"email":"ERIN@example.com","password":"Sup3r$ecret"}`)
	require.Equal(t, http.StatusOK, w.Code)

	data = body["data"].(map[string]any)
	tokens := data["tokens"].(map[string]any)
	access := tokens["accessToken"].(string)
	refresh := tokens["refreshToken"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	require.NotEqual(t, access, refresh)

	// The access token opens the profile endpoints.
	w, body = doJSON(t, env.router, http.MethodGet, "/v1/auth/profile", access, "")
	require.Equal(t, http.StatusOK, w.Code)
	user = body["data"].(map[string]any)["user"].(map[string]any)
	require.Equal(t, "erin", user["username"])
	require.NotNil(t, user["lastLogin"])

	// The refresh token does not: type isolation holds at the HTTP surface.
	w, _ = doJSON(t, env.router, http.MethodGet, "/v1/auth/profile", refresh, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Refresh mints a new access token.
	w, body = doJSON(t, env.router, http.MethodPost, "/v1/auth/refresh", "",
		`{"refreshToken":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	newAccess := body["data"].(map[string]any)["accessToken"].(string)
	require.NotEmpty(t, newAccess)

	// And the minted token works.
	w, _ = doJSON(t, env.router, http.MethodGet, "/v1/users/profile", newAccess, "")
	require.Equal(t, http.StatusOK, w.Code)

	// Logout succeeds with a valid access token.
	w, _ = doJSON(t, env.router, http.MethodPost, "/v1/auth/logout", newAccess, "")
	require.Equal(t, http.StatusOK, w.Code)
}

// A second register with the same email conflicts, and the anti-enumeration
// login error is identical for unknown email and wrong password.
func TestRegisterConflictAndLoginUniformity(t *testing.T) {
	env := newTestEnv(t, jwtx.Config{})

	w, _ := doJSON(t, env.router, http.MethodPost, "/v1/auth/register", "",
		`{"username":"frank","email":"frank@example.com","password":"Sup3r$ecret"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := doJSON(t, env.router, http.MethodPost, "/v1/auth/register", "",
		`{"username":"frank2","email":"frank@example.com","password":"Sup3r$ecret"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "already_exists", body["error"])

	w1, body1 := doJSON(t, env.router, http.MethodPost, "/v1/auth/login", "",
		`{"email":"nobody@example.com","password":"Sup3r$ecret"}`)
	w2, body2 := doJSON(t, env.router, http.MethodPost, "/v1/auth/login", "",
		`{"email":"frank@example.com","password":"WrongPass1!"}`)

	require.Equal(t, http.StatusUnauthorized, w1.Code)
	require.Equal(t, http.StatusUnauthorized, w2.Code)
	require.Equal(t, body1["error"], body2["error"])
	require.Equal(t, body1["message"], body2["message"])
}

func TestWeakPasswordReportsAllRules(t *testing.T) {
	env := newTestEnv(t, jwtx.Config{})

	w, body := doJSON(t, env.router, http.MethodPost, "/v1/auth/register", "",
		`{"username":"grace","email":"grace@example.com","password":"abc"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "weak_password", body["error"])

	details := body["details"].(map[string]any)
	failures := details["errors"].([]any)
	require.Len(t, failures, 4) // length, uppercase, digit, symbol
	require.Equal(t, float64(20), details["score"])
}

func TestWatchlistAndRatingRoundTrip(t *testing.T) {
	env := newTestEnv(t, jwtx.Config{})

	env.register(t, "henry", "henry@example.com")
	_, pair := env.login(t, "henry@example.com")
	access := pair.AccessToken

	// Create a list and add a movie.
	w, body := doJSON(t, env.router, http.MethodPost, "/v1/watchlists", access,
		`{"name":"Weekend"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	listID := body["data"].(map[string]any)["watchlist"].(map[string]any)["id"].(string)

	w, body = doJSON(t, env.router, http.MethodPost, "/v1/watchlists/"+listID+"/movies", access,
		`{"movieId":603}`)
	require.Equal(t, http.StatusOK, w.Code)
	movies := body["data"].(map[string]any)["watchlist"].(map[string]any)["movies"].([]any)
	require.Len(t, movies, 1)

	// Rate a movie, then hit the conflict on re-submit.
	w, _ = doJSON(t, env.router, http.MethodPost, "/v1/movies/603/ratings", access,
		`{"rating":9}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, body = doJSON(t, env.router, http.MethodPost, "/v1/movies/603/ratings", access,
		`{"rating":5}`)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "rating_already_exists", body["error"])

	// The update endpoint overwrites.
	w, body = doJSON(t, env.router, http.MethodPut, "/v1/movies/603/ratings", access,
		`{"rating":10,"review":"Rewatched. Better than I remembered."}`)
	require.Equal(t, http.StatusOK, w.Code)
	rating := body["data"].(map[string]any)["rating"].(map[string]any)
	require.Equal(t, float64(10), rating["rating"])

	// Ratings are publicly listable without a token.
	w, body = doJSON(t, env.router, http.MethodGet, "/v1/movies/603/ratings", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	ratings := body["data"].(map[string]any)["ratings"].([]any)
	require.Len(t, ratings, 1)

	// Writes require a token.
	w, _ = doJSON(t, env.router, http.MethodPost, "/v1/movies/603/ratings", "",
		`{"rating":1}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, jwtx.Config{})

	w, _ := doJSON(t, env.router, http.MethodGet, "/livez", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJSON(t, env.router, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", body["status"])
}
