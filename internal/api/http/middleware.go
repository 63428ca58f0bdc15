package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cinefeed/cinefeed/internal/api/service"
	"github.com/cinefeed/cinefeed/pkg/httpx"
	"github.com/cinefeed/cinefeed/pkg/jwtx"
)

// AuthMiddleware builds the request authentication middlewares. All of them
// put verified claims and the user id into the request context; the full
// user record is attached only by the variants that load it.
type AuthMiddleware struct {
	Tokens *jwtx.Service
	Users  *service.UserService
}

// Require verifies the bearer access token, loads the user and rejects
// deactivated accounts. Handlers behind it can rely on CtxKeyUserID,
// CtxKeyClaims and CtxKeyUser being set.
func (m *AuthMiddleware) Require() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, apiErr := m.verifyRequest(r)
			if apiErr != nil {
				apiErr.WriteError(w)
				return
			}

			user, err := m.Users.GetByID(r.Context(), claims.UserID())
			if err != nil {
				// Unknown user id inside a validly signed token still reads
				// as unauthorized, not as a 404.
				errUnauthorized.WriteError(w)
				return
			}
			if !user.IsActive {
				errUnauthorized.WriteError(w)
				return
			}

			ctx := withIdentity(r.Context(), claims)
			ctx = context.WithValue(ctx, httpx.CtxKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLite verifies the token only, skipping the directory load. For hot
// paths that need identity but not freshness of the isActive flag.
func (m *AuthMiddleware) RequireLite() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, apiErr := m.verifyRequest(r)
			if apiErr != nil {
				apiErr.WriteError(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), claims)))
		})
	}
}

// Optional attaches identity when a valid token is present and proceeds
// anonymously otherwise. A bad or expired token is treated the same as no
// token at all.
func (m *AuthMiddleware) Optional() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, apiErr := m.verifyRequest(r)
			if apiErr != nil {
				next.ServeHTTP(w, r)
				return
			}

			if user, err := m.Users.GetByID(r.Context(), claims.UserID()); err != nil || !user.IsActive {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), claims)))
		})
	}
}

// RefreshGate authenticates the refresh flow: it reads refreshToken from the
// JSON body, verifies it against the refresh secret, and requires the
// account to still be active. The body is consumed; the handler works from
// the context identity.
func (m *AuthMiddleware) RefreshGate() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				RefreshToken string `json:"refreshToken"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
				errInvalidRefresh.WriteError(w)
				return
			}

			claims, err := m.Tokens.VerifyRefreshToken(body.RefreshToken)
			if err != nil {
				errInvalidRefresh.WriteError(w)
				return
			}

			user, err := m.Users.GetByID(r.Context(), claims.UserID())
			if err != nil || !user.IsActive {
				errInvalidRefresh.WriteError(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), claims)))
		})
	}
}

// verifyRequest extracts and verifies the bearer token, mapping failures to
// the wire errors. Expired tokens get their own code so clients know to
// refresh.
func (m *AuthMiddleware) verifyRequest(r *http.Request) (jwtx.Claims, *apiError) {
	token := jwtx.ExtractTokenFromHeader(r.Header.Get("Authorization"))
	if token == "" {
		return jwtx.Claims{}, errUnauthorized
	}

	claims, err := m.Tokens.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return jwtx.Claims{}, errTokenExpired
		}
		return jwtx.Claims{}, errUnauthorized
	}

	return claims, nil
}

func withIdentity(ctx context.Context, claims jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, httpx.CtxKeyClaims, claims)
	return context.WithValue(ctx, httpx.CtxKeyUserID, claims.UserID())
}

// claimsFromCtx returns the verified claims for the request, if any.
func claimsFromCtx(ctx context.Context) (jwtx.Claims, bool) {
	claims, ok := ctx.Value(httpx.CtxKeyClaims).(jwtx.Claims)
	return claims, ok
}
