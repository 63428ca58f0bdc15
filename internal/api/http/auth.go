package http

import (
	"net/http"
	"time"

	"github.com/cinefeed/cinefeed/internal/api/domain"
	"github.com/cinefeed/cinefeed/internal/api/service"
	"github.com/cinefeed/cinefeed/pkg/httpx"
	"github.com/cinefeed/cinefeed/pkg/jwtx"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

type registerRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// userResponse is the public shape of a user record. The password hash never
// appears here by construction.
type userResponse struct {
	ID              string              `json:"id"`
	Username        string              `json:"username"`
	Email           string              `json:"email"`
	FirstName       string              `json:"firstName,omitempty"`
	LastName        string              `json:"lastName,omitempty"`
	FullName        string              `json:"fullName"`
	Avatar          string              `json:"avatar,omitempty"`
	Preferences     preferencesResponse `json:"preferences"`
	Favorites       []int               `json:"favorites"`
	IsEmailVerified bool                `json:"isEmailVerified"`
	LastLogin       *time.Time          `json:"lastLogin,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

type preferencesResponse struct {
	FavoriteGenres    []int    `json:"favoriteGenres"`
	FavoriteActors    []int    `json:"favoriteActors"`
	FavoriteDirectors []int    `json:"favoriteDirectors"`
	MinRating         float64  `json:"minRating"`
	Languages         []string `json:"languages"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Avatar:    u.Avatar,
		Preferences: preferencesResponse{
			FavoriteGenres:    orEmptyInts(u.Preferences.FavoriteGenres),
			FavoriteActors:    orEmptyInts(u.Preferences.FavoriteActors),
			FavoriteDirectors: orEmptyInts(u.Preferences.FavoriteDirectors),
			MinRating:         u.Preferences.MinRating,
			Languages:         u.Preferences.Languages,
		},
		Favorites:       orEmptyInts(u.Favorites),
		IsEmailVerified: u.IsEmailVerified,
		LastLogin:       u.LastLogin,
		CreatedAt:       u.CreatedAt,
	}
}

func orEmptyInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

// HandleRegister creates a new account.
//
//	@Summary		Register a new user
//	@Description	Creates an account and returns the public profile. No tokens are issued; log in to obtain them.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		registerRequest	true	"Registration payload"
//	@Success		201		{object}	map[string]any
//	@Failure		400		{object}	apiError	"Validation or password strength failure"
//	@Failure		409		{object}	apiError	"Username or email already in use"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u, err := h.AuthService.Register(r.Context(), service.CreateUserParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusCreated, "User registered successfully", map[string]any{
		"user": toUserResponse(u),
	})
}

// HandleLogin exchanges credentials for a token pair.
//
//	@Summary		Log in
//	@Description	Verifies credentials and returns the user plus an access/refresh token pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	map[string]any
//	@Failure		401		{object}	apiError	"Invalid email or password"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u, pair, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.NoCache(w)
	respond(w, http.StatusOK, "Login successful", map[string]any{
		"user":   toUserResponse(u),
		"tokens": pair,
	})
}

// HandleRefresh mints a new access token. The refresh gate middleware has
// already verified the refresh token and the account.
//
//	@Summary		Refresh the access token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		object{refreshToken=string}	true	"Refresh token"
//	@Success		200		{object}	map[string]any
//	@Failure		401		{object}	apiError	"Invalid or expired refresh token"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromCtx(r.Context())
	if !ok {
		errInvalidRefresh.WriteError(w)
		return
	}

	access, err := h.AuthService.RefreshAccessToken(r.Context(), jwtx.Identity{
		UserID:   claims.UserID(),
		Email:    claims.Email,
		Username: claims.Username,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.NoCache(w)
	respond(w, http.StatusOK, "Token refreshed", map[string]any{
		"accessToken": access,
	})
}

// HandleLogout acknowledges a logout. Tokens are stateless; the client
// discards them.
//
//	@Summary		Log out
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		401	{object}	apiError
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromCtx(r.Context())
	if userID == "" {
		errUnauthorized.WriteError(w)
		return
	}

	if err := h.AuthService.Logout(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Logged out", nil)
}

// HandleProfile returns the authenticated user's record as loaded by the
// auth middleware.
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		401	{object}	apiError
//	@Router			/v1/auth/profile [get].
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(httpx.CtxKeyUser).(domain.User)
	if !ok {
		errUnauthorized.WriteError(w)
		return
	}

	respond(w, http.StatusOK, "Profile retrieved", map[string]any{
		"user": toUserResponse(user),
	})
}
