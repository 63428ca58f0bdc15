package http

import (
	"net/http"
	"strconv"

	"github.com/cinefeed/cinefeed/internal/api/domain"
	"github.com/cinefeed/cinefeed/internal/api/service"
	"github.com/cinefeed/cinefeed/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

type updateProfileRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=30,alphanum"`
	FirstName *string `json:"firstName" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,max=50"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
}

type updatePreferencesRequest struct {
	FavoriteGenres    []int    `json:"favoriteGenres" validate:"dive,gt=0"`
	FavoriteActors    []int    `json:"favoriteActors" validate:"dive,gt=0"`
	FavoriteDirectors []int    `json:"favoriteDirectors" validate:"dive,gt=0"`
	MinRating         float64  `json:"minRating" validate:"gte=0,lte=10"`
	Languages         []string `json:"languages" validate:"dive,len=2"`
}

// HandleGetProfile returns the authenticated user's profile.
//
//	@Summary		Get own profile
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Router			/v1/users/profile [get].
func (h *UsersHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(httpx.CtxKeyUser).(domain.User)
	if !ok {
		errUnauthorized.WriteError(w)
		return
	}

	respond(w, http.StatusOK, "Profile retrieved", map[string]any{
		"user": toUserResponse(user),
	})
}

// HandleUpdateProfile applies a partial profile update.
//
//	@Summary		Update own profile
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		updateProfileRequest	true	"Fields to change"
//	@Success		200		{object}	map[string]any
//	@Failure		409		{object}	apiError	"Username already taken"
//	@Router			/v1/users/profile [patch].
func (h *UsersHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.UserService.UpdateProfile(r.Context(), httpx.UserIDFromCtx(r.Context()), domain.ProfileUpdate{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Profile updated", map[string]any{
		"user": toUserResponse(user),
	})
}

// HandleUpdatePreferences replaces the recommendation preferences.
//
//	@Summary		Replace recommendation preferences
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		updatePreferencesRequest	true	"New preferences"
//	@Success		200		{object}	map[string]any
//	@Router			/v1/users/preferences [put].
func (h *UsersHandler) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req updatePreferencesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.UserService.UpdatePreferences(r.Context(), httpx.UserIDFromCtx(r.Context()), domain.Preferences{
		FavoriteGenres:    req.FavoriteGenres,
		FavoriteActors:    req.FavoriteActors,
		FavoriteDirectors: req.FavoriteDirectors,
		MinRating:         req.MinRating,
		Languages:         req.Languages,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Preferences updated", map[string]any{
		"user": toUserResponse(user),
	})
}

// HandleAddFavorite marks a movie as a favorite. Idempotent.
//
//	@Summary		Add a favorite movie
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			movieId	path		int	true	"TMDB movie id"
//	@Success		200		{object}	map[string]any
//	@Router			/v1/users/favorites/{movieId} [post].
func (h *UsersHandler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	movieID, ok := moviePathValue(w, r, "movieId")
	if !ok {
		return
	}

	userID := httpx.UserIDFromCtx(r.Context())
	if err := h.UserService.AddFavorite(r.Context(), userID, movieID); err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := h.UserService.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Favorite added", map[string]any{
		"favorites": orEmptyInts(user.Favorites),
	})
}

// HandleRemoveFavorite unmarks a favorite. Idempotent.
//
//	@Summary		Remove a favorite movie
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			movieId	path		int	true	"TMDB movie id"
//	@Success		200		{object}	map[string]any
//	@Router			/v1/users/favorites/{movieId} [delete].
func (h *UsersHandler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	movieID, ok := moviePathValue(w, r, "movieId")
	if !ok {
		return
	}

	userID := httpx.UserIDFromCtx(r.Context())
	if err := h.UserService.RemoveFavorite(r.Context(), userID, movieID); err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := h.UserService.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Favorite removed", map[string]any{
		"favorites": orEmptyInts(user.Favorites),
	})
}

// moviePathValue parses a positive integer movie id path segment, writing
// the error response itself on failure.
func moviePathValue(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		(&apiError{
			StatusCode: http.StatusBadRequest,
			Code:       "invalid_movie_id",
			Message:    "The movie id must be a positive integer.",
		}).WriteError(w)
		return 0, false
	}
	return id, true
}
