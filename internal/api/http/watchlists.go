package http

import (
	"net/http"
	"time"

	"github.com/cinefeed/cinefeed/internal/api/domain"
	"github.com/cinefeed/cinefeed/internal/api/service"
	"github.com/cinefeed/cinefeed/pkg/httpx"
)

type WatchlistsHandler struct {
	WatchlistService *service.WatchlistService
}

type watchlistRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type watchlistMovieRequest struct {
	MovieID int `json:"movieId" validate:"required,gt=0"`
}

type watchlistResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Movies    []int     `json:"movies"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toWatchlistResponse(wl domain.Watchlist) watchlistResponse {
	return watchlistResponse{
		ID:        wl.ID,
		Name:      wl.Name,
		Movies:    orEmptyInts(wl.Movies),
		CreatedAt: wl.CreatedAt,
		UpdatedAt: wl.UpdatedAt,
	}
}

// HandleCreate makes a new empty watchlist.
//
//	@Summary	Create a watchlist
//	@Tags		Watchlists
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		watchlistRequest	true	"List name"
//	@Success	201		{object}	map[string]any
//	@Router		/v1/watchlists [post].
func (h *WatchlistsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req watchlistRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	wl, err := h.WatchlistService.Create(r.Context(), httpx.UserIDFromCtx(r.Context()), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusCreated, "Watchlist created", map[string]any{
		"watchlist": toWatchlistResponse(wl),
	})
}

// HandleList returns all of the caller's watchlists.
//
//	@Summary	List own watchlists
//	@Tags		Watchlists
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Router		/v1/watchlists [get].
func (h *WatchlistsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	lists, err := h.WatchlistService.List(r.Context(), httpx.UserIDFromCtx(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]watchlistResponse, 0, len(lists))
	for _, wl := range lists {
		out = append(out, toWatchlistResponse(wl))
	}
	respond(w, http.StatusOK, "Watchlists", map[string]any{"watchlists": out})
}

// HandleGet returns one of the caller's watchlists.
//
//	@Summary	Get a watchlist
//	@Tags		Watchlists
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Watchlist id"
//	@Success	200	{object}	map[string]any
//	@Failure	404	{object}	apiError	"Not found or not owned"
//	@Router		/v1/watchlists/{id} [get].
func (h *WatchlistsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	wl, err := h.WatchlistService.Get(r.Context(), httpx.UserIDFromCtx(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Watchlist", map[string]any{
		"watchlist": toWatchlistResponse(wl),
	})
}

// HandleRename renames one of the caller's watchlists.
//
//	@Summary	Rename a watchlist
//	@Tags		Watchlists
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Watchlist id"
//	@Param		body	body		watchlistRequest	true	"New name"
//	@Success	200		{object}	map[string]any
//	@Router		/v1/watchlists/{id} [put].
func (h *WatchlistsHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req watchlistRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	wl, err := h.WatchlistService.Rename(r.Context(), httpx.UserIDFromCtx(r.Context()), r.PathValue("id"), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Watchlist renamed", map[string]any{
		"watchlist": toWatchlistResponse(wl),
	})
}

// HandleDelete removes one of the caller's watchlists.
//
//	@Summary	Delete a watchlist
//	@Tags		Watchlists
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string	true	"Watchlist id"
//	@Success	200	{object}	map[string]any
//	@Router		/v1/watchlists/{id} [delete].
func (h *WatchlistsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.WatchlistService.Delete(r.Context(), httpx.UserIDFromCtx(r.Context()), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Watchlist deleted", nil)
}

// HandleAddMovie adds a movie id to the list.
//
//	@Summary	Add a movie to a watchlist
//	@Tags		Watchlists
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Watchlist id"
//	@Param		body	body		watchlistMovieRequest	true	"Movie id"
//	@Success	200		{object}	map[string]any
//	@Router		/v1/watchlists/{id}/movies [post].
func (h *WatchlistsHandler) HandleAddMovie(w http.ResponseWriter, r *http.Request) {
	var req watchlistMovieRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	wl, err := h.WatchlistService.AddMovie(r.Context(), httpx.UserIDFromCtx(r.Context()), r.PathValue("id"), req.MovieID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Movie added", map[string]any{
		"watchlist": toWatchlistResponse(wl),
	})
}

// HandleRemoveMovie removes a movie id from the list.
//
//	@Summary	Remove a movie from a watchlist
//	@Tags		Watchlists
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id		path		string	true	"Watchlist id"
//	@Param		movieId	path		int		true	"TMDB movie id"
//	@Success	200		{object}	map[string]any
//	@Router		/v1/watchlists/{id}/movies/{movieId} [delete].
func (h *WatchlistsHandler) HandleRemoveMovie(w http.ResponseWriter, r *http.Request) {
	movieID, ok := moviePathValue(w, r, "movieId")
	if !ok {
		return
	}

	wl, err := h.WatchlistService.RemoveMovie(r.Context(), httpx.UserIDFromCtx(r.Context()), r.PathValue("id"), movieID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Movie removed", map[string]any{
		"watchlist": toWatchlistResponse(wl),
	})
}
