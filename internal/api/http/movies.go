package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cinefeed/cinefeed/internal/api/domain"
	"github.com/cinefeed/cinefeed/internal/api/service"
	"github.com/cinefeed/cinefeed/internal/api/tmdb"
	"github.com/cinefeed/cinefeed/pkg/httpx"
)

type MoviesHandler struct {
	MovieService  *service.MovieService
	RatingService *service.RatingService
}

type ratingResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	MovieID   int       `json:"movieId"`
	Rating    *int      `json:"rating,omitempty"`
	Review    *string   `json:"review,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toRatingResponse(rec domain.Rating) ratingResponse {
	return ratingResponse{
		ID:        rec.ID,
		UserID:    rec.UserID,
		MovieID:   rec.MovieID,
		Rating:    rec.Rating,
		Review:    rec.Review,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

type submitRatingRequest struct {
	Rating *int    `json:"rating" validate:"omitempty,gte=1,lte=10"`
	Review *string `json:"review" validate:"omitempty,max=1000"`
}

// HandleSearch proxies a title search.
//
//	@Summary	Search movies by title
//	@Tags		Movies
//	@Produce	json
//	@Param		query	query		string	true	"Title search text"
//	@Param		page	query		int		false	"Page number"
//	@Success	200		{object}	map[string]any
//	@Failure	502		{object}	apiError	"Metadata provider unavailable"
//	@Router		/v1/movies/search [get].
func (h *MoviesHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		(&apiError{
			StatusCode: http.StatusBadRequest,
			Code:       "missing_query",
			Message:    "The query parameter is required.",
		}).WriteError(w)
		return
	}

	page, err := h.MovieService.Search(r.Context(), query, intQuery(r, "page"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Search results", page)
}

// HandleFilter proxies a discover query with caller-supplied filters only.
//
//	@Summary	Filter movies
//	@Tags		Movies
//	@Produce	json
//	@Param		genres		query		string	false	"Comma-separated genre ids"
//	@Param		minRating	query		number	false	"Minimum vote average"
//	@Param		year		query		int		false	"Primary release year"
//	@Param		language	query		string	false	"Original language codes, comma-separated"
//	@Param		sortBy		query		string	false	"Provider sort key"
//	@Param		page		query		int		false	"Page number"
//	@Success	200			{object}	map[string]any
//	@Router		/v1/movies/filter [get].
func (h *MoviesHandler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	page, err := h.MovieService.Filter(r.Context(), discoverParamsFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Filter results", page)
}

// HandlePopular proxies the popularity chart.
//
//	@Summary	Popular movies
//	@Tags		Movies
//	@Produce	json
//	@Param		page	query		int	false	"Page number"
//	@Success	200		{object}	map[string]any
//	@Router		/v1/movies/popular [get].
func (h *MoviesHandler) HandlePopular(w http.ResponseWriter, r *http.Request) {
	page, err := h.MovieService.Popular(r.Context(), intQuery(r, "page"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Popular movies", page)
}

// HandleRecommendations runs a personalised discover query. Anonymous
// callers get the defaults-only result.
//
//	@Summary	Personalised recommendations
//	@Tags		Movies
//	@Produce	json
//	@Param		genres		query		string	false	"Comma-separated genre ids (overrides stored preferences)"
//	@Param		minRating	query		number	false	"Minimum vote average (overrides stored preference)"
//	@Param		page		query		int		false	"Page number"
//	@Success	200			{object}	map[string]any
//	@Router		/v1/movies/recommendations [get].
func (h *MoviesHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromCtx(r.Context())

	page, meta, err := h.MovieService.Recommendations(r.Context(), userID, discoverParamsFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Recommendations", map[string]any{
		"page":           page.Page,
		"results":        page.Results,
		"totalPages":     page.TotalPages,
		"totalResults":   page.TotalResults,
		"recommendation": meta,
	})
}

// HandleDetails proxies the movie detail record.
//
//	@Summary	Movie details
//	@Tags		Movies
//	@Produce	json
//	@Param		id	path		int	true	"TMDB movie id"
//	@Success	200	{object}	map[string]any
//	@Router		/v1/movies/{id} [get].
func (h *MoviesHandler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	movieID, ok := moviePathValue(w, r, "id")
	if !ok {
		return
	}

	details, err := h.MovieService.Details(r.Context(), movieID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Movie details", details)
}

// HandleGenres returns the provider's genre catalogue.
//
//	@Summary	Genre catalogue
//	@Tags		Movies
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Router		/v1/genres [get].
func (h *MoviesHandler) HandleGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.MovieService.Genres(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Genres", map[string]any{"genres": genres})
}

// HandleListRatings lists all rating records for a movie.
//
//	@Summary	List a movie's ratings
//	@Tags		Ratings
//	@Produce	json
//	@Param		id	path		int	true	"TMDB movie id"
//	@Success	200	{object}	map[string]any
//	@Router		/v1/movies/{id}/ratings [get].
func (h *MoviesHandler) HandleListRatings(w http.ResponseWriter, r *http.Request) {
	movieID, ok := moviePathValue(w, r, "id")
	if !ok {
		return
	}

	recs, err := h.RatingService.ForMovie(r.Context(), movieID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]ratingResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRatingResponse(rec))
	}
	respond(w, http.StatusOK, "Movie ratings", map[string]any{"ratings": out})
}

// HandleSubmitRating records the caller's rating and/or review for a movie.
//
//	@Summary	Submit a rating or review
//	@Tags		Ratings
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"TMDB movie id"
//	@Param		body	body		submitRatingRequest	true	"Rating and/or review"
//	@Success	201		{object}	map[string]any
//	@Failure	409		{object}	apiError	"Already rated or reviewed"
//	@Router		/v1/movies/{id}/ratings [post].
func (h *MoviesHandler) HandleSubmitRating(w http.ResponseWriter, r *http.Request) {
	movieID, ok := moviePathValue(w, r, "id")
	if !ok {
		return
	}

	var req submitRatingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.RatingService.Submit(r.Context(), httpx.UserIDFromCtx(r.Context()), movieID, req.Rating, req.Review)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusCreated, "Rating submitted", map[string]any{
		"rating": toRatingResponse(rec),
	})
}

// HandleUpdateRating overwrites the caller's existing rating and/or review.
//
//	@Summary	Update a rating or review
//	@Tags		Ratings
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"TMDB movie id"
//	@Param		body	body		submitRatingRequest	true	"New rating and/or review"
//	@Success	200		{object}	map[string]any
//	@Failure	404		{object}	apiError	"No existing rating for this movie"
//	@Router		/v1/movies/{id}/ratings [put].
func (h *MoviesHandler) HandleUpdateRating(w http.ResponseWriter, r *http.Request) {
	movieID, ok := moviePathValue(w, r, "id")
	if !ok {
		return
	}

	var req submitRatingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.RatingService.Update(r.Context(), httpx.UserIDFromCtx(r.Context()), movieID, req.Rating, req.Review)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respond(w, http.StatusOK, "Rating updated", map[string]any{
		"rating": toRatingResponse(rec),
	})
}

func intQuery(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	if v < 0 {
		return 0
	}
	return v
}

func discoverParamsFromQuery(r *http.Request) tmdb.DiscoverParams {
	q := r.URL.Query()

	p := tmdb.DiscoverParams{
		Genres:      intList(q.Get("genres")),
		Cast:        intList(q.Get("cast")),
		Crew:        intList(q.Get("crew")),
		ReleaseYear: intQuery(r, "year"),
		SortBy:      q.Get("sortBy"),
		Page:        intQuery(r, "page"),
	}
	if v, err := strconv.ParseFloat(q.Get("minRating"), 64); err == nil && v > 0 && v <= 10 {
		p.MinRating = v
	}
	if langs := q.Get("language"); langs != "" {
		for _, l := range strings.Split(langs, ",") {
			if l = strings.TrimSpace(l); l != "" {
				p.Languages = append(p.Languages, l)
			}
		}
	}
	return p
}

func intList(s string) []int {
	if s == "" {
		return nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(part)); err == nil && n > 0 {
			out = append(out, n)
		}
	}
	return out
}
