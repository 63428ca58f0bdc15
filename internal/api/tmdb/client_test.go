package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeTMDB(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key")
}

func TestSearchMoviesQuery(t *testing.T) {
	c := fakeTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/movie", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		require.Equal(t, "inception", r.URL.Query().Get("query"))
		require.Equal(t, "false", r.URL.Query().Get("include_adult"))
		require.Equal(t, "2", r.URL.Query().Get("page"))

		_ = json.NewEncoder(w).Encode(Page{
			Page:         2,
			Results:      []Movie{{ID: 27205, Title: "Inception"}},
			TotalPages:   3,
			TotalResults: 41,
		})
	})

	page, err := c.SearchMovies(context.Background(), "inception", 2)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	require.Equal(t, 27205, page.Results[0].ID)
	require.Equal(t, 41, page.TotalResults)
}

func TestDiscoverMoviesDefaults(t *testing.T) {
	c := fakeTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/discover/movie", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "28,12", q.Get("with_genres"))
		require.Equal(t, "6", q.Get("vote_average.gte"))
		require.Equal(t, "en|fr", q.Get("with_original_language"))
		require.Equal(t, "100", q.Get("vote_count.gte"))
		require.Equal(t, "popularity.desc", q.Get("sort_by"))
		require.Equal(t, "false", q.Get("include_adult"))

		_ = json.NewEncoder(w).Encode(Page{Page: 1})
	})

	_, err := c.DiscoverMovies(context.Background(), DiscoverParams{
		Genres:    []int{28, 12},
		MinRating: 6,
		Languages: []string{"en", "fr"},
	})
	require.NoError(t, err)
}

func TestFilterMoviesNoVoteFloor(t *testing.T) {
	c := fakeTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.URL.Query().Get("vote_count.gte"))
		require.Equal(t, "2010", r.URL.Query().Get("primary_release_year"))
		_ = json.NewEncoder(w).Encode(Page{Page: 1})
	})

	_, err := c.FilterMovies(context.Background(), DiscoverParams{ReleaseYear: 2010})
	require.NoError(t, err)
}

func TestMovieDetails(t *testing.T) {
	c := fakeTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/movie/603", r.URL.Path)
		_ = json.NewEncoder(w).Encode(MovieDetails{
			Movie:   Movie{ID: 603, Title: "The Matrix"},
			Runtime: 136,
			Genres:  []Genre{{ID: 28, Name: "Action"}},
		})
	})

	details, err := c.MovieDetails(context.Background(), 603)
	require.NoError(t, err)
	require.Equal(t, "The Matrix", details.Title)
	require.Equal(t, 136, details.Runtime)
}

func TestGenres(t *testing.T) {
	c := fakeTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/genre/movie/list", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string][]Genre{
			"genres": {{ID: 28, Name: "Action"}, {ID: 35, Name: "Comedy"}},
		})
	})

	genres, err := c.Genres(context.Background())
	require.NoError(t, err)
	require.Len(t, genres, 2)
	require.Equal(t, "Comedy", genres[1].Name)
}

func TestUpstreamErrorsAreTagged(t *testing.T) {
	c := fakeTMDB(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
	})

	_, err := c.PopularMovies(context.Background(), 1)
	require.ErrorIs(t, err, ErrUpstream)
	// The provider body (which includes key context) is never echoed.
	require.NotContains(t, err.Error(), "Invalid API key")
}
