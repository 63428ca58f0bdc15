// Package tmdb is a thin client for the TMDB (themoviedb.org) v3 REST API,
// covering the endpoints the movie proxy exposes.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.themoviedb.org/3"

// ErrUpstream tags any failure talking to the provider, so the HTTP layer can
// map it to a 502 without inspecting the message.
var ErrUpstream = errors.New("tmdb: upstream failure")

// Client calls TMDB with an api_key query parameter on every request.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// DiscoverParams maps onto the provider's /discover/movie filters. Zero
// values are omitted from the query.
type DiscoverParams struct {
	Genres       []int
	Cast         []int
	Crew         []int
	MinRating    float64
	Languages    []string
	ReleaseYear  int
	SortBy       string // defaults to popularity.desc
	Page         int
	MinVoteCount int // defaults to 100
}

// SearchMovies runs a free-text title search. Adult titles are always
// excluded.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (Page, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("include_adult", "false")
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	var out Page
	if err := c.get(ctx, "/search/movie", q, &out); err != nil {
		return Page{}, err
	}
	return out, nil
}

// MovieDetails fetches the full record for one movie id.
func (c *Client) MovieDetails(ctx context.Context, movieID int) (MovieDetails, error) {
	var out MovieDetails
	if err := c.get(ctx, "/movie/"+strconv.Itoa(movieID), url.Values{}, &out); err != nil {
		return MovieDetails{}, err
	}
	return out, nil
}

// FilterMovies is discover without the recommendation defaults: the caller's
// params pass through as-is apart from include_adult.
func (c *Client) FilterMovies(ctx context.Context, p DiscoverParams) (Page, error) {
	return c.discover(ctx, p)
}

// DiscoverMovies runs the recommendation discover call. A minimum vote count
// floor keeps obscure titles out of recommendations.
func (c *Client) DiscoverMovies(ctx context.Context, p DiscoverParams) (Page, error) {
	if p.MinVoteCount == 0 {
		p.MinVoteCount = 100
	}
	return c.discover(ctx, p)
}

// Genres returns the provider's movie genre catalogue.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	var out genreList
	if err := c.get(ctx, "/genre/movie/list", url.Values{}, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

// PopularMovies returns the provider's current popularity chart page.
func (c *Client) PopularMovies(ctx context.Context, page int) (Page, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	var out Page
	if err := c.get(ctx, "/movie/popular", q, &out); err != nil {
		return Page{}, err
	}
	return out, nil
}

func (c *Client) discover(ctx context.Context, p DiscoverParams) (Page, error) {
	q := url.Values{}
	q.Set("include_adult", "false")

	if len(p.Genres) > 0 {
		q.Set("with_genres", joinIDs(p.Genres))
	}
	if len(p.Cast) > 0 {
		q.Set("with_cast", joinIDs(p.Cast))
	}
	if len(p.Crew) > 0 {
		q.Set("with_crew", joinIDs(p.Crew))
	}
	if p.MinRating > 0 {
		q.Set("vote_average.gte", strconv.FormatFloat(p.MinRating, 'f', -1, 64))
	}
	if len(p.Languages) > 0 {
		q.Set("with_original_language", strings.Join(p.Languages, "|"))
	}
	if p.ReleaseYear > 0 {
		q.Set("primary_release_year", strconv.Itoa(p.ReleaseYear))
	}
	if p.MinVoteCount > 0 {
		q.Set("vote_count.gte", strconv.Itoa(p.MinVoteCount))
	}
	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = "popularity.desc"
	}
	q.Set("sort_by", sortBy)
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}

	var out Page
	if err := c.get(ctx, "/discover/movie", q, &out); err != nil {
		return Page{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, target any) error {
	q.Set("api_key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Never echo the provider body to callers; it may contain the key.
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status %d from %s", ErrUpstream, resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
