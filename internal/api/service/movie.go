package service

import (
	"context"
	"errors"

	"github.com/cinefeed/cinefeed/internal/api/store"
	"github.com/cinefeed/cinefeed/internal/api/tmdb"
)

const (
	defaultMinRating = 6.0
	defaultLanguage  = "en"
)

// MovieService proxies the metadata provider and layers stored user
// preferences onto the discover call for recommendations.
type MovieService struct {
	TMDB  *tmdb.Client
	Users *UserService
}

// RecommendationMeta tells the client which preference inputs shaped the
// result set.
type RecommendationMeta struct {
	Personalized  bool     `json:"personalized"`
	BasedOn       []string `json:"basedOn,omitempty"`
	MinRating     float64  `json:"minRating"`
	Languages     []string `json:"languages"`
	GenresApplied []int    `json:"genresApplied,omitempty"`
}

func (s *MovieService) Search(ctx context.Context, query string, page int) (tmdb.Page, error) {
	return s.TMDB.SearchMovies(ctx, query, page)
}

func (s *MovieService) Details(ctx context.Context, movieID int) (tmdb.MovieDetails, error) {
	return s.TMDB.MovieDetails(ctx, movieID)
}

func (s *MovieService) Filter(ctx context.Context, p tmdb.DiscoverParams) (tmdb.Page, error) {
	return s.TMDB.FilterMovies(ctx, p)
}

func (s *MovieService) Genres(ctx context.Context) ([]tmdb.Genre, error) {
	return s.TMDB.Genres(ctx)
}

func (s *MovieService) Popular(ctx context.Context, page int) (tmdb.Page, error) {
	return s.TMDB.PopularMovies(ctx, page)
}

// Recommendations runs a discover query seeded from the user's stored
// preferences. Explicit query parameters win over stored preferences; stored
// preferences win over the defaults (min rating 6.0, language "en"). An
// empty userID yields an anonymous, defaults-only result.
func (s *MovieService) Recommendations(ctx context.Context, userID string, p tmdb.DiscoverParams) (tmdb.Page, RecommendationMeta, error) {
	meta := RecommendationMeta{}

	if userID != "" {
		u, err := s.Users.GetByID(ctx, userID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return tmdb.Page{}, RecommendationMeta{}, err
		}
		if err == nil {
			prefs := u.Preferences
			if len(p.Genres) == 0 && len(prefs.FavoriteGenres) > 0 {
				p.Genres = prefs.FavoriteGenres
				meta.BasedOn = append(meta.BasedOn, "favoriteGenres")
			}
			if len(p.Cast) == 0 && len(prefs.FavoriteActors) > 0 {
				p.Cast = prefs.FavoriteActors
				meta.BasedOn = append(meta.BasedOn, "favoriteActors")
			}
			if len(p.Crew) == 0 && len(prefs.FavoriteDirectors) > 0 {
				p.Crew = prefs.FavoriteDirectors
				meta.BasedOn = append(meta.BasedOn, "favoriteDirectors")
			}
			if p.MinRating == 0 && prefs.MinRating > 0 {
				p.MinRating = prefs.MinRating
				meta.BasedOn = append(meta.BasedOn, "minRating")
			}
			if len(p.Languages) == 0 && len(prefs.Languages) > 0 {
				p.Languages = prefs.Languages
				meta.BasedOn = append(meta.BasedOn, "languages")
			}
			meta.Personalized = len(meta.BasedOn) > 0
		}
	}

	if p.MinRating == 0 {
		p.MinRating = defaultMinRating
	}
	if len(p.Languages) == 0 {
		p.Languages = []string{defaultLanguage}
	}

	meta.MinRating = p.MinRating
	meta.Languages = p.Languages
	meta.GenresApplied = p.Genres

	page, err := s.TMDB.DiscoverMovies(ctx, p)
	if err != nil {
		return tmdb.Page{}, RecommendationMeta{}, err
	}
	return page, meta, nil
}
