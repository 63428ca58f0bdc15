package service

import (
	"context"
	"errors"

	"github.com/cinefeed/cinefeed/internal/api/domain"
	"github.com/cinefeed/cinefeed/internal/api/store"
	"github.com/cinefeed/cinefeed/pkg/idx"
)

var (
	// ErrRatingExists reports a submit that would overwrite data the user
	// already recorded; the update endpoint is for that.
	ErrRatingExists = errors.New("rating_already_exists")

	// ErrNothingToRate reports a submission carrying neither a rating nor a
	// review.
	ErrNothingToRate = errors.New("rating_or_review_required")
)

// RatingService keeps one rating record per (user, movie). A record may hold
// a score, a review, or both.
type RatingService struct {
	Store store.Store
}

// Submit records a new rating and/or review. If a record already exists,
// submitting only the half it lacks is treated as an update; re-submitting a
// half that exists is a conflict.
func (s *RatingService) Submit(ctx context.Context, userID string, movieID int, rating *int, review *string) (domain.Rating, error) {
	if rating == nil && review == nil {
		return domain.Rating{}, ErrNothingToRate
	}

	existing, err := s.Store.Ratings().GetUserRatingForMovie(ctx, userID, movieID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		rec := domain.Rating{
			ID:      idx.New().String(),
			UserID:  userID,
			MovieID: movieID,
			Rating:  rating,
			Review:  review,
		}
		if err := s.Store.Ratings().CreateRating(ctx, rec); err != nil {
			// A concurrent submit won the unique index race.
			if errors.Is(err, store.ErrAlreadyExists) {
				return domain.Rating{}, ErrRatingExists
			}
			return domain.Rating{}, err
		}
		return s.Store.Ratings().GetUserRatingForMovie(ctx, userID, movieID)

	case err != nil:
		return domain.Rating{}, err
	}

	if (rating != nil && existing.Rating != nil) || (review != nil && existing.Review != nil) {
		return domain.Rating{}, ErrRatingExists
	}

	return s.Update(ctx, userID, movieID, rating, review)
}

// Update overwrites the provided halves of the existing record; nil fields
// are left alone.
func (s *RatingService) Update(ctx context.Context, userID string, movieID int, rating *int, review *string) (domain.Rating, error) {
	if rating == nil && review == nil {
		return domain.Rating{}, ErrNothingToRate
	}

	err := s.Store.Ratings().UpdateRating(ctx, domain.Rating{
		UserID:  userID,
		MovieID: movieID,
		Rating:  rating,
		Review:  review,
	})
	if err != nil {
		return domain.Rating{}, err
	}
	return s.Store.Ratings().GetUserRatingForMovie(ctx, userID, movieID)
}

// Own returns the caller's record for a movie.
func (s *RatingService) Own(ctx context.Context, userID string, movieID int) (domain.Rating, error) {
	return s.Store.Ratings().GetUserRatingForMovie(ctx, userID, movieID)
}

// ForMovie lists all rating records for a movie, newest first.
func (s *RatingService) ForMovie(ctx context.Context, movieID int) ([]domain.Rating, error) {
	return s.Store.Ratings().ListMovieRatings(ctx, movieID)
}
