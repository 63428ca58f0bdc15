package service

import (
	"context"

	"github.com/cinefeed/cinefeed/internal/api/domain"
	"github.com/cinefeed/cinefeed/internal/api/store"
	"github.com/cinefeed/cinefeed/pkg/idx"
)

// WatchlistService enforces ownership on every list operation: touching
// another user's list reports not-found, never forbidden, so list ids leak
// nothing.
type WatchlistService struct {
	Store store.Store
}

func (s *WatchlistService) Create(ctx context.Context, userID, name string) (domain.Watchlist, error) {
	wl := domain.Watchlist{
		ID:     idx.New().String(),
		UserID: userID,
		Name:   name,
	}
	if err := s.Store.Watchlists().CreateWatchlist(ctx, wl); err != nil {
		return domain.Watchlist{}, err
	}
	return s.Store.Watchlists().GetWatchlistByID(ctx, wl.ID)
}

func (s *WatchlistService) List(ctx context.Context, userID string) ([]domain.Watchlist, error) {
	return s.Store.Watchlists().ListUserWatchlists(ctx, userID)
}

func (s *WatchlistService) Get(ctx context.Context, userID, listID string) (domain.Watchlist, error) {
	return s.getOwned(ctx, userID, listID)
}

func (s *WatchlistService) Rename(ctx context.Context, userID, listID, name string) (domain.Watchlist, error) {
	if _, err := s.getOwned(ctx, userID, listID); err != nil {
		return domain.Watchlist{}, err
	}
	if err := s.Store.Watchlists().RenameWatchlist(ctx, listID, name); err != nil {
		return domain.Watchlist{}, err
	}
	return s.Store.Watchlists().GetWatchlistByID(ctx, listID)
}

func (s *WatchlistService) Delete(ctx context.Context, userID, listID string) error {
	if _, err := s.getOwned(ctx, userID, listID); err != nil {
		return err
	}
	return s.Store.Watchlists().DeleteWatchlist(ctx, listID)
}

func (s *WatchlistService) AddMovie(ctx context.Context, userID, listID string, movieID int) (domain.Watchlist, error) {
	if _, err := s.getOwned(ctx, userID, listID); err != nil {
		return domain.Watchlist{}, err
	}
	if err := s.Store.Watchlists().AddMovie(ctx, listID, movieID); err != nil {
		return domain.Watchlist{}, err
	}
	return s.Store.Watchlists().GetWatchlistByID(ctx, listID)
}

func (s *WatchlistService) RemoveMovie(ctx context.Context, userID, listID string, movieID int) (domain.Watchlist, error) {
	if _, err := s.getOwned(ctx, userID, listID); err != nil {
		return domain.Watchlist{}, err
	}
	if err := s.Store.Watchlists().RemoveMovie(ctx, listID, movieID); err != nil {
		return domain.Watchlist{}, err
	}
	return s.Store.Watchlists().GetWatchlistByID(ctx, listID)
}

func (s *WatchlistService) getOwned(ctx context.Context, userID, listID string) (domain.Watchlist, error) {
	wl, err := s.Store.Watchlists().GetWatchlistByID(ctx, listID)
	if err != nil {
		return domain.Watchlist{}, err
	}
	if wl.UserID != userID {
		return domain.Watchlist{}, store.ErrNotFound
	}
	return wl, nil
}
