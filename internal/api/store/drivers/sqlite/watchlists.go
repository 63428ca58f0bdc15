package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cinefeed/cinefeed/internal/api/domain"
)

type watchlistsRepo struct {
	db *sqlx.DB
}

type watchlistRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row watchlistRow) toDomain() domain.Watchlist {
	return domain.Watchlist{
		ID:        row.ID,
		UserID:    row.UserID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (r *watchlistsRepo) CreateWatchlist(ctx context.Context, wl domain.Watchlist) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO watchlists (id, user_id, name) VALUES (?, ?, ?)`,
		wl.ID, wl.UserID, wl.Name)
	return mapConstraint(err)
}

func (r *watchlistsRepo) GetWatchlistByID(ctx context.Context, id string) (domain.Watchlist, error) {
	var row watchlistRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, user_id, name, created_at, updated_at FROM watchlists WHERE id = ?`, id)
	if err != nil {
		return domain.Watchlist{}, mapNotFound(err)
	}

	wl := row.toDomain()
	if err := r.loadMovies(ctx, &wl); err != nil {
		return domain.Watchlist{}, err
	}
	return wl, nil
}

func (r *watchlistsRepo) ListUserWatchlists(ctx context.Context, userID string) ([]domain.Watchlist, error) {
	var rows []watchlistRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, name, created_at, updated_at
		FROM watchlists WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}

	lists := make([]domain.Watchlist, 0, len(rows))
	for _, row := range rows {
		wl := row.toDomain()
		if err := r.loadMovies(ctx, &wl); err != nil {
			return nil, err
		}
		lists = append(lists, wl)
	}
	return lists, nil
}

func (r *watchlistsRepo) RenameWatchlist(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE watchlists SET name = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *watchlistsRepo) DeleteWatchlist(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM watchlists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *watchlistsRepo) AddMovie(ctx context.Context, watchlistID string, movieID int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watchlist_movies (watchlist_id, movie_id) VALUES (?, ?)
		ON CONFLICT (watchlist_id, movie_id) DO NOTHING`, watchlistID, movieID)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE watchlists SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, watchlistID)
	return err
}

func (r *watchlistsRepo) RemoveMovie(ctx context.Context, watchlistID string, movieID int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM watchlist_movies WHERE watchlist_id = ? AND movie_id = ?`,
		watchlistID, movieID)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE watchlists SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, watchlistID)
	return err
}

func (r *watchlistsRepo) loadMovies(ctx context.Context, wl *domain.Watchlist) error {
	return r.db.SelectContext(ctx, &wl.Movies,
		`SELECT movie_id FROM watchlist_movies WHERE watchlist_id = ? ORDER BY movie_id`, wl.ID)
}
