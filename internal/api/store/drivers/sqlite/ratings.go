package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cinefeed/cinefeed/internal/api/domain"
)

type ratingsRepo struct {
	db *sqlx.DB
}

type ratingRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	MovieID   int            `db:"movie_id"`
	Rating    sql.NullInt64  `db:"rating"`
	Review    sql.NullString `db:"review"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (row ratingRow) toDomain() domain.Rating {
	out := domain.Rating{
		ID:        row.ID,
		UserID:    row.UserID,
		MovieID:   row.MovieID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.Rating.Valid {
		v := int(row.Rating.Int64)
		out.Rating = &v
	}
	if row.Review.Valid {
		v := row.Review.String
		out.Review = &v
	}
	return out
}

func (r *ratingsRepo) CreateRating(ctx context.Context, rec domain.Rating) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratings (id, user_id, movie_id, rating, review)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.MovieID, nullableInt(rec.Rating), nullableString(rec.Review))
	return mapConstraint(err)
}

func (r *ratingsRepo) GetUserRatingForMovie(ctx context.Context, userID string, movieID int) (domain.Rating, error) {
	var row ratingRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, user_id, movie_id, rating, review, created_at, updated_at
		FROM ratings WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	if err != nil {
		return domain.Rating{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *ratingsRepo) ListMovieRatings(ctx context.Context, movieID int) ([]domain.Rating, error) {
	var rows []ratingRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, movie_id, rating, review, created_at, updated_at
		FROM ratings WHERE movie_id = ?
		ORDER BY created_at DESC, id DESC`, movieID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Rating, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ratingsRepo) UpdateRating(ctx context.Context, rec domain.Rating) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE ratings SET
			rating = COALESCE(?, rating),
			review = COALESCE(?, review),
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND movie_id = ?`,
		nullableInt(rec.Rating), nullableString(rec.Review), rec.UserID, rec.MovieID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
