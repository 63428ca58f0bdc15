package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cinefeed/cinefeed/internal/api/domain"
	"github.com/cinefeed/cinefeed/internal/api/store"
)

type usersRepo struct {
	db *sqlx.DB
}

// defaultUserColumns deliberately excludes password_hash and the reset
// token fields; only the credentials path selects the hash.
const defaultUserColumns = `id, username, email, first_name, last_name, avatar,
	favorite_genres, favorite_actors, favorite_directors, min_rating, languages,
	is_active, is_email_verified, last_login, created_at, updated_at`

type userRow struct {
	ID                string       `db:"id"`
	Username          string       `db:"username"`
	Email             string       `db:"email"`
	PasswordHash      string       `db:"password_hash"`
	FirstName         string       `db:"first_name"`
	LastName          string       `db:"last_name"`
	Avatar            string       `db:"avatar"`
	FavoriteGenres    string       `db:"favorite_genres"`
	FavoriteActors    string       `db:"favorite_actors"`
	FavoriteDirectors string       `db:"favorite_directors"`
	MinRating         float64      `db:"min_rating"`
	Languages         string       `db:"languages"`
	IsActive          bool         `db:"is_active"`
	IsEmailVerified   bool         `db:"is_email_verified"`
	LastLogin         sql.NullTime `db:"last_login"`
	CreatedAt         time.Time    `db:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at"`
}

func (row userRow) toDomain() domain.User {
	var lastLogin *time.Time
	if row.LastLogin.Valid {
		t := row.LastLogin.Time
		lastLogin = &t
	}

	return domain.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Avatar:       row.Avatar,
		Preferences: domain.Preferences{
			FavoriteGenres:    splitInts(row.FavoriteGenres),
			FavoriteActors:    splitInts(row.FavoriteActors),
			FavoriteDirectors: splitInts(row.FavoriteDirectors),
			MinRating:         row.MinRating,
			Languages:         splitStrings(row.Languages),
		},
		IsActive:        row.IsActive,
		IsEmailVerified: row.IsEmailVerified,
		LastLogin:       lastLogin,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, username, email, password_hash, first_name, last_name, avatar,
			favorite_genres, favorite_actors, favorite_directors, min_rating, languages,
			is_active, is_email_verified
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Avatar,
		joinInts(u.Preferences.FavoriteGenres),
		joinInts(u.Preferences.FavoriteActors),
		joinInts(u.Preferences.FavoriteDirectors),
		u.Preferences.MinRating,
		joinStrings(u.Preferences.Languages),
		u.IsActive, u.IsEmailVerified,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+defaultUserColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	user := row.toDomain()
	if err := r.loadFavorites(ctx, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+defaultUserColumns+` FROM users WHERE email = ?`, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	user := row.toDomain()
	if err := r.loadFavorites(ctx, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *usersRepo) GetUserByEmailWithHash(ctx context.Context, email string) (domain.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row,
		`SELECT password_hash, `+defaultUserColumns+` FROM users WHERE email = ?`, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET last_login = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) error {
	set := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if upd.Username != nil {
		set = append(set, "username = ?")
		args = append(args, *upd.Username)
	}
	if upd.FirstName != nil {
		set = append(set, "first_name = ?")
		args = append(args, *upd.FirstName)
	}
	if upd.LastName != nil {
		set = append(set, "last_name = ?")
		args = append(args, *upd.LastName)
	}
	if upd.Avatar != nil {
		set = append(set, "avatar = ?")
		args = append(args, *upd.Avatar)
	}
	if len(set) == 0 {
		return nil
	}

	set = append(set, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, userID)

	query := "UPDATE users SET " + joinStrings(set) + " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *usersRepo) UpdatePreferences(ctx context.Context, userID string, p domain.Preferences) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			favorite_genres = ?, favorite_actors = ?, favorite_directors = ?,
			min_rating = ?, languages = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		joinInts(p.FavoriteGenres), joinInts(p.FavoriteActors), joinInts(p.FavoriteDirectors),
		p.MinRating, joinStrings(p.Languages), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, newHash, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) AddFavorite(ctx context.Context, userID string, movieID int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, movie_id) VALUES (?, ?)
		ON CONFLICT (user_id, movie_id) DO NOTHING`, userID, movieID)
	return err
}

func (r *usersRepo) RemoveFavorite(ctx context.Context, userID string, movieID int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	return err
}

func (r *usersRepo) DeactivateUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_active = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) loadFavorites(ctx context.Context, u *domain.User) error {
	return r.db.SelectContext(ctx, &u.Favorites,
		`SELECT movie_id FROM favorites WHERE user_id = ? ORDER BY movie_id`, u.ID)
}

// requireRow maps "no rows affected" to ErrNotFound so update paths report
// missing users the same way reads do.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
