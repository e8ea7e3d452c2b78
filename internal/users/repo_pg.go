package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

const upsertUser = `
INSERT INTO users (id, email, full_name, given_name, family_name, picture_url, last_login_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $7)
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = COALESCE(EXCLUDED.full_name, users.full_name),
  given_name = COALESCE(EXCLUDED.given_name, users.given_name),
  family_name = COALESCE(EXCLUDED.family_name, users.family_name),
  picture_url = COALESCE(EXCLUDED.picture_url, users.picture_url),
  last_login_at = EXCLUDED.last_login_at,
  updated_at = EXCLUDED.updated_at`

// Upsert keeps previously stored profile fields when the provider omits them.
func (r *PGRepo) Upsert(ctx context.Context, user User, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, upsertUser,
		user.ID,
		user.Email,
		nullString(user.FullName),
		nullString(user.GivenName),
		nullString(user.FamilyName),
		nullString(user.PictureURL),
		at,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, full_name, given_name, family_name, picture_url, last_login_at, created_at, updated_at
FROM users
WHERE id = $1`
	var (
		user                                     User
		fullName, givenName, familyName, picture sql.NullString
		lastLogin                                sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&fullName,
		&givenName,
		&familyName,
		&picture,
		&lastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	user.FullName = fullName.String
	user.GivenName = givenName.String
	user.FamilyName = familyName.String
	user.PictureURL = picture.String
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLoginAt = &t
	}
	return user, nil
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
