package profiles

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new profile.
func (r *PGRepo) Create(ctx context.Context, profile Profile) error {
	const query = `
INSERT INTO profiles (id, user_id, full_name, email, phone, city, cv_text, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		profile.ID,
		profile.UserID,
		profile.FullName,
		profile.Email,
		profile.Phone,
		profile.City,
		profile.CVText,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return err
}

// GetCurrentByUser returns the latest profile for a user.
func (r *PGRepo) GetCurrentByUser(ctx context.Context, userID string) (Profile, error) {
	const query = `
SELECT id, user_id, full_name, email, phone, city, cv_text, created_at, updated_at
FROM profiles
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT 1`

	var profile Profile
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Email,
		&profile.Phone,
		&profile.City,
		&profile.CVText,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return profile, nil
}

// Update replaces the mutable fields of a profile.
func (r *PGRepo) Update(ctx context.Context, profile Profile) error {
	const query = `
UPDATE profiles
SET full_name = $1, email = $2, phone = $3, city = $4, cv_text = $5, updated_at = $6
WHERE user_id = $7 AND id = $8`

	res, err := r.DB.ExecContext(
		ctx,
		query,
		profile.FullName,
		profile.Email,
		profile.Phone,
		profile.City,
		profile.CVText,
		profile.UpdatedAt,
		profile.UserID,
		profile.ID,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
