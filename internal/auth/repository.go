package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresRepository implements Repository over database/sql with the pgx
// stdlib driver.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `
	id, full_name, username, email, password_hash,
	refresh_token, refresh_token_expires_at,
	avatar_url, cover_image_url, created_at, updated_at
`

func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, full_name, username, email, password_hash, avatar_url, cover_image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, user.ID, user.FullName, user.Username, user.Email, user.PasswordHash,
		user.AvatarURL, user.CoverImageURL, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

func (r *PostgresRepository) GetByIdentifier(ctx context.Context, username, email string) (User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE ($1 <> '' AND username = $1)
		   OR ($2 <> '' AND email = $2)
		LIMIT 1
	`, username, email))
}

func (r *PostgresRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM users
			WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($2)
		)
	`, username, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}

	return exists, nil
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token = $2, refresh_token_expires_at = $3, updated_at = $4
		WHERE id = $1
	`, id, token, expiresAt.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}

	return nil
}

func (r *PostgresRepository) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string, expiresAt time.Time) (bool, error) {
	// Single-statement compare-and-swap keeps rotation linearizable per
	// account: of two concurrent refreshes with the same input token, exactly
	// one matches the stored slot.
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token = $3, refresh_token_expires_at = $4, updated_at = $5
		WHERE id = $1 AND refresh_token = $2
	`, id, oldToken, newToken, expiresAt.UTC(), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("rotate refresh token: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rotate refresh token rows affected: %w", err)
	}

	return affected == 1, nil
}

func (r *PostgresRepository) ClearRefreshToken(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token = NULL, refresh_token_expires_at = NULL, updated_at = $2
		WHERE id = $1
	`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $2, refresh_token = NULL, refresh_token_expires_at = NULL, updated_at = $3
		WHERE id = $1
	`, id, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ClearExpiredRefreshTokens(ctx context.Context, now time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	res, err := r.db.ExecContext(ctx, `
		WITH stale AS (
			SELECT id
			FROM users
			WHERE refresh_token IS NOT NULL
			  AND refresh_token_expires_at < $1
			ORDER BY refresh_token_expires_at ASC
			LIMIT $2
		)
		UPDATE users u
		SET refresh_token = NULL, refresh_token_expires_at = NULL, updated_at = $1
		FROM stale
		WHERE u.id = stale.id
	`, now.UTC(), batchSize)
	if err != nil {
		return 0, fmt.Errorf("clear expired refresh tokens: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired refresh tokens rows affected: %w", err)
	}

	return affected, nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (User, error) {
	var user User
	var refreshToken sql.NullString
	var refreshExpiresAt sql.NullTime
	var coverImageURL sql.NullString

	err := row.Scan(
		&user.ID, &user.FullName, &user.Username, &user.Email, &user.PasswordHash,
		&refreshToken, &refreshExpiresAt,
		&user.AvatarURL, &coverImageURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, err
		}
		return User{}, fmt.Errorf("query user: %w", err)
	}

	user.RefreshToken = refreshToken.String
	if refreshExpiresAt.Valid {
		value := refreshExpiresAt.Time.UTC()
		user.RefreshTokenExpiresAt = &value
	}
	user.CoverImageURL = coverImageURL.String

	return user, nil
}
