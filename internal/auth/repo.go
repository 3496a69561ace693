package auth

import (
	"context"
	"time"
)

// Repository is the credential-store contract the Service orchestrates
// against. Implementations must provide read-your-writes consistency per
// account row; RotateRefreshToken must be atomic (compare-and-swap).
type Repository interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (User, error)
	// GetByIdentifier looks an account up by username or email; either may be
	// empty, both lowercase.
	GetByIdentifier(ctx context.Context, username, email string) (User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// SetRefreshToken unconditionally overwrites the stored slot (login).
	SetRefreshToken(ctx context.Context, id, token string, expiresAt time.Time) error
	// RotateRefreshToken swaps oldToken for newToken only if oldToken is the
	// value currently stored. Returns false when the slot held something else,
	// meaning the presented token was already superseded.
	RotateRefreshToken(ctx context.Context, id, oldToken, newToken string, expiresAt time.Time) (bool, error)
	// ClearRefreshToken empties the slot. Idempotent.
	ClearRefreshToken(ctx context.Context, id string) error
	// UpdatePassword replaces the stored hash and clears the refresh slot in
	// the same write, revoking any outstanding session.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// ClearExpiredRefreshTokens empties slots whose expiry has passed.
	ClearExpiredRefreshTokens(ctx context.Context, now time.Time, batchSize int) (int64, error)
}
