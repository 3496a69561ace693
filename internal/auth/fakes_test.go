package auth_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"vidtube/internal/auth"
)

// fakeRepo is an in-memory Repository with the same CAS rotation semantics
// as the Postgres implementation.
type fakeRepo struct {
	mu    sync.Mutex
	users map[string]auth.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]auth.User)}
}

func (r *fakeRepo) Create(_ context.Context, user auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = user
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return auth.User{}, sql.ErrNoRows
	}
	return user, nil
}

func (r *fakeRepo) GetByIdentifier(_ context.Context, username, email string) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return user, nil
		}
	}
	return auth.User{}, sql.ErrNoRows
}

func (r *fakeRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Username, username) || strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) SetRefreshToken(_ context.Context, id, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.RefreshToken = token
	user.RefreshTokenExpiresAt = &expiresAt
	r.users[id] = user
	return nil
}

func (r *fakeRepo) RotateRefreshToken(_ context.Context, id, oldToken, newToken string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok || user.RefreshToken == "" || user.RefreshToken != oldToken {
		return false, nil
	}
	user.RefreshToken = newToken
	user.RefreshTokenExpiresAt = &expiresAt
	r.users[id] = user
	return true, nil
}

func (r *fakeRepo) ClearRefreshToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil
	}
	user.RefreshToken = ""
	user.RefreshTokenExpiresAt = nil
	r.users[id] = user
	return nil
}

func (r *fakeRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.PasswordHash = passwordHash
	user.RefreshToken = ""
	user.RefreshTokenExpiresAt = nil
	r.users[id] = user
	return nil
}

func (r *fakeRepo) ClearExpiredRefreshTokens(_ context.Context, now time.Time, batchSize int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared int64
	for id, user := range r.users {
		if user.RefreshToken != "" && user.RefreshTokenExpiresAt != nil && user.RefreshTokenExpiresAt.Before(now) {
			user.RefreshToken = ""
			user.RefreshTokenExpiresAt = nil
			r.users[id] = user
			cleared++
		}
	}
	return cleared, nil
}

func (r *fakeRepo) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
}

func (r *fakeRepo) storedRefreshToken(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.users[id].RefreshToken
}

// fakeUploader returns a deterministic URL per upload without touching the
// network.
type fakeUploader struct {
	mu      sync.Mutex
	uploads int
}

func (u *fakeUploader) UploadImage(_ context.Context, imageSource string) (string, error) {
	if strings.TrimSpace(imageSource) == "" {
		return "", fmt.Errorf("empty image source")
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.uploads++
	return fmt.Sprintf("https://cdn.example.test/image-%d.png", u.uploads), nil
}
