package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vidtube/internal/httperr"
)

// ImageUploader stores an image (data URI or remote URL) and returns its
// public URL. Satisfied by media.Cloudinary.
type ImageUploader interface {
	UploadImage(ctx context.Context, imageSource string) (string, error)
}

// Service orchestrates the session lifecycle: registration, login, refresh
// rotation, logout and password change. It is stateless per call; the only
// shared mutable state is the refresh-token slot on the account row.
type Service struct {
	repo     Repository
	issuer   *TokenIssuer
	uploader ImageUploader
}

func NewService(repo Repository, issuer *TokenIssuer, uploader ImageUploader) *Service {
	return &Service{repo: repo, issuer: issuer, uploader: uploader}
}

type RegisterInput struct {
	FullName string
	Email    string
	Username string
	Password string
	// AvatarSource is required; CoverImageSource optional. Both are image
	// sources the uploader accepts (data URI or URL).
	AvatarSource     string
	CoverImageSource string
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (Profile, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Username = strings.TrimSpace(strings.ToLower(input.Username))
	input.Password = strings.TrimSpace(input.Password)

	if input.FullName == "" || input.Email == "" || input.Username == "" || input.Password == "" {
		return Profile{}, httperr.BadRequest("all fields are required")
	}
	if input.AvatarSource == "" {
		return Profile{}, httperr.BadRequest("avatar file is required")
	}

	taken, err := s.repo.ExistsByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		return Profile{}, fmt.Errorf("check existing user: %w", err)
	}
	if taken {
		return Profile{}, httperr.Conflict("user with email or username already exists")
	}

	avatarURL, err := s.uploader.UploadImage(ctx, input.AvatarSource)
	if err != nil {
		return Profile{}, fmt.Errorf("upload avatar: %w", err)
	}

	var coverImageURL string
	if input.CoverImageSource != "" {
		coverImageURL, err = s.uploader.UploadImage(ctx, input.CoverImageSource)
		if err != nil {
			return Profile{}, fmt.Errorf("upload cover image: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Profile{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Profile{}, fmt.Errorf("generate user id: %w", err)
	}

	user := User{
		ID:            id.String(),
		FullName:      input.FullName,
		Username:      input.Username,
		Email:         input.Email,
		PasswordHash:  string(hash),
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return Profile{}, fmt.Errorf("create user: %w", err)
	}

	return user.Profile(), nil
}

// Login authenticates by username or email and mints a fresh token pair,
// overwriting any previously stored refresh token. Exactly one store write
// happens on success.
func (s *Service) Login(ctx context.Context, username, email, password string) (TokenPair, Profile, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	email = strings.TrimSpace(strings.ToLower(email))
	password = strings.TrimSpace(password)

	if username == "" && email == "" {
		return TokenPair{}, Profile{}, httperr.BadRequest("username or email is required")
	}
	if password == "" {
		return TokenPair{}, Profile{}, httperr.BadRequest("password is required")
	}

	user, err := s.repo.GetByIdentifier(ctx, username, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TokenPair{}, Profile{}, httperr.NotFound("user does not exist")
		}
		return TokenPair{}, Profile{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, Profile{}, httperr.Unauthorized("invalid user credentials")
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return TokenPair{}, Profile{}, err
	}

	return pair, user.Profile(), nil
}

// Refresh exchanges a presented refresh token for a new pair. Rotate-on-use:
// the presented token is invalidated by its own successful rotation, even
// though it has not cryptographically expired.
func (s *Service) Refresh(ctx context.Context, presented string) (TokenPair, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return TokenPair{}, httperr.Unauthorized("unauthorized request")
	}

	accountID, err := s.issuer.Verify(presented, TokenKindRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	if _, err := s.repo.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TokenPair{}, httperr.Unauthorized("invalid refresh token")
		}
		return TokenPair{}, fmt.Errorf("find user: %w", err)
	}

	access, err := s.issuer.AccessToken(accountID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, expiresAt, err := s.issuer.RefreshToken(accountID)
	if err != nil {
		return TokenPair{}, err
	}

	rotated, err := s.repo.RotateRefreshToken(ctx, accountID, presented, refresh, expiresAt)
	if err != nil {
		return TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !rotated {
		// Cryptographically valid but no longer the stored slot value: the
		// token was already spent or revoked. Anti-replay check.
		return TokenPair{}, httperr.Unauthorized("refresh token is expired or used")
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Logout clears the stored refresh token. Idempotent; a second call clears
// an already-empty slot.
func (s *Service) Logout(ctx context.Context, accountID string) error {
	if err := s.repo.ClearRefreshToken(ctx, accountID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// ChangePassword verifies the old password and stores the new hash. The
// stored refresh token is revoked in the same write, so sessions issued
// under the old password die with it.
func (s *Service) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	oldPassword = strings.TrimSpace(oldPassword)
	newPassword = strings.TrimSpace(newPassword)

	if oldPassword == "" || newPassword == "" {
		return httperr.BadRequest("old and new passwords are required")
	}

	user, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return httperr.NotFound("user does not exist")
		}
		return fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return httperr.BadRequest("invalid old password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, accountID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

// Me returns the sanitized projection for the authenticated account.
func (s *Service) Me(ctx context.Context, accountID string) (Profile, error) {
	user, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, httperr.NotFound("user does not exist")
		}
		return Profile{}, fmt.Errorf("find user: %w", err)
	}

	return user.Profile(), nil
}

func (s *Service) issuePair(ctx context.Context, accountID string) (TokenPair, error) {
	access, err := s.issuer.AccessToken(accountID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, expiresAt, err := s.issuer.RefreshToken(accountID)
	if err != nil {
		return TokenPair{}, err
	}

	// If this write fails the minted tokens are discarded; the caller retries
	// the whole operation.
	if err := s.repo.SetRefreshToken(ctx, accountID, refresh, expiresAt); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
