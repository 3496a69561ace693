package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"vidtube/internal/httperr"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenIssuer mints and verifies the HS256 token pair. Both kinds are signed
// JWTs carrying the account id; they are told apart by the typ claim.
// Verification here covers signature and expiry only — the stored-slot
// equality check for refresh tokens belongs to the Service.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}

	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the issuer's time source. Test hook.
func (i *TokenIssuer) WithClock(now func() time.Time) {
	if now != nil {
		i.now = now
	}
}

func (i *TokenIssuer) AccessToken(accountID string) (string, error) {
	token, _, err := i.sign(accountID, TokenKindAccess, i.accessTTL)
	return token, err
}

// RefreshToken returns the signed token and its expiry, which the caller
// persists alongside the stored slot.
func (i *TokenIssuer) RefreshToken(accountID string) (string, time.Time, error) {
	return i.sign(accountID, TokenKindRefresh, i.refreshTTL)
}

func (i *TokenIssuer) sign(accountID string, kind TokenKind, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(ttl)

	// jti keeps two tokens minted for the same account in the same second
	// distinct, so a rotated pair never collides with the pair it replaces.
	claims := jwt.MapClaims{
		"sub": accountID,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
		"typ": string(kind),
		"jti": uuid.NewString(),
	}
	encoded, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}

	return encoded, expiresAt, nil
}

// Verify checks signature, expiry and token kind, and returns the embedded
// account id. Expired and malformed tokens differ only in message text; both
// surface as 401.
func (i *TokenIssuer) Verify(tokenStr string, kind TokenKind) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", httperr.Unauthorized(fmt.Sprintf("%s token is expired", kind))
		}
		return "", httperr.Unauthorized(fmt.Sprintf("invalid %s token", kind))
	}
	if !token.Valid {
		return "", httperr.Unauthorized(fmt.Sprintf("invalid %s token", kind))
	}

	if tokenType, _ := claims["typ"].(string); tokenType != string(kind) {
		return "", httperr.Unauthorized(fmt.Sprintf("invalid %s token", kind))
	}

	accountID, _ := claims["sub"].(string)
	if accountID == "" {
		return "", httperr.Unauthorized(fmt.Sprintf("invalid %s token", kind))
	}

	return accountID, nil
}
