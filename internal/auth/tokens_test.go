package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vidtube/internal/auth"
	"vidtube/internal/httperr"
)

const testSecret = "test-jwt-secret"

func TestTokenRoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, 15*time.Minute, 7*24*time.Hour)

	access, err := issuer.AccessToken("user-1")
	require.NoError(t, err)

	accountID, err := issuer.Verify(access, auth.TokenKindAccess)
	require.NoError(t, err)
	require.Equal(t, "user-1", accountID)

	refresh, expiresAt, err := issuer.RefreshToken("user-1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), expiresAt, time.Minute)

	accountID, err = issuer.Verify(refresh, auth.TokenKindRefresh)
	require.NoError(t, err)
	require.Equal(t, "user-1", accountID)
}

func TestTokenKindMismatch(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, 15*time.Minute, 7*24*time.Hour)

	access, err := issuer.AccessToken("user-1")
	require.NoError(t, err)
	refresh, _, err := issuer.RefreshToken("user-1")
	require.NoError(t, err)

	_, err = issuer.Verify(access, auth.TokenKindRefresh)
	require.Error(t, err)
	require.Equal(t, 401, httperr.From(err).Status)

	_, err = issuer.Verify(refresh, auth.TokenKindAccess)
	require.Error(t, err)
	require.Equal(t, 401, httperr.From(err).Status)
}

func TestTokenExpiry(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, 15*time.Minute, time.Hour)

	now := time.Now().UTC()
	issuer.WithClock(func() time.Time { return now })

	access, err := issuer.AccessToken("user-1")
	require.NoError(t, err)

	// Still valid just before expiry.
	issuer.WithClock(func() time.Time { return now.Add(14 * time.Minute) })
	_, err = issuer.Verify(access, auth.TokenKindAccess)
	require.NoError(t, err)

	issuer.WithClock(func() time.Time { return now.Add(16 * time.Minute) })
	_, err = issuer.Verify(access, auth.TokenKindAccess)
	require.Error(t, err)
	require.Equal(t, 401, httperr.From(err).Status)
	require.Contains(t, err.Error(), "expired")
}

func TestTokenTamperedSignature(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, 15*time.Minute, time.Hour)
	other := auth.NewTokenIssuer("another-secret", 15*time.Minute, time.Hour)

	access, err := issuer.AccessToken("user-1")
	require.NoError(t, err)

	_, err = other.Verify(access, auth.TokenKindAccess)
	require.Error(t, err)
	require.Equal(t, 401, httperr.From(err).Status)
}

func TestTokensAreUniquePerIssue(t *testing.T) {
	issuer := auth.NewTokenIssuer(testSecret, 15*time.Minute, time.Hour)

	now := time.Now().UTC()
	issuer.WithClock(func() time.Time { return now })

	first, _, err := issuer.RefreshToken("user-1")
	require.NoError(t, err)
	second, _, err := issuer.RefreshToken("user-1")
	require.NoError(t, err)

	// Same account, same instant: the pair replacing a rotated token must
	// never collide with it.
	require.NotEqual(t, first, second)
}
