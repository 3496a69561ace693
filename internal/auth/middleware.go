package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

var accountIDKey contextKey

// AccountIDFromContext returns the account id set by Middleware.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok && id != ""
}

// Middleware authenticates a request by its access token, read from the
// session cookie first and the Authorization header as a fallback, and puts
// the account id into the request context.
func Middleware(issuer *TokenIssuer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := cookieValue(r, accessTokenCookie)
		if tokenStr == "" {
			tokenStr = bearerToken(r)
		}
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized request")
			return
		}

		accountID, err := issuer.Verify(tokenStr, TokenKindAccess)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired access token")
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
