package auth

import "net/http"

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// Session cookies are script-inaccessible and restricted to secure
// transport; token lifetime is enforced by the tokens themselves.
func setAuthCookies(w http.ResponseWriter, pair TokenPair) {
	http.SetCookie(w, sessionCookie(accessTokenCookie, pair.AccessToken, 0))
	http.SetCookie(w, sessionCookie(refreshTokenCookie, pair.RefreshToken, 0))
}

func clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, sessionCookie(accessTokenCookie, "", -1))
	http.SetCookie(w, sessionCookie(refreshTokenCookie, "", -1))
}

func sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
