package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"

	"vidtube/internal/httperr"
	"vidtube/internal/media"
)

const (
	maxJSONBodyBytes      = 1 << 20
	maxMultipartFormBytes = 24 << 20
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type sessionResponse struct {
	User         Profile `json:"user"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
}

// Register handles the multipart signup form: text fields plus a required
// avatar attachment and an optional cover image.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartFormBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	avatarSource, err := media.DataURIFromForm(r, "avatar")
	if err != nil {
		h.respondError(w, err)
		return
	}
	if avatarSource == "" {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}

	coverImageSource, err := media.DataURIFromForm(r, "coverImage")
	if err != nil {
		h.respondError(w, err)
		return
	}

	profile, err := h.service.Register(r.Context(), RegisterInput{
		FullName:         r.FormValue("fullName"),
		Email:            r.FormValue("email"),
		Username:         r.FormValue("username"),
		Password:         r.FormValue("password"),
		AvatarSource:     avatarSource,
		CoverImageSource: coverImageSource,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": profile})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body loginRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	pair, profile, err := h.service.Login(r.Context(), body.Username, body.Email, body.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}

	setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, sessionResponse{
		User:         profile,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh rotates the refresh token sourced from the session cookie or, for
// non-browser clients, the JSON body.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	presented := cookieValue(r, refreshTokenCookie)
	if presented == "" {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		var body refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			presented = strings.TrimSpace(body.RefreshToken)
		}
	}
	if presented == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	pair, err := h.service.Refresh(r.Context(), presented)
	if err != nil {
		h.respondError(w, err)
		return
	}

	setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, pair)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	accountID, ok := AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if err := h.service.Logout(r.Context(), accountID); err != nil {
		h.respondError(w, err)
		return
	}

	clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	accountID, ok := AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body changePasswordRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := h.service.ChangePassword(r.Context(), accountID, body.OldPassword, body.NewPassword); err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	profile, err := h.service.Me(r.Context(), accountID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": profile})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if httperr.IsInternal(err) {
		sentry.CaptureException(err)
	}

	apiErr := httperr.From(err)
	writeError(w, apiErr.Status, apiErr.Message)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
