package maintenance

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SessionStore is the slice of the auth repository the cleanup job needs.
type SessionStore interface {
	ClearExpiredRefreshTokens(ctx context.Context, now time.Time, batchSize int) (int64, error)
}

// CleanupHandler clears refresh-token slots whose expiry has passed. Exposed
// on an internal route guarded by a bearer cron secret; disabled entirely
// when no secret is configured.
type CleanupHandler struct {
	store      SessionStore
	logger     zerolog.Logger
	cronSecret string
	batchSize  int
}

func NewCleanupHandler(store SessionStore, logger zerolog.Logger, cronSecret string, batchSize int) *CleanupHandler {
	return &CleanupHandler{
		store:      store,
		logger:     logger,
		cronSecret: strings.TrimSpace(cronSecret),
		batchSize:  batchSize,
	}
}

func (h *CleanupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) != h.cronSecret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	cleared, err := h.store.ClearExpiredRefreshTokens(r.Context(), time.Now().UTC(), h.batchSize)
	if err != nil {
		h.logger.Error().Err(err).Msg("session_cleanup_failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cleanup failed"})
		return
	}

	h.logger.Info().Int64("cleared_refresh_tokens", cleared).Msg("session_cleanup_completed")

	writeJSON(w, http.StatusOK, map[string]any{
		"status":                 "ok",
		"cleared_refresh_tokens": cleared,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
