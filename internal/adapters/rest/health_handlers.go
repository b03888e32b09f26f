package rest

import (
	"context"
	"net/http"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
)

// Pinger проверяет доступность хранилища (его реализует pgxpool.Pool)
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	appName string
	db      Pinger
}

func NewHealthHandler(appName string, db Pinger) *HealthHandler {
	return &HealthHandler{appName: appName, db: db}
}

// Root обрабатывает GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{
		"service": h.appName,
		"message": "Missing records detection API",
	})
}

// Health обрабатывает GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			logger.Error("Database ping failed", err, nil)
			RespondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unhealthy",
				"database": "unreachable",
			})
			return
		}
	}

	RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}
