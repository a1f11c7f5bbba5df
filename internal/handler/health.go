package handler

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rosterup/platform/internal/infra"
)

// HealthHandler returns a handler that reports process and database health.
func HealthHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := infra.HealthCheck(r.Context(), pool); err != nil {
			RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
