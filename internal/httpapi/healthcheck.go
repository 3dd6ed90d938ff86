package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/tlanclos/isthemountainout/internal/utils"
)

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	db *sql.DB
}

func NewHealthchecker(db *sql.DB) healthchecker {
	return &healthcheckerImpl{db: db}
}

// handleHealthz reports ok only when the history table is reachable, so a
// missing migration fails the check too.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	var n int
	if err := h.db.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM classifications`).Scan(&n); err != nil {
		slog.Error("failed to check history store", "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, "history store unavailable")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": n})
}

func registerHealthcheck(mux *http.ServeMux, db *sql.DB) {
	healthchecker := NewHealthchecker(db)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
