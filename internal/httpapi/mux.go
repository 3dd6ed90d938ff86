package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/tlanclos/isthemountainout/internal/metrics"
)

// NewMux serves the operational endpoints. Feature modules add their routes.
func NewMux(db *sql.DB, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	mux.Handle("GET /metrics", m.Handler())
	return mux
}
