package admin

import (
	"context"
	"database/sql"
	"net/http"
)

// RegisterRoutes registers all admin API endpoints on the mux. changed, if
// non-nil, is called after reset or seed so live views can reload.
func RegisterRoutes(mux *http.ServeMux, db *sql.DB, changed func(ctx context.Context)) {
	h := &Handler{db: db, changed: changed}

	mux.HandleFunc("POST /_leaddesk/reset", h.Reset)
	mux.HandleFunc("POST /_leaddesk/seed", h.SeedData)
	mux.HandleFunc("GET /_leaddesk/health", h.Health)
}
