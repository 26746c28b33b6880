package admin

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/johnwards/leaddesk/internal/api"
	"github.com/johnwards/leaddesk/internal/database"
	"github.com/johnwards/leaddesk/internal/seed"
)

// Handler serves the admin API at /_leaddesk/.
type Handler struct {
	db *sql.DB
	// changed is called after the data set was replaced.
	changed func(ctx context.Context)
}

// dataTableNames lists all data tables in foreign-key-safe deletion order.
var dataTableNames = []string{
	"activities",
	"leads",
	"agents",
}

// Reset drops all data from all tables and re-runs seeds.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := ResetData(ctx, h.db); err != nil {
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), api.CorrelationID(ctx)))
		return
	}
	h.notify(ctx)

	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SeedData runs seed data without dropping existing data first.
func (h *Handler) SeedData(w http.ResponseWriter, r *http.Request) {
	if err := seed.Seed(r.Context(), h.db); err != nil {
		api.WriteError(w, http.StatusInternalServerError,
			api.NewInternalError(fmt.Sprintf("failed to seed: %s", err), api.CorrelationID(r.Context())))
		return
	}
	h.notify(r.Context())

	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type healthResponse struct {
	Status        string `json:"status"`
	SchemaVersion int    `json:"schemaVersion"`
}

// Health reports whether the database answers and which schema version it
// is on.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	version, err := database.Version(r.Context(), h.db)
	if err != nil {
		api.WriteError(w, http.StatusServiceUnavailable, &api.Error{
			Status:        "error",
			Message:       fmt.Sprintf("database unavailable: %s", err),
			CorrelationID: api.CorrelationID(r.Context()),
			Category:      api.CategoryStoreUnavailable,
		})
		return
	}

	api.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", SchemaVersion: version})
}

func (h *Handler) notify(ctx context.Context) {
	if h.changed != nil {
		h.changed(ctx)
	}
}

// ResetData clears all data tables within a transaction and re-seeds.
// Autoincrement counters are reset too, so seeded IDs start at 1 again.
func ResetData(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range dataTableNames {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil { //nolint:gosec // table names are hardcoded constants
			return fmt.Errorf("clear table %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = ?`, table); err != nil {
			return fmt.Errorf("reset sequence %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return seed.Seed(ctx, db)
}
