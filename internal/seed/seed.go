package seed

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Seed inserts the demo agents, leads and activities. It is idempotent:
// each table is only filled while it is empty. Lead dates are placed
// relative to the current day.
func Seed(ctx context.Context, db *sql.DB) error {
	return At(ctx, db, time.Now())
}

// At is Seed with an explicit reference time.
func At(ctx context.Context, db *sql.DB, now time.Time) error {
	if err := Agents(ctx, db); err != nil {
		return fmt.Errorf("seed agents: %w", err)
	}
	if err := Leads(ctx, db, now); err != nil {
		return fmt.Errorf("seed leads: %w", err)
	}
	if err := Activities(ctx, db, now); err != nil {
		return fmt.Errorf("seed activities: %w", err)
	}
	return nil
}

func isEmpty(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil { //nolint:gosec // table names are hardcoded constants
		return false, fmt.Errorf("count %s: %w", table, err)
	}
	return count == 0, nil
}

func stamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
