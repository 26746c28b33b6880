package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/johnwards/leaddesk/internal/domain"
)

// ActivityStore defines the interface for the activity timeline.
type ActivityStore interface {
	ListRecent(ctx context.Context, limit int) ([]domain.Activity, error)
	ListForLead(ctx context.Context, leadID string, limit int) ([]domain.Activity, error)
	Append(ctx context.Context, a domain.Activity) (*domain.Activity, error)
}

// SQLiteActivityStore implements ActivityStore backed by SQLite. Display
// times are rendered relative to the injected clock.
type SQLiteActivityStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteActivityStore creates a new SQLiteActivityStore.
func NewSQLiteActivityStore(db *sql.DB, now func() time.Time) *SQLiteActivityStore {
	return &SQLiteActivityStore{db: db, now: now}
}

const defaultActivityLimit = 6

// ListRecent returns the newest activities across all leads.
func (s *SQLiteActivityStore) ListRecent(ctx context.Context, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return s.query(ctx,
		`SELECT id, type, message, lead_id, created_at FROM activities
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
}

// ListForLead returns the newest activities recorded against one lead.
func (s *SQLiteActivityStore) ListForLead(ctx context.Context, leadID string, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return s.query(ctx,
		`SELECT id, type, message, lead_id, created_at FROM activities
		 WHERE lead_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		leadID, limit,
	)
}

// Append records a new activity. A zero CreatedAt is stamped with the
// current time. A LeadID that does not exist returns ErrNotFound.
func (s *SQLiteActivityStore) Append(ctx context.Context, a domain.Activity) (*domain.Activity, error) {
	if !a.Type.Valid() {
		return nil, fmt.Errorf("append activity: invalid type %q", a.Type)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}

	id, err := insertActivity(ctx, s.db, a.Type, a.Message, a.LeadID, formatTimestamp(a.CreatedAt))
	if err != nil {
		return nil, err
	}

	a.ID = strconv.FormatInt(id, 10)
	a.Time = s.display(a.CreatedAt)
	return &a, nil
}

// insertActivity writes one timeline row. An empty leadID stores NULL.
func insertActivity(ctx context.Context, ex execer, typ domain.ActivityType, message, leadID, createdAt string) (int64, error) {
	var lead any
	if leadID != "" {
		lead = leadID
	}

	res, err := ex.ExecContext(ctx,
		`INSERT INTO activities (type, message, lead_id, created_at) VALUES (?, ?, ?, ?)`,
		string(typ), message, lead, createdAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("lead %s: %w", leadID, ErrNotFound)
		}
		return 0, fmt.Errorf("insert activity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func (s *SQLiteActivityStore) query(ctx context.Context, query string, args ...any) ([]domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	activities := []domain.Activity{}
	for rows.Next() {
		var (
			a         domain.Activity
			id        int64
			typ       string
			leadID    sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(&id, &typ, &a.Message, &leadID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}

		a.ID = strconv.FormatInt(id, 10)
		if a.Type, err = domain.ParseActivityType(typ); err != nil {
			return nil, fmt.Errorf("activity %s: %w", a.ID, err)
		}
		if leadID.Valid {
			a.LeadID = strconv.FormatInt(leadID.Int64, 10)
		}
		if a.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("activity %s created_at: %w", a.ID, err)
		}
		a.Time = s.display(a.CreatedAt)

		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return activities, nil
}

func (s *SQLiteActivityStore) display(t time.Time) string {
	return humanize.RelTime(t, s.now(), "ago", "from now")
}
