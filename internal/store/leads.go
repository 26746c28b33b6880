package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/johnwards/leaddesk/internal/domain"
)

// LeadStore defines the interface for lead persistence.
type LeadStore interface {
	ListForAgent(ctx context.Context, agentID string) ([]domain.Lead, error)
	Get(ctx context.Context, id string) (*domain.Lead, error)
	Update(ctx context.Context, id string, u domain.LeadUpdate) (*domain.Lead, error)
	Create(ctx context.Context, in domain.NewLead) (*domain.Lead, error)
}

// SQLiteLeadStore implements LeadStore backed by SQLite.
type SQLiteLeadStore struct {
	db *sql.DB
}

// NewSQLiteLeadStore creates a new SQLiteLeadStore.
func NewSQLiteLeadStore(db *sql.DB) *SQLiteLeadStore {
	return &SQLiteLeadStore{db: db}
}

const leadColumns = `id, name, company, email, phone, status, source, assigned_agent_id, next_follow_up, created_at`

// ListForAgent returns every lead assigned to the agent, oldest first.
func (s *SQLiteLeadStore) ListForAgent(ctx context.Context, agentID string) ([]domain.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE assigned_agent_id = ? ORDER BY id ASC`,
		agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	leads := []domain.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return leads, nil
}

// Get retrieves a single lead by ID.
func (s *SQLiteLeadStore) Get(ctx context.Context, id string) (*domain.Lead, error) {
	return getLead(ctx, s.db, id)
}

// Update overwrites the lead's status and follow-up date and, when
// u.NotesAppend is set, records it as a note activity. Both writes happen in
// one transaction.
func (s *SQLiteLeadStore) Update(ctx context.Context, id string, u domain.LeadUpdate) (*domain.Lead, error) {
	if !u.Status.Valid() {
		return nil, fmt.Errorf("update lead %s: invalid status %q", id, u.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	res, err := tx.ExecContext(ctx,
		`UPDATE leads SET status = ?, next_follow_up = ?, updated_at = ? WHERE id = ?`,
		string(u.Status), followUpValue(u.NextFollowUp), ts, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("lead %s: %w", id, ErrNotFound)
	}

	if u.NotesAppend != "" {
		if _, err := insertActivity(ctx, tx, domain.ActivityNote, u.NotesAppend, id, ts); err != nil {
			return nil, fmt.Errorf("append note: %w", err)
		}
	}

	lead, err := getLead(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return lead, nil
}

// Create inserts a new lead. The assigned agent must exist.
func (s *SQLiteLeadStore) Create(ctx context.Context, in domain.NewLead) (*domain.Lead, error) {
	status := in.Status
	if status == "" {
		status = domain.StatusNew
	}
	if !status.Valid() {
		return nil, fmt.Errorf("create lead: invalid status %q", status)
	}

	var agents int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM agents WHERE id = ? AND archived = FALSE`, in.AssignedAgent,
	).Scan(&agents); err != nil {
		return nil, fmt.Errorf("check agent: %w", err)
	}
	if agents == 0 {
		return nil, fmt.Errorf("agent %s: %w", in.AssignedAgent, ErrNotFound)
	}

	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (name, company, email, phone, status, source, assigned_agent_id, next_follow_up, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Company, in.Email, in.Phone, string(status), in.Source,
		in.AssignedAgent, followUpValue(in.NextFollowUp), ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.Get(ctx, strconv.FormatInt(id, 10))
}

func getLead(ctx context.Context, q rowQuerier, id string) (*domain.Lead, error) {
	row := q.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	l, err := scanLead(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lead %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return l, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(sc scanner) (*domain.Lead, error) {
	var (
		l         domain.Lead
		id        int64
		agentID   int64
		status    string
		followUp  sql.NullString
		createdAt string
	)
	if err := sc.Scan(&id, &l.Name, &l.Company, &l.Email, &l.Phone, &status, &l.Source, &agentID, &followUp, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan lead: %w", err)
	}

	l.ID = strconv.FormatInt(id, 10)
	l.AssignedAgent = strconv.FormatInt(agentID, 10)

	s, err := domain.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("lead %s: %w", l.ID, err)
	}
	l.Status = s

	if followUp.Valid && followUp.String != "" {
		d, err := domain.ParseDate(followUp.String)
		if err != nil {
			return nil, fmt.Errorf("lead %s follow-up: %w", l.ID, err)
		}
		l.NextFollowUp = &d
	}

	l.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("lead %s created_at: %w", l.ID, err)
	}

	return &l, nil
}

func followUpValue(d *domain.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}
