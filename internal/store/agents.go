package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// Agent is a sales representative who owns leads.
type Agent struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Archived  bool   `json:"archived"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Name returns the agent's display name.
func (a *Agent) Name() string {
	return a.FirstName + " " + a.LastName
}

// AgentStore defines the interface for agent persistence.
type AgentStore interface {
	List(ctx context.Context, limit int, after string, archived bool) ([]*Agent, bool, string, error)
	Get(ctx context.Context, id string) (*Agent, error)
	Create(ctx context.Context, email, firstName, lastName string) (*Agent, error)
}

// SQLiteAgentStore implements AgentStore backed by SQLite.
type SQLiteAgentStore struct {
	db *sql.DB
}

// NewSQLiteAgentStore creates a new SQLiteAgentStore.
func NewSQLiteAgentStore(db *sql.DB) *SQLiteAgentStore {
	return &SQLiteAgentStore{db: db}
}

// Create inserts a new agent. A duplicate email returns ErrConflict.
func (s *SQLiteAgentStore) Create(ctx context.Context, email, firstName, lastName string) (*Agent, error) {
	ts := now()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO agents (email, first_name, last_name, archived, created_at, updated_at)
		 VALUES (?, ?, ?, FALSE, ?, ?)`,
		email, firstName, lastName, ts, ts,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("agent %s: %w", email, ErrConflict)
		}
		return nil, fmt.Errorf("insert agent: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return &Agent{
		ID:        strconv.FormatInt(id, 10),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}

// List returns a page of agents ordered by ID, whether more remain, and the
// cursor for the next page.
//
//nolint:gocritic // named results provide clarity for multiple return values
func (s *SQLiteAgentStore) List(ctx context.Context, limit int, after string, archived bool) ([]*Agent, bool, string, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, email, first_name, last_name, archived, created_at, updated_at FROM agents WHERE archived = ?`
	args := []any{archived}

	if after != "" {
		query += ` AND id > ?`
		args = append(args, after)
	}

	query += ` ORDER BY id ASC LIMIT ?`
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, "", fmt.Errorf("list agents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	agents := []*Agent{}
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, false, "", err
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, false, "", fmt.Errorf("rows iteration: %w", err)
	}

	hasMore := false
	nextAfter := ""
	if len(agents) > limit {
		hasMore = true
		nextAfter = agents[limit-1].ID
		agents = agents[:limit]
	}

	return agents, hasMore, nextAfter, nil
}

// Get retrieves a single agent by ID.
func (s *SQLiteAgentStore) Get(ctx context.Context, id string) (*Agent, error) {
	a, err := scanAgent(s.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name, archived, created_at, updated_at FROM agents WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("agent %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

func scanAgent(sc scanner) (*Agent, error) {
	var a Agent
	var id int64
	if err := sc.Scan(&id, &a.Email, &a.FirstName, &a.LastName, &a.Archived, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan agent: %w", err)
	}
	a.ID = strconv.FormatInt(id, 10)
	return &a, nil
}
