package store

import (
	"database/sql"
	"time"
)

// Store holds all sub-stores used by the application.
type Store struct {
	DB         *sql.DB
	Leads      LeadStore
	Activities ActivityStore
	Agents     AgentStore
}

// New creates a Store with all sub-stores initialized.
func New(db *sql.DB) *Store {
	return &Store{
		DB:         db,
		Leads:      NewSQLiteLeadStore(db),
		Activities: NewSQLiteActivityStore(db, time.Now),
		Agents:     NewSQLiteAgentStore(db),
	}
}
