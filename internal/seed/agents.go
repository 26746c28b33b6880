package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/johnwards/leaddesk/internal/store"
)

type agentDef struct {
	email     string
	firstName string
	lastName  string
}

// Agent IDs follow insertion order, so the first agent is "1".
var defaultAgents = []agentDef{
	{email: "john.smith@leaddesk.test", firstName: "John", lastName: "Smith"},
	{email: "maria.garcia@leaddesk.test", firstName: "Maria", lastName: "Garcia"},
	{email: "david.kim@leaddesk.test", firstName: "David", lastName: "Kim"},
}

// Agents inserts the default agents if none exist yet.
func Agents(ctx context.Context, db *sql.DB) error {
	empty, err := isEmpty(ctx, db, "agents")
	if err != nil || !empty {
		return err
	}

	agents := store.NewSQLiteAgentStore(db)
	for _, ad := range defaultAgents {
		if _, err := agents.Create(ctx, ad.email, ad.firstName, ad.lastName); err != nil {
			return fmt.Errorf("create agent %s: %w", ad.email, err)
		}
	}

	return nil
}
