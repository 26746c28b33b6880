package database

// migration is a named group of SQL statements executed together in a
// single transaction.
type migration struct {
	name  string
	stmts []string
}

// migrations is the ordered schema history. The version number of a
// migration is its 1-based index into this slice; never reorder entries.
var migrations = []migration{
	{
		name: "agents, leads and activities",
		stmts: []string{
			`CREATE TABLE agents (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				email TEXT UNIQUE NOT NULL,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL,
				archived BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,

			`CREATE TABLE leads (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				company TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL DEFAULT '',
				phone TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL CHECK (status IN ('new','contacted','qualified','proposal','negotiation','converted','lost')),
				source TEXT NOT NULL DEFAULT '',
				assigned_agent_id INTEGER NOT NULL,
				next_follow_up TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				FOREIGN KEY (assigned_agent_id) REFERENCES agents(id)
			)`,
			`CREATE INDEX idx_leads_agent ON leads(assigned_agent_id, created_at)`,

			`CREATE TABLE activities (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				type TEXT NOT NULL CHECK (type IN ('call','email','meeting','note')),
				message TEXT NOT NULL,
				lead_id INTEGER,
				created_at TEXT NOT NULL,
				FOREIGN KEY (lead_id) REFERENCES leads(id)
			)`,
			`CREATE INDEX idx_activities_created ON activities(created_at)`,
		},
	},
	{
		name: "activity lookup by lead",
		stmts: []string{
			`CREATE INDEX idx_activities_lead ON activities(lead_id, created_at)`,
		},
	},
}
