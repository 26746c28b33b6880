package seed

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type leadDef struct {
	name    string
	company string
	email   string
	phone   string
	status  string
	source  string
	// agent indexes defaultAgents.
	agent int
	// age is how many days before the reference day the lead arrived.
	age int
	// followUp is the follow-up offset in days from the reference day;
	// nil means none.
	followUp *int
}

func days(n int) *int { return &n }

var defaultLeads = []leadDef{
	{"Sarah Johnson", "TechCorp Solutions", "sarah.j@techcorp.com", "+1 555-0101", "new", "Website", 0, 0, days(0)},
	{"Michael Chen", "Innovate Labs", "m.chen@innovatelabs.io", "+1 555-0102", "contacted", "LinkedIn", 0, 1, days(1)},
	{"Emily Rodriguez", "Global Retail Inc", "emily.r@globalretail.com", "+1 555-0103", "qualified", "Referral", 0, 3, days(0)},
	{"James Wilson", "Summit Financial", "jwilson@summitfin.com", "+1 555-0104", "proposal", "Trade Show", 0, 6, days(3)},
	{"Olivia Brown", "Brightside Health", "olivia@brightside.health", "+1 555-0105", "negotiation", "Website", 0, 9, days(2)},
	{"Daniel Martinez", "Urban Logistics", "d.martinez@urbanlog.com", "+1 555-0106", "converted", "Cold Call", 0, 14, nil},
	{"Sophia Lee", "NextGen Media", "sophia.lee@nextgen.media", "+1 555-0107", "lost", "LinkedIn", 0, 20, nil},
	{"Liam Anderson", "Apex Manufacturing", "landerson@apexmfg.com", "+1 555-0108", "new", "Email Campaign", 0, 2, nil},
	{"Ava Thompson", "Clearwater Energy", "ava.t@clearwater.energy", "+1 555-0109", "contacted", "Website", 1, 1, days(1)},
	{"Noah Davis", "Pinnacle Software", "noah@pinnaclesw.com", "+1 555-0110", "qualified", "Referral", 1, 4, days(5)},
	{"Isabella White", "Harbor Foods", "isabella.w@harborfoods.com", "+1 555-0111", "new", "Trade Show", 2, 0, nil},
}

// Leads inserts the demo leads if none exist yet. now anchors the created
// and follow-up dates.
func Leads(ctx context.Context, db *sql.DB, now time.Time) error {
	empty, err := isEmpty(ctx, db, "leads")
	if err != nil || !empty {
		return err
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, time.UTC)
	for _, ld := range defaultLeads {
		created := stamp(day.AddDate(0, 0, -ld.age))

		var followUp any
		if ld.followUp != nil {
			followUp = day.AddDate(0, 0, *ld.followUp).Format(time.DateOnly)
		}

		if _, err := db.ExecContext(ctx,
			`INSERT INTO leads (name, company, email, phone, status, source, assigned_agent_id, next_follow_up, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, (SELECT id FROM agents WHERE email = ?), ?, ?, ?)`,
			ld.name, ld.company, ld.email, ld.phone, ld.status, ld.source, defaultAgents[ld.agent].email, followUp, created, created,
		); err != nil {
			return fmt.Errorf("insert lead %s: %w", ld.name, err)
		}
	}

	return nil
}
