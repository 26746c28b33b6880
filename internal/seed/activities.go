package seed

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type activityDef struct {
	typ     string
	message string
	// lead is the lead's email; an unknown email leaves lead_id NULL.
	lead string
	ago  time.Duration
}

var defaultActivities = []activityDef{
	{"call", "Called Sarah Johnson about onboarding", "sarah.j@techcorp.com", 10 * time.Minute},
	{"email", "Sent proposal to James Wilson", "jwilson@summitfin.com", time.Hour},
	{"meeting", "Demo scheduled with Emily Rodriguez", "emily.r@globalretail.com", 3 * time.Hour},
	{"note", "Olivia Brown asked for volume pricing", "olivia@brightside.health", 5 * time.Hour},
	{"call", "Follow-up call with Michael Chen", "m.chen@innovatelabs.io", 26 * time.Hour},
	{"email", "Welcome pack sent to Daniel Martinez", "d.martinez@urbanlog.com", 50 * time.Hour},
	{"note", "Sophia Lee chose a competitor", "sophia.lee@nextgen.media", 5 * 24 * time.Hour},
}

// Activities inserts the demo activity timeline if it is empty. Entries are
// stamped relative to now.
func Activities(ctx context.Context, db *sql.DB, now time.Time) error {
	empty, err := isEmpty(ctx, db, "activities")
	if err != nil || !empty {
		return err
	}

	for _, ad := range defaultActivities {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO activities (type, message, lead_id, created_at) VALUES (?, ?, (SELECT id FROM leads WHERE email = ?), ?)`,
			ad.typ, ad.message, ad.lead, stamp(now.Add(-ad.ago)),
		); err != nil {
			return fmt.Errorf("insert activity %q: %w", ad.message, err)
		}
	}

	return nil
}
