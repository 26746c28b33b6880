package leads

import "github.com/johnwards/leaddesk/internal/domain"

// Summary holds the headline counts on an agent's dashboard.
type Summary struct {
	Total          int `json:"total"`
	FollowUpsToday int `json:"followUpsToday"`
	Converted      int `json:"converted"`
	Lost           int `json:"lost"`
}

// Summarize counts the agent's leads, the follow-ups due on today, and the
// converted and lost leads.
func Summarize(agentID string, all []domain.Lead, today domain.Date) Summary {
	var s Summary
	for _, l := range all {
		if l.AssignedAgent != agentID {
			continue
		}
		s.Total++
		if l.NextFollowUp != nil && l.NextFollowUp.Equal(today) {
			s.FollowUpsToday++
		}
		switch l.Status {
		case domain.StatusConverted:
			s.Converted++
		case domain.StatusLost:
			s.Lost++
		}
	}
	return s
}
