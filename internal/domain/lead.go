package domain

import (
	"fmt"
	"time"
)

// Status is a lead's position in the sales pipeline.
type Status string

// Lead statuses in pipeline order.
const (
	StatusNew         Status = "new"
	StatusContacted   Status = "contacted"
	StatusQualified   Status = "qualified"
	StatusProposal    Status = "proposal"
	StatusNegotiation Status = "negotiation"
	StatusConverted   Status = "converted"
	StatusLost        Status = "lost"
)

// Statuses lists every valid status in pipeline order.
var Statuses = []Status{
	StatusNew,
	StatusContacted,
	StatusQualified,
	StatusProposal,
	StatusNegotiation,
	StatusConverted,
	StatusLost,
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusProposal,
		StatusNegotiation, StatusConverted, StatusLost:
		return true
	}
	return false
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown lead status %q", raw)
	}
	return s, nil
}

// Lead is a sales prospect owned by a single agent.
type Lead struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Company       string    `json:"company"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Status        Status    `json:"status"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"date"`
	AssignedAgent string    `json:"assignedAgent"`
	NextFollowUp  *Date     `json:"nextFollowUp,omitempty"`
}

// Equal reports whether l and o hold the same values, comparing follow-up
// dates by value.
func (l Lead) Equal(o Lead) bool {
	if l.ID != o.ID || l.Name != o.Name || l.Company != o.Company ||
		l.Email != o.Email || l.Phone != o.Phone || l.Status != o.Status ||
		l.Source != o.Source || l.AssignedAgent != o.AssignedAgent ||
		!l.CreatedAt.Equal(o.CreatedAt) {
		return false
	}
	if (l.NextFollowUp == nil) != (o.NextFollowUp == nil) {
		return false
	}
	return l.NextFollowUp == nil || l.NextFollowUp.Equal(*o.NextFollowUp)
}

// LeadUpdate carries the fields written by a save. Status and NextFollowUp
// overwrite the stored values; a nil NextFollowUp clears the follow-up.
// NotesAppend, when non-empty, is appended to the lead's notes log.
type LeadUpdate struct {
	Status       Status `json:"status"`
	NextFollowUp *Date  `json:"nextFollowUp,omitempty"`
	NotesAppend  string `json:"notes,omitempty"`
}

// NewLead holds the fields for a lead being created.
type NewLead struct {
	Name          string `json:"name"`
	Company       string `json:"company"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Source        string `json:"source"`
	Status        Status `json:"status"`
	NextFollowUp  *Date  `json:"nextFollowUp,omitempty"`
	AssignedAgent string `json:"assignedAgent"`
}
