package domain

import (
	"fmt"
	"time"
)

// ActivityType classifies a timeline entry.
type ActivityType string

// Activity types.
const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivityMeeting ActivityType = "meeting"
	ActivityNote    ActivityType = "note"
)

// Valid reports whether t is one of the defined activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityCall, ActivityEmail, ActivityMeeting, ActivityNote:
		return true
	}
	return false
}

// ParseActivityType converts a raw string into an ActivityType.
func ParseActivityType(raw string) (ActivityType, error) {
	t := ActivityType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("unknown activity type %q", raw)
	}
	return t, nil
}

// Activity is a single entry in the activity timeline.
type Activity struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	Time      string       `json:"time"`
	LeadID    string       `json:"leadId,omitempty"`
	CreatedAt time.Time    `json:"-"`
}
