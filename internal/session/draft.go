package session

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/johnwards/leaddesk/internal/domain"
)

// MaxNotesLength is the advisory notes length shown by the editor. It is
// reported, never enforced.
const MaxNotesLength = 500

// LeadWriter is the part of the lead store the session writes to.
type LeadWriter interface {
	Update(ctx context.Context, id string, u domain.LeadUpdate) (*domain.Lead, error)
	Create(ctx context.Context, in domain.NewLead) (*domain.Lead, error)
}

// Draft is the unsaved edit state of the detail modal. FollowUp holds the
// raw YYYY-MM-DD text; empty means no follow-up.
type Draft struct {
	Status   domain.Status `json:"status"`
	Notes    string        `json:"notes"`
	FollowUp string        `json:"nextFollowUp"`
}

// NewDraft seeds a draft from the lead's current values with empty notes.
func NewDraft(l domain.Lead) Draft {
	d := Draft{Status: l.Status}
	if l.NextFollowUp != nil {
		d.FollowUp = l.NextFollowUp.String()
	}
	return d
}

// NotesOverLimit reports whether the notes exceed MaxNotesLength characters.
func (d Draft) NotesOverLimit() bool {
	return utf8.RuneCountInString(d.Notes) > MaxNotesLength
}

// Validate converts the draft into a store update.
func (d Draft) Validate() (domain.LeadUpdate, error) {
	if !d.Status.Valid() {
		return domain.LeadUpdate{}, &ValidationError{Field: "status", Message: "must be one of new, contacted, qualified, proposal, negotiation, converted, lost"}
	}

	u := domain.LeadUpdate{Status: d.Status, NotesAppend: d.Notes}

	if d.FollowUp != "" {
		due, err := domain.ParseDate(d.FollowUp)
		if err != nil {
			return domain.LeadUpdate{}, &ValidationError{Field: "nextFollowUp", Message: "must be a valid date (YYYY-MM-DD)"}
		}
		u.NextFollowUp = &due
	}

	return u, nil
}

// Save validates the draft and writes it to the store with a single
// Update call. Validation failures never reach the store.
func Save(ctx context.Context, leads LeadWriter, lead domain.Lead, d Draft) (*domain.Lead, error) {
	u, err := d.Validate()
	if err != nil {
		return nil, err
	}
	return update(ctx, leads, lead.ID, u)
}

func update(ctx context.Context, leads LeadWriter, id string, u domain.LeadUpdate) (*domain.Lead, error) {
	updated, err := leads.Update(ctx, id, u)
	if err != nil {
		return nil, classify("update lead", "lead", id, err)
	}
	return updated, nil
}

// Form is the add-lead modal's input.
type Form struct {
	Name     string        `json:"name"`
	Company  string        `json:"company"`
	Email    string        `json:"email"`
	Phone    string        `json:"phone"`
	Source   string        `json:"source"`
	Status   domain.Status `json:"status"`
	FollowUp string        `json:"nextFollowUp"`
}

// Validate converts the form into a lead owned by agentID.
func (f Form) Validate(agentID string) (domain.NewLead, error) {
	in := domain.NewLead{
		Name:          strings.TrimSpace(f.Name),
		Company:       strings.TrimSpace(f.Company),
		Email:         strings.TrimSpace(f.Email),
		Phone:         strings.TrimSpace(f.Phone),
		Source:        strings.TrimSpace(f.Source),
		Status:        f.Status,
		AssignedAgent: agentID,
	}

	if in.Name == "" {
		return domain.NewLead{}, &ValidationError{Field: "name", Message: "is required"}
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return domain.NewLead{}, &ValidationError{Field: "email", Message: "is invalid"}
		}
	}
	if in.Status == "" {
		in.Status = domain.StatusNew
	}
	if !in.Status.Valid() {
		return domain.NewLead{}, &ValidationError{Field: "status", Message: "must be one of new, contacted, qualified, proposal, negotiation, converted, lost"}
	}
	if f.FollowUp != "" {
		due, err := domain.ParseDate(f.FollowUp)
		if err != nil {
			return domain.NewLead{}, &ValidationError{Field: "nextFollowUp", Message: "must be a valid date (YYYY-MM-DD)"}
		}
		in.NextFollowUp = &due
	}

	return in, nil
}

// Submit validates the form and creates the lead with a single Create call.
func Submit(ctx context.Context, leads LeadWriter, agentID string, f Form) (*domain.Lead, error) {
	in, err := f.Validate(agentID)
	if err != nil {
		return nil, err
	}

	created, err := leads.Create(ctx, in)
	if err != nil {
		return nil, classify("create lead", "agent", agentID, err)
	}
	return created, nil
}
