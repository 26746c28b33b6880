package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/johnwards/leaddesk/internal/domain"
	"github.com/johnwards/leaddesk/internal/store"
	"github.com/johnwards/leaddesk/internal/testhelpers"
)

var _ store.LeadStore = (*store.SQLiteLeadStore)(nil)

func setupLeadStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	s := store.New(testhelpers.NewMigratedDB(t))

	agent, err := s.Agents.Create(context.Background(), "john@example.com", "John", "Smith")
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	return s, agent.ID
}

func createLead(t *testing.T, s *store.Store, agentID, name string) *domain.Lead {
	t.Helper()
	lead, err := s.Leads.Create(context.Background(), domain.NewLead{
		Name:          name,
		Company:       "Acme",
		Email:         "lead@acme.com",
		Source:        "Website",
		AssignedAgent: agentID,
	})
	if err != nil {
		t.Fatalf("create lead %s: %v", name, err)
	}
	return lead
}

func TestLeadCreateDefaults(t *testing.T) {
	s, agentID := setupLeadStore(t)

	lead := createLead(t, s, agentID, "Sarah Johnson")

	if lead.ID == "" {
		t.Error("expected non-empty ID")
	}
	if lead.Status != domain.StatusNew {
		t.Errorf("expected status=new, got %s", lead.Status)
	}
	if lead.AssignedAgent != agentID {
		t.Errorf("expected agent=%s, got %s", agentID, lead.AssignedAgent)
	}
	if lead.NextFollowUp != nil {
		t.Errorf("expected no follow-up, got %s", lead.NextFollowUp)
	}
	if lead.CreatedAt.IsZero() {
		t.Error("expected created date")
	}
}

func TestLeadCreateUnknownAgent(t *testing.T) {
	s, _ := setupLeadStore(t)

	_, err := s.Leads.Create(context.Background(), domain.NewLead{Name: "Orphan", AssignedAgent: "42"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeadListForAgent(t *testing.T) {
	s, agentID := setupLeadStore(t)
	ctx := context.Background()

	other, err := s.Agents.Create(ctx, "other@example.com", "Other", "Agent")
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}

	createLead(t, s, agentID, "Mine One")
	createLead(t, s, other.ID, "Theirs")
	createLead(t, s, agentID, "Mine Two")

	leads, err := s.Leads.ListForAgent(ctx, agentID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(leads))
	}
	for _, l := range leads {
		if l.AssignedAgent != agentID {
			t.Errorf("lead %s belongs to %s", l.ID, l.AssignedAgent)
		}
	}

	empty, err := s.Leads.ListForAgent(ctx, "999")
	if err != nil {
		t.Fatalf("list unknown agent: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", empty)
	}
}

func TestLeadUpdate(t *testing.T) {
	s, agentID := setupLeadStore(t)
	ctx := context.Background()
	lead := createLead(t, s, agentID, "Sarah Johnson")

	due := domain.NewDate(2024, time.June, 1)
	updated, err := s.Leads.Update(ctx, lead.ID, domain.LeadUpdate{
		Status:       domain.StatusQualified,
		NextFollowUp: &due,
		NotesAppend:  "Asked for pricing",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Status != domain.StatusQualified {
		t.Errorf("expected status=qualified, got %s", updated.Status)
	}
	if updated.NextFollowUp == nil || !updated.NextFollowUp.Equal(due) {
		t.Errorf("expected follow-up %s, got %v", due, updated.NextFollowUp)
	}

	notes, err := s.Activities.ListForLead(ctx, lead.ID, 10)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 1 || notes[0].Type != domain.ActivityNote || notes[0].Message != "Asked for pricing" {
		t.Errorf("unexpected notes %+v", notes)
	}
}

func TestLeadUpdateClearsFollowUp(t *testing.T) {
	s, agentID := setupLeadStore(t)
	ctx := context.Background()
	lead := createLead(t, s, agentID, "Mike Chen")

	due := domain.NewDate(2024, time.June, 1)
	if _, err := s.Leads.Update(ctx, lead.ID, domain.LeadUpdate{Status: domain.StatusContacted, NextFollowUp: &due}); err != nil {
		t.Fatalf("update: %v", err)
	}

	updated, err := s.Leads.Update(ctx, lead.ID, domain.LeadUpdate{Status: domain.StatusContacted})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.NextFollowUp != nil {
		t.Errorf("expected follow-up cleared, got %s", updated.NextFollowUp)
	}

	notes, err := s.Activities.ListForLead(ctx, lead.ID, 10)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected no notes for empty notes text, got %d", len(notes))
	}
}

func TestLeadUpdateNotFound(t *testing.T) {
	s, _ := setupLeadStore(t)

	_, err := s.Leads.Update(context.Background(), "999", domain.LeadUpdate{Status: domain.StatusLost})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeadGetNotFound(t *testing.T) {
	s, _ := setupLeadStore(t)

	_, err := s.Leads.Get(context.Background(), "999")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
