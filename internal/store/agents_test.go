package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/johnwards/leaddesk/internal/store"
	"github.com/johnwards/leaddesk/internal/testhelpers"
)

var _ store.AgentStore = (*store.SQLiteAgentStore)(nil)

func setupAgentStore(t *testing.T) *store.SQLiteAgentStore {
	t.Helper()
	return store.NewSQLiteAgentStore(testhelpers.NewMigratedDB(t))
}

func TestAgentCreate(t *testing.T) {
	s := setupAgentStore(t)
	ctx := context.Background()

	agent, err := s.Create(ctx, "john@example.com", "John", "Smith")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if agent.ID == "" {
		t.Error("expected non-empty ID")
	}
	if agent.Email != "john@example.com" {
		t.Errorf("expected email=john@example.com, got %s", agent.Email)
	}
	if agent.Name() != "John Smith" {
		t.Errorf("expected name=John Smith, got %s", agent.Name())
	}
}

func TestAgentCreateDuplicateEmail(t *testing.T) {
	s := setupAgentStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "dup@example.com", "A", "One"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := s.Create(ctx, "dup@example.com", "B", "Two")
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAgentGet(t *testing.T) {
	s := setupAgentStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "get@example.com", "Get", "Agent")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "get@example.com" {
		t.Errorf("expected email=get@example.com, got %s", got.Email)
	}
}

func TestAgentGetNotFound(t *testing.T) {
	s := setupAgentStore(t)

	_, err := s.Get(context.Background(), "999")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAgentList(t *testing.T) {
	s := setupAgentStore(t)
	ctx := context.Background()

	for i := range 3 {
		if _, err := s.Create(ctx, fmt.Sprintf("agent%d@example.com", i), "Agent", "Test"); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	agents, hasMore, _, err := s.List(ctx, 100, "", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(agents) != 3 {
		t.Fatalf("expected 3 agents, got %d", len(agents))
	}
	if hasMore {
		t.Error("expected hasMore=false")
	}

	agents, hasMore, nextAfter, err := s.List(ctx, 2, "", false)
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(agents))
	}
	if !hasMore {
		t.Error("expected hasMore=true")
	}

	agents2, hasMore2, _, err := s.List(ctx, 2, nextAfter, false)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(agents2) != 1 {
		t.Fatalf("expected 1 agent on page 2, got %d", len(agents2))
	}
	if hasMore2 {
		t.Error("expected hasMore=false on last page")
	}
}
