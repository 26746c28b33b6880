package leads_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/johnwards/leaddesk/internal/domain"
	"github.com/johnwards/leaddesk/internal/leads"
)

func TestProjectionMatchesFilter(t *testing.T) {
	var p leads.Projection
	all := sampleLeads()
	c := domain.FilterCriteria{Search: "a", Sort: domain.SortByName}

	got := p.Project("a1", 1, all, c)
	want := leads.Filter("a1", all, c)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("projection = %v, want %v", ids(got), ids(want))
	}
}

func TestProjectionReusesResultForSameRevision(t *testing.T) {
	var p leads.Projection
	all := sampleLeads()
	c := domain.DefaultCriteria()

	first := p.Project("a1", 1, all, c)

	// Same revision: a changed slice is not looked at.
	changed := append(sampleLeads(), domain.Lead{ID: "9", AssignedAgent: "a1", CreatedAt: day(30)})
	second := p.Project("a1", 1, changed, c)
	if !reflect.DeepEqual(ids(first), ids(second)) {
		t.Errorf("expected cached result, got %v vs %v", ids(second), ids(first))
	}

	// New revision: recomputed.
	third := p.Project("a1", 2, changed, c)
	if len(third) != len(first)+1 || third[0].ID != "9" {
		t.Errorf("expected recomputed result with lead 9 first, got %v", ids(third))
	}
}

func TestProjectionRecomputesOnCriteriaChange(t *testing.T) {
	var p leads.Projection
	all := sampleLeads()

	_ = p.Project("a1", 1, all, domain.DefaultCriteria())
	got := p.Project("a1", 1, all, domain.FilterCriteria{Status: domain.StatusConverted, Sort: domain.SortByDate})

	if !reflect.DeepEqual(ids(got), []string{"2"}) {
		t.Errorf("ids = %v, want [2]", ids(got))
	}
}

func TestProjectionResultIsCopied(t *testing.T) {
	var p leads.Projection
	got := p.Project("a1", 1, sampleLeads(), domain.DefaultCriteria())
	got[0].Name = "mutated"

	if p.Last()[0].Name == "mutated" {
		t.Error("caller mutation leaked into the cached projection")
	}
}

func TestProjectionContains(t *testing.T) {
	var p leads.Projection
	if _, ok := p.Contains("1"); ok {
		t.Error("empty projection should contain nothing")
	}

	_ = p.Project("a1", 1, sampleLeads(), domain.FilterCriteria{Status: domain.StatusNew, Sort: domain.SortByDate})

	if _, ok := p.Contains("1"); !ok {
		t.Error("expected lead 1 in projection")
	}
	if _, ok := p.Contains("2"); ok {
		t.Error("lead 2 was filtered out and should not be contained")
	}
	if _, ok := p.Contains("4"); ok {
		t.Error("lead 4 belongs to another agent")
	}
}

func TestSummarize(t *testing.T) {
	today := domain.NewDate(2024, time.April, 5)
	got := leads.Summarize("a1", sampleLeads(), today)

	want := leads.Summary{Total: 4, FollowUpsToday: 1, Converted: 1, Lost: 0}
	if got != want {
		t.Errorf("summary = %+v, want %+v", got, want)
	}
}
