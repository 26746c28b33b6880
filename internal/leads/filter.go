// Package leads derives the visible lead table from an agent's leads and
// the current filter criteria.
package leads

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/johnwards/leaddesk/internal/domain"
)

// Filter returns the leads owned by agentID that satisfy every predicate in
// c, ordered by c.Sort. Leads with equal sort keys keep their input order.
// The input slice is not modified.
func Filter(agentID string, all []domain.Lead, c domain.FilterCriteria) []domain.Lead {
	term := strings.ToLower(c.Search)

	out := make([]domain.Lead, 0, len(all))
	for _, l := range all {
		if l.AssignedAgent != agentID {
			continue
		}
		if !matchesSearch(l, term) {
			continue
		}
		if c.Status != "" && l.Status != c.Status {
			continue
		}
		if c.Source != "" && l.Source != c.Source {
			continue
		}
		out = append(out, l)
	}

	slices.SortStableFunc(out, comparator(c.Sort))
	return out
}

// matchesSearch reports whether term is a substring of the lead's name,
// email or company. term must already be lower-cased.
func matchesSearch(l domain.Lead, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Name), term) ||
		strings.Contains(strings.ToLower(l.Email), term) ||
		strings.Contains(strings.ToLower(l.Company), term)
}

func comparator(key domain.SortKey) func(a, b domain.Lead) int {
	switch key {
	case domain.SortByName:
		// Collators keep scratch buffers, so each sort gets its own.
		col := collate.New(language.English)
		return func(a, b domain.Lead) int {
			return col.CompareString(a.Name, b.Name)
		}
	case domain.SortByFollowUp:
		return compareFollowUp
	default:
		return func(a, b domain.Lead) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	}
}

// compareFollowUp orders by follow-up date ascending. A missing follow-up
// sorts before every date.
func compareFollowUp(a, b domain.Lead) int {
	switch {
	case a.NextFollowUp == nil && b.NextFollowUp == nil:
		return 0
	case a.NextFollowUp == nil:
		return -1
	case b.NextFollowUp == nil:
		return 1
	}
	return a.NextFollowUp.Compare(*b.NextFollowUp)
}

// Sources returns the distinct lead sources in the order they first appear.
func Sources(all []domain.Lead) []string {
	seen := make(map[string]bool)
	sources := []string{}
	for _, l := range all {
		if l.Source == "" || seen[l.Source] {
			continue
		}
		seen[l.Source] = true
		sources = append(sources, l.Source)
	}
	return sources
}
