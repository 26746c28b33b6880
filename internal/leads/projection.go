package leads

import (
	"slices"

	"github.com/johnwards/leaddesk/internal/domain"
)

type projectionKey struct {
	agentID  string
	revision uint64
	criteria domain.FilterCriteria
}

// Projection memoizes Filter. The caller bumps revision whenever the lead
// set changes; while the agent, revision and criteria stay the same the
// cached result is reused.
//
// A Projection is not safe for concurrent use.
type Projection struct {
	key    projectionKey
	result []domain.Lead
	valid  bool
}

// Project returns Filter(agentID, all, c), reusing the previous result when
// the inputs have not changed. The returned slice is owned by the caller.
func (p *Projection) Project(agentID string, revision uint64, all []domain.Lead, c domain.FilterCriteria) []domain.Lead {
	key := projectionKey{agentID: agentID, revision: revision, criteria: c}
	if !p.valid || p.key != key {
		p.result = Filter(agentID, all, c)
		p.key = key
		p.valid = true
	}
	return slices.Clone(p.result)
}

// Last returns the most recent projection result, or nil if Project has not
// been called.
func (p *Projection) Last() []domain.Lead {
	if !p.valid {
		return nil
	}
	return slices.Clone(p.result)
}

// Contains reports whether the last projection included the lead with the
// given ID.
func (p *Projection) Contains(id string) (domain.Lead, bool) {
	if !p.valid {
		return domain.Lead{}, false
	}
	for _, l := range p.result {
		if l.ID == id {
			return l, true
		}
	}
	return domain.Lead{}, false
}
