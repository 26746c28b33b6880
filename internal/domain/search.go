package domain

import "fmt"

// FilterAll is the wire value meaning "do not filter on this field".
const FilterAll = "all"

// SortKey selects the ordering of the lead table.
type SortKey string

// Sort keys.
const (
	SortByDate     SortKey = "date"
	SortByName     SortKey = "name"
	SortByFollowUp SortKey = "followup"
)

// ParseSortKey converts a raw string into a SortKey. An empty string
// selects SortByDate.
func ParseSortKey(raw string) (SortKey, error) {
	switch SortKey(raw) {
	case "":
		return SortByDate, nil
	case SortByDate, SortByName, SortByFollowUp:
		return SortKey(raw), nil
	}
	return "", &ValidationError{Field: "sort", Message: fmt.Sprintf("unknown sort key %q", raw)}
}

// FilterCriteria describes which of an agent's leads are visible and in
// what order. Empty Status and Source match every lead.
type FilterCriteria struct {
	Search string  `json:"search"`
	Status Status  `json:"status,omitempty"`
	Source string  `json:"source,omitempty"`
	Sort   SortKey `json:"sort"`
}

// DefaultCriteria returns criteria that match everything, newest first.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{Sort: SortByDate}
}

// ParseCriteria builds FilterCriteria from raw request values. Both "" and
// "all" disable the status and source filters.
func ParseCriteria(search, status, source, sort string) (FilterCriteria, error) {
	c := FilterCriteria{Search: search}

	if status != "" && status != FilterAll {
		s, err := ParseStatus(status)
		if err != nil {
			return FilterCriteria{}, &ValidationError{Field: "status", Message: err.Error()}
		}
		c.Status = s
	}

	if source != FilterAll {
		c.Source = source
	}

	key, err := ParseSortKey(sort)
	if err != nil {
		return FilterCriteria{}, err
	}
	c.Sort = key

	return c, nil
}

// ActiveFilter is a single non-default filter, as shown in the filter bar.
type ActiveFilter struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Active returns the filters that currently narrow the lead table.
func (c FilterCriteria) Active() []ActiveFilter {
	active := []ActiveFilter{}
	if c.Search != "" {
		active = append(active, ActiveFilter{Field: "search", Value: c.Search})
	}
	if c.Status != "" {
		active = append(active, ActiveFilter{Field: "status", Value: string(c.Status)})
	}
	if c.Source != "" {
		active = append(active, ActiveFilter{Field: "source", Value: c.Source})
	}
	return active
}
