package models

import "fmt"

// FilterAllToken selects every book.
const FilterAllToken = "all"

// Filter is a view criterion: all books or the books in one status.
// The zero value selects all books.
type Filter struct {
	status   Status
	byStatus bool
}

// FilterAll selects every book.
var FilterAll = Filter{}

// FilterStatus selects the books in status s.
func FilterStatus(s Status) Filter {
	return Filter{status: s, byStatus: true}
}

// ParseFilter accepts "", "all" or a status token.
func ParseFilter(token string) (Filter, error) {
	if token == "" || token == FilterAllToken {
		return FilterAll, nil
	}
	s, err := ParseStatus(token)
	if err != nil {
		return Filter{}, fmt.Errorf("filter: %w", err)
	}
	return FilterStatus(s), nil
}

// Filters lists the selectable filters in display order.
func Filters() []Filter {
	out := []Filter{FilterAll}
	for _, s := range Statuses() {
		out = append(out, FilterStatus(s))
	}
	return out
}

// Status returns the selected status and whether the filter restricts by status.
func (f Filter) Status() (Status, bool) { return f.status, f.byStatus }

// Match reports whether b passes the filter.
func (f Filter) Match(b Book) bool {
	return !f.byStatus || b.Status == f.status
}

// String returns the filter token.
func (f Filter) String() string {
	if !f.byStatus {
		return FilterAllToken
	}
	return f.status.String()
}

// Label is the display label of the filter control.
func (f Filter) Label() string {
	if !f.byStatus {
		return "All"
	}
	return f.status.Label()
}
