package calendar

import (
	"sort"
	"time"
)

// Selection holds the active date for each role. Staff and members navigate
// independently, so each role only ever reads and writes its own field.
type Selection struct {
	AdminDate  string `json:"admin_date,omitempty"`
	ClientDate string `json:"client_date,omitempty"`
}

// For returns the stored selection for the role, or "" if none
func (s Selection) For(isStaff bool) string {
	if isStaff {
		return s.AdminDate
	}
	return s.ClientDate
}

// Set stores date as the role's selection
func (s *Selection) Set(isStaff bool, date string) {
	if isStaff {
		s.AdminDate = date
		return
	}
	s.ClientDate = date
}

// Clear drops the role's selection so the default applies again
func (s *Selection) Clear(isStaff bool) {
	s.Set(isStaff, "")
}

// ResolveActiveDate picks the date a role is looking at: its explicit selection
// if set, otherwise today when today is navigable, otherwise the first date in range.
func ResolveActiveDate(isStaff bool, sel Selection, rng DateRange, today time.Time) string {
	if selected := sel.For(isStaff); selected != "" {
		return selected
	}

	todayStr := FormatDate(Day(today))
	if rng.Contains(todayStr) {
		return todayStr
	}
	return FormatDate(rng.Start)
}

// Navigator steps an active date through a navigable range
type Navigator struct {
	dates   []string
	current string
	today   string
}

func NewNavigator(rng DateRange, current string, today time.Time) Navigator {
	return Navigator{
		dates:   rng.Dates(),
		current: current,
		today:   FormatDate(Day(today)),
	}
}

// Current returns the date the navigator is positioned on
func (n Navigator) Current() string {
	return n.current
}

// Previous returns the latest range date before the current one.
// ok is false at the start boundary, in which case nothing should change.
func (n Navigator) Previous() (date string, ok bool) {
	// dates are YYYY-MM-DD so lexical order is chronological
	i := sort.SearchStrings(n.dates, n.current)
	if i == 0 {
		return n.current, false
	}
	return n.dates[i-1], true
}

// Next returns the earliest range date after the current one.
// ok is false at the end boundary.
func (n Navigator) Next() (date string, ok bool) {
	i := sort.SearchStrings(n.dates, n.current)
	if i < len(n.dates) && n.dates[i] == n.current {
		i++
	}
	if i >= len(n.dates) {
		return n.current, false
	}
	return n.dates[i], true
}

// Today returns today's date; ok is false if already there
func (n Navigator) Today() (date string, ok bool) {
	if n.current == n.today {
		return n.current, false
	}
	return n.today, true
}

func (n Navigator) CanPrevious() bool {
	_, ok := n.Previous()
	return ok
}

func (n Navigator) CanNext() bool {
	_, ok := n.Next()
	return ok
}

func (n Navigator) CanToday() bool {
	_, ok := n.Today()
	return ok
}
