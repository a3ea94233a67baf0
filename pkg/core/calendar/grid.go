package calendar

import (
	"fmt"
	"time"

	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

// MaxActivityIcons caps the icons drawn in a day cell. Further activity types
// are dropped without an overflow marker.
const MaxActivityIcons = 5

// DaysPerWeek is the column count of the month grid
const DaysPerWeek = 7

// Badge summarises the sessions on a day
type Badge struct {
	Activities []model.ActivityType // distinct, first-seen order, at most MaxActivityIcons
	Icons      []string
	Count      int
}

// CountText renders "1 session" / "N sessions"
func (b Badge) CountText() string {
	if b.Count == 1 {
		return "1 session"
	}
	return fmt.Sprintf("%d sessions", b.Count)
}

// Cell is the view model of one day in the month grid
type Cell struct {
	Date string
	Day  int
	Row  int
	Col  int

	Sessions []model.Session

	IsSelected   bool
	IsToday      bool
	IsPastDate   bool
	IsOtherMonth bool

	// Dimmed is set for past and other-month days
	Dimmed bool
	// Interactive is false for past days in the member view
	Interactive bool

	// Badge is nil when the day has no sessions
	Badge      *Badge
	HasBooking bool
	Closure    string
}

// ClickAction is what a click on a cell resolves to
type ClickAction int

const (
	ClickNone ClickAction = iota
	ClickSelectAdminDate
	ClickOpenDay
)

func (a ClickAction) String() string {
	switch a {
	case ClickSelectAdminDate:
		return "select-admin-date"
	case ClickOpenDay:
		return "open-day"
	default:
		return "none"
	}
}

// Click resolves a click on the cell for the given role. Past days are inert for
// members, staff always move their admin date, and members open the day view
// when there is something on it.
func (c Cell) Click(isStaff bool) ClickAction {
	if isStaff {
		return ClickSelectAdminDate
	}
	if !c.Interactive || len(c.Sessions) == 0 {
		return ClickNone
	}
	return ClickOpenDay
}

// GridInput carries everything the renderer reads
type GridInput struct {
	// Month is any date within the month to display
	Month time.Time
	Today time.Time

	IsStaff    bool
	ActiveDate string

	// Sessions is the general list; BookedSessions drives the booking indicator
	Sessions       []model.Session
	BookedSessions []model.Session
	ActivityFilter model.ActivityType

	Closures Closures
}

// Grid is a month of cells, Sunday first, padded with adjacent-month days to whole weeks
type Grid struct {
	Month time.Time
	Weeks int
	Cells []Cell
}

// BuildGrid reconciles sessions, bookings and selection into per-cell view models
func BuildGrid(in GridInput) Grid {
	first := time.Date(in.Month.Year(), in.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	lead := int(first.Weekday())
	weeks := (lead + daysInMonth + DaysPerWeek - 1) / DaysPerWeek
	gridStart := first.AddDate(0, 0, -lead)
	gridEnd := gridStart.AddDate(0, 0, weeks*DaysPerWeek-1)

	today := Day(in.Today)
	todayStr := FormatDate(today)

	byDate := groupByDate(filterByActivity(in.Sessions, in.ActivityFilter))
	bookedDates := make(map[string]bool)
	for _, s := range in.BookedSessions {
		if in.ActivityFilter != "" && s.ActivityType != in.ActivityFilter {
			continue
		}
		bookedDates[s.DateKey()] = true
	}
	closures := in.Closures.Between(gridStart, gridEnd)

	cells := make([]Cell, 0, weeks*DaysPerWeek)
	for i := 0; i < weeks*DaysPerWeek; i++ {
		d := gridStart.AddDate(0, 0, i)
		dateStr := FormatDate(d)
		daySessions := byDate[dateStr]

		cell := Cell{
			Date:         dateStr,
			Day:          d.Day(),
			Row:          i / DaysPerWeek,
			Col:          i % DaysPerWeek,
			Sessions:     daySessions,
			IsSelected:   dateStr == in.ActiveDate,
			IsToday:      dateStr == todayStr,
			IsPastDate:   d.Before(today),
			IsOtherMonth: d.Month() != first.Month(),
			Closure:      closures[dateStr],
		}
		cell.Dimmed = cell.IsPastDate || cell.IsOtherMonth
		cell.Interactive = in.IsStaff || !cell.IsPastDate

		if len(daySessions) > 0 {
			cell.Badge = buildBadge(daySessions)
		}

		staffBooked := in.IsStaff && anyHasAttendees(daySessions)
		cell.HasBooking = staffBooked || bookedDates[dateStr]

		cells = append(cells, cell)
	}

	return Grid{Month: first, Weeks: weeks, Cells: cells}
}

// Cell looks up the cell for a date
func (g Grid) Cell(date string) (Cell, bool) {
	for _, c := range g.Cells {
		if c.Date == date {
			return c, true
		}
	}
	return Cell{}, false
}

// Week returns the cells of row i
func (g Grid) Week(i int) []Cell {
	if i < 0 || i >= g.Weeks {
		return nil
	}
	return g.Cells[i*DaysPerWeek : (i+1)*DaysPerWeek]
}

// FilterByActivity narrows sessions to one activity type; "" keeps all
func FilterByActivity(sessions []model.Session, activity model.ActivityType) []model.Session {
	return filterByActivity(sessions, activity)
}

// SessionsOn returns the sessions dated date (YYYY-MM-DD)
func SessionsOn(sessions []model.Session, date string) []model.Session {
	var result []model.Session
	for _, s := range sessions {
		if s.DateKey() == date {
			result = append(result, s)
		}
	}
	return result
}

func filterByActivity(sessions []model.Session, activity model.ActivityType) []model.Session {
	if activity == "" {
		return sessions
	}
	filtered := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.ActivityType == activity {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func groupByDate(sessions []model.Session) map[string][]model.Session {
	byDate := make(map[string][]model.Session)
	for _, s := range sessions {
		key := s.DateKey()
		byDate[key] = append(byDate[key], s)
	}
	return byDate
}

func buildBadge(sessions []model.Session) *Badge {
	b := &Badge{Count: len(sessions)}
	seen := make(map[model.ActivityType]bool)
	for _, s := range sessions {
		if seen[s.ActivityType] {
			continue
		}
		seen[s.ActivityType] = true
		if len(b.Activities) == MaxActivityIcons {
			continue
		}
		b.Activities = append(b.Activities, s.ActivityType)
		b.Icons = append(b.Icons, s.ActivityType.Icon())
	}
	return b
}

func anyHasAttendees(sessions []model.Session) bool {
	for _, s := range sessions {
		if s.HasAttendees() {
			return true
		}
	}
	return false
}
