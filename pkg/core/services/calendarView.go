package services

import (
	"time"

	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

// LegendEntry maps an activity icon to its display name
type LegendEntry struct {
	Activity model.ActivityType
	Icon     string
	Name     string
}

// CalendarViewInput selects the month and role for the calendar
type CalendarViewInput struct {
	User      *model.CurrentUser
	Selection calendar.Selection
	Today     time.Time
	// Month is any date in the month to show; zero means the active date's month
	Month       time.Time
	ForwardDays int
	Closures    calendar.Closures
}

// CalendarViewResult is everything a renderer needs for the month calendar
type CalendarViewResult struct {
	Welcome    string
	IsStaff    bool
	ActiveDate string
	Range      calendar.DateRange
	Navigator  calendar.Navigator
	Grid       calendar.Grid
	Filter     model.ActivityType
	Legend     []LegendEntry
}

// CalendarView reconciles the store and the role's selection into a month grid.
// Staff navigate over the admin list's range; members over the calendar list's.
func CalendarView(sessions SessionReader, in CalendarViewInput) (*CalendarViewResult, error) {
	if in.User == nil {
		return nil, ErrNotLoggedIn
	}
	isStaff := in.User.IsStaff

	rangeSource := sessions.AllSessions()
	if isStaff {
		rangeSource = sessions.Admin()
	}
	rng := calendar.NavigableRange(rangeSource, in.Today, in.ForwardDays)
	active := calendar.ResolveActiveDate(isStaff, in.Selection, rng, in.Today)

	month := in.Month
	if month.IsZero() {
		parsed, err := calendar.ParseDate(active)
		if err != nil {
			return nil, err
		}
		month = parsed
	}

	filter := sessions.ActivityFilter()
	grid := calendar.BuildGrid(calendar.GridInput{
		Month:          month,
		Today:          in.Today,
		IsStaff:        isStaff,
		ActiveDate:     active,
		Sessions:       sessions.Sessions(),
		BookedSessions: sessions.Booked(),
		ActivityFilter: filter,
		Closures:       in.Closures,
	})

	return &CalendarViewResult{
		Welcome:    "Welcome, " + in.User.Username,
		IsStaff:    isStaff,
		ActiveDate: active,
		Range:      rng,
		Navigator:  calendar.NewNavigator(rng, active, in.Today),
		Grid:       grid,
		Filter:     filter,
		Legend:     Legend(),
	}, nil
}

// Legend lists the known activities with their icons
func Legend() []LegendEntry {
	var entries []LegendEntry
	for _, a := range model.ActivityTypes() {
		entries = append(entries, LegendEntry{Activity: a, Icon: a.Icon(), Name: a.DisplayName()})
	}
	return entries
}
