package services

import (
	"time"

	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

// AttendeeRow is one booked user in the admin panel
type AttendeeRow struct {
	UserID   int
	Username string
	// AttendanceID is 0 when the API sent no attendance record
	AttendanceID int
	// Label is "Attended" or "No Show" for started sessions with a recorded outcome
	Label string
	// Struck renders the name struck through (started session, marked no-show)
	Struck            bool
	CanMarkAttendance bool
	// MarkAs is the value a mark-attendance action on this row would set
	MarkAs    bool
	CanRemove bool
}

// AdminSessionRow is one session in the admin panel with its attendee rows
type AdminSessionRow struct {
	Session   model.Session
	Icon      string
	Activity  string
	Time      string
	Started   bool
	Attendees []AttendeeRow
}

// AdminDay groups the admin rows of one date
type AdminDay struct {
	Date     string
	Sessions []AdminSessionRow
}

// AdminPanelInput selects what the panel shows
type AdminPanelInput struct {
	User        *model.CurrentUser
	Selection   calendar.Selection
	Today       time.Time
	Now         time.Time
	ForwardDays int
	// All lists every date with sessions instead of just the active admin date
	All bool
}

// AdminPanelResult is the staff bookings panel
type AdminPanelResult struct {
	ActiveDate  string
	Range       calendar.DateRange
	Days        []AdminDay
	CanPrevious bool
	CanNext     bool
	CanToday    bool
	Navigator   calendar.Navigator
}

// AdminPanel builds the staff bookings panel from the admin session list
func AdminPanel(sessions []model.Session, in AdminPanelInput) (*AdminPanelResult, error) {
	if err := requireStaff(in.User); err != nil {
		return nil, err
	}

	rng := calendar.NavigableRange(sessions, in.Today, in.ForwardDays)
	active := calendar.ResolveActiveDate(true, in.Selection, rng, in.Today)
	nav := calendar.NewNavigator(rng, active, in.Today)

	result := &AdminPanelResult{
		ActiveDate:  active,
		Range:       rng,
		CanPrevious: nav.CanPrevious(),
		CanNext:     nav.CanNext(),
		CanToday:    nav.CanToday(),
		Navigator:   nav,
	}

	if !in.All {
		result.Days = []AdminDay{buildAdminDay(active, calendar.SessionsOn(sessions, active), in.Now)}
		return result, nil
	}

	sorted := append([]model.Session(nil), sessions...)
	sortByTime(sorted)
	var current *AdminDay
	for _, s := range sorted {
		if current == nil || current.Date != s.DateKey() {
			result.Days = append(result.Days, AdminDay{Date: s.DateKey()})
			current = &result.Days[len(result.Days)-1]
		}
		current.Sessions = append(current.Sessions, buildAdminSessionRow(s, in.Now))
	}

	return result, nil
}

func buildAdminDay(date string, sessions []model.Session, now time.Time) AdminDay {
	sortByTime(sessions)
	day := AdminDay{Date: date}
	for _, s := range sessions {
		day.Sessions = append(day.Sessions, buildAdminSessionRow(s, now))
	}
	return day
}

func buildAdminSessionRow(s model.Session, now time.Time) AdminSessionRow {
	started := s.IsPast(now)
	row := AdminSessionRow{
		Session:  s,
		Icon:     s.ActivityType.Icon(),
		Activity: s.ActivityType.DisplayName(),
		Time:     s.ShortTime(),
		Started:  started,
	}
	for _, a := range s.Attendees {
		row.Attendees = append(row.Attendees, buildAttendeeRow(a, started))
	}
	return row
}

func buildAttendeeRow(a model.Attendee, started bool) AttendeeRow {
	row := AttendeeRow{
		UserID:    a.ID,
		Username:  a.DisplayName(),
		CanRemove: true,
		MarkAs:    true,
	}
	if a.AttendanceID != nil {
		row.AttendanceID = *a.AttendanceID
	}
	if !started {
		return row
	}

	if a.Attended != nil {
		if *a.Attended {
			row.Label = "Attended"
		} else {
			row.Label = "No Show"
			row.Struck = true
		}
		row.MarkAs = !*a.Attended
	}
	row.CanMarkAttendance = a.AttendanceID != nil
	return row
}
