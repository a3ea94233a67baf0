package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

func TestDayView(t *testing.T) {
	sessions := append(fixtureSessions(), model.Session{
		ID: 3, ActivityType: model.ActivityCardio, Date: "2024-06-12", Time: "07:30:00", DurationMinutes: 30, AvailableSlots: 0,
	})

	result, err := DayView(sessions, "2024-06-12", testNow)
	require.NoError(t, err)

	require.Len(t, result.Rows, 2)
	early, late := result.Rows[0], result.Rows[1]
	assert.Equal(t, 3, early.Session.ID, "rows are ordered by start time")
	assert.Equal(t, "07:30 - 08:00", early.TimeWindow)
	assert.Equal(t, "0 slots", early.Availability)
	assert.Equal(t, "TBA", early.Trainer)

	assert.Equal(t, "HIIT", late.Activity)
	assert.Equal(t, "⚡", late.Icon)
	assert.Equal(t, "18:00 - 18:45", late.TimeWindow)
	assert.Equal(t, "11 slots", late.Availability)
	assert.True(t, late.Booked)
	assert.True(t, late.CanToggle)
}

func TestDayView_StartedSessionsArePast(t *testing.T) {
	result, err := DayView(fixtureSessions(), "2024-06-10", testNow)
	require.NoError(t, err)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Past", result.Rows[0].Availability)
	assert.True(t, result.Rows[0].Started)
	assert.False(t, result.Rows[0].CanToggle)
}

func TestDayView_EmptyDay(t *testing.T) {
	_, err := DayView(fixtureSessions(), "2024-06-11", testNow)
	assert.ErrorIs(t, err, ErrNoSessions)

	_, err = DayView(fixtureSessions(), "tomorrow", testNow)
	assert.Error(t, err)
}

func TestCheckDayOpenable(t *testing.T) {
	member := memberUser()

	assert.ErrorIs(t, CheckDayOpenable(member, "2024-06-10", testNow), ErrPastDate)
	assert.NoError(t, CheckDayOpenable(member, "2024-06-11", testNow), "today is still open")
	assert.NoError(t, CheckDayOpenable(member, "2024-06-12", testNow))
	assert.NoError(t, CheckDayOpenable(staffUser(), "2024-06-10", testNow), "staff can look back")

	err := CheckDayOpenable(member, "June 10", testNow)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPastDate)
}

func TestAdminPanel_AttendeeRows(t *testing.T) {
	result, err := AdminPanel(fixtureSessions(), AdminPanelInput{
		User:        staffUser(),
		Selection:   calendar.Selection{AdminDate: "2024-06-10"},
		Today:       testNow,
		Now:         testNow,
		ForwardDays: calendar.DefaultForwardDays,
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-06-10", result.ActiveDate)
	assert.False(t, result.CanPrevious, "first date in range")
	assert.True(t, result.CanNext)
	assert.True(t, result.CanToday)

	require.Len(t, result.Days, 1)
	require.Len(t, result.Days[0].Sessions, 1)
	rows := result.Days[0].Sessions[0].Attendees
	require.Len(t, rows, 3)

	noShow := rows[0]
	assert.Equal(t, "sam", noShow.Username)
	assert.Equal(t, "No Show", noShow.Label)
	assert.True(t, noShow.Struck)
	assert.True(t, noShow.CanMarkAttendance)
	assert.True(t, noShow.MarkAs, "toggling a no-show marks attended")
	assert.Equal(t, 77, noShow.AttendanceID)

	attended := rows[1]
	assert.Equal(t, "Attended", attended.Label)
	assert.False(t, attended.Struck)
	assert.False(t, attended.MarkAs)

	masked := rows[2]
	assert.Equal(t, "User 9", masked.Username)
	assert.Equal(t, "", masked.Label)
	assert.False(t, masked.CanMarkAttendance)
	assert.True(t, masked.CanRemove)
}

func TestAdminPanel_FutureSessionHasNoAttendanceActions(t *testing.T) {
	result, err := AdminPanel(fixtureSessions(), AdminPanelInput{
		User:      staffUser(),
		Selection: calendar.Selection{AdminDate: "2024-06-12"},
		Today:     testNow,
		Now:       testNow,
	})
	require.NoError(t, err)

	row := result.Days[0].Sessions[0].Attendees[0]
	assert.Equal(t, "", row.Label)
	assert.False(t, row.Struck)
	assert.False(t, row.CanMarkAttendance)
	assert.True(t, row.CanRemove)
}

func TestAdminPanel_DefaultsToTodayAndEmptyDay(t *testing.T) {
	result, err := AdminPanel(fixtureSessions(), AdminPanelInput{
		User:  staffUser(),
		Today: testNow,
		Now:   testNow,
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-06-11", result.ActiveDate)
	assert.False(t, result.CanToday, "already on today")
	require.Len(t, result.Days, 1)
	assert.Empty(t, result.Days[0].Sessions)
}

func TestAdminPanel_All(t *testing.T) {
	result, err := AdminPanel(fixtureSessions(), AdminPanelInput{
		User:  staffUser(),
		Today: testNow,
		Now:   testNow,
		All:   true,
	})
	require.NoError(t, err)

	require.Len(t, result.Days, 2)
	assert.Equal(t, "2024-06-10", result.Days[0].Date)
	assert.Equal(t, "2024-06-12", result.Days[1].Date)
}

func TestAdminPanel_MembersRefused(t *testing.T) {
	_, err := AdminPanel(fixtureSessions(), AdminPanelInput{User: memberUser(), Today: testNow, Now: testNow})
	assert.ErrorIs(t, err, ErrNotStaff)
}

func TestCalendarView_Member(t *testing.T) {
	cache := newMockSessionCache()
	cache.filter = model.ActivityYoga

	result, err := CalendarView(cache, CalendarViewInput{
		User:        memberUser(),
		Selection:   calendar.Selection{AdminDate: "2024-06-10"},
		Today:       testNow,
		ForwardDays: calendar.DefaultForwardDays,
	})
	require.NoError(t, err)

	assert.Equal(t, "Welcome, sam", result.Welcome)
	assert.Equal(t, "2024-06-11", result.ActiveDate, "the admin selection is ignored for members")
	assert.Equal(t, "2024-06-10..2024-06-26", result.Range.String())
	assert.Equal(t, model.ActivityYoga, result.Filter)
	assert.Len(t, result.Legend, 5)

	hiitDay, ok := result.Grid.Cell("2024-06-12")
	require.True(t, ok)
	assert.Nil(t, hiitDay.Badge, "filtered out")
	assert.False(t, hiitDay.HasBooking, "booking doesn't match the yoga filter")
}

func TestCalendarView_StaffUsesAdminSelection(t *testing.T) {
	cache := newMockSessionCache()

	result, err := CalendarView(cache, CalendarViewInput{
		User:      staffUser(),
		Selection: calendar.Selection{AdminDate: "2024-06-12", ClientDate: "2024-06-10"},
		Today:     testNow,
	})
	require.NoError(t, err)

	assert.True(t, result.IsStaff)
	assert.Equal(t, "2024-06-12", result.ActiveDate)
	cell, _ := result.Grid.Cell("2024-06-12")
	assert.True(t, cell.IsSelected)
	assert.True(t, cell.HasBooking, "staff see days with any attendee")
}

func TestCalendarView_RequiresUser(t *testing.T) {
	_, err := CalendarView(newMockSessionCache(), CalendarViewInput{Today: testNow})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
