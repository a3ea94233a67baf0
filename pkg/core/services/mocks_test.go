package services

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/gymflex/gymflex-cli/pkg/clients/sheetsclient"
	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

var testNow = time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func staffUser() *model.CurrentUser  { return &model.CurrentUser{ID: 1, Username: "coach", IsStaff: true} }
func memberUser() *model.CurrentUser { return &model.CurrentUser{ID: 2, Username: "sam"} }

// fixtureSessions: one started yoga class with recorded attendance and one upcoming hiit class
func fixtureSessions() []model.Session {
	return []model.Session{
		{
			ID: 1, ActivityType: model.ActivityYoga, Date: "2024-06-10", Time: "09:00:00",
			DurationMinutes: 60, Capacity: 10, AvailableSlots: 7, TrainerUsername: "kim", HasStarted: true,
			Attendees: []model.Attendee{
				{ID: 5, Username: "sam", Attended: boolPtr(false), AttendanceID: intPtr(77)},
				{ID: 6, Username: "alex", Attended: boolPtr(true), AttendanceID: intPtr(78)},
				{ID: 9},
			},
		},
		{
			ID: 2, ActivityType: model.ActivityHIIT, Date: "2024-06-12", Time: "18:00:00",
			DurationMinutes: 45, Capacity: 12, AvailableSlots: 11, Booked: true,
			Attendees: []model.Attendee{{ID: 5, Username: "sam", AttendanceID: intPtr(80)}},
		},
	}
}

type mockSessionCache struct {
	sessions     []model.Session
	booked       []model.Session
	admin        []model.Session
	filter       model.ActivityType
	refreshCalls []bool
}

func newMockSessionCache() *mockSessionCache {
	sessions := fixtureSessions()
	return &mockSessionCache{sessions: sessions, booked: sessions[1:], admin: sessions}
}

func (m *mockSessionCache) Refresh(ctx context.Context, isStaff bool) {
	m.refreshCalls = append(m.refreshCalls, isStaff)
}

func (m *mockSessionCache) Sessions() []model.Session {
	return calendar.FilterByActivity(m.sessions, m.filter)
}

func (m *mockSessionCache) AllSessions() []model.Session { return m.sessions }
func (m *mockSessionCache) Booked() []model.Session      { return m.booked }
func (m *mockSessionCache) Admin() []model.Session       { return m.admin }

func (m *mockSessionCache) ActivityFilter() model.ActivityType { return m.filter }

type mockBookingClient struct {
	status string
	err    error
	calls  []int
}

func (m *mockBookingClient) Book(ctx context.Context, sessionID int) (*model.BookingResult, error) {
	m.calls = append(m.calls, sessionID)
	if m.err != nil {
		return nil, m.err
	}
	return &model.BookingResult{Status: m.status}, nil
}

type markCall struct {
	sessionID    int
	attendanceID int
	attended     bool
}

type mockAttendeeClient struct {
	removeErr error
	markErr   error
	removed   [][2]int
	marked    []markCall
}

func (m *mockAttendeeClient) RemoveAttendee(ctx context.Context, sessionID, userID int) error {
	m.removed = append(m.removed, [2]int{sessionID, userID})
	return m.removeErr
}

func (m *mockAttendeeClient) MarkAttendance(ctx context.Context, sessionID, attendanceID int, attended bool) error {
	m.marked = append(m.marked, markCall{sessionID, attendanceID, attended})
	return m.markErr
}

type mockAuthClient struct {
	loginErr    error
	registerErr error
	user        *model.CurrentUser
	userErr     error
	loggedOut   bool
	logins      []string
	registered  []string
}

func (m *mockAuthClient) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	m.logins = append(m.logins, username)
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &oauth2.Token{AccessToken: "a", RefreshToken: "r"}, nil
}

func (m *mockAuthClient) Register(ctx context.Context, username, password string) error {
	m.registered = append(m.registered, username)
	return m.registerErr
}

func (m *mockAuthClient) CurrentUser(ctx context.Context) (*model.CurrentUser, error) {
	if m.userErr != nil {
		return nil, m.userErr
	}
	return m.user, nil
}

func (m *mockAuthClient) Logout() {
	m.loggedOut = true
}

type mockUserCache struct {
	user    *model.CurrentUser
	saved   []*model.CurrentUser
	cleared bool
}

func (m *mockUserCache) LoadUser() (*model.CurrentUser, error) { return m.user, nil }

func (m *mockUserCache) SaveUser(user *model.CurrentUser) error {
	m.user = user
	m.saved = append(m.saved, user)
	return nil
}

func (m *mockUserCache) Clear() error {
	m.user = nil
	m.cleared = true
	return nil
}

type mockPublisher struct {
	spreadsheetID string
	register      *sheetsclient.AttendanceRegister
	err           error
}

func (m *mockPublisher) PublishAttendance(spreadsheetID string, register *sheetsclient.AttendanceRegister) (string, error) {
	m.spreadsheetID = spreadsheetID
	m.register = register
	if m.err != nil {
		return "", m.err
	}
	title, err := sheetsclient.AttendanceTabTitle(register.From, register.To)
	return title, err
}
