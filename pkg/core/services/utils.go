package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

var (
	// ErrNotStaff is returned by staff-only operations called by a member
	ErrNotStaff = errors.New("this action is only available to staff")
	// ErrSessionNotStarted is returned when marking attendance for a session that hasn't started
	ErrSessionNotStarted = errors.New("attendance can only be marked once the session has started")
	// ErrSessionStarted is returned when toggling a booking on a session that has already started
	ErrSessionStarted = errors.New("session has already started")
	// ErrSessionFull is returned when booking a session with no slots left
	ErrSessionFull = errors.New("session is full")
	// ErrNoSessions is returned when opening a day that has nothing scheduled
	ErrNoSessions = errors.New("no sessions on this day")
	// ErrPastDate is returned when a member opens or selects a day that is already over
	ErrPastDate = errors.New("past days can't be opened")
	// ErrNotLoggedIn is returned when no user is cached locally
	ErrNotLoggedIn = errors.New("not logged in - please run login")
)

// SessionRefresher performs the full refetch after a successful mutation
type SessionRefresher interface {
	Refresh(ctx context.Context, isStaff bool)
}

// SessionReader is the read side of the session store
type SessionReader interface {
	Sessions() []model.Session
	AllSessions() []model.Session
	Booked() []model.Session
	Admin() []model.Session
	ActivityFilter() model.ActivityType
}

// SessionCache is the session store as seen by mutations
type SessionCache interface {
	SessionRefresher
	SessionReader
}

func requireStaff(user *model.CurrentUser) error {
	if user == nil {
		return ErrNotLoggedIn
	}
	if !user.IsStaff {
		return ErrNotStaff
	}
	return nil
}

func findSession(sessions []model.Session, id int) (model.Session, bool) {
	for _, s := range sessions {
		if s.ID == id {
			return s, true
		}
	}
	return model.Session{}, false
}

func findAttendance(session model.Session, attendanceID int) (model.Attendee, error) {
	for _, a := range session.Attendees {
		if a.AttendanceID != nil && *a.AttendanceID == attendanceID {
			return a, nil
		}
	}
	return model.Attendee{}, fmt.Errorf("attendance record %d not found on session %d", attendanceID, session.ID)
}
