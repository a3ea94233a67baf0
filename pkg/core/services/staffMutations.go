package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

// AttendeeClient defines the staff-only API calls on a session's attendees
type AttendeeClient interface {
	RemoveAttendee(ctx context.Context, sessionID, userID int) error
	MarkAttendance(ctx context.Context, sessionID, attendanceID int, attended bool) error
}

// RemoveAttendee cancels a member's booking on a session (staff only)
func RemoveAttendee(
	ctx context.Context,
	api AttendeeClient,
	sessions SessionRefresher,
	user *model.CurrentUser,
	logger *zap.Logger,
	sessionID int,
	attendeeID int,
) error {
	if err := requireStaff(user); err != nil {
		return err
	}

	logger.Debug("Removing attendee", zap.Int("session_id", sessionID), zap.Int("user_id", attendeeID))

	if err := api.RemoveAttendee(ctx, sessionID, attendeeID); err != nil {
		logger.Error("Failed to remove attendee",
			zap.Int("session_id", sessionID),
			zap.Int("user_id", attendeeID),
			zap.Error(err))
		return err
	}

	logger.Info("Attendee removed", zap.Int("session_id", sessionID), zap.Int("user_id", attendeeID))

	sessions.Refresh(ctx, true)
	return nil
}

// MarkAttendanceResult identifies the attendee whose record was updated
type MarkAttendanceResult struct {
	Session  model.Session
	Attendee model.Attendee
	Attended bool
}

// MarkAttendance records attended/no-show for a booking (staff only).
// The session must be in the admin list and must have started.
func MarkAttendance(
	ctx context.Context,
	api AttendeeClient,
	sessions SessionCache,
	user *model.CurrentUser,
	logger *zap.Logger,
	now time.Time,
	sessionID int,
	attendanceID int,
	attended bool,
) (*MarkAttendanceResult, error) {
	if err := requireStaff(user); err != nil {
		return nil, err
	}

	session, ok := findSession(sessions.Admin(), sessionID)
	if !ok {
		return nil, fmt.Errorf("session %d not found", sessionID)
	}
	if !session.IsPast(now) {
		return nil, fmt.Errorf("session %d on %s at %s: %w", sessionID, session.DateKey(), session.ShortTime(), ErrSessionNotStarted)
	}

	attendee, err := findAttendance(session, attendanceID)
	if err != nil {
		return nil, err
	}

	logger.Debug("Marking attendance",
		zap.Int("session_id", sessionID),
		zap.Int("attendance_id", attendanceID),
		zap.Bool("attended", attended))

	if err := api.MarkAttendance(ctx, sessionID, attendanceID, attended); err != nil {
		logger.Error("Failed to mark attendance",
			zap.Int("session_id", sessionID),
			zap.Int("attendance_id", attendanceID),
			zap.Error(err))
		return nil, err
	}

	logger.Info("Attendance marked",
		zap.Int("session_id", sessionID),
		zap.String("attendee", attendee.DisplayName()),
		zap.Bool("attended", attended))

	sessions.Refresh(ctx, true)

	return &MarkAttendanceResult{
		Session:  session,
		Attendee: attendee,
		Attended: attended,
	}, nil
}
