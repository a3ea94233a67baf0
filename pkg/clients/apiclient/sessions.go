package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

// ListSessions fetches every session visible to the current user.
// Staff get attendee details; members get their own booking state.
func (c *Client) ListSessions(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	if err := c.do(ctx, c.authed, http.MethodGet, "sessions/", nil, &sessions); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// CurrentUser fetches the authenticated user's profile
func (c *Client) CurrentUser(ctx context.Context) (*model.CurrentUser, error) {
	var user model.CurrentUser
	if err := c.do(ctx, c.authed, http.MethodGet, "users/me/", nil, &user); err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}
	return &user, nil
}

// Book toggles the current user's booking on a session.
// A full session comes back as a 400 APIError whose Message is "full".
func (c *Client) Book(ctx context.Context, sessionID int) (*model.BookingResult, error) {
	var result model.BookingResult
	path := fmt.Sprintf("sessions/%d/book/", sessionID)
	if err := c.do(ctx, c.authed, http.MethodPost, path, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to toggle booking for session %d: %w", sessionID, err)
	}
	return &result, nil
}

// RemoveAttendee cancels another user's booking (staff only)
func (c *Client) RemoveAttendee(ctx context.Context, sessionID, userID int) error {
	path := fmt.Sprintf("sessions/%d/remove_attendee/", sessionID)
	body := map[string]int{"user_id": userID}
	if err := c.do(ctx, c.authed, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("failed to remove user %d from session %d: %w", userID, sessionID, err)
	}
	return nil
}

type markAttendanceRequest struct {
	AttendanceID int  `json:"attendance_id"`
	Attended     bool `json:"attended"`
}

// MarkAttendance records whether a booked user showed up (staff only, started sessions)
func (c *Client) MarkAttendance(ctx context.Context, sessionID, attendanceID int, attended bool) error {
	path := fmt.Sprintf("sessions/%d/mark_attendance/", sessionID)
	body := markAttendanceRequest{AttendanceID: attendanceID, Attended: attended}
	if err := c.do(ctx, c.authed, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("failed to mark attendance %d on session %d: %w", attendanceID, sessionID, err)
	}
	return nil
}
