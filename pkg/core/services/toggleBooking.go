package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gymflex/gymflex-cli/pkg/clients/apiclient"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

// BookingClient defines the API call needed to toggle a booking
type BookingClient interface {
	Book(ctx context.Context, sessionID int) (*model.BookingResult, error)
}

// ToggleBookingResult reports the booking state after the toggle
type ToggleBookingResult struct {
	Session model.Session
	// Status is the server's status string ("booked" or "unbooked")
	Status string
}

// ToggleBooking books the session if the user isn't booked and unbooks it otherwise.
// Sessions that have already started are refused locally. On success the store is refetched.
func ToggleBooking(
	ctx context.Context,
	api BookingClient,
	sessions SessionCache,
	user *model.CurrentUser,
	logger *zap.Logger,
	now time.Time,
	sessionID int,
) (*ToggleBookingResult, error) {
	if user == nil {
		return nil, ErrNotLoggedIn
	}

	logger.Debug("Toggling booking", zap.Int("session_id", sessionID), zap.String("user", user.Username))

	session, known := findSession(sessions.AllSessions(), sessionID)
	if known && session.IsPast(now) {
		return nil, fmt.Errorf("cannot change booking for session %d: %w", sessionID, ErrSessionStarted)
	}

	result, err := api.Book(ctx, sessionID)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest && apiErr.Message == model.BookingStatusFull {
			err = fmt.Errorf("%w: %w", ErrSessionFull, err)
		}
		logger.Error("Failed to toggle booking", zap.Int("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	logger.Info("Booking toggled", zap.Int("session_id", sessionID), zap.String("status", result.Status))

	sessions.Refresh(ctx, user.IsStaff)

	if refreshed, ok := findSession(sessions.AllSessions(), sessionID); ok {
		session = refreshed
	}

	return &ToggleBookingResult{
		Session: session,
		Status:  result.Status,
	}, nil
}
