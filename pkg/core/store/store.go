package store

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/gymflex/gymflex-cli/pkg/clients/apiclient"
	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

// SessionLister is the one API call the store needs
type SessionLister interface {
	ListSessions(ctx context.Context) ([]model.Session, error)
}

// Store caches the three session lists the views read from:
// sessions (calendar cells), booked (booking decoration) and admin (staff panel).
// Every fetch replaces its list wholesale; concurrent refetches are last-write-wins.
type Store struct {
	api    SessionLister
	logger *zap.Logger

	mu           sync.RWMutex
	sessions     []model.Session
	booked       []model.Session
	admin        []model.Session
	filter       model.ActivityType
	unauthorized bool
}

func New(api SessionLister, logger *zap.Logger) *Store {
	return &Store{api: api, logger: logger}
}

// SetActivityFilter narrows Sessions() to one activity type; "" clears it
func (s *Store) SetActivityFilter(activity model.ActivityType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = activity
}

func (s *Store) ActivityFilter() model.ActivityType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// FetchAll reloads the calendar session list
func (s *Store) FetchAll(ctx context.Context) {
	sessions := s.fetch(ctx, "sessions")
	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()
}

// FetchBooked reloads the sessions the current user has booked
func (s *Store) FetchBooked(ctx context.Context) {
	var booked []model.Session
	for _, session := range s.fetch(ctx, "booked") {
		if session.Booked {
			booked = append(booked, session)
		}
	}
	s.mu.Lock()
	s.booked = booked
	s.mu.Unlock()
}

// FetchAdmin reloads the staff view of sessions with attendee details
func (s *Store) FetchAdmin(ctx context.Context) {
	admin := s.fetch(ctx, "admin")
	s.mu.Lock()
	s.admin = admin
	s.mu.Unlock()
}

// Refresh runs the full refetch: sessions, booked, and admin when isStaff.
// Unauthorized afterwards reports whether any of those fetches got a 401.
func (s *Store) Refresh(ctx context.Context, isStaff bool) {
	s.mu.Lock()
	s.unauthorized = false
	s.mu.Unlock()

	s.FetchAll(ctx)
	s.FetchBooked(ctx)
	if isStaff {
		s.FetchAdmin(ctx)
	}
}

// fetch never fails: errors are logged and give an empty list.
// A 401 additionally raises the Unauthorized flag; only Refresh lowers it.
func (s *Store) fetch(ctx context.Context, list string) []model.Session {
	sessions, err := s.api.ListSessions(ctx)
	if err != nil {
		unauthorized := errors.Is(err, apiclient.ErrUnauthorized)
		s.mu.Lock()
		s.unauthorized = s.unauthorized || unauthorized
		s.mu.Unlock()

		s.logger.Warn("Failed to fetch sessions",
			zap.String("list", list),
			zap.Bool("unauthorized", unauthorized),
			zap.Error(err))
		return []model.Session{}
	}

	s.logger.Debug("Fetched sessions", zap.String("list", list), zap.Int("count", len(sessions)))
	if sessions == nil {
		return []model.Session{}
	}
	return sessions
}

// Unauthorized reports whether a fetch since the last Refresh was rejected for authentication
func (s *Store) Unauthorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unauthorized
}

// Sessions returns the calendar sessions, narrowed by the activity filter
func (s *Store) Sessions() []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.filter == "" {
		return append([]model.Session(nil), s.sessions...)
	}
	return calendar.FilterByActivity(s.sessions, s.filter)
}

// AllSessions returns the calendar sessions ignoring the activity filter
func (s *Store) AllSessions() []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Session(nil), s.sessions...)
}

func (s *Store) Booked() []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Session(nil), s.booked...)
}

func (s *Store) Admin() []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Session(nil), s.admin...)
}
