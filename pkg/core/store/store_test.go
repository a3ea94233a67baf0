package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/gymflex/gymflex-cli/pkg/clients/apiclient"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

// mockSessionLister returns the queued responses in order, repeating the last one
type mockSessionLister struct {
	responses [][]model.Session
	errs      []error
	calls     int
}

func (m *mockSessionLister) ListSessions(ctx context.Context) ([]model.Session, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if len(m.responses) == 0 {
		return nil, nil
	}
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	return m.responses[i], nil
}

func ids(sessions []model.Session) []int {
	out := []int{}
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}

func TestFetchAll_ReplacesWholesale(t *testing.T) {
	api := &mockSessionLister{responses: [][]model.Session{
		{{ID: 1}, {ID: 2}, {ID: 3}},
		{{ID: 4}},
	}}
	s := New(api, zap.NewNop())

	s.FetchAll(context.Background())
	assert.Equal(t, []int{1, 2, 3}, ids(s.Sessions()))

	s.FetchAll(context.Background())
	assert.Equal(t, []int{4}, ids(s.Sessions()), "no merge with the previous list")
}

func TestFetchBooked_KeepsOnlyBooked(t *testing.T) {
	api := &mockSessionLister{responses: [][]model.Session{
		{{ID: 1, Booked: true}, {ID: 2}, {ID: 3, Booked: true}},
	}}
	s := New(api, zap.NewNop())

	s.FetchBooked(context.Background())

	assert.Equal(t, []int{1, 3}, ids(s.Booked()))
	assert.Empty(t, s.Sessions(), "booked fetch doesn't touch the calendar list")
}

func TestActivityFilterAppliesOnlyToSessions(t *testing.T) {
	list := []model.Session{
		{ID: 1, ActivityType: model.ActivityYoga, Booked: true},
		{ID: 2, ActivityType: model.ActivityHIIT, Booked: true},
	}
	api := &mockSessionLister{responses: [][]model.Session{list}}
	s := New(api, zap.NewNop())
	s.Refresh(context.Background(), true)

	s.SetActivityFilter(model.ActivityYoga)

	assert.Equal(t, model.ActivityYoga, s.ActivityFilter())
	assert.Equal(t, []int{1}, ids(s.Sessions()))
	assert.Equal(t, []int{1, 2}, ids(s.AllSessions()))
	assert.Equal(t, []int{1, 2}, ids(s.Booked()))
	assert.Equal(t, []int{1, 2}, ids(s.Admin()))

	s.SetActivityFilter("")
	assert.Equal(t, []int{1, 2}, ids(s.Sessions()))
}

func TestRefresh_SkipsAdminForMembers(t *testing.T) {
	api := &mockSessionLister{responses: [][]model.Session{{{ID: 1}}}}
	s := New(api, zap.NewNop())

	s.Refresh(context.Background(), false)
	assert.Equal(t, 2, api.calls)
	assert.Empty(t, s.Admin())

	s.Refresh(context.Background(), true)
	assert.Equal(t, 5, api.calls)
	assert.Equal(t, []int{1}, ids(s.Admin()))
}

func TestFetch_UnauthorizedGivesEmptyListAndFlag(t *testing.T) {
	unauthorized := fmt.Errorf("failed to list sessions: %w", &apiclient.APIError{StatusCode: 401})
	api := &mockSessionLister{
		responses: [][]model.Session{{{ID: 1}}, {{ID: 1}}},
		errs:      []error{nil, unauthorized},
	}
	s := New(api, zap.NewNop())

	s.FetchAll(context.Background())
	assert.Len(t, s.Sessions(), 1)
	assert.False(t, s.Unauthorized())

	s.FetchAll(context.Background())
	assert.Empty(t, s.Sessions(), "a failed fetch clears the list")
	assert.True(t, s.Unauthorized())
}

func TestRefresh_UnauthorizedSurvivesLaterSuccess(t *testing.T) {
	unauthorized := fmt.Errorf("failed to list sessions: %w", apiclient.ErrUnauthorized)
	api := &mockSessionLister{
		responses: [][]model.Session{{{ID: 1, Booked: true}}},
		errs:      []error{unauthorized},
	}
	s := New(api, zap.NewNop())

	s.Refresh(context.Background(), true)

	assert.Equal(t, 3, api.calls)
	assert.Empty(t, s.Sessions())
	assert.Equal(t, []int{1}, ids(s.Booked()))
	assert.True(t, s.Unauthorized(), "a 401 on any list is reported after the refetch")
}

func TestRefresh_ResetsUnauthorized(t *testing.T) {
	unauthorized := fmt.Errorf("failed to list sessions: %w", apiclient.ErrUnauthorized)
	api := &mockSessionLister{
		responses: [][]model.Session{{{ID: 1}}},
		errs:      []error{unauthorized, unauthorized},
	}
	s := New(api, zap.NewNop())

	s.Refresh(context.Background(), false)
	assert.True(t, s.Unauthorized())

	s.Refresh(context.Background(), false)
	assert.False(t, s.Unauthorized())
	assert.Equal(t, []int{1}, ids(s.Sessions()))
}

func TestSessions_ReturnsCopy(t *testing.T) {
	api := &mockSessionLister{responses: [][]model.Session{{{ID: 1}, {ID: 2}}}}
	s := New(api, zap.NewNop())
	s.FetchAll(context.Background())

	got := s.Sessions()
	got[0].ID = 99

	assert.Equal(t, []int{1, 2}, ids(s.Sessions()))
}

func TestFetch_OtherErrorsDontFlagUnauthorized(t *testing.T) {
	api := &mockSessionLister{errs: []error{errors.New("connection refused")}}
	s := New(api, zap.NewNop())

	s.FetchAdmin(context.Background())

	assert.Empty(t, s.Admin())
	assert.False(t, s.Unauthorized())
}
