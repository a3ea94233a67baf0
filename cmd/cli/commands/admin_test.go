package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
)

func TestNavigate(t *testing.T) {
	today := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	rng := calendar.DateRange{
		Start: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name             string
		current          string
		prev, next, jump bool
		expected         string
		moved            bool
	}{
		{"no flags keeps the date", "2024-06-11", false, false, false, "2024-06-11", false},
		{"previous", "2024-06-11", true, false, false, "2024-06-10", true},
		{"previous at start", "2024-06-10", true, false, false, "2024-06-10", false},
		{"next", "2024-06-11", false, true, false, "2024-06-12", true},
		{"next at end", "2024-06-12", false, true, false, "2024-06-12", false},
		{"today", "2024-06-12", false, false, true, "2024-06-11", true},
		{"already today", "2024-06-11", false, false, true, "2024-06-11", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := calendar.NewNavigator(rng, tt.current, today)
			date, moved, err := navigate(nav, tt.prev, tt.next, tt.jump)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, date)
			assert.Equal(t, tt.moved, moved)
		})
	}

	_, _, err := navigate(calendar.NewNavigator(rng, "2024-06-11", today), true, true, false)
	assert.ErrorContains(t, err, "only one of")
}

func TestParseAttended(t *testing.T) {
	for _, s := range []string{"attended", "Yes", "true", " present "} {
		attended, err := parseAttended(s)
		require.NoError(t, err, s)
		assert.True(t, attended, s)
	}
	for _, s := range []string{"noshow", "no-show", "NO", "absent"} {
		attended, err := parseAttended(s)
		require.NoError(t, err, s)
		assert.False(t, attended, s)
	}

	_, err := parseAttended("maybe")
	assert.ErrorContains(t, err, "attended' or 'noshow'")
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"session_id", "user_id"}, []string{"12", "5"})
	require.NoError(t, err)
	assert.Equal(t, []int{12, 5}, ids)

	_, err = parseIDs([]string{"session_id", "user_id"}, []string{"12", "sam"})
	assert.EqualError(t, err, "user_id must be a number, got: sam")
}

func TestParseMonth(t *testing.T) {
	month, err := parseMonth("2024-07")
	require.NoError(t, err)
	assert.Equal(t, time.July, month.Month())

	_, err = parseMonth("July")
	assert.ErrorContains(t, err, "expected YYYY-MM")
}
