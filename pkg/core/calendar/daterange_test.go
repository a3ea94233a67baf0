package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestNavigableRange_ExampleSessions(t *testing.T) {
	sessions := []model.Session{
		{ID: 1, Date: "2024-06-10", ActivityType: model.ActivityYoga},
		{ID: 2, Date: "2024-06-12", ActivityType: model.ActivityHIIT},
	}

	rng := NavigableRange(sessions, date(t, "2024-06-01"), DefaultForwardDays)

	assert.Equal(t, "2024-06-10..2024-06-26", rng.String())
	dates := rng.Dates()
	require.Len(t, dates, 17)
	assert.Equal(t, "2024-06-10", dates[0])
	assert.Equal(t, "2024-06-26", dates[len(dates)-1])
}

func TestNavigableRange_NoSessionsStartsToday(t *testing.T) {
	today := time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)

	rng := NavigableRange(nil, today, DefaultForwardDays)

	assert.Equal(t, "2024-03-05", FormatDate(rng.Start))
	assert.Equal(t, "2024-03-19", FormatDate(rng.End))
}

func TestNavigableRange_CoversEverySessionDate(t *testing.T) {
	sessions := []model.Session{
		{Date: "2024-07-04"},
		{Date: "2024-05-30"},
		{Date: "2024-06-15T00:00:00Z"},
		{Date: "not a date"},
		{Date: "2024-06-01"},
	}

	rng := NavigableRange(sessions, date(t, "2024-01-01"), DefaultForwardDays)

	for _, s := range sessions[:3] {
		assert.True(t, rng.Contains(s.DateKey()), "range should contain %s", s.DateKey())
	}
	assert.Equal(t, "2024-05-30", FormatDate(rng.Start))
	// at least 14 days past the latest session
	assert.Equal(t, "2024-07-18", FormatDate(rng.End))
	assert.True(t, rng.Contains("2024-07-18"))
	assert.False(t, rng.Contains("2024-07-19"))
}

func TestNavigableRange_ForwardDaysConfigurable(t *testing.T) {
	sessions := []model.Session{{Date: "2024-06-10"}}

	rng := NavigableRange(sessions, date(t, "2024-06-10"), 3)

	assert.Equal(t, []string{"2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13"}, rng.Dates())
}

func TestDateRange_ContainsRejectsGarbage(t *testing.T) {
	rng := DateRange{Start: date(t, "2024-06-10"), End: date(t, "2024-06-12")}
	assert.False(t, rng.Contains("yesterday"))
}

func TestDay_UsesCivilDateOfLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 23:30 UTC on the 9th is already the 10th in UTC+10
	instant := time.Date(2024, 6, 9, 23, 30, 0, 0, time.UTC).In(loc)

	assert.Equal(t, "2024-06-10", FormatDate(Day(instant)))
}
