package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
	"github.com/gymflex/gymflex-cli/pkg/core/services"
)

var testToday = time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC)

func testGrid() calendar.Grid {
	sessions := []model.Session{
		{ID: 1, ActivityType: model.ActivityYoga, Date: "2024-06-10", Time: "09:00:00"},
		{ID: 2, ActivityType: model.ActivityHIIT, Date: "2024-06-12", Time: "18:00:00", Booked: true},
		{ID: 3, ActivityType: model.ActivityCardio, Date: "2024-06-12", Time: "07:00:00"},
	}
	return calendar.BuildGrid(calendar.GridInput{
		Month:          testToday,
		Today:          testToday,
		ActiveDate:     "2024-06-12",
		Sessions:       sessions,
		BookedSessions: sessions[1:2],
	})
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		expected int
	}{
		{"ascii", "Mon", 3},
		{"ansi ignored", colorGreen + "ok" + colorReset, 2},
		{"emoji are wide", "🧘", 2},
		{"variation selector", "🏋️", 2},
		{"lightning", "⚡", 2},
		{"bullet", "●", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, displayWidth(tt.s))
		})
	}
}

func TestPadAndTruncate(t *testing.T) {
	assert.Equal(t, "ab  ", pad("ab", 4))
	assert.Equal(t, "abcdef", pad("abcdef", 4), "never cuts")
	assert.Equal(t, "🧘  ", pad("🧘", 4))

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Christ…", truncate("Christmas Day", 7))
}

func TestCellLines(t *testing.T) {
	grid := testGrid()

	busy, ok := grid.Cell("2024-06-12")
	require.True(t, ok)
	lines := cellLines(busy)
	assert.Equal(t, "12", lines[0])
	assert.Equal(t, "⚡🏃", lines[1])
	assert.Contains(t, lines[2], "●")
	assert.Contains(t, lines[2], "2 sessions")

	past, _ := grid.Cell("2024-06-10")
	lines = cellLines(past)
	assert.True(t, strings.HasPrefix(lines[0], colorDim), "past days are dimmed")
	assert.NotContains(t, lines[2], "●")

	closed := calendar.Cell{Day: 25, Closure: "Christmas Day"}
	lines = cellLines(closed)
	assert.Equal(t, "Christmas Day", lines[1])
}

func TestRenderGrid_OverlaysDrawnOverCells(t *testing.T) {
	var buf bytes.Buffer
	renderGrid(&buf, testGrid())
	out := buf.String()

	assert.Contains(t, out, colorBlue+colorInvert+"[12]", "selected overlay")
	assert.Contains(t, out, colorYellow+colorInvert+"[11]", "today overlay")
	assert.Contains(t, out, "Sun")
	// June 2024 spans 6 weeks: header, then a separator above each week and one below the last
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 1+6*termCellLines+7)
}

func TestRenderDay(t *testing.T) {
	view, err := services.DayView([]model.Session{
		{ID: 2, ActivityType: model.ActivityHIIT, Date: "2024-06-12", Time: "18:00:00", DurationMinutes: 45, AvailableSlots: 3, Booked: true, TrainerUsername: "kim"},
	}, "2024-06-12", testToday)
	require.NoError(t, err)

	var buf bytes.Buffer
	renderDay(&buf, view)

	assert.Contains(t, buf.String(), "Sessions on 2024-06-12")
	assert.Contains(t, buf.String(), "18:00 - 18:45")
	assert.Contains(t, buf.String(), "3 slots")
	assert.Contains(t, buf.String(), "✓ Booked")
}

func TestAttendeeLine(t *testing.T) {
	tests := []struct {
		name     string
		row      services.AttendeeRow
		contains []string
		excludes []string
	}{
		{
			name:     "no show is struck through",
			row:      services.AttendeeRow{UserID: 5, Username: "sam", Label: "No Show", Struck: true, CanMarkAttendance: true, AttendanceID: 77},
			contains: []string{colorStrike + "sam" + colorReset, colorRed + "No Show", "attendance #77"},
		},
		{
			name:     "attended",
			row:      services.AttendeeRow{UserID: 6, Username: "alex", Label: "Attended"},
			contains: []string{"alex (user 6)", colorGreen + "Attended"},
			excludes: []string{colorStrike, "attendance #"},
		},
		{
			name:     "future booking",
			row:      services.AttendeeRow{UserID: 9, Username: "User 9", CanRemove: true},
			contains: []string{"User 9 (user 9)"},
			excludes: []string{colorRed, colorGreen},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := attendeeLine(tt.row)
			for _, s := range tt.contains {
				assert.Contains(t, line, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, line, s)
			}
		})
	}
}

func TestRenderAdmin(t *testing.T) {
	panel := &services.AdminPanelResult{
		ActiveDate: "2024-06-11",
		Days:       []services.AdminDay{{Date: "2024-06-11"}},
		CanNext:    true,
	}

	var buf bytes.Buffer
	renderAdmin(&buf, panel)

	assert.Contains(t, buf.String(), "Bookings for 2024-06-11")
	assert.Contains(t, buf.String(), "No sessions scheduled")
	assert.Contains(t, buf.String(), colorDim+"--prev"+colorReset)
	assert.NotContains(t, buf.String(), colorDim+"--next")
}
