package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
	"github.com/gymflex/gymflex-cli/pkg/core/services"
	"github.com/gymflex/gymflex-cli/pkg/core/store"
)

func TestDayToOpen(t *testing.T) {
	now := time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC)
	member := &model.CurrentUser{ID: 5, Username: "sam"}
	coach := &model.CurrentUser{ID: 1, Username: "coach", IsStaff: true}
	sel := calendar.Selection{ClientDate: "2024-06-13", AdminDate: "2024-06-09"}

	tests := []struct {
		name     string
		user     *model.CurrentUser
		sel      calendar.Selection
		args     []string
		expected string
		err      error
	}{
		{"argument wins", member, sel, []string{"2024-06-12"}, "2024-06-12", nil},
		{"member selection", member, sel, nil, "2024-06-13", nil},
		{"defaults to today", member, calendar.Selection{}, nil, "2024-06-11", nil},
		{"member past argument", member, sel, []string{"2024-06-10"}, "", services.ErrPastDate},
		{"member stale selection", member, calendar.Selection{ClientDate: "2024-06-01"}, nil, "2024-06-11", nil},
		{"staff past selection", coach, sel, nil, "2024-06-09", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, err := dayToOpen(tt.user, tt.sel, tt.args, now)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Empty(t, date)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, date)
		})
	}

	_, err := dayToOpen(member, sel, []string{"soon"}, now)
	assert.Error(t, err)
}

func TestFilterCmd_OnlyInInteractiveSession(t *testing.T) {
	app := &AppContext{Sessions: store.New(nil, zap.NewNop()), Logger: zap.NewNop()}
	cmd := FilterCmd(app)

	err := runCommand(cmd, []string{"yoga"})
	assert.ErrorIs(t, err, errFilterNeedsSession)
	assert.Equal(t, model.ActivityType(""), app.Sessions.ActivityFilter())

	app.Interactive = true
	require.NoError(t, runCommand(cmd, []string{"yoga"}))
	assert.Equal(t, model.ActivityYoga, app.Sessions.ActivityFilter())

	require.NoError(t, runCommand(cmd, []string{"all"}))
	assert.Equal(t, model.ActivityType(""), app.Sessions.ActivityFilter())

	assert.Error(t, runCommand(cmd, []string{"zumba"}))
}
