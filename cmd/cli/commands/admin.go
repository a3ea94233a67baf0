package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/services"
)

// navigate moves the navigator one step in the requested direction.
// Only one of prev, next and today may be set; with none the current date is kept.
func navigate(nav calendar.Navigator, prev, next, today bool) (string, bool, error) {
	set := 0
	for _, flag := range []bool{prev, next, today} {
		if flag {
			set++
		}
	}
	if set > 1 {
		return "", false, fmt.Errorf("only one of --prev, --next and --today can be used")
	}

	var (
		date string
		ok   bool
	)
	switch {
	case prev:
		date, ok = nav.Previous()
	case next:
		date, ok = nav.Next()
	case today:
		date, ok = nav.Today()
	default:
		return nav.Current(), false, nil
	}
	return date, ok, nil
}

// parseAttended accepts the spellings staff use for an attendance outcome
func parseAttended(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "attended", "yes", "y", "true", "present":
		return true, nil
	case "noshow", "no-show", "no", "n", "false", "absent":
		return false, nil
	}
	return false, fmt.Errorf("attendance must be 'attended' or 'noshow', got: %s", s)
}

func parseIDs(names []string, args []string) ([]int, error) {
	ids := make([]int, len(args))
	for i, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number, got: %s", names[i], arg)
		}
		ids[i] = id
	}
	return ids, nil
}

// AdminCmd creates the admin command
func AdminCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Show bookings and attendance for the selected date (staff only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, _ := cmd.Flags().GetBool("prev")
			next, _ := cmd.Flags().GetBool("next")
			today, _ := cmd.Flags().GetBool("today")
			all, _ := cmd.Flags().GetBool("all")

			user, err := app.CurrentUser()
			if err != nil {
				return err
			}
			if !user.IsStaff {
				return services.ErrNotStaff
			}
			if err := app.LoadSessions(user); err != nil {
				return err
			}

			in := services.AdminPanelInput{
				User:        user,
				Selection:   app.Selection(),
				Today:       app.Now(),
				Now:         app.Now(),
				ForwardDays: app.Cfg.ForwardDays(),
				All:         all,
			}

			panel, err := services.AdminPanel(app.Sessions.Admin(), in)
			if err != nil {
				return err
			}

			date, moved, err := navigate(panel.Navigator, prev, next, today)
			if err != nil {
				return err
			}
			if moved {
				in.Selection.Set(true, date)
				if err := app.SaveSelection(in.Selection); err != nil {
					return err
				}
				app.Logger.Debug("Moved admin date", zap.String("date", date))
				if panel, err = services.AdminPanel(app.Sessions.Admin(), in); err != nil {
					return err
				}
			}

			renderAdmin(os.Stdout, panel)
			return nil
		},
	}

	cmd.Flags().Bool("prev", false, "Move to the previous date")
	cmd.Flags().Bool("next", false, "Move to the next date")
	cmd.Flags().Bool("today", false, "Jump back to today")
	cmd.Flags().Bool("all", false, "List every date that has sessions")

	return cmd
}

// RemoveAttendeeCmd creates the removeAttendee command
func RemoveAttendeeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "removeAttendee <session_id> <user_id>",
		Short: "Cancel a member's booking on a session (staff only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs([]string{"session_id", "user_id"}, args)
			if err != nil {
				return err
			}

			user, err := app.CurrentUser()
			if err != nil {
				return err
			}

			if err := services.RemoveAttendee(app.Ctx, app.API, app.Sessions, user, app.Logger, ids[0], ids[1]); err != nil {
				return app.mutationError(err)
			}

			fmt.Printf("\n✓ Removed user %d from session %d\n\n", ids[1], ids[0])
			return nil
		},
	}
}

// MarkAttendanceCmd creates the markAttendance command
func MarkAttendanceCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "markAttendance <session_id> <attendance_id> <attended|noshow>",
		Short: "Record whether a member attended a started session (staff only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs([]string{"session_id", "attendance_id"}, args[:2])
			if err != nil {
				return err
			}
			attended, err := parseAttended(args[2])
			if err != nil {
				return err
			}

			user, err := app.CurrentUser()
			if err != nil {
				return err
			}
			if err := app.LoadSessions(user); err != nil {
				return err
			}

			result, err := services.MarkAttendance(app.Ctx, app.API, app.Sessions, user, app.Logger, app.Now(), ids[0], ids[1], attended)
			if err != nil {
				return app.mutationError(err)
			}

			outcome := colorRed + "no show" + colorReset
			if result.Attended {
				outcome = colorGreen + "attended" + colorReset
			}
			fmt.Printf("\n✓ %s marked %s for %s on %s\n\n",
				result.Attendee.DisplayName(),
				outcome,
				result.Session.ActivityType.DisplayName(),
				result.Session.DateKey())
			return nil
		},
	}
}

// ExportAttendanceCmd creates the exportAttendance command
func ExportAttendanceCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "exportAttendance <from> <to>",
		Short: "Write the attendance register for a date range to the attendance spreadsheet (staff only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.CurrentUser()
			if err != nil {
				return err
			}
			if err := app.LoadSessions(user); err != nil {
				return err
			}

			// Check before creating the sheets client, which needs credentials
			if !user.IsStaff {
				return services.ErrNotStaff
			}
			if app.Cfg.AttendanceSheetID == "" {
				return fmt.Errorf("attendanceSheetID is not configured")
			}

			sheets, err := app.Sheets()
			if err != nil {
				return err
			}

			result, err := services.ExportAttendance(app.Ctx, sheets, app.Sessions, user, app.Cfg, app.Logger, app.Now(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Attendance exported!\n\n")
			fmt.Printf("Tab:      %s\n", result.TabTitle)
			fmt.Printf("Sessions: %d\n", result.Sessions)
			fmt.Printf("Rows:     %d\n\n", result.Rows)
			return nil
		},
	}
}
