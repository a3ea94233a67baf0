package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
	"github.com/gymflex/gymflex-cli/pkg/core/services"
)

var errFilterNeedsSession = errors.New("filter only lasts for an interactive session - use 'calendar --activity' for a single run")

// parseMonth accepts YYYY-MM and returns the first of that month
func parseMonth(s string) (time.Time, error) {
	parsed, err := calendar.ParseDate(s + "-01")
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (expected YYYY-MM)", s)
	}
	return parsed, nil
}

// dayToOpen picks the date for the day command: the argument, else the role's
// selection, else today. Members are refused days that are already over; a
// member selection that has gone stale falls back to today.
func dayToOpen(user *model.CurrentUser, sel calendar.Selection, args []string, now time.Time) (string, error) {
	if len(args) > 0 {
		if err := services.CheckDayOpenable(user, args[0], now); err != nil {
			return "", err
		}
		return args[0], nil
	}

	date := sel.For(user.IsStaff)
	if date == "" || services.CheckDayOpenable(user, date, now) != nil {
		date = calendar.FormatDate(now)
	}
	return date, nil
}

// CalendarCmd creates the calendar command
func CalendarCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the month calendar with session badges and your bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			monthFlag, _ := cmd.Flags().GetString("month")
			activityFlag, _ := cmd.Flags().GetString("activity")

			user, err := app.CurrentUser()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("activity") {
				activity, err := model.ParseActivityFilter(activityFlag)
				if err != nil {
					return err
				}
				app.Sessions.SetActivityFilter(activity)
			}

			in := services.CalendarViewInput{
				User:        user,
				Selection:   app.Selection(),
				Today:       app.Now(),
				ForwardDays: app.Cfg.ForwardDays(),
			}
			if monthFlag != "" {
				month, err := parseMonth(monthFlag)
				if err != nil {
					return err
				}
				in.Month = month
			}
			if in.Closures, err = app.Cfg.ClosureRules(); err != nil {
				return err
			}

			if err := app.LoadSessions(user); err != nil {
				return err
			}

			view, err := services.CalendarView(app.Sessions, in)
			if err != nil {
				return err
			}

			renderCalendar(os.Stdout, view)
			return nil
		},
	}

	cmd.Flags().String("month", "", "Month to show as YYYY-MM (defaults to the selected date's month)")
	cmd.Flags().String("activity", "", "Only show one activity type (cardio, weights, yoga, hiit, pilates or all)")

	return cmd
}

// DayCmd creates the day command
func DayCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "day [date]",
		Short: "List the sessions on a date (defaults to the selected date)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.CurrentUser()
			if err != nil {
				return err
			}
			if err := app.LoadSessions(user); err != nil {
				return err
			}

			sel := app.Selection()
			date, err := dayToOpen(user, sel, args, app.Now())
			if err != nil {
				return err
			}

			view, err := services.DayView(app.Sessions.Sessions(), date, app.Now())
			if err != nil {
				if errors.Is(err, services.ErrNoSessions) {
					fmt.Printf("\nNo sessions on %s\n\n", date)
					return nil
				}
				return err
			}

			// Opening a day moves the member's selection onto it
			if !user.IsStaff {
				sel.Set(false, date)
				if err := app.SaveSelection(sel); err != nil {
					app.Logger.Warn("Failed to save selection", zap.Error(err))
				}
			}

			renderDay(os.Stdout, view)
			return nil
		},
	}
}

// BookCmd creates the book command
func BookCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "book <session_id>",
		Short: "Book a session, or cancel the booking if you already have one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("session_id must be a number, got: %s", args[0])
			}

			user, err := app.CurrentUser()
			if err != nil {
				return err
			}
			if err := app.LoadSessions(user); err != nil {
				return err
			}

			result, err := services.ToggleBooking(app.Ctx, app.API, app.Sessions, user, app.Logger, app.Now(), sessionID)
			if err != nil {
				if errors.Is(err, services.ErrSessionFull) {
					return fmt.Errorf("sorry, session %d is full", sessionID)
				}
				return app.mutationError(err)
			}

			if result.Status == model.BookingStatusBooked {
				fmt.Printf("\n✓ Booked session %d\n\n", sessionID)
			} else {
				fmt.Printf("\n✓ Cancelled booking for session %d\n\n", sessionID)
			}
			return nil
		},
	}
}

// SelectCmd creates the select command
func SelectCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select [date]",
		Short: "Set the active date for your role (staff and members keep separate selections)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clearSelection, _ := cmd.Flags().GetBool("clear")

			user, err := app.CurrentUser()
			if err != nil {
				return err
			}

			sel := app.Selection()
			switch {
			case clearSelection:
				sel.Clear(user.IsStaff)
			case len(args) == 1:
				if err := services.CheckDayOpenable(user, args[0], app.Now()); err != nil {
					return err
				}
				sel.Set(user.IsStaff, args[0])
			default:
				return fmt.Errorf("a date or --clear is required")
			}

			if err := app.SaveSelection(sel); err != nil {
				return err
			}

			if current := sel.For(user.IsStaff); current != "" {
				fmt.Printf("\n✓ Selected %s\n\n", current)
			} else {
				fmt.Printf("\n✓ Selection cleared\n\n")
			}
			return nil
		},
	}

	cmd.Flags().Bool("clear", false, "Clear the selection so today is used")

	return cmd
}

// FilterCmd creates the filter command
func FilterCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <activity|all>",
		Short: "Narrow the calendar to one activity type (interactive sessions only)",
		Long: `Narrow the calendar to one activity type until the interactive session ends.
The filter is not saved between runs; for a single command use 'calendar --activity'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			activity, err := model.ParseActivityFilter(args[0])
			if err != nil {
				return err
			}
			if !app.Interactive {
				return errFilterNeedsSession
			}
			app.Sessions.SetActivityFilter(activity)

			if activity == "" {
				fmt.Printf("\n✓ Showing all activities\n\n")
			} else {
				fmt.Printf("\n✓ Showing %s %s only\n\n", activity.Icon(), activity.DisplayName())
			}
			return nil
		},
	}
}
