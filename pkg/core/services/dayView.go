package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

// DaySessionRow is one session in the day drill-down
type DaySessionRow struct {
	Session    model.Session
	Icon       string
	Activity   string
	TimeWindow string
	Trainer    string
	// Availability is "N slots" for upcoming sessions and "Past" once started
	Availability string
	Booked       bool
	Started      bool
	// CanToggle is false for sessions that have started
	CanToggle bool
}

// DayViewResult is the drill-down for one calendar date
type DayViewResult struct {
	Date string
	Rows []DaySessionRow
}

// DayView lists the sessions on date for the booking drill-down.
// sessions should be the calendar list (already narrowed by the activity filter).
// It returns ErrNoSessions when the day is empty.
func DayView(sessions []model.Session, date string, now time.Time) (*DayViewResult, error) {
	if _, err := calendar.ParseDate(date); err != nil {
		return nil, err
	}

	daySessions := calendar.SessionsOn(sessions, date)
	if len(daySessions) == 0 {
		return nil, fmt.Errorf("%s: %w", date, ErrNoSessions)
	}
	sortByTime(daySessions)

	rows := make([]DaySessionRow, 0, len(daySessions))
	for _, s := range daySessions {
		started := s.IsPast(now)
		availability := fmt.Sprintf("%d slots", s.AvailableSlots)
		if started {
			availability = "Past"
		}
		trainer := s.TrainerUsername
		if trainer == "" {
			trainer = "TBA"
		}

		rows = append(rows, DaySessionRow{
			Session:      s,
			Icon:         s.ActivityType.Icon(),
			Activity:     s.ActivityType.DisplayName(),
			TimeWindow:   s.TimeWindow(),
			Trainer:      trainer,
			Availability: availability,
			Booked:       s.Booked,
			Started:      started,
			CanToggle:    !started,
		})
	}

	return &DayViewResult{Date: date, Rows: rows}, nil
}

// CheckDayOpenable applies the calendar click rule to a date typed or linked
// directly: members can't open or select a day before today, staff can.
func CheckDayOpenable(user *model.CurrentUser, date string, today time.Time) error {
	if _, err := calendar.ParseDate(date); err != nil {
		return err
	}
	if user.IsStaff {
		return nil
	}
	if date < calendar.FormatDate(calendar.Day(today)) {
		return fmt.Errorf("%s: %w", date, ErrPastDate)
	}
	return nil
}

func sortByTime(sessions []model.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].DateKey() != sessions[j].DateKey() {
			return sessions[i].DateKey() < sessions[j].DateKey()
		}
		return sessions[i].ShortTime() < sessions[j].ShortTime()
	})
}
