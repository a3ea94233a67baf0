package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gymflex/gymflex-cli/internal/config"
	"github.com/gymflex/gymflex-cli/pkg/clients/sheetsclient"
	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

// AttendancePublisher defines the sheets operation needed to export attendance
type AttendancePublisher interface {
	PublishAttendance(spreadsheetID string, register *sheetsclient.AttendanceRegister) (string, error)
}

// ExportAttendanceResult summarises what was written
type ExportAttendanceResult struct {
	TabTitle string
	Sessions int
	Rows     int
}

// ExportAttendance writes the attendance register of started sessions dated from..to
// (inclusive, YYYY-MM-DD) to the configured spreadsheet. Staff only.
func ExportAttendance(
	ctx context.Context,
	publisher AttendancePublisher,
	sessions SessionReader,
	user *model.CurrentUser,
	cfg *config.Config,
	logger *zap.Logger,
	now time.Time,
	from string,
	to string,
) (*ExportAttendanceResult, error) {
	if err := requireStaff(user); err != nil {
		return nil, err
	}
	if cfg.AttendanceSheetID == "" {
		return nil, fmt.Errorf("attendanceSheetID is not configured")
	}

	fromDate, err := calendar.ParseDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := calendar.ParseDate(to)
	if err != nil {
		return nil, err
	}
	if toDate.Before(fromDate) {
		return nil, fmt.Errorf("end date %s is before start date %s", to, from)
	}

	rng := calendar.DateRange{Start: fromDate, End: toDate}
	register, sessionCount := buildAttendanceRegister(sessions.Admin(), rng, now)
	register.From = from
	register.To = to

	logger.Debug("Exporting attendance",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("sessions", sessionCount),
		zap.Int("rows", len(register.Rows)))

	tabTitle, err := publisher.PublishAttendance(cfg.AttendanceSheetID, register)
	if err != nil {
		return nil, fmt.Errorf("failed to publish attendance: %w", err)
	}

	logger.Info("Attendance exported", zap.String("tab", tabTitle), zap.Int("rows", len(register.Rows)))

	return &ExportAttendanceResult{
		TabTitle: tabTitle,
		Sessions: sessionCount,
		Rows:     len(register.Rows),
	}, nil
}

func buildAttendanceRegister(sessions []model.Session, rng calendar.DateRange, now time.Time) (*sheetsclient.AttendanceRegister, int) {
	sorted := append([]model.Session(nil), sessions...)
	sortByTime(sorted)

	register := &sheetsclient.AttendanceRegister{GeneratedAt: now}
	sessionCount := 0
	for _, s := range sorted {
		if !rng.Contains(s.DateKey()) || !s.IsPast(now) {
			continue
		}
		sessionCount++

		date := s.DateKey()
		if d, err := calendar.ParseDate(date); err == nil {
			date = d.Format("Mon Jan 02 2006")
		}

		for _, a := range s.Attendees {
			register.Rows = append(register.Rows, sheetsclient.AttendanceRow{
				Date:     date,
				Time:     s.ShortTime(),
				Activity: s.ActivityType.DisplayName(),
				Trainer:  s.TrainerUsername,
				Attendee: a.DisplayName(),
				Status:   attendanceStatus(a),
			})
		}
	}
	return register, sessionCount
}

func attendanceStatus(a model.Attendee) string {
	switch {
	case a.Attended == nil:
		return "Not marked"
	case *a.Attended:
		return "Attended"
	default:
		return "No Show"
	}
}
