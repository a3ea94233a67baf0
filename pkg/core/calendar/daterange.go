package calendar

import (
	"fmt"
	"time"

	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

// DateLayout is the wire and display key format for calendar dates
const DateLayout = "2006-01-02"

// DefaultForwardDays is how far past the latest session the navigable range extends
const DefaultForwardDays = 14

// ParseDate parses a YYYY-MM-DD string as a civil date at UTC midnight
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDate formats t's civil date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Day truncates t to its civil date in t's own location, returned at UTC midnight
// so that date arithmetic never crosses a DST boundary.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive range of civil dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NavigableRange computes the day-by-day range the staff navigator walks:
// earliest session date through latest session date plus forwardDays.
// With no sessions both ends start at today.
func NavigableRange(sessions []model.Session, today time.Time, forwardDays int) DateRange {
	minDate := Day(today)
	maxDate := minDate

	found := false
	for _, s := range sessions {
		d, err := ParseDate(s.DateKey())
		if err != nil {
			continue
		}
		if !found {
			minDate, maxDate = d, d
			found = true
			continue
		}
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}

	return DateRange{
		Start: minDate,
		End:   maxDate.AddDate(0, 0, forwardDays),
	}
}

// Dates returns every date in the range, in order
func (r DateRange) Dates() []string {
	if r.End.Before(r.Start) {
		return nil
	}
	dates := make([]string, 0, int(r.End.Sub(r.Start).Hours()/24)+1)
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, FormatDate(d))
	}
	return dates
}

// Contains reports whether date (YYYY-MM-DD) lies within the range
func (r DateRange) Contains(date string) bool {
	d, err := ParseDate(date)
	if err != nil {
		return false
	}
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", FormatDate(r.Start), FormatDate(r.End))
}
