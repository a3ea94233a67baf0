package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// closureAnchor is the DTSTART used for rules that don't carry one, so that
// recurrences are stable regardless of when the client runs.
var closureAnchor = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// ClosureRule marks recurring days the gym is closed (bank holidays, deep cleans)
type ClosureRule struct {
	Label string
	rule  *rrule.RRule
}

// NewClosureRule parses an RFC 5545 RRULE such as "FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25"
func NewClosureRule(text, label string) (ClosureRule, error) {
	opt, err := rrule.StrToROption(text)
	if err != nil {
		return ClosureRule{}, fmt.Errorf("invalid closure rrule %q: %w", text, err)
	}
	if opt.Dtstart.IsZero() {
		opt.Dtstart = closureAnchor
	}

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return ClosureRule{}, fmt.Errorf("invalid closure rrule %q: %w", text, err)
	}

	return ClosureRule{Label: label, rule: r}, nil
}

type Closures []ClosureRule

// Between returns closure labels keyed by date for every occurrence in [from, to].
// When rules overlap the first configured label wins.
func (c Closures) Between(from, to time.Time) map[string]string {
	result := make(map[string]string)
	if len(c) == 0 {
		return result
	}

	// occurrences keep the anchor's time of day, so widen to whole days
	start := Day(from)
	end := Day(to).Add(24*time.Hour - time.Nanosecond)

	for _, cr := range c {
		for _, occ := range cr.rule.Between(start, end, true) {
			key := FormatDate(Day(occ))
			if _, exists := result[key]; !exists {
				result[key] = cr.Label
			}
		}
	}
	return result
}
