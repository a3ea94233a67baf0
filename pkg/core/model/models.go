package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ActivityType string

const (
	ActivityCardio  ActivityType = "cardio"
	ActivityWeights ActivityType = "weights"
	ActivityYoga    ActivityType = "yoga"
	ActivityHIIT    ActivityType = "hiit"
	ActivityPilates ActivityType = "pilates"
)

// DefaultActivityIcon is shown for activity types the client doesn't know about
const DefaultActivityIcon = "💪"

var activityIcons = map[ActivityType]string{
	ActivityCardio:  "🏃",
	ActivityWeights: "🏋️",
	ActivityYoga:    "🧘",
	ActivityHIIT:    "⚡",
	ActivityPilates: "🤸",
}

var activityNames = map[ActivityType]string{
	ActivityCardio:  "Cardio",
	ActivityWeights: "Weightlifting",
	ActivityYoga:    "Yoga",
	ActivityHIIT:    "HIIT",
	ActivityPilates: "Pilates",
}

// ActivityTypes returns the known activity types in display order
func ActivityTypes() []ActivityType {
	return []ActivityType{ActivityCardio, ActivityWeights, ActivityYoga, ActivityHIIT, ActivityPilates}
}

func (a ActivityType) IsValid() bool {
	_, ok := activityIcons[a]
	return ok
}

func (a ActivityType) Icon() string {
	if icon, ok := activityIcons[a]; ok {
		return icon
	}
	return DefaultActivityIcon
}

func (a ActivityType) DisplayName() string {
	if name, ok := activityNames[a]; ok {
		return name
	}
	return string(a)
}

// ParseActivityFilter parses a user-supplied activity filter.
// An empty string (or "all") means no filter and returns "".
func ParseActivityFilter(s string) (ActivityType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return "", nil
	}
	a := ActivityType(s)
	if !a.IsValid() {
		return "", fmt.Errorf("unknown activity type %q (expected one of cardio, weights, yoga, hiit, pilates)", s)
	}
	return a, nil
}

// Attendee is a user with an active booking on a session.
// Attended and AttendanceID are only present for past sessions in the staff view.
type Attendee struct {
	ID           int    `json:"id"`
	Username     string `json:"username,omitempty"`
	Attended     *bool  `json:"attended,omitempty"`
	AttendanceID *int   `json:"attendance_id,omitempty"`
}

// UnmarshalJSON accepts both the detailed object form and the bare user id
// the API returns in masked (non-staff) views.
func (a *Attendee) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var id int
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("attendee must be an object or a user id: %w", err)
		}
		*a = Attendee{ID: id}
		return nil
	}

	type plain Attendee
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Attendee(p)
	return nil
}

// DisplayName returns the username, or a placeholder when the API only sent the id
func (a Attendee) DisplayName() string {
	if a.Username != "" {
		return a.Username
	}
	return fmt.Sprintf("User %d", a.ID)
}

// Session is a bookable gym class instance as returned by GET /sessions/
type Session struct {
	ID              int          `json:"id"`
	ActivityType    ActivityType `json:"activity_type"`
	TrainerUsername string       `json:"trainer_username,omitempty"`
	Date            string       `json:"date"` // YYYY-MM-DD
	Time            string       `json:"time"` // HH:MM:SS
	DurationMinutes int          `json:"duration_minutes"`
	Capacity        int          `json:"capacity"`
	AttendeesCount  int          `json:"attendees_count"`
	AvailableSlots  int          `json:"available_slots"`
	Booked          bool         `json:"booked"`
	HasStarted      bool         `json:"has_started"`
	Attendees       []Attendee   `json:"attendees"`
}

// DateKey returns the session date normalised to YYYY-MM-DD.
// The API sometimes sends full timestamps; only the date part matters.
func (s Session) DateKey() string {
	if len(s.Date) >= 10 {
		return s.Date[:10]
	}
	return s.Date
}

// ShortTime returns the start time as HH:MM
func (s Session) ShortTime() string {
	if len(s.Time) >= 5 {
		return s.Time[:5]
	}
	return s.Time
}

// StartsAt returns the session start in the given location
func (s Session) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", s.DateKey()+" "+s.ShortTime(), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid session start %q %q: %w", s.Date, s.Time, err)
	}
	return t, nil
}

// IsPast reports whether the session has started, trusting the server flag first
func (s Session) IsPast(now time.Time) bool {
	if s.HasStarted {
		return true
	}
	start, err := s.StartsAt(now.Location())
	if err != nil {
		return false
	}
	return start.Before(now)
}

// TimeWindow renders "HH:MM - HH:MM" from the start time and duration
func (s Session) TimeWindow() string {
	start, err := time.Parse("15:04", s.ShortTime())
	if err != nil {
		return s.ShortTime()
	}
	end := start.Add(time.Duration(s.DurationMinutes) * time.Minute)
	return fmt.Sprintf("%s - %s", start.Format("15:04"), end.Format("15:04"))
}

// HasAttendees reports whether anyone is booked, using the list when present
func (s Session) HasAttendees() bool {
	return len(s.Attendees) > 0 || s.AttendeesCount > 0
}

// CurrentUser is the authenticated user as returned by GET /users/me/
type CurrentUser struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// BookingResult is the response of POST /sessions/{id}/book/
type BookingResult struct {
	Status string `json:"status"`
}

const (
	BookingStatusBooked   = "booked"
	BookingStatusUnbooked = "unbooked"
	BookingStatusFull     = "full"
)
