package sheetsclient

import (
	"fmt"
	"time"

	"google.golang.org/api/sheets/v4"
)

// AttendanceRow is one booking in the attendance register
type AttendanceRow struct {
	Date     string // Format: "Mon Jan 02 2006"
	Time     string // HH:MM
	Activity string
	Trainer  string
	Attendee string
	Status   string // "Attended", "No Show" or "Not marked"
}

// AttendanceRegister is the data written to one register tab
type AttendanceRegister struct {
	From        string // Format: "2006-01-02"
	To          string // Format: "2006-01-02"
	GeneratedAt time.Time
	Rows        []AttendanceRow
}

var attendanceHeader = []interface{}{"Date", "Time", "Activity", "Trainer", "Attendee", "Status"}

// PublishAttendance writes the register to a tab titled "Attendance Sat Jun 01 2024 - Sun Jun 30 2024".
// The tab is created if missing and fully rewritten otherwise. Returns the tab title.
func (c *Client) PublishAttendance(spreadsheetID string, register *AttendanceRegister) (string, error) {
	tabTitle, err := AttendanceTabTitle(register.From, register.To)
	if err != nil {
		return "", fmt.Errorf("failed to generate tab title: %w", err)
	}

	exists, err := c.hasSheet(spreadsheetID, tabTitle)
	if err != nil {
		return "", err
	}

	if exists {
		_, err = c.service.Spreadsheets.Values.Clear(
			spreadsheetID,
			fmt.Sprintf("'%s'!A1:ZZ", tabTitle),
			&sheets.ClearValuesRequest{},
		).Do()
		if err != nil {
			return "", fmt.Errorf("failed to clear existing tab: %w", err)
		}
	} else {
		if _, err := c.CreateSheet(spreadsheetID, tabTitle); err != nil {
			return "", fmt.Errorf("failed to create tab: %w", err)
		}
	}

	valueRange := &sheets.ValueRange{
		Values: attendanceValues(register),
	}

	_, err = c.service.Spreadsheets.Values.Update(
		spreadsheetID,
		fmt.Sprintf("'%s'!A1", tabTitle),
		valueRange,
	).ValueInputOption("RAW").Do()
	if err != nil {
		return "", fmt.Errorf("failed to write attendance register: %w", err)
	}

	return tabTitle, nil
}

// AttendanceTabTitle creates a tab title in the format "Attendance Sat Jun 01 2024 - Sun Jun 30 2024"
func AttendanceTabTitle(from, to string) (string, error) {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return "", fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return "", fmt.Errorf("invalid end date: %w", err)
	}

	return fmt.Sprintf("Attendance %s - %s",
		start.Format("Mon Jan 02 2006"),
		end.Format("Mon Jan 02 2006"),
	), nil
}

// attendanceValues lays out the register with a generated-at line and a blank row above the header
func attendanceValues(register *AttendanceRegister) [][]interface{} {
	rows := [][]interface{}{
		{fmt.Sprintf("Generated %s", register.GeneratedAt.Format("2006-01-02 15:04"))},
		{}, // Row 2 (empty)
		attendanceHeader,
	}

	for _, r := range register.Rows {
		rows = append(rows, []interface{}{r.Date, r.Time, r.Activity, r.Trainer, r.Attendee, r.Status})
	}

	return rows
}
