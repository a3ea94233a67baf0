package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/services"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorDim    = "\033[2m"
	colorStrike = "\033[9m"
	colorInvert = "\033[7m"
)

// Terminal cell size of the month grid: columns per day, lines per week
const (
	termCellWidth = 14
	termCellLines = 3
)

// displayWidth approximates how many terminal columns s occupies:
// ANSI escapes take none, emoji take two, variation selectors take none.
func displayWidth(s string) int {
	width := 0
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\033':
			inEscape = true
		case r == 0xFE0F || r == 0x200D:
		case r >= 0x1F000 || r == 0x26A1:
			width += 2
		default:
			width++
		}
	}
	return width
}

// pad right-pads s with spaces to width columns
func pad(s string, width int) string {
	if w := displayWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// truncate shortens plain text to fit width columns
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

// cellLines renders the content of one day cell, one string per terminal line
func cellLines(c calendar.Cell) [termCellLines]string {
	var lines [termCellLines]string

	// line 0 holds only the date number so an overlay can replace it whole
	lines[0] = fmt.Sprintf("%2d", c.Day)

	switch {
	case c.Badge != nil:
		lines[1] = strings.Join(c.Badge.Icons, "")
		lines[2] = c.Badge.CountText()
	case c.Closure != "":
		lines[1] = truncate(c.Closure, termCellWidth-1)
	}
	if c.Badge != nil && c.Closure != "" {
		lines[2] = truncate(c.Closure, termCellWidth-1)
	}
	if c.HasBooking {
		lines[2] = colorGreen + "●" + colorReset + " " + lines[2]
	}

	if c.Dimmed {
		for i, line := range lines {
			if line != "" {
				lines[i] = colorDim + line + colorReset
			}
		}
	}
	return lines
}

// overlayLabel is the highlighted date number drawn over a selected or today cell
func overlayLabel(o calendar.Overlay) string {
	color := colorYellow
	if o.Kind == calendar.OverlaySelected {
		color = colorBlue
	}
	return fmt.Sprintf("%s%s[%2d]%s", color, colorInvert, o.Day, colorReset)
}

// renderGrid draws the month grid. Cell content is painted first, then the
// overlays are painted on top at their bounds.
func renderGrid(w io.Writer, grid calendar.Grid) {
	canvas := make([][]string, grid.Weeks*termCellLines)
	for i := range canvas {
		canvas[i] = make([]string, calendar.DaysPerWeek)
	}

	for _, c := range grid.Cells {
		bounds, _ := grid.CellBounds(c.Date, 1, termCellLines)
		for i, line := range cellLines(c) {
			canvas[bounds.Y+i][bounds.X] = line
		}
	}
	for _, o := range grid.Overlays(1, termCellLines) {
		canvas[o.Bounds.Y][o.Bounds.X] = overlayLabel(o)
	}

	for _, name := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		fmt.Fprint(w, pad(name, termCellWidth))
	}
	fmt.Fprintln(w)

	separator := strings.Repeat("-", termCellWidth*calendar.DaysPerWeek)
	for i, row := range canvas {
		if i%termCellLines == 0 {
			fmt.Fprintln(w, separator)
		}
		var b strings.Builder
		for _, cell := range row {
			b.WriteString(pad(cell, termCellWidth))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
	fmt.Fprintln(w, separator)
}

func renderCalendar(w io.Writer, view *services.CalendarViewResult) {
	fmt.Fprintf(w, "\n%s\n\n", view.Welcome)
	fmt.Fprintf(w, "%s", view.Grid.Month.Format("January 2006"))
	if view.Filter != "" {
		fmt.Fprintf(w, "  %s(showing %s only)%s", colorDim, view.Filter.DisplayName(), colorReset)
	}
	fmt.Fprint(w, "\n\n")

	renderGrid(w, view.Grid)

	role := "member"
	if view.IsStaff {
		role = "staff"
	}
	fmt.Fprintf(w, "\nSelected: %s (%s)   Range: %s\n", view.ActiveDate, role, view.Range)

	var legend []string
	for _, entry := range view.Legend {
		legend = append(legend, entry.Icon+" "+entry.Name)
	}
	fmt.Fprintf(w, "Legend: %s   %s●%s booked\n\n", strings.Join(legend, "  "), colorGreen, colorReset)
}

func renderDay(w io.Writer, view *services.DayViewResult) {
	fmt.Fprintf(w, "\nSessions on %s\n\n", view.Date)
	fmt.Fprintf(w, "  %-4s %-16s %-15s %-12s %-10s\n", "ID", "Activity", "Time", "Trainer", "Slots")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", 62))

	for _, row := range view.Rows {
		activity := pad(row.Icon+" "+row.Activity, 16)
		availability := row.Availability
		switch {
		case row.Started:
			availability = colorDim + availability + colorReset
		case row.Session.AvailableSlots == 0:
			availability = colorRed + availability + colorReset
		}
		line := fmt.Sprintf("  %-4d %s %-15s %-12s %s", row.Session.ID, activity, row.TimeWindow, truncate(row.Trainer, 12), pad(availability, 10))
		if row.Booked {
			line += " " + colorGreen + "✓ Booked" + colorReset
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

func renderAdmin(w io.Writer, panel *services.AdminPanelResult) {
	fmt.Fprintln(w)
	for _, day := range panel.Days {
		fmt.Fprintf(w, "Bookings for %s\n", day.Date)
		if len(day.Sessions) == 0 {
			fmt.Fprintf(w, "  %sNo sessions scheduled%s\n\n", colorDim, colorReset)
			continue
		}

		for _, s := range day.Sessions {
			started := ""
			if s.Started {
				started = colorDim + " (started)" + colorReset
			}
			fmt.Fprintf(w, "  [%d] %s %s at %s%s\n", s.Session.ID, s.Icon, s.Activity, s.Time, started)
			if len(s.Attendees) == 0 {
				fmt.Fprintf(w, "      %sNo bookings%s\n", colorDim, colorReset)
			}
			for _, a := range s.Attendees {
				fmt.Fprintf(w, "      %s\n", attendeeLine(a))
			}
		}
		fmt.Fprintln(w)
	}

	nav := func(label string, ok bool) string {
		if ok {
			return label
		}
		return colorDim + label + colorReset
	}
	fmt.Fprintf(w, "Active date: %s   %s  %s  %s\n\n",
		panel.ActiveDate,
		nav("--prev", panel.CanPrevious),
		nav("--next", panel.CanNext),
		nav("--today", panel.CanToday))
}

// attendeeLine renders one attendee row of the admin panel
func attendeeLine(a services.AttendeeRow) string {
	name := a.Username
	if a.Struck {
		name = colorStrike + name + colorReset
	}
	line := fmt.Sprintf("%s (user %d)", name, a.UserID)

	switch a.Label {
	case "Attended":
		line += " " + colorGreen + a.Label + colorReset
	case "":
	default:
		line += " " + colorRed + a.Label + colorReset
	}
	if a.CanMarkAttendance {
		line += fmt.Sprintf(" %sattendance #%d%s", colorDim, a.AttendanceID, colorReset)
	}
	return line
}
