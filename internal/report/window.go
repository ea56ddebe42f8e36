package report

import (
	"fmt"
	"time"

	"smart_time/internal/domain"
)

// Window is a half-open time range [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days is the number of whole calendar days covered by the window. Days are
// stepped in the window's location, so DST switches do not shorten it.
func (w Window) Days() int {
	n := 0
	for !w.Start.AddDate(0, 0, n+1).After(w.End) {
		n++
	}
	return n
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Daily covers the calendar day of date
func Daily(date time.Time) Window {
	start := midnight(date)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekStart is the Monday of the week containing t
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return midnight(t.AddDate(0, 0, -offset))
}

// Weekly covers seven days from start
func Weekly(start time.Time) Window {
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// Monthly covers a calendar month
func Monthly(year int, month time.Month, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// Custom validates an arbitrary window
func Custom(start, end time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() {
		return Window{}, fmt.Errorf("%w: start and end are required", domain.ErrInvalidInput)
	}
	if !end.After(start) {
		return Window{}, fmt.Errorf("%w: end must be after start", domain.ErrInvalidInput)
	}
	return Window{Start: start, End: end}, nil
}

// Title is the human readable report name for a window
func Title(typ domain.ReportType, w Window) string {
	switch typ {
	case domain.ReportDaily:
		return "Daily report - " + w.Start.Format("02.01.2006")
	case domain.ReportWeekly:
		return "Weekly report - " + w.Start.Format("02.01.2006")
	case domain.ReportMonthly:
		return "Monthly report - " + w.Start.Format("01.2006")
	default:
		return fmt.Sprintf("Custom report - %s / %s", w.Start.Format("02.01.2006"), w.End.Format("02.01.2006"))
	}
}
