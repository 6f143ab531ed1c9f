package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/trainweek/internal/constants"
)

// Slot is the one-hour window a grid cell represents.
type Slot struct {
	Start time.Time
	End   time.Time
}

// StartOfDay returns midnight of t in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the first day of the week containing t.
func StartOfWeek(t time.Time, weekStartsOn time.Weekday) time.Time {
	diff := (int(t.Weekday()) - int(weekStartsOn) + constants.DaysPerWeek) % constants.DaysPerWeek
	return StartOfDay(t).AddDate(0, 0, -diff)
}

// WeekDays returns the seven consecutive days beginning at weekStart.
func WeekDays(weekStart time.Time) []time.Time {
	days := make([]time.Time, constants.DaysPerWeek)
	for i := range days {
		days[i] = weekStart.AddDate(0, 0, i)
	}
	return days
}

// DayHours returns the displayed hours of a day, 6 through 21.
func DayHours() []int {
	hours := make([]int, constants.DisplayHourCount)
	for i := range hours {
		hours[i] = constants.FirstDisplayHour + i
	}
	return hours
}

// IsDisplayedHour reports whether h is rendered on the grid.
func IsDisplayedHour(h int) bool {
	return h >= constants.FirstDisplayHour && h < constants.FirstDisplayHour+constants.DisplayHourCount
}

// FormatHour renders an hour label such as "9 AM" or "12 PM".
func FormatHour(h int) string {
	switch {
	case h == 12:
		return "12 PM"
	case h > 12:
		return fmt.Sprintf("%d PM", h-12)
	default:
		return fmt.Sprintf("%d AM", h)
	}
}

// TimeSlot is the one-hour window starting at hour on day.
func TimeSlot(day time.Time, hour int) Slot {
	start := StartOfDay(day).Add(time.Duration(hour) * time.Hour)
	return Slot{Start: start, End: start.Add(time.Hour)}
}

// PreviousWeek moves d back seven days without snapping to a week start.
func PreviousWeek(d time.Time) time.Time {
	return d.AddDate(0, 0, -constants.DaysPerWeek)
}

// NextWeek moves d forward seven days without snapping to a week start.
func NextWeek(d time.Time) time.Time {
	return d.AddDate(0, 0, constants.DaysPerWeek)
}

// Today is the anchor for "today" navigation. now is injected for tests.
func Today(now time.Time) time.Time {
	return now
}

// SameDay reports whether a and b share a calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseWeekday accepts "sunday" or "monday" (case-insensitive).
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	}
	return time.Sunday, fmt.Errorf("unsupported week start %q (want sunday or monday)", s)
}

// WeekTitle renders the header shown above the grid.
func WeekTitle(weekStart time.Time) string {
	return "Week of " + weekStart.Format("January 2, 2006")
}
