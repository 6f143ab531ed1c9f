package schedule

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/trainweek/internal/calendar"
	"github.com/julianstephens/trainweek/internal/cli"
	"github.com/julianstephens/trainweek/internal/models"
	"github.com/julianstephens/trainweek/internal/validation"
)

var (
	dayStyle  = lipgloss.NewStyle().Bold(true)
	metaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type WeekCmd struct {
	Date    string `arg:"" optional:"" help:"Any date in the week (YYYY-MM-DD). Defaults to today."`
	Offline bool   `help:"Read the week from the offline cache instead of the backend."`
}

func (c *WeekCmd) Run(ctx *cli.Context) error {
	if err := ctx.Ready(); err != nil {
		return err
	}
	date, err := cli.ParseDate(c.Date, ctx.Loc)
	if err != nil {
		return err
	}
	evs, err := ctx.WeekEvents(date, c.Offline)
	if err != nil {
		return err
	}

	weekStart := calendar.StartOfWeek(date, ctx.Config.WeekStartDay())
	PrintWeek(ctx.Out, weekStart, evs, ctx.Loc)

	result := validation.New(ctx.Loc).ValidateWeek(evs)
	if result.HasConflicts() {
		fmt.Fprintln(ctx.Out)
		fmt.Fprint(ctx.Out, result.FormatReport())
	}
	return nil
}

// PrintWeek writes one section per day listing that day's events in start
// order. Events with unreadable start times are listed last.
func PrintWeek(w io.Writer, weekStart time.Time, evs []models.CalendarEvent, loc *time.Location) {
	fmt.Fprintln(w, calendar.WeekTitle(weekStart))

	type dated struct {
		start, end time.Time
		ev         models.CalendarEvent
	}
	var listed []dated
	var unreadable []models.CalendarEvent
	for _, ev := range evs {
		start, err := ev.Start(loc)
		if err != nil {
			unreadable = append(unreadable, ev)
			continue
		}
		end, err := ev.End(loc)
		if err != nil {
			end = start
		}
		listed = append(listed, dated{start: start, end: end, ev: ev})
	}
	sort.SliceStable(listed, func(i, j int) bool {
		return listed[i].start.Before(listed[j].start)
	})

	for _, day := range calendar.WeekDays(weekStart) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, dayStyle.Render(day.Format("Monday, Jan 2")))
		count := 0
		for _, d := range listed {
			if !calendar.SameDay(d.start, day) {
				continue
			}
			count++
			fmt.Fprintf(w, "  %s-%s  %s%s\n",
				d.start.Format("15:04"), d.end.Format("15:04"), d.ev.Title, describe(d.ev))
		}
		if count == 0 {
			fmt.Fprintln(w, metaStyle.Render("  (no events)"))
		}
	}

	if len(unreadable) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Unreadable times:")
		for _, ev := range unreadable {
			fmt.Fprintf(w, "  #%d %s (%s)\n", ev.ID, ev.Title, ev.StartTime)
		}
	}
}

func describe(ev models.CalendarEvent) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("#%d", ev.ID))
	if ev.EventType != models.EventTypeUnset {
		parts = append(parts, string(ev.EventType))
	}
	if ev.WorkoutType != "" {
		parts = append(parts, ev.WorkoutType)
	}
	return " " + metaStyle.Render("["+strings.Join(parts, ", ")+"]")
}
