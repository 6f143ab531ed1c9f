// Package export renders a week of events as an iCalendar document.
package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/julianstephens/trainweek/internal/constants"
	"github.com/julianstephens/trainweek/internal/logger"
	"github.com/julianstephens/trainweek/internal/models"
)

// Result summarises an export.
type Result struct {
	Written int
	Skipped int
}

// uid is stable per backend event so re-imports update instead of duplicate.
func uid(ev models.CalendarEvent, host string) string {
	return fmt.Sprintf("event-%d@%s", ev.ID, host)
}

// BuildCalendar converts events into a VCALENDAR. Events whose times cannot
// be parsed are skipped and logged.
func BuildCalendar(events []models.CalendarEvent, loc *time.Location, host string) (*ical.Calendar, Result) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//" + constants.AppName + "//" + constants.Version + "//EN")
	cal.SetName(constants.AppName + " training")

	var res Result
	now := time.Now().UTC()
	for _, ev := range events {
		start, err := ev.Start(loc)
		if err != nil {
			logger.Warn("export: skipping event", "id", ev.ID, "error", err)
			res.Skipped++
			continue
		}
		end, err := ev.End(loc)
		if err != nil {
			logger.Warn("export: skipping event", "id", ev.ID, "error", err)
			res.Skipped++
			continue
		}

		vevent := cal.AddEvent(uid(ev, host))
		vevent.SetDtStampTime(now)
		vevent.SetStartAt(start)
		vevent.SetEndAt(end)
		vevent.SetSummary(ev.Title)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		if ev.EventType != models.EventTypeUnset {
			vevent.SetProperty(ical.ComponentPropertyCategories, string(ev.EventType))
		}
		if ev.WorkoutType != "" {
			vevent.SetProperty(ical.ComponentProperty("X-TRAINWEEK-WORKOUT-TYPE"), ev.WorkoutType)
		}
		if ev.TrainingPlanID != nil {
			vevent.SetProperty(ical.ComponentProperty("X-TRAINWEEK-PLAN-ID"), strconv.Itoa(*ev.TrainingPlanID))
		}
		if created, err := models.ParseTimestamp(ev.CreatedAt, loc); err == nil {
			vevent.SetCreatedTime(created)
		}
		if updated, err := models.ParseTimestamp(ev.UpdatedAt, loc); err == nil {
			vevent.SetModifiedAt(updated)
		}
		res.Written++
	}
	return cal, res
}

// WriteICS serialises events to w.
func WriteICS(w io.Writer, events []models.CalendarEvent, loc *time.Location, host string) (Result, error) {
	cal, res := BuildCalendar(events, loc, host)
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return res, err
	}
	logger.Info("exported week", "events", res.Written, "skipped", res.Skipped)
	return res, nil
}
