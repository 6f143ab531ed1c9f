package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/julianstephens/trainweek/internal/models"
)

func TestWriteICS(t *testing.T) {
	planID := 12
	events := []models.CalendarEvent{
		{ID: 1, Title: "Ride", StartTime: "2024-06-03T09:15:00Z", EndTime: "2024-06-03T10:00:00Z", EventType: models.EventTypeWorkout, TrainingPlanID: &planID, WorkoutType: "cycling"},
		{ID: 2, Title: "Broken", StartTime: "yesterday", EndTime: "2024-06-03T10:00:00Z"},
		{ID: 3, Title: "Stretch", StartTime: "2024-06-03T10:00:00Z", EndTime: "2024-06-03T10:15:00Z", Description: "hips and hamstrings"},
	}

	var buf bytes.Buffer
	res, err := WriteICS(&buf, events, time.UTC, "localhost")
	if err != nil {
		t.Fatalf("WriteICS: %v", err)
	}
	if res.Written != 2 || res.Skipped != 1 {
		t.Errorf("result = %+v, want 2 written 1 skipped", res)
	}

	cal, err := ical.ParseCalendar(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	parsed := cal.Events()
	if len(parsed) != 2 {
		t.Fatalf("expected 2 VEVENTs, got %d", len(parsed))
	}

	ride := parsed[0]
	if p := ride.GetProperty(ical.ComponentPropertyUniqueId); p == nil || p.Value != "event-1@localhost" {
		t.Errorf("UID = %+v", p)
	}
	if p := ride.GetProperty(ical.ComponentPropertySummary); p == nil || p.Value != "Ride" {
		t.Errorf("SUMMARY = %+v", p)
	}
	if p := ride.GetProperty(ical.ComponentPropertyCategories); p == nil || p.Value != "workout" {
		t.Errorf("CATEGORIES = %+v", p)
	}
	start, err := ride.GetStartAt()
	if err != nil {
		t.Fatalf("GetStartAt: %v", err)
	}
	if want := time.Date(2024, 6, 3, 9, 15, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}

	if p := parsed[1].GetProperty(ical.ComponentPropertyDescription); p == nil || p.Value != "hips and hamstrings" {
		t.Errorf("DESCRIPTION = %+v", p)
	}
}

func TestWriteICSEmptyWeek(t *testing.T) {
	var buf bytes.Buffer
	res, err := WriteICS(&buf, nil, time.UTC, "localhost")
	if err != nil {
		t.Fatalf("WriteICS: %v", err)
	}
	if res.Written != 0 {
		t.Errorf("written = %d", res.Written)
	}
	if !strings.Contains(buf.String(), "BEGIN:VCALENDAR") {
		t.Errorf("missing calendar envelope: %q", buf.String())
	}
}
