package models

import (
	"fmt"
	"strings"
	"time"
)

type EventType string

const (
	EventTypeUnset    EventType = ""
	EventTypePrep     EventType = "prep"
	EventTypeWorkout  EventType = "workout"
	EventTypeCooldown EventType = "cooldown"
)

// CalendarEvent mirrors the backend's event resource. Timestamps stay as
// strings so a single malformed record never fails decoding of a whole week.
type CalendarEvent struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	Description     string    `json:"description,omitempty"`
	UserID          int       `json:"user_id"`
	EventType       EventType `json:"event_type,omitempty"`
	WorkoutType     string    `json:"workout_type,omitempty"`
	DifficultyLevel string    `json:"difficulty_level,omitempty"`
	TrainingPlanID  *int      `json:"training_plan_id,omitempty"`
	CreatedAt       string    `json:"created_at"`
	UpdatedAt       string    `json:"updated_at,omitempty"`
}

// Start parses StartTime into loc.
func (e CalendarEvent) Start(loc *time.Location) (time.Time, error) {
	return ParseTimestamp(e.StartTime, loc)
}

// End parses EndTime into loc.
func (e CalendarEvent) End(loc *time.Location) (time.Time, error) {
	return ParseTimestamp(e.EndTime, loc)
}

// EventCreate is the payload for creating an event.
type EventCreate struct {
	Title           string    `json:"title"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	Description     string    `json:"description,omitempty"`
	EventType       EventType `json:"event_type,omitempty"`
	WorkoutType     string    `json:"workout_type,omitempty"`
	DifficultyLevel string    `json:"difficulty_level,omitempty"`
	TrainingPlanID  *int      `json:"training_plan_id,omitempty"`
}

// EventUpdate is a partial patch; nil fields are not sent.
type EventUpdate struct {
	Title           *string    `json:"title,omitempty"`
	StartTime       *string    `json:"start_time,omitempty"`
	EndTime         *string    `json:"end_time,omitempty"`
	Description     *string    `json:"description,omitempty"`
	EventType       *EventType `json:"event_type,omitempty"`
	WorkoutType     *string    `json:"workout_type,omitempty"`
	DifficultyLevel *string    `json:"difficulty_level,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (u EventUpdate) IsEmpty() bool {
	return u.Title == nil && u.StartTime == nil && u.EndTime == nil && u.Description == nil &&
		u.EventType == nil && u.WorkoutType == nil && u.DifficultyLevel == nil
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp accepts RFC 3339 timestamps and the zone-less ISO forms the
// backend emits for naive datetimes. Zone-less values are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// FormatTimestamp renders t the way the backend expects it on the wire:
// UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
