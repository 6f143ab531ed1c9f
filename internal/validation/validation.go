package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/trainweek/internal/models"
)

var (
	ErrEmptyTitle     = errors.New("title is required")
	ErrEndBeforeStart = errors.New("end time must not be before start time")
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictOverlappingEvents ConflictType = "overlapping_events"
	ConflictInvalidDateTime   ConflictType = "invalid_datetime"
	ConflictEndBeforeStart    ConflictType = "end_before_start"
	ConflictOutsideGrid       ConflictType = "outside_grid"
)

// Conflict represents a problem detected in a week of events
type Conflict struct {
	Type        ConflictType
	Description string
	EventIDs    []int
}

type ValidationResult struct {
	Conflicts []Conflict
}

func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}
	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

type Validator struct {
	loc *time.Location
}

// New creates a Validator that interprets zone-less timestamps in loc.
func New(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.Local
	}
	return &Validator{loc: loc}
}

// ValidateDraft checks the modal draft before it is sent.
func (v *Validator) ValidateDraft(d models.EventDraft) error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyTitle
	}
	start, end, err := d.Times(v.loc)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// ValidatePreferences applies the generation form's ranges.
func (v *Validator) ValidatePreferences(p models.PlanPreferences) error {
	var problems []string

	if p.FrequencyPerWeek < 1 || p.FrequencyPerWeek > 7 {
		problems = append(problems, "frequency must be between 1 and 7 workouts per week")
	}
	if p.WorkoutDurationMinutes < 15 || p.WorkoutDurationMinutes > 180 || p.WorkoutDurationMinutes%15 != 0 {
		problems = append(problems, "duration must be 15-180 minutes in steps of 15")
	}
	for _, pad := range []struct {
		name  string
		value int
	}{
		{"prep padding", p.PaddingBeforeMinutes},
		{"cooldown padding", p.PaddingAfterMinutes},
	} {
		if pad.value < 0 || pad.value > 60 || pad.value%5 != 0 {
			problems = append(problems, fmt.Sprintf("%s must be 0-60 minutes in steps of 5", pad.name))
		}
	}
	if !contains(models.TimesOfDay, p.PreferredTimeOfDay) {
		problems = append(problems, fmt.Sprintf("unknown time of day %q", p.PreferredTimeOfDay))
	}
	if !contains(models.Difficulties, p.DifficultyLevel) {
		problems = append(problems, fmt.Sprintf("unknown difficulty %q", p.DifficultyLevel))
	}
	if len(p.WorkoutTypes) == 0 {
		problems = append(problems, "select at least one workout type")
	}
	for _, wt := range p.WorkoutTypes {
		if !contains(models.WorkoutTypes, wt) {
			problems = append(problems, fmt.Sprintf("unknown workout type %q", wt))
		}
	}
	for _, day := range p.DaysOfWeek {
		if !contains(models.Weekdays, day) {
			problems = append(problems, fmt.Sprintf("unknown weekday %q", day))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid preferences: %s", strings.Join(problems, "; "))
	}
	return nil
}

type span struct {
	ev         models.CalendarEvent
	start, end time.Time
}

// ValidateWeek reports malformed, inverted, hidden and overlapping events.
func (v *Validator) ValidateWeek(events []models.CalendarEvent) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	var spans []span
	for _, ev := range events {
		start, errStart := ev.Start(v.loc)
		end, errEnd := ev.End(v.loc)
		if errStart != nil || errEnd != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDateTime,
				Description: fmt.Sprintf("Event %d %q has an unreadable start or end time", ev.ID, ev.Title),
				EventIDs:    []int{ev.ID},
			})
			continue
		}
		if end.Before(start) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictEndBeforeStart,
				Description: fmt.Sprintf("Event %d %q ends before it starts", ev.ID, ev.Title),
				EventIDs:    []int{ev.ID},
			})
			continue
		}
		if start.Hour() < 6 || start.Hour() > 21 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOutsideGrid,
				Description: fmt.Sprintf("Event %d %q starts at %s, outside the displayed hours", ev.ID, ev.Title, start.Format("15:04")),
				EventIDs:    []int{ev.ID},
			})
		}
		spans = append(spans, span{ev: ev, start: start, end: end})
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].start.Before(spans[j].start)
	})
	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			if !spans[j].start.Before(spans[i].end) {
				break
			}
			a, b := spans[i].ev, spans[j].ev
			desc := fmt.Sprintf("Events %q and %q overlap (%s - %s)", a.Title, b.Title,
				spans[j].start.Format("Mon 15:04"), minTime(spans[i].end, spans[j].end).Format("15:04"))
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOverlappingEvents,
				Description: desc,
				EventIDs:    []int{a.ID, b.ID},
			})
		}
	}

	return result
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
