package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/trainweek/internal/models"
)

func TestValidateDraft(t *testing.T) {
	validator := New(time.UTC)

	tests := []struct {
		name    string
		draft   models.EventDraft
		wantErr error
	}{
		{"valid", models.EventDraft{Title: "Ride", Start: "2024-06-03 09:00", End: "2024-06-03 10:00"}, nil},
		{"empty title", models.EventDraft{Title: "", Start: "2024-06-03 09:00", End: "2024-06-03 10:00"}, ErrEmptyTitle},
		{"blank title", models.EventDraft{Title: "   ", Start: "2024-06-03 09:00", End: "2024-06-03 10:00"}, ErrEmptyTitle},
		{"end before start", models.EventDraft{Title: "Ride", Start: "2024-06-03 10:00", End: "2024-06-03 09:00"}, ErrEndBeforeStart},
		{"zero length", models.EventDraft{Title: "Ride", Start: "2024-06-03 10:00", End: "2024-06-03 10:00"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateDraft(tt.draft)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDraft() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDraft_BadTime(t *testing.T) {
	validator := New(time.UTC)
	err := validator.ValidateDraft(models.EventDraft{Title: "Ride", Start: "tomorrow", End: "2024-06-03 10:00"})
	if err == nil {
		t.Error("expected error for unparseable start")
	}
}

func TestValidatePreferences(t *testing.T) {
	validator := New(time.UTC)

	if err := validator.ValidatePreferences(models.DefaultPlanPreferences()); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*models.PlanPreferences)
		want   string
	}{
		{"frequency too high", func(p *models.PlanPreferences) { p.FrequencyPerWeek = 8 }, "frequency"},
		{"duration off step", func(p *models.PlanPreferences) { p.WorkoutDurationMinutes = 50 }, "duration"},
		{"duration too long", func(p *models.PlanPreferences) { p.WorkoutDurationMinutes = 195 }, "duration"},
		{"padding off step", func(p *models.PlanPreferences) { p.PaddingBeforeMinutes = 7 }, "prep padding"},
		{"padding too long", func(p *models.PlanPreferences) { p.PaddingAfterMinutes = 65 }, "cooldown padding"},
		{"no workout types", func(p *models.PlanPreferences) { p.WorkoutTypes = nil }, "at least one workout type"},
		{"unknown workout", func(p *models.PlanPreferences) { p.WorkoutTypes = []string{"rowing"} }, "rowing"},
		{"unknown day", func(p *models.PlanPreferences) { p.DaysOfWeek = []string{"funday"} }, "funday"},
		{"unknown difficulty", func(p *models.PlanPreferences) { p.DifficultyLevel = "brutal" }, "brutal"},
		{"unknown time of day", func(p *models.PlanPreferences) { p.PreferredTimeOfDay = "night" }, "night"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := models.DefaultPlanPreferences()
			tt.mutate(&prefs)
			err := validator.ValidatePreferences(prefs)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ValidatePreferences() = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestValidateWeek(t *testing.T) {
	validator := New(time.UTC)
	events := []models.CalendarEvent{
		{ID: 1, Title: "Prep", StartTime: "2024-06-03T09:00:00Z", EndTime: "2024-06-03T09:15:00Z"},
		{ID: 2, Title: "Ride", StartTime: "2024-06-03T09:15:00Z", EndTime: "2024-06-03T10:15:00Z"},
		{ID: 3, Title: "Lunch ride", StartTime: "2024-06-03T10:00:00Z", EndTime: "2024-06-03T11:00:00Z"},
		{ID: 4, Title: "Broken", StartTime: "garbage", EndTime: "2024-06-03T11:00:00Z"},
		{ID: 5, Title: "Backwards", StartTime: "2024-06-04T11:00:00Z", EndTime: "2024-06-04T10:00:00Z"},
		{ID: 6, Title: "Dawn patrol", StartTime: "2024-06-05T05:00:00Z", EndTime: "2024-06-05T06:00:00Z"},
	}

	result := validator.ValidateWeek(events)

	counts := map[ConflictType]int{}
	for _, c := range result.Conflicts {
		counts[c.Type]++
	}
	if counts[ConflictOverlappingEvents] != 1 {
		t.Errorf("expected 1 overlap (Ride/Lunch ride), got %d", counts[ConflictOverlappingEvents])
	}
	if counts[ConflictInvalidDateTime] != 1 || counts[ConflictEndBeforeStart] != 1 || counts[ConflictOutsideGrid] != 1 {
		t.Errorf("unexpected conflict counts: %v", counts)
	}
	if !strings.Contains(result.FormatReport(), "Conflicts detected") {
		t.Errorf("report = %q", result.FormatReport())
	}
}

func TestValidateWeek_NoConflicts(t *testing.T) {
	result := New(time.UTC).ValidateWeek(nil)
	if result.HasConflicts() {
		t.Errorf("expected no conflicts, got %+v", result.Conflicts)
	}
	if result.FormatReport() != "No conflicts detected." {
		t.Errorf("report = %q", result.FormatReport())
	}
}
