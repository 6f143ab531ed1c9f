package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/trainweek/internal/constants"
	"github.com/julianstephens/trainweek/internal/models"
)

// EventFormModel backs the create/edit modal.
type EventFormModel struct {
	models.EventDraft
	Delete bool
}

// NewEventForm builds the event modal. The delete confirmation is only
// offered when an existing event is being edited.
func NewEventForm(fm *EventFormModel, editing bool, loc *time.Location) *huh.Form {
	validTime := func(s string) error {
		if _, err := models.ParseTimestamp(s, loc); err != nil {
			return fmt.Errorf("use %s", constants.DateTimeFormat)
		}
		return nil
	}

	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Value(&fm.Title),
		huh.NewInput().
			Title("Start").
			Description(constants.DateTimeFormat).
			Value(&fm.Start).
			Validate(validTime),
		huh.NewInput().
			Title("End").
			Description(constants.DateTimeFormat).
			Value(&fm.End).
			Validate(validTime),
		huh.NewText().
			Title("Description").
			Lines(3).
			Value(&fm.Description),
	}
	if editing {
		fields = append(fields,
			huh.NewConfirm().
				Title("Delete this event?").
				Affirmative("Delete").
				Negative("Keep").
				Value(&fm.Delete),
		)
	}

	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeDracula())
}

// NewPlanForm builds the training plan preference form bound to p.
func NewPlanForm(p *models.PlanPreferences) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Workouts per week").
				Options(huh.NewOptions(1, 2, 3, 4, 5, 6, 7)...).
				Value(&p.FrequencyPerWeek),
			huh.NewSelect[models.TimeOfDay]().
				Title("Preferred time of day").
				Options(
					huh.NewOption("Morning", models.TimeOfDayMorning),
					huh.NewOption("Afternoon", models.TimeOfDayAfternoon),
					huh.NewOption("Evening", models.TimeOfDayEvening),
				).
				Value(&p.PreferredTimeOfDay),
			huh.NewSelect[int]().
				Title("Workout duration").
				Options(minuteOptions(15, 180, 15)...).
				Value(&p.WorkoutDurationMinutes),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Prep time before").
				Options(minuteOptions(0, 60, 5)...).
				Value(&p.PaddingBeforeMinutes),
			huh.NewSelect[int]().
				Title("Cooldown after").
				Options(minuteOptions(0, 60, 5)...).
				Value(&p.PaddingAfterMinutes),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Workout types").
				Options(labelledOptions(models.WorkoutTypes)...).
				Value(&p.WorkoutTypes).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return errors.New("select at least one workout type")
					}
					return nil
				}),
			huh.NewSelect[models.Difficulty]().
				Title("Difficulty").
				Options(
					huh.NewOption("Easy", models.DifficultyEasy),
					huh.NewOption("Moderate", models.DifficultyModerate),
					huh.NewOption("Hard", models.DifficultyHard),
					huh.NewOption("Expert", models.DifficultyExpert),
				).
				Value(&p.DifficultyLevel),
			huh.NewMultiSelect[string]().
				Title("Days").
				Description("Leave empty to let the planner choose").
				Options(labelledOptions(models.Weekdays)...).
				Value(&p.DaysOfWeek),
		),
	).WithTheme(huh.ThemeDracula())
}

func minuteOptions(from, to, step int) []huh.Option[int] {
	var opts []huh.Option[int]
	for v := from; v <= to; v += step {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%d min", v), v))
	}
	return opts
}

func labelledOptions(values []string) []huh.Option[string] {
	opts := make([]huh.Option[string], len(values))
	for i, v := range values {
		opts[i] = huh.NewOption(optionLabel(v), v)
	}
	return opts
}

// optionLabel turns "strength_training" into "Strength training".
func optionLabel(v string) string {
	v = strings.ReplaceAll(v, "_", " ")
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}
