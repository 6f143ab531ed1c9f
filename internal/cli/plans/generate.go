package plans

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/julianstephens/trainweek/internal/cli"
	"github.com/julianstephens/trainweek/internal/models"
	"github.com/julianstephens/trainweek/internal/validation"
)

type GenerateCmd struct {
	Frequency     int      `short:"f" help:"Workouts per week (1-7)." default:"3"`
	TimeOfDay     string   `help:"Preferred time of day." enum:"morning,afternoon,evening" default:"morning"`
	Duration      int      `short:"d" help:"Workout length in minutes (15-180, steps of 15)." default:"60"`
	PaddingBefore int      `help:"Prep minutes before each workout (0-60, steps of 5)." default:"15"`
	PaddingAfter  int      `help:"Cooldown minutes after each workout (0-60, steps of 5)." default:"15"`
	Types         []string `short:"t" help:"Workout types (cycling, running, strength_training, yoga, swimming)." default:"cycling"`
	Difficulty    string   `help:"Difficulty level." enum:"easy,moderate,hard,expert" default:"moderate"`
	Days          []string `help:"Days to schedule on (monday..sunday). Empty lets the planner choose."`
}

// Preferences converts the flags into the planner payload.
func (c *GenerateCmd) Preferences() models.PlanPreferences {
	days := make([]string, 0, len(c.Days))
	for _, d := range c.Days {
		days = append(days, strings.ToLower(strings.TrimSpace(d)))
	}
	return models.PlanPreferences{
		FrequencyPerWeek:       c.Frequency,
		PreferredTimeOfDay:     models.TimeOfDay(c.TimeOfDay),
		WorkoutDurationMinutes: c.Duration,
		PaddingBeforeMinutes:   c.PaddingBefore,
		PaddingAfterMinutes:    c.PaddingAfter,
		WorkoutTypes:           c.Types,
		DifficultyLevel:        models.Difficulty(c.Difficulty),
		DaysOfWeek:             days,
	}
}

func (c *GenerateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Ready(); err != nil {
		return err
	}
	prefs := c.Preferences()
	if err := validation.New(ctx.Loc).ValidatePreferences(prefs); err != nil {
		return err
	}

	rctx, cancel := ctx.RequestContext()
	defer cancel()
	plan, err := ctx.Client.GenerateTrainingPlan(rctx, prefs)
	if err != nil {
		return fmt.Errorf("failed to generate training plan: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, plan, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(plan)
	}
	fmt.Fprintln(ctx.Out, "Training plan generated:")
	fmt.Fprintln(ctx.Out, pretty.String())
	return nil
}
