package models

type TimeOfDay string

const (
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
	TimeOfDayEvening   TimeOfDay = "evening"
)

type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
	DifficultyExpert   Difficulty = "expert"
)

var (
	TimesOfDay   = []TimeOfDay{TimeOfDayMorning, TimeOfDayAfternoon, TimeOfDayEvening}
	Difficulties = []Difficulty{DifficultyEasy, DifficultyModerate, DifficultyHard, DifficultyExpert}
	WorkoutTypes = []string{"cycling", "running", "strength_training", "yoga", "swimming"}
	Weekdays     = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
)

// PlanPreferences is the transient preference bundle submitted to the planner.
type PlanPreferences struct {
	FrequencyPerWeek       int        `json:"frequency_per_week"`
	PreferredTimeOfDay     TimeOfDay  `json:"preferred_time_of_day"`
	WorkoutDurationMinutes int        `json:"workout_duration_minutes"`
	PaddingBeforeMinutes   int        `json:"padding_before_minutes"`
	PaddingAfterMinutes    int        `json:"padding_after_minutes"`
	WorkoutTypes           []string   `json:"workout_types"`
	DifficultyLevel        Difficulty `json:"difficulty_level"`
	DaysOfWeek             []string   `json:"days_of_week"`
}

// PlanRequest is the planner payload: the user id plus the preferences, flattened.
type PlanRequest struct {
	UserID int `json:"user_id"`
	PlanPreferences
}

func DefaultPlanPreferences() PlanPreferences {
	return PlanPreferences{
		FrequencyPerWeek:       3,
		PreferredTimeOfDay:     TimeOfDayMorning,
		WorkoutDurationMinutes: 60,
		PaddingBeforeMinutes:   15,
		PaddingAfterMinutes:    15,
		WorkoutTypes:           []string{"cycling"},
		DifficultyLevel:        DifficultyModerate,
		DaysOfWeek:             []string{},
	}
}
