package constants

const (
	AppName           = "trainweek"
	Version           = "v0.1.0"
	DefaultConfigPath = "~/.config/trainweek/config.yaml"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DateTimeFormat is the editable form of an event timestamp
	DateTimeFormat = "2006-01-02 15:04"

	// Backend endpoints, relative to the configured base URL
	EventsEndpoint  = "events"
	PlannerEndpoint = "planner/create-training-plan"
	UserQueryParam  = "user"

	// Defaults
	DefaultBaseURL        = "http://localhost:8000"
	DefaultUserID         = 3
	DefaultTimezone       = "Local"
	DefaultWeekStart      = "sunday"
	DefaultRequestTimeout = 15 // seconds
	DefaultRefreshCron    = "*/5 * * * *"
	DefaultCacheFile      = "trainweek.db"
	LockfileName          = "trainweek.lock"

	// Grid
	FirstDisplayHour = 6
	DisplayHourCount = 16
	DaysPerWeek      = 7
)
