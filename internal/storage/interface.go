package storage

import (
	"errors"
	"strings"
	"time"

	"github.com/julianstephens/trainweek/internal/constants"
	"github.com/julianstephens/trainweek/internal/models"
)

// ErrNotFound is returned when a week has never been cached.
var ErrNotFound = errors.New("week not cached")

// WeekSnapshot is the last fetched copy of one week.
type WeekSnapshot struct {
	WeekStart string                 `json:"week_start"`
	FetchedAt time.Time              `json:"fetched_at"`
	Events    []models.CalendarEvent `json:"events"`
}

// Provider is the offline cache of fetched weeks.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Weeks
	SaveWeek(weekStart time.Time, events []models.CalendarEvent) error
	LoadWeek(weekStart time.Time) (WeekSnapshot, error)
	ListWeeks() ([]string, error)
	PruneWeeks(before time.Time) (int, error)

	// Utils
	GetPath() string
}

// New picks the backend from the file extension: .json selects the JSON
// store, anything else SQLite.
func New(path string) Provider {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return NewJSONStore(path)
	}
	return NewSQLiteStore(path)
}

func weekKey(weekStart time.Time) string {
	return weekStart.Format(constants.DateFormat)
}

var errNotInitialized = errors.New("cache not initialized, run '" + constants.AppName + " init' first")
