// Package events holds the client-side copy of the visible week's events and
// the loading/error state of the requests that maintain it.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/trainweek/internal/calendar"
	apperrors "github.com/julianstephens/trainweek/internal/errors"
	"github.com/julianstephens/trainweek/internal/logger"
	"github.com/julianstephens/trainweek/internal/models"
)

// Client is the subset of the backend API the store needs.
type Client interface {
	ListEvents(ctx context.Context, start, end time.Time) ([]models.CalendarEvent, error)
	CreateEvent(ctx context.Context, ev models.EventCreate) (models.CalendarEvent, error)
	UpdateEvent(ctx context.Context, id int, patch models.EventUpdate) (models.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id int) error
}

// Cache persists the last successfully fetched week.
type Cache interface {
	SaveWeek(weekStart time.Time, events []models.CalendarEvent) error
}

type Store struct {
	client       Client
	cache        Cache
	weekStartsOn time.Weekday

	mu      sync.RWMutex
	events  []models.CalendarEvent
	loading bool
	err     string
}

type Option func(*Store)

func WithCache(c Cache) Option {
	return func(s *Store) { s.cache = c }
}

func WithWeekStart(d time.Weekday) Option {
	return func(s *Store) { s.weekStartsOn = d }
}

func NewStore(client Client, opts ...Option) *Store {
	s := &Store{client: client, events: []models.CalendarEvent{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// begin resets the error and raises the loading flag for a new call.
func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
	s.loading = true
}

// settle records the outcome of a call. Overlapping calls are not
// serialised: whichever settles last decides both flags.
func (s *Store) settle(msg string) {
	s.loading = false
	s.err = msg
}

// FetchWeek replaces the local list with the events of the week containing
// date. On failure the previous list is kept.
func (s *Store) FetchWeek(ctx context.Context, date time.Time) error {
	start := calendar.StartOfWeek(date, s.weekStartsOn)
	end := start.AddDate(0, 0, 7)

	s.begin()
	fetched, err := s.client.ListEvents(ctx, start, end)

	s.mu.Lock()
	if err != nil {
		msg := apperrors.Operation("fetching events", err)
		s.settle(msg)
		s.mu.Unlock()
		logger.Error("fetch week failed", "week_start", start.Format("2006-01-02"), "error", err)
		return fmt.Errorf("fetch week: %w", err)
	}
	if fetched == nil {
		fetched = []models.CalendarEvent{}
	}
	s.events = fetched
	s.settle("")
	snapshot := s.copyEvents()
	s.mu.Unlock()

	logger.Debug("fetched week", "week_start", start.Format("2006-01-02"), "events", len(snapshot))
	if s.cache != nil {
		if err := s.cache.SaveWeek(start, snapshot); err != nil {
			logger.Warn("failed to cache week", "week_start", start.Format("2006-01-02"), "error", err)
		}
	}
	return nil
}

// Create posts a new event. The local list is left untouched; callers
// re-fetch to pick up the server's view. Returns nil on failure.
func (s *Store) Create(ctx context.Context, ev models.EventCreate) (*models.CalendarEvent, error) {
	s.begin()
	created, err := s.client.CreateEvent(ctx, ev)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.settle(apperrors.Operation("creating event", err))
		logger.Error("create event failed", "title", ev.Title, "error", err)
		return nil, err
	}
	s.settle("")
	logger.Info("event created", "id", created.ID, "title", created.Title)
	return &created, nil
}

// Update sends patch for id and swaps the server's copy into the local list.
func (s *Store) Update(ctx context.Context, id int, patch models.EventUpdate) (*models.CalendarEvent, error) {
	s.begin()
	updated, err := s.client.UpdateEvent(ctx, id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.settle(apperrors.Operation("updating event", err))
		logger.Error("update event failed", "id", id, "error", err)
		return nil, err
	}
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i] = updated
		}
	}
	s.settle("")
	logger.Info("event updated", "id", id)
	return &updated, nil
}

// Delete removes id on the server and then every local entry with that id.
func (s *Store) Delete(ctx context.Context, id int) error {
	s.begin()
	err := s.client.DeleteEvent(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.settle(apperrors.Operation("deleting event", err))
		logger.Error("delete event failed", "id", id, "error", err)
		return err
	}
	kept := make([]models.CalendarEvent, 0, len(s.events))
	for _, ev := range s.events {
		if ev.ID != id {
			kept = append(kept, ev)
		}
	}
	s.events = kept
	s.settle("")
	logger.Info("event deleted", "id", id)
	return nil
}

// Seed preloads the list, typically from the offline cache, without touching
// the loading or error state.
func (s *Store) Seed(events []models.CalendarEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append([]models.CalendarEvent{}, events...)
}

func (s *Store) Events() []models.CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyEvents()
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err is the last error banner, empty when the most recent call succeeded.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Snapshot is a consistent view of the store at one instant.
type Snapshot struct {
	Events  []models.CalendarEvent
	Loading bool
	Err     string
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Events: s.copyEvents(), Loading: s.loading, Err: s.err}
}

func (s *Store) copyEvents() []models.CalendarEvent {
	out := make([]models.CalendarEvent, len(s.events))
	copy(out, s.events)
	return out
}
