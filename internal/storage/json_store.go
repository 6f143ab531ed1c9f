package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/trainweek/internal/models"
)

type cacheFile struct {
	Version int                     `json:"version"`
	Weeks   map[string]WeekSnapshot `json:"weeks"`
}

type JSONStore struct {
	path string

	mu    sync.Mutex
	cache *cacheFile
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Init creates the cache file, or loads it when it already exists.
func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = &cacheFile{Version: 1, Weeks: make(map[string]WeekSnapshot)}
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return errNotInitialized
		}
		return fmt.Errorf("failed to read cache: %w", err)
	}

	cache := &cacheFile{}
	if err := json.Unmarshal(data, cache); err != nil {
		return fmt.Errorf("failed to parse cache: %w", err)
	}
	if cache.Weeks == nil {
		cache.Weeks = make(map[string]WeekSnapshot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = cache
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

func (s *JSONStore) SaveWeek(weekStart time.Time, events []models.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		return errNotInitialized
	}
	key := weekKey(weekStart)
	s.cache.Weeks[key] = WeekSnapshot{
		WeekStart: key,
		FetchedAt: time.Now().UTC().Truncate(time.Second),
		Events:    append([]models.CalendarEvent{}, events...),
	}
	return s.save()
}

func (s *JSONStore) LoadWeek(weekStart time.Time) (WeekSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		return WeekSnapshot{}, errNotInitialized
	}
	key := weekKey(weekStart)
	snap, ok := s.cache.Weeks[key]
	if !ok {
		return WeekSnapshot{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	snap.Events = append([]models.CalendarEvent{}, snap.Events...)
	return snap, nil
}

func (s *JSONStore) ListWeeks() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		return nil, errNotInitialized
	}
	weeks := make([]string, 0, len(s.cache.Weeks))
	for key := range s.cache.Weeks {
		weeks = append(weeks, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(weeks)))
	return weeks, nil
}

func (s *JSONStore) PruneWeeks(before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		return 0, errNotInitialized
	}
	cutoff := weekKey(before)
	removed := 0
	for key := range s.cache.Weeks {
		if key < cutoff {
			delete(s.cache.Weeks, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save()
}

func (s *JSONStore) GetPath() string {
	return s.path
}
