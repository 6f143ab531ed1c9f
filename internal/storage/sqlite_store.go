package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/trainweek/internal/migration"
	"github.com/julianstephens/trainweek/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations exposes the embedded cache schema.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init creates the database if needed and migrates it to the latest schema.
func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := s.open(); err != nil {
		return err
	}
	if _, err := migration.NewRunner(s.db, Migrations()).Apply(context.Background()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens an existing cache and checks its schema version.
func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return errNotInitialized
	}
	if err := s.open(); err != nil {
		return err
	}
	return migration.NewRunner(s.db, Migrations()).Validate(context.Background())
}

func (s *SQLiteStore) open() error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// Writes come from concurrent fetch commands; one connection keeps
	// SQLite from reporting SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// SchemaVersion reports the applied migration version.
func (s *SQLiteStore) SchemaVersion() (int, error) {
	if s.db == nil {
		return 0, errNotInitialized
	}
	return migration.NewRunner(s.db, Migrations()).Current(context.Background())
}

// SaveWeek replaces the cached copy of a week.
func (s *SQLiteStore) SaveWeek(weekStart time.Time, events []models.CalendarEvent) error {
	if s.db == nil {
		return errNotInitialized
	}
	key := weekKey(weekStart)

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cached_events WHERE week_start = ?", key); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO weeks (week_start, fetched_at) VALUES (?, ?)",
		key, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO cached_events (
			week_start, position, id, title, start_time, end_time, description,
			user_id, event_type, workout_type, difficulty_level, training_plan_id,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, ev := range events {
		var planID sql.NullInt64
		if ev.TrainingPlanID != nil {
			planID = sql.NullInt64{Int64: int64(*ev.TrainingPlanID), Valid: true}
		}
		if _, err := stmt.Exec(
			key, i, ev.ID, ev.Title, ev.StartTime, ev.EndTime, ev.Description,
			ev.UserID, string(ev.EventType), ev.WorkoutType, ev.DifficultyLevel, planID,
			ev.CreatedAt, ev.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to cache event %d: %w", ev.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadWeek(weekStart time.Time) (WeekSnapshot, error) {
	if s.db == nil {
		return WeekSnapshot{}, errNotInitialized
	}
	key := weekKey(weekStart)

	var fetchedAt string
	err := s.db.QueryRow("SELECT fetched_at FROM weeks WHERE week_start = ?", key).Scan(&fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return WeekSnapshot{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return WeekSnapshot{}, err
	}

	snap := WeekSnapshot{WeekStart: key, Events: []models.CalendarEvent{}}
	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		snap.FetchedAt = t
	}

	rows, err := s.db.Query(`
		SELECT id, title, start_time, end_time, description, user_id, event_type,
			workout_type, difficulty_level, training_plan_id, created_at, updated_at
		FROM cached_events WHERE week_start = ? ORDER BY position`, key)
	if err != nil {
		return WeekSnapshot{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var ev models.CalendarEvent
		var eventType string
		var planID sql.NullInt64
		if err := rows.Scan(
			&ev.ID, &ev.Title, &ev.StartTime, &ev.EndTime, &ev.Description, &ev.UserID, &eventType,
			&ev.WorkoutType, &ev.DifficultyLevel, &planID, &ev.CreatedAt, &ev.UpdatedAt,
		); err != nil {
			return WeekSnapshot{}, err
		}
		ev.EventType = models.EventType(eventType)
		if planID.Valid {
			id := int(planID.Int64)
			ev.TrainingPlanID = &id
		}
		snap.Events = append(snap.Events, ev)
	}
	return snap, rows.Err()
}

// ListWeeks returns cached week keys, newest first.
func (s *SQLiteStore) ListWeeks() ([]string, error) {
	if s.db == nil {
		return nil, errNotInitialized
	}
	rows, err := s.db.Query("SELECT week_start FROM weeks ORDER BY week_start DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weeks []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		weeks = append(weeks, key)
	}
	return weeks, rows.Err()
}

// PruneWeeks drops weeks starting before the given date.
func (s *SQLiteStore) PruneWeeks(before time.Time) (int, error) {
	if s.db == nil {
		return 0, errNotInitialized
	}
	key := weekKey(before)

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cached_events WHERE week_start < ?", key); err != nil {
		return 0, err
	}
	res, err := tx.Exec("DELETE FROM weeks WHERE week_start < ?", key)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), tx.Commit()
}

func (s *SQLiteStore) GetPath() string {
	return s.path
}
