package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/trainweek/internal/api"
	"github.com/julianstephens/trainweek/internal/calendar"
	"github.com/julianstephens/trainweek/internal/config"
	"github.com/julianstephens/trainweek/internal/constants"
	"github.com/julianstephens/trainweek/internal/events"
	"github.com/julianstephens/trainweek/internal/logger"
	"github.com/julianstephens/trainweek/internal/models"
	"github.com/julianstephens/trainweek/internal/storage"
)

// Options tune NewContext for the command being run.
type Options struct {
	Debug bool

	// LogMirror receives log output in debug mode; the TUI passes io.Discard.
	LogMirror io.Writer

	// Out is where commands print. Defaults to stdout.
	Out io.Writer
}

type Context struct {
	Config     *config.Config
	ConfigPath string
	ConfigDir  string
	Loc        *time.Location
	Client     *api.Client
	Calendar   *calendar.State
	Events     *events.Store
	Store      storage.Provider
	Out        io.Writer

	// ConfigErr is set when the config file loaded but failed validation.
	// Only doctor and init run in that state.
	ConfigErr error

	// CacheErr is set when the offline cache could not be opened; commands
	// then run without it.
	CacheErr error
}

// NewContext loads the config at configPath, starts logging and wires the
// API client, calendar state, event store and offline cache.
func NewContext(configPath string, opts Options) (*Context, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := logger.Init(logger.Config{
		Debug:     opts.Debug || cfg.Debug,
		ConfigDir: dir,
		Mirror:    opts.LogMirror,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	ctx := &Context{
		Config:     cfg,
		ConfigPath: configPath,
		ConfigDir:  dir,
		Loc:        time.Local,
		Out:        out,
	}

	if err := cfg.Validate(); err != nil {
		ctx.ConfigErr = err
		logger.Warn("config is invalid", "path", configPath, "error", err)
		return ctx, nil
	}

	loc, err := cfg.Location()
	if err != nil {
		ctx.ConfigErr = err
		return ctx, nil
	}
	ctx.Loc = loc

	client, err := api.New(cfg.BaseURL, cfg.UserID, api.WithTimeout(cfg.RequestTimeout()))
	if err != nil {
		ctx.ConfigErr = err
		return ctx, nil
	}
	ctx.Client = client
	ctx.Calendar = calendar.NewState(time.Now().In(loc), cfg.WeekStartDay())

	storeOpts := []events.Option{events.WithWeekStart(cfg.WeekStartDay())}
	store := storage.New(cfg.ResolveCachePath(dir))
	if err := store.Init(); err != nil {
		ctx.CacheErr = err
		logger.Warn("offline cache unavailable", "path", store.GetPath(), "error", err)
	} else {
		ctx.Store = store
		storeOpts = append(storeOpts, events.WithCache(store))
	}
	ctx.Events = events.NewStore(client, storeOpts...)

	logger.Debug("context ready", "base_url", cfg.BaseURL, "user_id", cfg.UserID, "timezone", loc.String())
	return ctx, nil
}

// Ready reports whether the config was valid enough to talk to the backend.
func (c *Context) Ready() error {
	if c.ConfigErr != nil {
		return fmt.Errorf("invalid config %s: %w", c.ConfigPath, c.ConfigErr)
	}
	return nil
}

// Close releases the cache and flushes the log file.
func (c *Context) Close() error {
	var errs []error
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	errs = append(errs, logger.Close())
	return errors.Join(errs...)
}

// RequestContext bounds a single CLI operation by the configured timeout.
func (c *Context) RequestContext() (context.Context, context.CancelFunc) {
	timeout := c.Config.RequestTimeout()
	if timeout <= 0 {
		timeout = time.Duration(constants.DefaultRequestTimeout) * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// ParseDate reads a YYYY-MM-DD argument in loc; empty means now.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Now().In(loc), nil
	}
	t, err := time.ParseInLocation(constants.DateFormat, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// WeekEvents returns the week containing date, from the backend or, when
// offline, from the cache.
func (c *Context) WeekEvents(date time.Time, offline bool) ([]models.CalendarEvent, error) {
	weekStart := calendar.StartOfWeek(date, c.Config.WeekStartDay())
	if offline {
		if c.Store == nil {
			return nil, fmt.Errorf("offline cache unavailable: %w", c.CacheErr)
		}
		snap, err := c.Store.LoadWeek(weekStart)
		if err != nil {
			return nil, fmt.Errorf("week of %s: %w", weekStart.Format(constants.DateFormat), err)
		}
		logger.Debug("loaded cached week", "week_start", snap.WeekStart, "fetched_at", snap.FetchedAt)
		return snap.Events, nil
	}

	rctx, cancel := c.RequestContext()
	defer cancel()
	if err := c.Events.FetchWeek(rctx, date); err != nil {
		return nil, err
	}
	return c.Events.Events(), nil
}

// Host names this client in exported UIDs.
func (c *Context) Host() string {
	u, err := url.Parse(c.Config.BaseURL)
	if err != nil || u.Hostname() == "" {
		return constants.AppName
	}
	return u.Hostname()
}
