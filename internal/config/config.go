package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/trainweek/internal/calendar"
	"github.com/julianstephens/trainweek/internal/constants"
)

// Config is the on-disk client configuration.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:8000".
	BaseURL string `yaml:"base_url"`

	// UserID is sent as the "user" query parameter on every request.
	UserID int `yaml:"user_id"`

	// Timezone is an IANA name or "Local"; naive backend timestamps and the
	// grid are interpreted in it.
	Timezone string `yaml:"timezone"`

	// WeekStart is "sunday" or "monday".
	WeekStart string `yaml:"week_start"`

	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// RefreshCron schedules background re-fetches while the TUI runs.
	// Empty disables auto refresh.
	RefreshCron string `yaml:"refresh"`

	// CachePath stores fetched weeks for offline viewing. Relative paths
	// resolve against the config directory; a .json suffix selects the
	// JSON store.
	CachePath string `yaml:"cache_path"`

	Debug bool `yaml:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:               constants.DefaultBaseURL,
		UserID:                constants.DefaultUserID,
		Timezone:              constants.DefaultTimezone,
		WeekStart:             constants.DefaultWeekStart,
		RequestTimeoutSeconds: constants.DefaultRequestTimeout,
		RefreshCron:           constants.DefaultRefreshCron,
		CachePath:             constants.DefaultCacheFile,
	}
}

// Normalize fills zero values with defaults. RefreshCron is left alone
// since empty is meaningful.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL == "" {
		c.BaseURL = constants.DefaultBaseURL
	}
	if c.UserID == 0 {
		c.UserID = constants.DefaultUserID
	}
	if c.Timezone == "" {
		c.Timezone = constants.DefaultTimezone
	}
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	if c.WeekStart == "" {
		c.WeekStart = constants.DefaultWeekStart
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = constants.DefaultRequestTimeout
	}
	if c.CachePath == "" {
		c.CachePath = constants.DefaultCacheFile
	}
	c.RefreshCron = strings.TrimSpace(c.RefreshCron)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("base_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("base_url: scheme must be http or https, got %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, errors.New("base_url: missing host"))
	}
	if c.UserID <= 0 {
		errs = append(errs, fmt.Errorf("user_id: must be positive, got %d", c.UserID))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if _, err := calendar.ParseWeekday(c.WeekStart); err != nil {
		errs = append(errs, fmt.Errorf("week_start: %w", err))
	}
	if c.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
			errs = append(errs, fmt.Errorf("refresh: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// WeekStartDay resolves WeekStart, falling back to Sunday.
func (c *Config) WeekStartDay() time.Weekday {
	d, err := calendar.ParseWeekday(c.WeekStart)
	if err != nil {
		return time.Sunday
	}
	return d
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ResolveCachePath returns CachePath, anchored at configDir when relative.
func (c *Config) ResolveCachePath(configDir string) string {
	if filepath.IsAbs(c.CachePath) {
		return c.CachePath
	}
	return filepath.Join(configDir, c.CachePath)
}

// Load reads path, writing a default config there on first run.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+constants.AppName+"-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
