package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/trainweek/internal/cli"
	"github.com/julianstephens/trainweek/internal/lock"
	"github.com/julianstephens/trainweek/internal/migration"
	"github.com/julianstephens/trainweek/internal/storage"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Fprintln(ctx.Out, "Running diagnostics...")
	fmt.Fprintln(ctx.Out)

	hasError := false
	report := func(name string, err error) {
		if err != nil {
			fmt.Fprintf(ctx.Out, "❌ %s: FAIL\n", name)
			fmt.Fprintf(ctx.Out, "   Error: %v\n", err)
			hasError = true
			return
		}
		fmt.Fprintf(ctx.Out, "✓ %s: OK\n", name)
	}

	// Check 1: config
	report("Config valid", ctx.Ready())

	// Check 2: backend, only with a usable config
	if ctx.Client != nil {
		report("Backend reachable", checkBackend(ctx))
	} else {
		fmt.Fprintf(ctx.Out, "⊘ Backend reachable: SKIPPED (config invalid)\n")
	}

	// Check 3: offline cache
	report("Offline cache", checkCache(ctx))

	// Check 4: instance lock (warning only)
	if pid, running, err := lock.Holder(ctx.ConfigDir); err != nil {
		fmt.Fprintf(ctx.Out, "⚠ Instance lock: WARNING\n")
		fmt.Fprintf(ctx.Out, "   %v\n", err)
	} else if running {
		fmt.Fprintf(ctx.Out, "⚠ Instance lock: WARNING\n")
		fmt.Fprintf(ctx.Out, "   TUI already running (pid %d)\n", pid)
	} else {
		fmt.Fprintf(ctx.Out, "✓ Instance lock: OK\n")
	}

	// Check 5: clock/timezone
	report("Clock/timezone", checkClockTimezone(ctx))

	fmt.Fprintln(ctx.Out)
	if hasError {
		fmt.Fprintln(ctx.Out, "Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Fprintln(ctx.Out, "All diagnostics passed!")
	return nil
}

func checkBackend(ctx *cli.Context) error {
	rctx, cancel := ctx.RequestContext()
	defer cancel()
	status, err := ctx.Client.Ping(rctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ctx.Config.BaseURL, err)
	}
	if status >= 500 {
		return fmt.Errorf("%s answered %d", ctx.Config.BaseURL, status)
	}
	return nil
}

func checkCache(ctx *cli.Context) error {
	if ctx.Store == nil {
		if ctx.CacheErr != nil {
			return ctx.CacheErr
		}
		return fmt.Errorf("cache not opened")
	}

	sqliteStore, ok := ctx.Store.(*storage.SQLiteStore)
	if !ok {
		// JSON store has no schema
		_, err := ctx.Store.ListWeeks()
		return err
	}

	current, err := sqliteStore.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	latest, err := migration.NewRunner(nil, storage.Migrations()).Latest()
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	if current != latest {
		return fmt.Errorf("schema version %d, expected %d", current, latest)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now().In(ctx.Loc)
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if _, err := ctx.Config.Location(); err != nil {
		return fmt.Errorf("timezone %q: %w", ctx.Config.Timezone, err)
	}
	return nil
}
