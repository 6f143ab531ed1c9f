package system

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/trainweek/internal/calendar"
	"github.com/julianstephens/trainweek/internal/cli"
	"github.com/julianstephens/trainweek/internal/lock"
	"github.com/julianstephens/trainweek/internal/logger"
	"github.com/julianstephens/trainweek/internal/refresh"
	"github.com/julianstephens/trainweek/internal/storage"
	"github.com/julianstephens/trainweek/internal/tui"
)

type TuiCmd struct {
	NoRefresh bool `help:"Disable scheduled auto refresh for this session."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Ready(); err != nil {
		return err
	}

	l, err := lock.Acquire(ctx.ConfigDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("failed to release lock", "error", err)
		}
	}()

	seedFromCache(ctx)

	spec := ctx.Config.RefreshCron
	if c.NoRefresh {
		spec = ""
	}
	sched, err := refresh.New(spec, ctx.Calendar)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	appCtx := calendar.WithState(context.Background(), ctx.Calendar)
	model, err := tui.NewModel(appCtx, ctx.Events, ctx.Client, ctx.Loc)
	if err != nil {
		return err
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}

// seedFromCache shows the last fetched copy of the current week until the
// first live fetch lands.
func seedFromCache(ctx *cli.Context) {
	if ctx.Store == nil {
		return
	}
	snap, err := ctx.Store.LoadWeek(ctx.Calendar.WeekStart())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("failed to read cached week", "error", err)
		}
		return
	}
	ctx.Events.Seed(snap.Events)
	logger.Debug("seeded week from cache", "week_start", snap.WeekStart, "events", len(snap.Events))
}
