package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/trainweek/internal/calendar"
	"github.com/julianstephens/trainweek/internal/cli"
)

func openCache(ctx *cli.Context) error {
	if ctx.Store != nil {
		return nil
	}
	if ctx.CacheErr != nil {
		return fmt.Errorf("offline cache unavailable: %w", ctx.CacheErr)
	}
	return fmt.Errorf("offline cache unavailable, run 'trainweek init'")
}

type CacheListCmd struct{}

func (c *CacheListCmd) Run(ctx *cli.Context) error {
	if err := openCache(ctx); err != nil {
		return err
	}
	weeks, err := ctx.Store.ListWeeks()
	if err != nil {
		return fmt.Errorf("failed to list cached weeks: %w", err)
	}
	if len(weeks) == 0 {
		fmt.Fprintln(ctx.Out, "No cached weeks.")
		return nil
	}
	fmt.Fprintf(ctx.Out, "Cached weeks in %s:\n", ctx.Store.GetPath())
	for _, w := range weeks {
		fmt.Fprintf(ctx.Out, "  %s\n", w)
	}
	return nil
}

// CachePruneCmd drops weeks that start before the retention window.
type CachePruneCmd struct {
	KeepWeeks int `help:"Number of weeks before the current one to keep." default:"8"`
}

func (c *CachePruneCmd) Validate() error {
	if c.KeepWeeks < 0 {
		return fmt.Errorf("keep-weeks must not be negative")
	}
	return nil
}

func (c *CachePruneCmd) Run(ctx *cli.Context) error {
	if err := openCache(ctx); err != nil {
		return err
	}
	current := calendar.StartOfWeek(time.Now().In(ctx.Loc), ctx.Config.WeekStartDay())
	cutoff := current.AddDate(0, 0, -7*c.KeepWeeks)

	n, err := ctx.Store.PruneWeeks(cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune cache: %w", err)
	}
	fmt.Fprintf(ctx.Out, "Pruned %d week(s) starting before %s\n", n, cutoff.Format("2006-01-02"))
	return nil
}
