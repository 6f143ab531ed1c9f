package schedule

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/trainweek/internal/cli"
	"github.com/julianstephens/trainweek/internal/export"
	"github.com/julianstephens/trainweek/internal/logger"
)

type ExportCmd struct {
	Date    string `arg:"" optional:"" help:"Any date in the week (YYYY-MM-DD). Defaults to today."`
	Output  string `short:"o" help:"Output file; '-' writes to stdout." default:"-"`
	Offline bool   `help:"Export the cached copy of the week."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	if err := ctx.Ready(); err != nil {
		return err
	}
	date, err := cli.ParseDate(c.Date, ctx.Loc)
	if err != nil {
		return err
	}
	evs, err := ctx.WeekEvents(date, c.Offline)
	if err != nil {
		return err
	}

	var w io.Writer = ctx.Out
	if c.Output != "-" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.Output, err)
		}
		defer f.Close()
		w = f
	}

	result, err := export.WriteICS(w, evs, ctx.Loc, ctx.Host())
	if err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	logger.Info("exported week", "events", result.Written, "skipped", result.Skipped, "output", c.Output)
	if c.Output != "-" {
		fmt.Fprintf(ctx.Out, "Exported %d event(s) to %s", result.Written, c.Output)
		if result.Skipped > 0 {
			fmt.Fprintf(ctx.Out, " (%d skipped: unreadable times)", result.Skipped)
		}
		fmt.Fprintln(ctx.Out)
	}
	return nil
}
