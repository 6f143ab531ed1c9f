package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/trainweek/internal/cli"
	"github.com/julianstephens/trainweek/internal/cli/plans"
	"github.com/julianstephens/trainweek/internal/cli/schedule"
	"github.com/julianstephens/trainweek/internal/cli/system"
	"github.com/julianstephens/trainweek/internal/constants"
	apperrors "github.com/julianstephens/trainweek/internal/errors"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"${config_path}"`
	Debug   bool   `help:"Enable debug logging."`

	Init   system.InitCmd     `cmd:"" help:"Write the config file and initialize the offline cache."`
	Doctor system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Tui    system.TuiCmd      `cmd:"" help:"Launch the interactive calendar." default:"1"`
	Week   schedule.WeekCmd   `cmd:"" help:"Print the events of a week."`
	Export schedule.ExportCmd `cmd:"" help:"Export a week as an iCalendar file."`
	Event  struct {
		Add    schedule.EventAddCmd    `cmd:"" help:"Create an event."`
		Edit   schedule.EventEditCmd   `cmd:"" help:"Change fields of an event."`
		Delete schedule.EventDeleteCmd `cmd:"" help:"Delete an event."`
	} `cmd:"" help:"Manage calendar events."`
	Cache struct {
		List  system.CacheListCmd  `cmd:"" help:"List cached weeks." default:"1"`
		Prune system.CachePruneCmd `cmd:"" help:"Drop cached weeks older than the retention window."`
	} `cmd:"" help:"Manage the offline cache."`
	Plan struct {
		Generate plans.GenerateCmd `cmd:"" help:"Generate a training plan from preferences."`
	} `cmd:"" help:"Manage training plans."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Weekly training calendar for the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	// The TUI owns the terminal, so debug logs only go to the file.
	var mirror io.Writer = os.Stderr
	if ctx.Command() == "tui" {
		mirror = io.Discard
	}

	appCtx, err := cli.NewContext(CLI.Config, cli.Options{Debug: CLI.Debug, LogMirror: mirror})
	if err != nil {
		apperrors.Fatal(err)
	}

	err = ctx.Run(appCtx)
	if closeErr := appCtx.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		apperrors.Fatal(err)
	}
}
