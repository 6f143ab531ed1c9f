package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/trainweek/internal/cli"
	"github.com/julianstephens/trainweek/internal/config"
	"github.com/julianstephens/trainweek/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Overwrite an existing config with defaults and reset the offline cache."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		ctx.Config = config.DefaultConfig()
		if err := config.Save(ctx.ConfigPath, ctx.Config); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(ctx.Out, "Reset config at: %s\n", ctx.ConfigPath)

		path := ctx.Config.ResolveCachePath(ctx.ConfigDir)
		if ctx.Store != nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close cache: %w", err)
			}
			ctx.Store = nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete cache: %w", err)
		}
	} else {
		fmt.Fprintf(ctx.Out, "Config at: %s\n", ctx.ConfigPath)
	}

	if ctx.Store == nil {
		store := storage.New(ctx.Config.ResolveCachePath(ctx.ConfigDir))
		if err := store.Init(); err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		ctx.Store = store
		ctx.CacheErr = nil
	}
	fmt.Fprintf(ctx.Out, "Initialized offline cache at: %s\n", ctx.Store.GetPath())
	return nil
}
