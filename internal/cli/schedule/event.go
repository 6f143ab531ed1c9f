package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/trainweek/internal/cli"
	"github.com/julianstephens/trainweek/internal/constants"
	"github.com/julianstephens/trainweek/internal/models"
	"github.com/julianstephens/trainweek/internal/validation"
)

type EventAddCmd struct {
	Title       string `arg:"" help:"Event title."`
	Start       string `short:"s" help:"Start time (YYYY-MM-DD HH:MM)." required:""`
	End         string `short:"e" help:"End time (YYYY-MM-DD HH:MM). Overrides --duration."`
	Duration    int    `short:"d" help:"Duration in minutes when --end is not given." default:"60"`
	Description string `help:"Free-form notes."`
}

func (c *EventAddCmd) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be greater than zero")
	}
	return nil
}

func (c *EventAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Ready(); err != nil {
		return err
	}

	draft := models.EventDraft{Title: c.Title, Start: c.Start, End: c.End, Description: c.Description}
	if draft.End == "" {
		start, err := models.ParseTimestamp(c.Start, ctx.Loc)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		draft.End = start.Add(time.Duration(c.Duration) * time.Minute).Format(constants.DateTimeFormat)
	}
	if err := validation.New(ctx.Loc).ValidateDraft(draft); err != nil {
		return err
	}
	create, err := draft.ToCreate(ctx.Loc)
	if err != nil {
		return err
	}

	rctx, cancel := ctx.RequestContext()
	defer cancel()
	created, err := ctx.Events.Create(rctx, create)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	fmt.Fprintf(ctx.Out, "Created event #%d: %s\n", created.ID, created.Title)
	return nil
}

// EventEditCmd sends only the fields whose flags were given.
type EventEditCmd struct {
	ID          int    `arg:"" help:"Event ID."`
	Title       string `help:"New title."`
	Start       string `short:"s" help:"New start time (YYYY-MM-DD HH:MM)."`
	End         string `short:"e" help:"New end time (YYYY-MM-DD HH:MM)."`
	Description string `help:"New description."`
}

func (c *EventEditCmd) patch(loc *time.Location) (models.EventUpdate, error) {
	var patch models.EventUpdate
	if c.Title != "" {
		title := c.Title
		patch.Title = &title
	}
	if c.Start != "" {
		t, err := models.ParseTimestamp(c.Start, loc)
		if err != nil {
			return patch, fmt.Errorf("invalid --start: %w", err)
		}
		s := models.FormatTimestamp(t)
		patch.StartTime = &s
	}
	if c.End != "" {
		t, err := models.ParseTimestamp(c.End, loc)
		if err != nil {
			return patch, fmt.Errorf("invalid --end: %w", err)
		}
		s := models.FormatTimestamp(t)
		patch.EndTime = &s
	}
	if c.Description != "" {
		desc := c.Description
		patch.Description = &desc
	}
	if patch.IsEmpty() {
		return patch, errors.New("nothing to update: pass at least one of --title, --start, --end, --description")
	}
	return patch, nil
}

func (c *EventEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.Ready(); err != nil {
		return err
	}
	patch, err := c.patch(ctx.Loc)
	if err != nil {
		return err
	}

	rctx, cancel := ctx.RequestContext()
	defer cancel()
	updated, err := ctx.Events.Update(rctx, c.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	fmt.Fprintf(ctx.Out, "Updated event #%d: %s\n", updated.ID, updated.Title)
	return nil
}

type EventDeleteCmd struct {
	ID  int  `arg:"" help:"Event ID."`
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *EventDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Ready(); err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete event #%d?", c.ID)).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(ctx.Out, "Cancelled.")
			return nil
		}
	}

	rctx, cancel := ctx.RequestContext()
	defer cancel()
	if err := ctx.Events.Delete(rctx, c.ID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	fmt.Fprintf(ctx.Out, "Deleted event #%d\n", c.ID)
	return nil
}
