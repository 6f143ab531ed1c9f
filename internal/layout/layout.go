// Package layout places events into hour slots of the week grid and computes
// where inside a slot each event block is drawn.
package layout

import (
	"time"

	"github.com/julianstephens/trainweek/internal/calendar"
	"github.com/julianstephens/trainweek/internal/logger"
	"github.com/julianstephens/trainweek/internal/models"
)

const (
	// MinHeight keeps very short events visible, in logical pixels.
	MinHeight = 20
	// EdgeInset is the gap every block keeps from the cell edges, in logical pixels.
	EdgeInset = 1
)

// Geometry is an event's vertical placement relative to its hour cell.
// HeightPercent may exceed the remainder of the cell; the block then
// overflows into the cells below.
type Geometry struct {
	TopPercent    float64
	HeightPercent float64
	MinHeight     int
}

var fullCell = Geometry{TopPercent: 0, HeightPercent: 100, MinHeight: MinHeight}

// Offset is the horizontal cascade applied to the Nth event of a slot.
type Offset struct {
	Left  int
	Right int
}

type Accent string

const (
	AccentGreen   Accent = "green"
	AccentRed     Accent = "red"
	AccentYellow  Accent = "yellow"
	AccentNeutral Accent = "neutral"
)

// Block is one renderable event inside a slot.
type Block struct {
	Event    models.CalendarEvent
	Index    int
	Geometry Geometry
	Offset   Offset
	Accent   Accent
}

// InSlot reports whether ev starts on day's calendar date at exactly hour.
// An event whose start cannot be parsed belongs to no slot.
func InSlot(ev models.CalendarEvent, day time.Time, hour int, loc *time.Location) bool {
	start, err := ev.Start(loc)
	if err != nil {
		return false
	}
	return startsIn(start, day, hour, loc)
}

func startsIn(start, day time.Time, hour int, loc *time.Location) bool {
	return calendar.SameDay(start, day.In(loc)) && start.Hour() == hour
}

// SlotEvents filters events belonging to (day, hour), keeping input order.
func SlotEvents(events []models.CalendarEvent, day time.Time, hour int, loc *time.Location) []models.CalendarEvent {
	var out []models.CalendarEvent
	for _, ev := range events {
		if InSlot(ev, day, hour, loc) {
			out = append(out, ev)
		}
	}
	return out
}

// placed is an event whose start has already been parsed.
type placed struct {
	ev    models.CalendarEvent
	start time.Time
}

// parseStarts parses every start once. Events with a malformed start are
// logged here, once each, and left out.
func parseStarts(events []models.CalendarEvent, loc *time.Location) []placed {
	out := make([]placed, 0, len(events))
	for _, ev := range events {
		start, err := ev.Start(loc)
		if err != nil {
			logger.Warn("skipping event with malformed start", "id", ev.ID, "start_time", ev.StartTime, "error", err)
			continue
		}
		out = append(out, placed{ev: ev, start: start})
	}
	return out
}

// EventGeometry derives the block's offset from its start minute and its
// height from its duration. Unparseable timestamps get a full cell.
func EventGeometry(ev models.CalendarEvent, loc *time.Location) Geometry {
	start, err := ev.Start(loc)
	if err != nil {
		logger.Warn("event geometry fallback", "id", ev.ID, "error", err)
		return fullCell
	}
	end, err := ev.End(loc)
	if err != nil {
		logger.Warn("event geometry fallback", "id", ev.ID, "error", err)
		return fullCell
	}
	return Geometry{
		TopPercent:    float64(start.Minute()) / 60 * 100,
		HeightPercent: end.Sub(start).Hours() * 100,
		MinHeight:     MinHeight,
	}
}

// StackOffset cascades same-slot events: the nth moves 2n px right and
// pulls its right edge in by 10n px.
func StackOffset(n int) Offset {
	return Offset{Left: 2 * n, Right: 10 * n}
}

func AccentFor(t models.EventType) Accent {
	switch t {
	case models.EventTypePrep:
		return AccentGreen
	case models.EventTypeWorkout:
		return AccentRed
	case models.EventTypeCooldown:
		return AccentYellow
	default:
		return AccentNeutral
	}
}

// LayoutSlot builds the blocks of a single (day, hour) slot.
func LayoutSlot(events []models.CalendarEvent, day time.Time, hour int, loc *time.Location) []Block {
	if !calendar.IsDisplayedHour(hour) {
		return nil
	}
	return layoutSlot(parseStarts(events, loc), day, hour, loc)
}

func layoutSlot(events []placed, day time.Time, hour int, loc *time.Location) []Block {
	var blocks []Block
	for _, p := range events {
		if !startsIn(p.start, day, hour, loc) {
			continue
		}
		i := len(blocks)
		blocks = append(blocks, Block{
			Event:    p.ev,
			Index:    i,
			Geometry: EventGeometry(p.ev, loc),
			Offset:   StackOffset(i),
			Accent:   AccentFor(p.ev.EventType),
		})
	}
	return blocks
}

// Week lays out every displayed slot of the week starting at weekStart,
// indexed [day][hour-FirstDisplayHour].
func Week(events []models.CalendarEvent, weekStart time.Time, loc *time.Location) [][][]Block {
	parsed := parseStarts(events, loc)
	days := calendar.WeekDays(weekStart)
	hours := calendar.DayHours()
	grid := make([][][]Block, len(days))
	for d, day := range days {
		grid[d] = make([][]Block, len(hours))
		for h, hour := range hours {
			grid[d][h] = layoutSlot(parsed, day, hour, loc)
		}
	}
	return grid
}
