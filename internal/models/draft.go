package models

import (
	"time"

	"github.com/julianstephens/trainweek/internal/constants"
)

// EventDraft is the editable state of the event modal. Times are kept as
// text in constants.DateTimeFormat so the form can bind to them directly.
type EventDraft struct {
	Title       string
	Start       string
	End         string
	Description string
}

// DraftForSlot returns a blank draft spanning start..end.
func DraftForSlot(start, end time.Time) EventDraft {
	return EventDraft{
		Start: start.Format(constants.DateTimeFormat),
		End:   end.Format(constants.DateTimeFormat),
	}
}

// DraftFromEvent mirrors an existing event into a draft. Unparseable
// timestamps are carried over verbatim so the user can correct them.
func DraftFromEvent(ev CalendarEvent, loc *time.Location) EventDraft {
	d := EventDraft{
		Title:       ev.Title,
		Start:       ev.StartTime,
		End:         ev.EndTime,
		Description: ev.Description,
	}
	if t, err := ev.Start(loc); err == nil {
		d.Start = t.Format(constants.DateTimeFormat)
	}
	if t, err := ev.End(loc); err == nil {
		d.End = t.Format(constants.DateTimeFormat)
	}
	return d
}

// Times parses the draft's start and end in loc.
func (d EventDraft) Times(loc *time.Location) (time.Time, time.Time, error) {
	start, err := ParseTimestamp(d.Start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseTimestamp(d.End, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// ToCreate converts the draft into a create payload.
func (d EventDraft) ToCreate(loc *time.Location) (EventCreate, error) {
	start, end, err := d.Times(loc)
	if err != nil {
		return EventCreate{}, err
	}
	return EventCreate{
		Title:       d.Title,
		StartTime:   FormatTimestamp(start),
		EndTime:     FormatTimestamp(end),
		Description: d.Description,
	}, nil
}

// ToUpdate converts the whole draft into a patch; every editable field is sent.
func (d EventDraft) ToUpdate(loc *time.Location) (EventUpdate, error) {
	start, end, err := d.Times(loc)
	if err != nil {
		return EventUpdate{}, err
	}
	title := d.Title
	startStr := FormatTimestamp(start)
	endStr := FormatTimestamp(end)
	desc := d.Description
	return EventUpdate{
		Title:       &title,
		StartTime:   &startStr,
		EndTime:     &endStr,
		Description: &desc,
	}, nil
}
