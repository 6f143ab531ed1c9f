package tui

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/trainweek/internal/calendar"
	"github.com/julianstephens/trainweek/internal/events"
	"github.com/julianstephens/trainweek/internal/models"
	"github.com/julianstephens/trainweek/internal/tui/components/agenda"
	"github.com/julianstephens/trainweek/internal/tui/components/week"
	"github.com/julianstephens/trainweek/internal/validation"
)

type SessionState int

const (
	StateCalendar SessionState = iota
	StateGenerate
	StateEditing
)

// Planner submits training plan preferences to the backend.
type Planner interface {
	GenerateTrainingPlan(ctx context.Context, prefs models.PlanPreferences) (json.RawMessage, error)
}

type Model struct {
	ctx         context.Context
	cal         *calendar.State
	events      *events.Store
	planner     Planner
	validator   *validation.Validator
	loc         *time.Location
	now         func() time.Time
	state       SessionState
	keys        KeyMap
	help        help.Model
	spinner     spinner.Model
	week        week.Model
	agenda      agenda.Model
	form        *huh.Form
	eventForm   *EventFormModel
	editing     *models.CalendarEvent
	planForm    *huh.Form
	prefs       *models.PlanPreferences
	refreshes   <-chan uint64
	unsubscribe func()
	cursorDay   int
	cursorHour  int
	focus       int
	busy        bool // a week fetch is in flight
	saving      bool // a create, update, delete or plan request is in flight
	formErr     string
	planStatus  string
	planErr     string
	conflicts   []validation.Conflict
	quitting    bool
	width       int
	height      int
}

// NewModel wires the calendar view to the state carried by ctx. It fails
// with calendar.ErrNoProvider when ctx carries none. The first fetch is
// issued by Init, so the model starts busy.
func NewModel(ctx context.Context, store *events.Store, planner Planner, loc *time.Location) (Model, error) {
	cal, err := calendar.FromContext(ctx)
	if err != nil {
		return Model{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	refreshes, unsubscribe := cal.Subscribe()
	prefs := models.DefaultPlanPreferences()

	m := Model{
		ctx:         ctx,
		cal:         cal,
		events:      store,
		planner:     planner,
		validator:   validation.New(loc),
		loc:         loc,
		now:         time.Now,
		state:       StateCalendar,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		week:        week.New(loc),
		agenda:      agenda.New(0, 0, loc),
		prefs:       &prefs,
		refreshes:   refreshes,
		unsubscribe: unsubscribe,
		busy:        true,
	}
	m.planForm = NewPlanForm(m.prefs)
	m.resetCursor()
	m.syncViews()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchWeek(), waitForRefresh(m.refreshes), m.spinner.Tick)
}

// Close drops the refresh subscription.
// inFlight reports whether any request is outstanding. Input that could
// issue another one is dropped until it settles.
func (m Model) inFlight() bool {
	return m.busy || m.saving
}

func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case StateEditing, StateGenerate:
		return []key.Binding{m.keys.Back}
	}
	return []key.Binding{
		m.keys.PrevWeek, m.keys.NextWeek, m.keys.Today,
		m.keys.Create, m.keys.Edit, m.keys.Generate, m.keys.Quit, m.keys.Help,
	}
}

func (m Model) FullHelp() [][]key.Binding {
	if m.state != StateCalendar {
		return [][]key.Binding{{m.keys.Back}}
	}
	return m.keys.FullHelp()
}

// resetCursor points the cursor at the current hour of today when today is
// in the visible week, otherwise at the first slot.
func (m *Model) resetCursor() {
	m.cursorDay, m.cursorHour, m.focus = 0, 0, 0
	now := m.now().In(m.loc)
	for i, d := range calendar.WeekDays(m.cal.WeekStart()) {
		if calendar.SameDay(d, now) {
			m.cursorDay = i
		}
	}
	for i, h := range calendar.DayHours() {
		if h == now.Hour() {
			m.cursorHour = i
		}
	}
}

func (m Model) selectedDay() time.Time {
	return calendar.WeekDays(m.cal.WeekStart())[m.cursorDay]
}

func (m Model) selectedSlot() calendar.Slot {
	return calendar.TimeSlot(m.selectedDay(), calendar.DayHours()[m.cursorHour])
}

// focusedEvent returns the event under the cursor, if any.
func (m Model) focusedEvent() *models.CalendarEvent {
	blocks := m.week.SlotBlocks(m.cursorDay, m.cursorHour)
	if len(blocks) == 0 {
		return nil
	}
	ev := blocks[m.focus%len(blocks)].Event
	return &ev
}

// syncViews pushes the store's events and the cursor into the components.
func (m *Model) syncViews() {
	evs := m.events.Events()
	m.week.SetWeek(m.cal.WeekStart(), m.now().In(m.loc), evs)
	m.week.SetCursor(m.cursorDay, m.cursorHour, m.focus)
	m.agenda.SetDay(m.selectedDay(), evs)
	result := m.validator.ValidateWeek(evs)
	m.conflicts = result.Conflicts
}

func (m *Model) openEventForm(draft models.EventDraft, editing *models.CalendarEvent) tea.Cmd {
	m.eventForm = &EventFormModel{EventDraft: draft}
	m.editing = editing
	m.formErr = ""
	m.state = StateEditing
	return m.rebuildEventForm()
}

func (m *Model) rebuildEventForm() tea.Cmd {
	m.eventForm.Delete = false
	m.form = NewEventForm(m.eventForm, m.editing != nil, m.loc)
	if m.width > 0 {
		m.form = m.form.WithWidth(m.width - 4)
	}
	return m.form.Init()
}

func (m *Model) resetPlanForm() tea.Cmd {
	m.planForm = NewPlanForm(m.prefs)
	if m.width > 0 {
		m.planForm = m.planForm.WithWidth(m.width - 4)
	}
	return m.planForm.Init()
}
