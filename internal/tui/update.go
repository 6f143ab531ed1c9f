package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/trainweek/internal/calendar"
	apperrors "github.com/julianstephens/trainweek/internal/errors"
	"github.com/julianstephens/trainweek/internal/logger"
	"github.com/julianstephens/trainweek/internal/models"
)

const agendaWidth = 34

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		contentHeight := msg.Height - 5
		m.week.SetSize(msg.Width-agendaWidth-1, contentHeight)
		m.agenda.SetSize(agendaWidth, contentHeight)
		m.syncViews()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventsLoadedMsg:
		m.busy = false
		m.syncViews()
		return m, nil

	case eventSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.formErr = m.events.Err()
			return m, m.rebuildEventForm()
		}
		m.state = StateCalendar
		m.editing = nil
		if msg.created {
			// The server assigns identity, so pick up its view of the week.
			m.busy = true
			return m, m.fetchWeek()
		}
		m.syncViews()
		return m, nil

	case eventDeletedMsg:
		m.saving = false
		if msg.err != nil {
			m.formErr = m.events.Err()
			return m, m.rebuildEventForm()
		}
		m.state = StateCalendar
		m.editing = nil
		m.focus = 0
		m.syncViews()
		return m, nil

	case planGeneratedMsg:
		m.saving = false
		if msg.err != nil {
			m.planErr = apperrors.Operation("generating training plan", msg.err)
			m.planStatus = ""
			return m, nil
		}
		m.planErr = ""
		m.planStatus = "Training plan generated."
		n := m.cal.TriggerRefresh()
		logger.Info("training plan generated", "bytes", len(msg.plan), "refresh", n)
		return m, nil

	case refreshMsg:
		logger.Debug("refresh requested", "count", msg.count)
		m.busy = true
		return m, tea.Batch(m.fetchWeek(), waitForRefresh(m.refreshes))
	}

	switch m.state {
	case StateEditing:
		return m.updateEventForm(msg)
	case StateGenerate:
		return m.updatePlanForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.updateCalendar(msg)
	}

	var cmd tea.Cmd
	m.agenda, cmd = m.agenda.Update(msg)
	return m, cmd
}

func (m Model) updateCalendar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.inFlight() {
		return m, nil
	}

	hours := len(calendar.DayHours())
	switch {
	case key.Matches(msg, m.keys.Generate):
		m.state = StateGenerate
		m.planErr = ""
		return m, m.resetPlanForm()
	case key.Matches(msg, m.keys.PrevWeek):
		m.cal.PreviousWeek()
		m.busy = true
		m.focus = 0
		m.syncViews()
		return m, m.fetchWeek()
	case key.Matches(msg, m.keys.NextWeek):
		m.cal.NextWeek()
		m.busy = true
		m.focus = 0
		m.syncViews()
		return m, m.fetchWeek()
	case key.Matches(msg, m.keys.Today):
		m.cal.GoToToday()
		m.resetCursor()
		m.busy = true
		m.syncViews()
		return m, m.fetchWeek()
	case key.Matches(msg, m.keys.Refresh):
		m.busy = true
		return m, m.fetchWeek()
	case key.Matches(msg, m.keys.Up):
		if m.cursorHour > 0 {
			m.cursorHour--
		}
		m.focus = 0
	case key.Matches(msg, m.keys.Down):
		if m.cursorHour < hours-1 {
			m.cursorHour++
		}
		m.focus = 0
	case key.Matches(msg, m.keys.Left):
		if m.cursorDay > 0 {
			m.cursorDay--
		}
		m.focus = 0
	case key.Matches(msg, m.keys.Right):
		if m.cursorDay < 6 {
			m.cursorDay++
		}
		m.focus = 0
	case key.Matches(msg, m.keys.Cycle):
		if n := len(m.week.SlotBlocks(m.cursorDay, m.cursorHour)); n > 0 {
			m.focus = (m.focus + 1) % n
		}
	case key.Matches(msg, m.keys.Create):
		return m, m.openSlot()
	case key.Matches(msg, m.keys.Edit):
		if ev := m.focusedEvent(); ev != nil {
			return m, m.openEventForm(models.DraftFromEvent(*ev, m.loc), ev)
		}
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		if ev := m.focusedEvent(); ev != nil {
			return m, m.openEventForm(models.DraftFromEvent(*ev, m.loc), ev)
		}
		return m, m.openSlot()
	}

	m.syncViews()
	return m, nil
}

// openSlot opens the modal with a blank draft covering the cursor's hour.
func (m *Model) openSlot() tea.Cmd {
	slot := m.selectedSlot()
	return m.openEventForm(models.DraftForSlot(slot.Start, slot.End), nil)
}

func (m Model) updateEventForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.inFlight() {
		return m.dropWhileInFlight(msg)
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.Type == tea.KeyEsc {
			m.state = StateCalendar
			m.editing = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.submitEventForm()
	case huh.StateAborted:
		m.state = StateCalendar
		m.editing = nil
		return m, nil
	}
	return m, cmd
}

// submitEventForm turns the completed modal into a request. Invalid drafts,
// including an empty title, send nothing and leave the modal open.
func (m *Model) submitEventForm() tea.Cmd {
	// huh stops updating a completed form, so it would report completion
	// again on every later message.
	m.form.State = huh.StateNormal

	if m.editing != nil && m.eventForm.Delete {
		m.saving = true
		return m.deleteEvent(m.editing.ID)
	}

	draft := m.eventForm.EventDraft
	if err := m.validator.ValidateDraft(draft); err != nil {
		m.formErr = err.Error()
		return m.rebuildEventForm()
	}
	m.formErr = ""

	if m.editing != nil {
		patch, err := draft.ToUpdate(m.loc)
		if err != nil {
			m.formErr = err.Error()
			return m.rebuildEventForm()
		}
		m.saving = true
		return m.updateEvent(m.editing.ID, patch)
	}

	create, err := draft.ToCreate(m.loc)
	if err != nil {
		m.formErr = err.Error()
		return m.rebuildEventForm()
	}
	m.saving = true
	return m.createEvent(create)
}

func (m Model) updatePlanForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.inFlight() {
		return m.dropWhileInFlight(msg)
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.Type == tea.KeyEsc {
			m.state = StateCalendar
			return m, nil
		}
	}

	form, cmd := m.planForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.planForm = f
	}

	switch m.planForm.State {
	case huh.StateCompleted:
		return m, m.submitPlanForm()
	case huh.StateAborted:
		m.state = StateCalendar
		return m, m.resetPlanForm()
	}
	return m, cmd
}

func (m *Model) submitPlanForm() tea.Cmd {
	prefs := *m.prefs
	if err := m.validator.ValidatePreferences(prefs); err != nil {
		m.planErr = err.Error()
		m.planStatus = ""
		return m.resetPlanForm()
	}
	m.planErr = ""
	m.planStatus = "Generating training plan..."
	m.saving = true
	return tea.Batch(m.generatePlan(prefs), m.resetPlanForm())
}

// dropWhileInFlight swallows form input while a request is outstanding.
// ctrl+c still quits.
func (m Model) dropWhileInFlight(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyCtrlC {
		m.quitting = true
		m.Close()
		return m, tea.Quit
	}
	return m, nil
}
