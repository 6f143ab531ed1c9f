package tui

import (
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/trainweek/internal/models"
)

type eventsLoadedMsg struct {
	err error
}

type eventSavedMsg struct {
	created bool
	err     error
}

type eventDeletedMsg struct {
	err error
}

type planGeneratedMsg struct {
	plan json.RawMessage
	err  error
}

type refreshMsg struct {
	count uint64
}

func (m Model) fetchWeek() tea.Cmd {
	store, ctx, date := m.events, m.ctx, m.cal.CurrentDate()
	return func() tea.Msg {
		return eventsLoadedMsg{err: store.FetchWeek(ctx, date)}
	}
}

func (m Model) createEvent(ev models.EventCreate) tea.Cmd {
	store, ctx := m.events, m.ctx
	return func() tea.Msg {
		_, err := store.Create(ctx, ev)
		return eventSavedMsg{created: true, err: err}
	}
}

func (m Model) updateEvent(id int, patch models.EventUpdate) tea.Cmd {
	store, ctx := m.events, m.ctx
	return func() tea.Msg {
		_, err := store.Update(ctx, id, patch)
		return eventSavedMsg{err: err}
	}
}

func (m Model) deleteEvent(id int) tea.Cmd {
	store, ctx := m.events, m.ctx
	return func() tea.Msg {
		return eventDeletedMsg{err: store.Delete(ctx, id)}
	}
}

func (m Model) generatePlan(prefs models.PlanPreferences) tea.Cmd {
	planner, ctx := m.planner, m.ctx
	return func() tea.Msg {
		plan, err := planner.GenerateTrainingPlan(ctx, prefs)
		return planGeneratedMsg{plan: plan, err: err}
	}
}

// waitForRefresh blocks on the calendar state's refresh subscription.
func waitForRefresh(ch <-chan uint64) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return refreshMsg{count: n}
	}
}
