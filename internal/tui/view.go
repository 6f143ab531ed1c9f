package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/trainweek/internal/calendar"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateCalendar:
		content = m.viewCalendar()
	case StateGenerate:
		content = m.viewGenerate()
	case StateEditing:
		content = m.viewEventForm()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewStatus(),
		content,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Calendar", "Generate"} {
		active := m.state == SessionState(i) || (m.state == StateEditing && i == int(StateCalendar))
		if active {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// viewStatus is the week header plus loading, error and refresh state.
func (m Model) viewStatus() string {
	parts := []string{titleStyle.Render(calendar.WeekTitle(m.cal.WeekStart()))}
	switch {
	case m.saving:
		parts = append(parts, m.spinner.View()+statusStyle.Render(" saving"))
	case m.busy:
		parts = append(parts, m.spinner.View()+statusStyle.Render(" loading"))
	}
	if n := m.cal.RefreshCount(); n > 0 {
		parts = append(parts, statusStyle.Render(fmt.Sprintf("refreshed %dx", n)))
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, joinSpaced(parts)...)

	if banner := m.events.Err(); banner != "" {
		line = lipgloss.JoinVertical(lipgloss.Left, line, dangerStyle.Render(banner))
	}
	if len(m.conflicts) > 0 && m.state == StateCalendar {
		warn := fmt.Sprintf("%d conflict(s) this week: %s", len(m.conflicts), m.conflicts[0].Description)
		line = lipgloss.JoinVertical(lipgloss.Left, line, warningStyle.Render(warn))
	}
	return line
}

func joinSpaced(parts []string) []string {
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			out = append(out, "  ")
		}
		out = append(out, p)
	}
	return out
}

func (m Model) viewCalendar() string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.week.View(), " ", m.agenda.View())
}

func (m Model) viewEventForm() string {
	heading := "New event"
	if m.editing != nil {
		heading = "Edit event"
	}
	parts := []string{titleStyle.Render(heading)}
	if m.formErr != "" {
		parts = append(parts, dangerStyle.Render(m.formErr))
	}
	parts = append(parts, m.form.View())
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewGenerate() string {
	parts := []string{titleStyle.Render("Generate training plan")}
	if m.planStatus != "" {
		parts = append(parts, successStyle.Render(m.planStatus))
	}
	if m.planErr != "" {
		parts = append(parts, dangerStyle.Render(m.planErr))
	}
	parts = append(parts, m.planForm.View())
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
