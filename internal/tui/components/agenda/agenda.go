// Package agenda lists the selected day's events beside the week grid.
package agenda

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/trainweek/internal/calendar"
	"github.com/julianstephens/trainweek/internal/models"
)

var (
	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type entry struct {
	start, end time.Time
	ev         models.CalendarEvent
}

type Model struct {
	viewport viewport.Model
	day      time.Time
	entries  []entry
	loc      *time.Location
	width    int
	height   int
}

func New(width, height int, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	return Model{
		viewport: viewport.New(width, height),
		loc:      loc,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetDay shows the events of events that start on day, earliest first.
func (m *Model) SetDay(day time.Time, events []models.CalendarEvent) {
	m.day = day
	m.entries = m.entries[:0]
	for _, ev := range events {
		start, err := ev.Start(m.loc)
		if err != nil || !calendar.SameDay(start, day) {
			continue
		}
		end, err := ev.End(m.loc)
		if err != nil {
			end = start
		}
		m.entries = append(m.entries, entry{start: start, end: end, ev: ev})
	}
	sort.SliceStable(m.entries, func(i, j int) bool {
		return m.entries[i].start.Before(m.entries[j].start)
	})
	m.Render()
}

// Len is the number of events listed for the current day.
func (m Model) Len() int {
	return len(m.entries)
}

func (m *Model) Render() {
	var b strings.Builder
	b.WriteString(dayStyle.Render(m.day.Format("Monday, Jan 2")))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(metaStyle.Render("Nothing scheduled."))
		m.viewport.SetContent(b.String())
		return
	}

	for _, e := range m.entries {
		span := fmt.Sprintf("%s-%s", e.start.Format("15:04"), e.end.Format("15:04"))
		b.WriteString(timeStyle.Render(span))
		b.WriteString(titleStyle.Render(e.ev.Title))
		b.WriteString("\n")

		var meta []string
		if e.ev.EventType != models.EventTypeUnset {
			meta = append(meta, string(e.ev.EventType))
		}
		if e.ev.WorkoutType != "" {
			meta = append(meta, e.ev.WorkoutType)
		}
		if e.ev.DifficultyLevel != "" {
			meta = append(meta, e.ev.DifficultyLevel)
		}
		if len(meta) > 0 {
			b.WriteString(timeStyle.Render(""))
			b.WriteString(metaStyle.Render(strings.Join(meta, " · ")))
			b.WriteString("\n")
		}
		if e.ev.Description != "" {
			b.WriteString(timeStyle.Render(""))
			b.WriteString(metaStyle.Render(e.ev.Description))
			b.WriteString("\n")
		}
	}
	m.viewport.SetContent(b.String())
}
