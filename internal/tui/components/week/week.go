// Package week renders the hour-by-day grid of the calendar tab.
package week

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/trainweek/internal/calendar"
	"github.com/julianstephens/trainweek/internal/layout"
	"github.com/julianstephens/trainweek/internal/models"
)

// CellPixels is the logical height of one hour cell; layout geometry is
// expressed against it.
const CellPixels = 64

const (
	labelWidth  = 7
	minColWidth = 8
)

var (
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	todayHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	hourStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	gridStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	cursorStyle      = lipgloss.NewStyle().Background(lipgloss.Color("236"))

	accentStyles = map[layout.Accent]lipgloss.Style{
		layout.AccentGreen:   lipgloss.NewStyle().Background(lipgloss.Color("28")).Foreground(lipgloss.Color("230")),
		layout.AccentRed:     lipgloss.NewStyle().Background(lipgloss.Color("160")).Foreground(lipgloss.Color("230")),
		layout.AccentYellow:  lipgloss.NewStyle().Background(lipgloss.Color("178")).Foreground(lipgloss.Color("16")),
		layout.AccentNeutral: lipgloss.NewStyle().Background(lipgloss.Color("63")).Foreground(lipgloss.Color("230")),
	}
)

// Model is a stateless-ish renderer: the parent pushes the week, events and
// cursor in, and View paints them.
type Model struct {
	width, height int
	weekStart     time.Time
	today         time.Time
	loc           *time.Location
	grid          [][][]layout.Block
	cursorDay     int
	cursorHour    int
	focus         int
}

func New(loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	return Model{loc: loc}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetWeek lays out events for the week beginning at weekStart.
func (m *Model) SetWeek(weekStart, today time.Time, events []models.CalendarEvent) {
	m.weekStart = weekStart
	m.today = today
	m.grid = layout.Week(events, weekStart, m.loc)
}

// SetCursor selects a slot by day index (0-6) and hour index (0-15) and the
// focused event within it.
func (m *Model) SetCursor(day, hour, focus int) {
	m.cursorDay = day
	m.cursorHour = hour
	m.focus = focus
}

// SlotBlocks returns the blocks of the slot at (day, hour) indices.
func (m Model) SlotBlocks(day, hour int) []layout.Block {
	if day < 0 || day >= len(m.grid) || hour < 0 || hour >= len(m.grid[day]) {
		return nil
	}
	return m.grid[day][hour]
}

// LinesPerHour picks how many terminal rows one hour gets.
func (m Model) LinesPerHour() int {
	hours := len(calendar.DayHours())
	if m.height >= hours*3+2 {
		return 3
	}
	if m.height >= hours*2+2 {
		return 2
	}
	return 1
}

func (m Model) colWidth() int {
	w := (m.width - labelWidth) / 7
	if w < minColWidth {
		return minColWidth
	}
	return w
}

// BlockRows converts a geometry into terminal rows: the first row inside
// the hour and how many rows it spans. Every block gets at least one row.
func BlockRows(g layout.Geometry, linesPerHour int) (top, rows int) {
	top = int(math.Floor(g.TopPercent / 100 * float64(linesPerHour)))
	if top >= linesPerHour {
		top = linesPerHour - 1
	}
	px := g.HeightPercent / 100 * CellPixels
	if px < float64(g.MinHeight) {
		px = float64(g.MinHeight)
	}
	rows = int(math.Round(px / CellPixels * float64(linesPerHour)))
	if rows < 1 {
		rows = 1
	}
	return top, rows
}

type canvasCell struct {
	ch    rune
	block int // index into painted, -1 when empty
}

type painted struct {
	accent  layout.Accent
	focused bool
}

// column paints one day into a canvas of lines.
func (m Model) column(day int, lph, width int) ([][]canvasCell, []painted) {
	total := len(calendar.DayHours()) * lph
	canvas := make([][]canvasCell, total)
	for i := range canvas {
		canvas[i] = make([]canvasCell, width)
		for x := range canvas[i] {
			canvas[i][x] = canvasCell{ch: ' ', block: -1}
		}
	}

	var blocks []painted
	if day >= len(m.grid) {
		return canvas, blocks
	}
	for h, slot := range m.grid[day] {
		for _, b := range slot {
			top, rows := BlockRows(b.Geometry, lph)
			left := (b.Offset.Left + layout.EdgeInset) / 2
			right := width - (b.Offset.Right+layout.EdgeInset)/10
			if right-left < 3 {
				left = right - 3
				if left < 0 {
					left = 0
				}
			}
			idx := len(blocks)
			blocks = append(blocks, painted{
				accent:  b.Accent,
				focused: day == m.cursorDay && h == m.cursorHour && b.Index == m.focus,
			})
			lines := blockText(b, rows, m.loc)
			start := h*lph + top
			for r := 0; r < rows && start+r < total; r++ {
				text := []rune(lines[r])
				for x := left; x < right && x < width; x++ {
					ch := ' '
					if i := x - left; i < len(text) {
						ch = text[i]
					}
					canvas[start+r][x] = canvasCell{ch: ch, block: idx}
				}
			}
		}
	}
	return canvas, blocks
}

func blockText(b layout.Block, rows int, loc *time.Location) []string {
	lines := make([]string, rows)
	lines[0] = b.Event.Title
	if rows > 1 {
		start, errS := b.Event.Start(loc)
		end, errE := b.Event.End(loc)
		if errS == nil && errE == nil {
			lines[1] = start.Format("15:04") + "-" + end.Format("15:04")
		}
	}
	return lines
}

func (m Model) renderLine(cells []canvasCell, blocks []painted, cursor bool) string {
	var b strings.Builder
	i := 0
	for i < len(cells) {
		j := i
		for j < len(cells) && cells[j].block == cells[i].block {
			j++
		}
		var run strings.Builder
		for _, c := range cells[i:j] {
			run.WriteRune(c.ch)
		}
		style := lipgloss.NewStyle()
		if idx := cells[i].block; idx >= 0 {
			style = accentStyles[blocks[idx].accent]
			if blocks[idx].focused {
				style = style.Bold(true).Underline(true)
			}
		} else if cursor {
			style = cursorStyle
		}
		b.WriteString(style.Render(run.String()))
		i = j
	}
	return b.String()
}

func (m Model) View() string {
	if m.weekStart.IsZero() {
		return ""
	}
	lph := m.LinesPerHour()
	colW := m.colWidth()
	days := calendar.WeekDays(m.weekStart)
	hours := calendar.DayHours()
	sep := gridStyle.Render("│")

	var out strings.Builder
	out.WriteString(strings.Repeat(" ", labelWidth))
	for _, d := range days {
		label := fmt.Sprintf("%s %d/%d", d.Format("Mon"), int(d.Month()), d.Day())
		style := headerStyle
		if calendar.SameDay(d, m.today) {
			style = todayHeaderStyle
		}
		out.WriteString(sep)
		out.WriteString(style.Width(colW).MaxWidth(colW).Render(label))
	}
	out.WriteString("\n")

	columns := make([][][]canvasCell, len(days))
	painters := make([][]painted, len(days))
	for d := range days {
		columns[d], painters[d] = m.column(d, lph, colW)
	}

	for h, hour := range hours {
		for r := 0; r < lph; r++ {
			label := ""
			if r == 0 {
				label = calendar.FormatHour(hour)
			}
			out.WriteString(hourStyle.Width(labelWidth).Render(label))
			line := h*lph + r
			for d := range days {
				out.WriteString(sep)
				cursor := d == m.cursorDay && h == m.cursorHour
				out.WriteString(m.renderLine(columns[d][line], painters[d], cursor))
			}
			if h != len(hours)-1 || r != lph-1 {
				out.WriteString("\n")
			}
		}
	}
	return out.String()
}
