// Package tui implements a single live monitor screen over a trigger
// population: one row per trigger with a progress bar, and a tail of the
// most recently emitted actions below it. It is a trimmed descendant of the
// teacher's multi-view workflow builder TUI (pkg/tui/app.go's view-manager
// render loop, pkg/tui/components' panel/progress-bar styling) cut down to
// the one view an ETA engine host actually needs: watching triggers fire.
package tui

import (
	"fmt"

	"github.com/dshills/goterm"

	"github.com/dshills/goeta/pkg/engmon"
)

// TriggerRow is one line of the monitor: a trigger's id and its last known
// progress.
type TriggerRow struct {
	ID        string
	Completed bool
	Current   float64
	Required  float64
}

// Style holds the monitor's color palette, grounded on the teacher's
// components.PanelStyle/DefaultPanelStyle.
type Style struct {
	TitleFg      goterm.Color
	TitleBg      goterm.Color
	BorderFg     goterm.Color
	TextFg       goterm.Color
	CompletedFg  goterm.Color
	ProgressFg   goterm.Color
	ProgressTrackFg goterm.Color
}

// DefaultStyle returns the monitor's default palette.
func DefaultStyle() Style {
	return Style{
		TitleFg:         goterm.ColorRGB(255, 255, 255),
		TitleBg:         goterm.ColorRGB(40, 40, 80),
		BorderFg:        goterm.ColorRGB(128, 128, 128),
		TextFg:          goterm.ColorRGB(220, 220, 220),
		CompletedFg:     goterm.ColorRGB(100, 220, 120),
		ProgressFg:      goterm.ColorRGB(100, 200, 255),
		ProgressTrackFg: goterm.ColorRGB(70, 70, 70),
	}
}

// Monitor renders trigger rows and a tail of recent action descriptions to a
// goterm.Screen. It holds no reference to a live Dispatcher: the caller
// feeds it rows and action lines explicitly each frame (via Update and
// RecordAction), the
// same separation the engine keeps between its synchronous core and the
// opt-in engmon observability layer.
type Monitor struct {
	x, y, width, height int
	style                Style
	rows                 []TriggerRow
	recentActions        []string
	maxRecentActions     int
}

// New constructs a Monitor occupying the given screen region.
func New(x, y, width, height int) *Monitor {
	return &Monitor{x: x, y: y, width: width, height: height, style: DefaultStyle(), maxRecentActions: 20}
}

// Update replaces the displayed trigger rows.
func (m *Monitor) Update(rows []TriggerRow) {
	m.rows = rows
}

// RecordAction appends a rendered description of an emitted action to the
// recent-actions tail, trimming to the configured maximum.
func (m *Monitor) RecordAction(detail string) {
	m.recentActions = append(m.recentActions, detail)
	if len(m.recentActions) > m.maxRecentActions {
		m.recentActions = m.recentActions[len(m.recentActions)-m.maxRecentActions:]
	}
}

// ObserveEvent lets a Monitor subscribe (via Run's caller) to an
// engmon.Monitor and keep its action tail current without the caller having
// to hand-format every event.
func (m *Monitor) ObserveEvent(e engmon.Event) {
	if e.Type != engmon.EventActionEmitted && e.Type != engmon.EventTriggerFired {
		return
	}
	line := fmt.Sprintf("%s %s", e.Type, e.TriggerID)
	if e.Detail != "" {
		line += ": " + e.Detail
	}
	m.RecordAction(line)
}

// Render draws the monitor to screen.
func (m *Monitor) Render(screen *goterm.Screen) {
	if screen == nil {
		return
	}
	m.drawBorder(screen)
	m.drawTitle(screen, "triggers")

	contentX, contentY := m.x+1, m.y+1
	contentWidth := m.width - 2
	rowsHeight := m.height/2 - 1

	for i, row := range m.rows {
		if i >= rowsHeight {
			break
		}
		m.drawTriggerRow(screen, contentX, contentY+i, contentWidth, row)
	}

	tailY := m.y + m.height/2
	m.drawSeparator(screen, tailY)
	m.drawTitle(screen, "recent actions")
	m.drawActionTail(screen, contentX, tailY+1, contentWidth)
}

func (m *Monitor) drawBorder(screen *goterm.Screen) {
	fg, bg := m.style.BorderFg, goterm.ColorDefault()
	screen.SetCell(m.x, m.y, goterm.NewCell('┌', fg, bg, goterm.StyleNone))
	screen.SetCell(m.x+m.width-1, m.y, goterm.NewCell('┐', fg, bg, goterm.StyleNone))
	screen.SetCell(m.x, m.y+m.height-1, goterm.NewCell('└', fg, bg, goterm.StyleNone))
	screen.SetCell(m.x+m.width-1, m.y+m.height-1, goterm.NewCell('┘', fg, bg, goterm.StyleNone))
	for i := 1; i < m.width-1; i++ {
		screen.SetCell(m.x+i, m.y, goterm.NewCell('─', fg, bg, goterm.StyleNone))
		screen.SetCell(m.x+i, m.y+m.height-1, goterm.NewCell('─', fg, bg, goterm.StyleNone))
	}
	for i := 1; i < m.height-1; i++ {
		screen.SetCell(m.x, m.y+i, goterm.NewCell('│', fg, bg, goterm.StyleNone))
		screen.SetCell(m.x+m.width-1, m.y+i, goterm.NewCell('│', fg, bg, goterm.StyleNone))
	}
}

func (m *Monitor) drawTitle(screen *goterm.Screen, title string) {
	text := " " + title + " "
	for i, ch := range text {
		x := m.x + 2 + i
		if x >= m.x+m.width-1 {
			break
		}
		screen.SetCell(x, m.y, goterm.NewCell(ch, m.style.TitleFg, m.style.TitleBg, goterm.StyleBold))
	}
}

func (m *Monitor) drawSeparator(screen *goterm.Screen, y int) {
	for i := 1; i < m.width-1; i++ {
		screen.SetCell(m.x+i, y, goterm.NewCell('─', m.style.BorderFg, goterm.ColorDefault(), goterm.StyleNone))
	}
}

func (m *Monitor) drawTriggerRow(screen *goterm.Screen, x, y, width int, row TriggerRow) {
	barWidth := width / 3
	label := row.ID
	labelWidth := width - barWidth - 10
	if labelWidth < 1 {
		labelWidth = 1
	}
	if len(label) > labelWidth {
		label = label[:labelWidth]
	}

	labelFg := m.style.TextFg
	if row.Completed {
		labelFg = m.style.CompletedFg
	}
	drawText(screen, x, y, label, labelFg, goterm.ColorDefault())

	barX := x + labelWidth + 1
	drawProgressBar(screen, barX, y, barWidth, row.Current, row.Required, m.style.ProgressFg, m.style.ProgressTrackFg)

	pct := percent(row.Current, row.Required)
	pctText := fmt.Sprintf(" %3.0f%%", pct)
	drawText(screen, barX+barWidth+1, y, pctText, m.style.TextFg, goterm.ColorDefault())
}

func (m *Monitor) drawActionTail(screen *goterm.Screen, x, y, width int) {
	start := 0
	visible := m.height - (m.height/2 + 2)
	if len(m.recentActions) > visible {
		start = len(m.recentActions) - visible
	}
	for i, line := range m.recentActions[start:] {
		if line == "" {
			continue
		}
		if len(line) > width {
			line = line[:width]
		}
		drawText(screen, x, y+i, line, m.style.TextFg, goterm.ColorDefault())
	}
}

func percent(current, required float64) float64 {
	if required <= 0 {
		return 100
	}
	pct := (current / required) * 100
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

func drawProgressBar(screen *goterm.Screen, x, y, width int, current, required float64, fillFg, trackFg goterm.Color) {
	if width <= 2 {
		return
	}
	screen.SetCell(x, y, goterm.NewCell('[', trackFg, goterm.ColorDefault(), goterm.StyleNone))
	screen.SetCell(x+width-1, y, goterm.NewCell(']', trackFg, goterm.ColorDefault(), goterm.StyleNone))

	inner := width - 2
	filled := int(percent(current, required) / 100 * float64(inner))
	for i := 0; i < inner; i++ {
		ch := '░'
		fg := trackFg
		if i < filled {
			ch = '█'
			fg = fillFg
		}
		screen.SetCell(x+1+i, y, goterm.NewCell(ch, fg, goterm.ColorDefault(), goterm.StyleNone))
	}
}

func drawText(screen *goterm.Screen, x, y int, text string, fg, bg goterm.Color) {
	width, height := screen.Size()
	for i, ch := range text {
		if x+i >= width || y >= height {
			break
		}
		screen.SetCell(x+i, y, goterm.NewCell(ch, fg, bg, goterm.StyleNone))
	}
}

// FormatRows is a convenience for hosts building TriggerRow slices from
// parallel id/progress data without importing pkg/trigger directly here
// (this package stays generic-free to avoid forcing every host event/action
// type through the monitor's type parameters).
func FormatRows(ids []string, currents, requireds []float64, completed []bool) []TriggerRow {
	n := len(ids)
	rows := make([]TriggerRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, TriggerRow{ID: ids[i], Current: currents[i], Required: requireds[i], Completed: completed[i]})
	}
	return rows
}
