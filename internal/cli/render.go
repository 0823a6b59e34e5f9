// Package cli renders fiscal periods for terminal output.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zapponejosh/fiscal-api/internal/fiscal"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	currentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGreen)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Period status shown in the last table column.
const (
	StatusPast     = "past"
	StatusCurrent  = "current"
	StatusUpcoming = "upcoming"
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. Cells are
// left-aligned. Rows whose last cell is StatusCurrent are highlighted and
// past rows are muted.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := columnWidths(t, numCols)

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮", widths))

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		b.WriteString(rule("├", "┼", "┤", widths))
	}

	for _, row := range t.Rows {
		style := rowStyle(row)

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(style.Render(fmt.Sprintf(" %-*s ", widths[i], cell)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	b.WriteString(rule("╰", "┴", "╯", widths))

	return b.String()
}

func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}

	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	return widths
}

func rule(left, mid, right string, widths []int) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(left))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(right))
	b.WriteString("\n")
	return b.String()
}

func rowStyle(row []string) lipgloss.Style {
	if len(row) == 0 {
		return valueStyle
	}
	switch row[len(row)-1] {
	case StatusCurrent:
		return currentStyle
	case StatusPast:
		return mutedStyle
	}
	return valueStyle
}

// PeriodStatus classifies an option relative to the period containing
// today. current is the Value of that period.
func PeriodStatus(opt fiscal.PeriodOption, current string) string {
	switch {
	case opt.Value == current:
		return StatusCurrent
	case opt.IsPast:
		return StatusPast
	}
	return StatusUpcoming
}

// PeriodTable lays out period options as table rows.
func PeriodTable(title string, options []fiscal.PeriodOption, current string) Table {
	rows := make([][]string, 0, len(options))
	for _, opt := range options {
		rows = append(rows, []string{
			opt.Value,
			opt.ShortLabel,
			opt.Label,
			PeriodStatus(opt, current),
		})
	}

	return Table{
		Title:   title,
		Headers: []string{"Start", "Period", "Label", "Status"},
		Rows:    rows,
	}
}

// RenderFiscalYear renders the fiscal year and quarter containing a date.
func RenderFiscalYear(date string, fy fiscal.FiscalYear, q fiscal.Quarter) string {
	return RenderTable(Table{
		Headers: []string{"Field", "Value"},
		Rows: [][]string{
			{"Date", date},
			{"Fiscal year", fy.Label},
			{"Year start", fiscal.FormatDate(fy.Start)},
			{"Year end", fiscal.FormatDate(fy.End)},
			{"Quarter", q.Label()},
			{"Quarter start", fiscal.FormatDate(q.Start)},
			{"Quarter end", fiscal.FormatDate(q.End)},
		},
	})
}
