package components

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"rfid-console/internal/adapter/tui/theme"
)

// NewTable builds a themed table with the cursor at cursor, clamped to the
// rows.
func NewTable(columns []table.Column, rows []table.Row, height, cursor int, focused bool) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(focused),
		table.WithHeight(theme.Clamp(height, 3, 1000)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(theme.ColorSelFg).
		Background(theme.ColorSelBg)
	if !focused {
		s.Selected = lipgloss.NewStyle()
	}
	t.SetStyles(s)

	if len(rows) > 0 {
		t.SetCursor(theme.Clamp(cursor, 0, len(rows)-1))
	}
	return t
}

// Truncate shortens s to w cells, marking the cut with an ellipsis.
func Truncate(s string, w int) string {
	if w <= 0 || lipgloss.Width(s) <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+lipgloss.Width(theme.SymbolEllipsis) > w {
		r = r[:len(r)-1]
	}
	return string(r) + theme.SymbolEllipsis
}
