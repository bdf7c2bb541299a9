package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rfid-console/internal/adapter/tui/theme"
)

// KeyHint represents a single keybinding hint shown in the status bar.
type KeyHint struct {
	Key  string
	Desc string
}

// StatusBarModel renders the bottom line: key hints on the left, connection
// and transient status on the right.
type StatusBarModel struct {
	Hints     []KeyHint
	Connected bool
	ConnLabel string
	Extra     string
	ExtraErr  bool
	width     int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth updates the available width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar as a single line.
func (m StatusBarModel) View() string {
	var hints []string
	for _, h := range m.Hints {
		hints = append(hints, theme.StatusKey.Render(h.Key)+": "+h.Desc)
	}
	left := strings.Join(hints, "  "+theme.Dim.Render("|")+"  ")

	var right []string
	if m.Extra != "" {
		style := theme.TextInfo
		if m.ExtraErr {
			style = theme.TextError
		}
		right = append(right, style.Render(m.Extra))
	}
	if m.ConnLabel != "" {
		if m.Connected {
			right = append(right, theme.TextSuccess.Render(theme.SymbolConnected+" "+m.ConnLabel))
		} else {
			right = append(right, theme.TextMuted.Render(theme.SymbolOffline+" "+m.ConnLabel))
		}
	}
	r := strings.Join(right, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(r) - 2
	if gap < 1 {
		gap = 1
	}
	return theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + r)
}
