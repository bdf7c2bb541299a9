package components

import (
	"github.com/charmbracelet/lipgloss"

	"rfid-console/internal/adapter/tui/theme"
)

// DialogModel is a centered yes/no prompt.
type DialogModel struct {
	Title  string
	Prompt string
	Hint   string
	width  int
	height int
}

// NewDialog creates a dialog with the default y/n hint.
func NewDialog(title, prompt string) DialogModel {
	return DialogModel{Title: title, Prompt: prompt, Hint: "y/Enter: confirm  n/Esc: cancel"}
}

// SetSize sets the area the dialog is centered in.
func (m *DialogModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the dialog centered in its area.
func (m DialogModel) View() string {
	box := theme.Dialog.Render(lipgloss.JoinVertical(lipgloss.Left,
		theme.TextWarning.Render(theme.SymbolWarning+" "+m.Title),
		"",
		m.Prompt,
		"",
		theme.Dim.Render(m.Hint),
	))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
