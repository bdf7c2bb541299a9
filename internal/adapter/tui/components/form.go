package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rfid-console/internal/adapter/tui/theme"
)

// FormModel is a vertical list of fields with one focused at a time.
type FormModel struct {
	Title  string
	Fields []FormFieldModel
	Status string
	focus  int
}

// NewForm creates a form and focuses its first field.
func NewForm(title string, fields ...FormFieldModel) FormModel {
	f := FormModel{Title: title, Fields: fields}
	if len(f.Fields) > 0 {
		f.Fields[0].Focus()
	}
	return f
}

// Field returns the field with the given key.
func (m *FormModel) Field(key string) *FormFieldModel {
	for i := range m.Fields {
		if m.Fields[i].Key == key {
			return &m.Fields[i]
		}
	}
	return nil
}

// Focused is the index of the focused field.
func (m FormModel) Focused() int { return m.focus }

// Next moves focus down, wrapping around.
func (m *FormModel) Next() tea.Cmd { return m.move(1) }

// Prev moves focus up, wrapping around.
func (m *FormModel) Prev() tea.Cmd { return m.move(-1) }

func (m *FormModel) move(d int) tea.Cmd {
	if len(m.Fields) == 0 {
		return nil
	}
	m.Fields[m.focus].Blur()
	m.focus = (m.focus + d + len(m.Fields)) % len(m.Fields)
	return m.Fields[m.focus].Focus()
}

// SetErrors shows errs next to the matching fields and clears the rest.
func (m *FormModel) SetErrors(errs map[string]string) {
	for i := range m.Fields {
		m.Fields[i].ErrMsg = errs[m.Fields[i].Key]
	}
}

// Update forwards input to the focused field.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	if len(m.Fields) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.Fields[m.focus], cmd = m.Fields[m.focus].Update(msg)
	return m, cmd
}

// View renders the form inside a border.
func (m FormModel) View() string {
	parts := []string{theme.SectionTitle.Render(m.Title)}
	for _, f := range m.Fields {
		parts = append(parts, f.View(), "")
	}
	if m.Status != "" {
		parts = append(parts, m.Status)
	}
	parts = append(parts, theme.Dim.Render("Tab/Shift+Tab: move  Enter: save  Esc: close"))
	return theme.BorderActive.Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
