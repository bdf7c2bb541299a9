package components

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rfid-console/internal/adapter/tui/theme"
)

// FormFieldModel wraps a textinput with a label and a validation message.
type FormFieldModel struct {
	Input   textinput.Model
	Key     string // name the owner uses to look the field up
	Label   string
	Numeric bool
	ErrMsg  string
}

// NewTextField creates a text field.
func NewTextField(key, label, placeholder string, limit int) FormFieldModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Width = 40
	ti.CharLimit = limit
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	return FormFieldModel{Input: ti, Key: key, Label: label}
}

// NewNumberField creates a field that only accepts a decimal number.
func NewNumberField(key, label, placeholder string) FormFieldModel {
	f := NewTextField(key, label, placeholder, 16)
	f.Input.Validate = func(s string) error {
		if s == "" || s == "." {
			return nil
		}
		_, err := parseFinite(s)
		return err
	}
	f.Numeric = true
	return f
}

// SetValue replaces the field content.
func (m *FormFieldModel) SetValue(v string) { m.Input.SetValue(v) }

// SetFloat sets a numeric value, leaving the field empty for zero.
func (m *FormFieldModel) SetFloat(v float64) {
	if v == 0 {
		m.Input.SetValue("")
		return
	}
	m.Input.SetValue(strconv.FormatFloat(v, 'f', -1, 64))
}

// Value returns the trimmed input.
func (m FormFieldModel) Value() string {
	return strings.TrimSpace(m.Input.Value())
}

// Float parses the input, returning 0 when it is empty, malformed or not finite.
func (m FormFieldModel) Float() float64 {
	v, err := parseFinite(m.Value())
	if err != nil {
		return 0
	}
	return v
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// Focus gives the field keyboard focus.
func (m *FormFieldModel) Focus() tea.Cmd { return m.Input.Focus() }

// Blur removes keyboard focus.
func (m *FormFieldModel) Blur() { m.Input.Blur() }

// Update handles input events.
func (m FormFieldModel) Update(msg tea.Msg) (FormFieldModel, tea.Cmd) {
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// View renders the label, the input and any error.
func (m FormFieldModel) View() string {
	label := theme.Bold.Render(m.Label)
	if m.Input.Focused() {
		label = theme.TextInfo.Bold(true).Render(m.Label)
	}
	parts := []string{label, m.Input.View()}
	if m.ErrMsg != "" {
		parts = append(parts, theme.TextError.Render(theme.SymbolError+" "+m.ErrMsg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
