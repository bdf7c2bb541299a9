// Package components provides reusable Bubble Tea sub-models for the console.
package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"rfid-console/internal/adapter/tui/theme"
)

// Tab represents a single tab entry.
type Tab struct {
	ID    string
	Label string
	Key   string // shortcut shown before the label
	Badge int    // 0 hides the badge
}

// TabBarModel is a horizontal tab bar. The parent decides which tab is
// active; the bar only renders.
type TabBarModel struct {
	Tabs      []Tab
	Active    int
	width     int
	collapsed bool
}

// NewTabBar creates a tab bar with the first tab active.
func NewTabBar(tabs []Tab) TabBarModel {
	return TabBarModel{Tabs: tabs}
}

// SetWidth updates the available width and collapses narrow bars.
func (m *TabBarModel) SetWidth(w int) {
	m.width = w
	m.collapsed = w < theme.MinTabWidth
}

// SetActiveID activates the tab with the given ID, if present.
func (m *TabBarModel) SetActiveID(id string) {
	for i, t := range m.Tabs {
		if t.ID == id {
			m.Active = i
			return
		}
	}
}

// SetBadge sets the badge count of the tab with the given ID.
func (m *TabBarModel) SetBadge(id string, n int) {
	for i := range m.Tabs {
		if m.Tabs[i].ID == id {
			m.Tabs[i].Badge = n
		}
	}
}

// View renders the tab bar.
func (m TabBarModel) View() string {
	if len(m.Tabs) == 0 {
		return ""
	}

	if m.collapsed {
		t := m.Tabs[m.Active]
		label := theme.TabActive.Render(t.Label)
		counter := theme.Dim.Render("[" + strconv.Itoa(m.Active+1) + "/" + strconv.Itoa(len(m.Tabs)) + "]")
		return lipgloss.JoinHorizontal(lipgloss.Center, label, " ", counter)
	}

	var parts []string
	for i, t := range m.Tabs {
		label := t.Label
		if t.Key != "" {
			label = t.Key + " " + label
		}
		if t.Badge > 0 {
			label += " " + theme.TextWarning.Render(strconv.Itoa(t.Badge))
		}
		if i == m.Active {
			parts = append(parts, theme.TabActive.Render(label))
		} else {
			parts = append(parts, theme.TabNormal.Render(label))
		}
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, parts...)
	if m.width > 0 {
		bg := theme.TabNormal.UnsetPadding()
		if remaining := m.width - lipgloss.Width(bar); remaining > 0 {
			bar += bg.Render(strings.Repeat(" ", remaining))
		}
	}
	return bar
}
