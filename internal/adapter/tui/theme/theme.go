// Package theme provides the console's colors, symbols and shared styles.
// All colors adapt to light and dark terminals.
//
// NO_COLOR (https://no-color.org/) is respected automatically by lipgloss via
// its color profile detection.
package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// --- Adaptive color palette ---

var (
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#e65100", Dark: "#ffa726"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#0277bd", Dark: "#4fc3f7"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#6a1b9a", Dark: "#ce93d8"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9e9e9e"}

	ColorBorder       = lipgloss.AdaptiveColor{Light: "#bdbdbd", Dark: "#616161"}
	ColorBorderActive = lipgloss.AdaptiveColor{Light: "#1565c0", Dark: "#42a5f5"}

	ColorBgAlt    = lipgloss.AdaptiveColor{Light: "#f5f5f5", Dark: "#2d2d2d"}
	ColorFgDim    = lipgloss.AdaptiveColor{Light: "#9e9e9e", Dark: "#757575"}
	ColorTabBg    = lipgloss.AdaptiveColor{Light: "#e0e0e0", Dark: "#333333"}
	ColorTabFg    = lipgloss.AdaptiveColor{Light: "#616161", Dark: "#9e9e9e"}
	ColorTabActBg = lipgloss.AdaptiveColor{Light: "#1565c0", Dark: "#42a5f5"}
	ColorTabActFg = lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#1e1e1e"}
	ColorSelFg    = lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#fffde7"}
	ColorSelBg    = lipgloss.AdaptiveColor{Light: "#5e35b1", Dark: "#4527a0"}
)

// --- Symbol variables (set by InitSymbols in symbols.go) ---

var (
	SymbolSuccess   = "✓"
	SymbolError     = "✗"
	SymbolWarning   = "⚠"
	SymbolInfo      = "●"
	SymbolArrowR    = "→"
	SymbolBullet    = "•"
	SymbolEllipsis  = "…"
	SymbolConnected = "◉"
	SymbolOffline   = "○"
)

// --- Base styles ---

var (
	Bold = lipgloss.NewStyle().Bold(true)
	Dim  = lipgloss.NewStyle().Faint(true)

	TextSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	TextError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	TextWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	TextInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	TextAccent  = lipgloss.NewStyle().Foreground(ColorAccent)
	TextMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
)

// --- Layout styles ---

var (
	BorderNormal = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	BorderActive = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorderActive)

	SectionTitle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Padding(0, 0, 1, 0)
)

// --- Tab bar ---

var (
	TabNormal = lipgloss.NewStyle().
			Foreground(ColorTabFg).
			Background(ColorTabBg).
			Padding(0, 2)

	TabActive = lipgloss.NewStyle().
			Foreground(ColorTabActFg).
			Background(ColorTabActBg).
			Bold(true).
			Padding(0, 2)
)

// --- Status bar ---

var (
	StatusBar = lipgloss.NewStyle().
			Foreground(ColorFgDim).
			Background(ColorBgAlt).
			Padding(0, 1)

	StatusKey = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)
)

// --- Inputs ---

var (
	InputPrompt = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)

	InputPlaceholder = lipgloss.NewStyle().
				Foreground(ColorFgDim)
)

// --- Dashboard ---

var (
	StatCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StatValue = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)

	StatLabel = lipgloss.NewStyle().
			Foreground(ColorMuted)

	BannerSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorSuccess).
			Padding(0, 1)

	BannerError = lipgloss.NewStyle().
			Foreground(ColorError).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorError).
			Padding(0, 1)

	Toast = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorWarning).
		Foreground(ColorWarning).
		Bold(true).
		Padding(0, 1)

	Dialog = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ColorBorderActive).
		Padding(1, 2)
)

// MinTabWidth is the minimum terminal width that shows every tab label.
const MinTabWidth = 60

// Clamp returns v clamped to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
