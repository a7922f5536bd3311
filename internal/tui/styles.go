// Package tui provides the interactive workspace picker for Arborist
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Primary colors
	ColorPrimary   = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"} // Green
	ColorSecondary = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"} // Purple
	ColorAccent    = lipgloss.AdaptiveColor{Light: "#0284C7", Dark: "#38BDF8"} // Blue

	// Status colors
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#4ADE80"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#CA8A04", Dark: "#FACC15"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#0284C7", Dark: "#38BDF8"}

	// Neutral colors
	ColorMuted    = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	ColorSubtle   = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}
	ColorBorder   = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"}
	ColorSelected = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"}
)

// Styles contains all the TUI styles
type Styles struct {
	// App-level styles
	App lipgloss.Style

	// List styles
	ListTitle    lipgloss.Style
	ListItem     lipgloss.Style
	ListItemDesc lipgloss.Style
	ListSelected lipgloss.Style

	// Footer styles
	Footer    lipgloss.Style
	HelpKey   lipgloss.Style
	HelpValue lipgloss.Style

	// Status styles
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns the default style configuration
func DefaultStyles() *Styles {
	s := &Styles{}

	// App-level
	s.App = lipgloss.NewStyle().
		Padding(1, 2)

	// List
	s.ListTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)

	s.ListItem = lipgloss.NewStyle().
		PaddingLeft(2)

	s.ListItemDesc = lipgloss.NewStyle().
		Foreground(ColorMuted)

	s.ListSelected = lipgloss.NewStyle().
		PaddingLeft(2).
		Foreground(ColorPrimary).
		Bold(true)

	// Footer
	s.Footer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		MarginTop(1)

	s.HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)

	s.HelpValue = lipgloss.NewStyle().
		Foreground(ColorMuted)

	// Status
	s.Success = lipgloss.NewStyle().
		Foreground(ColorSuccess)

	s.Warning = lipgloss.NewStyle().
		Foreground(ColorWarning)

	s.Error = lipgloss.NewStyle().
		Foreground(ColorError)

	s.Info = lipgloss.NewStyle().
		Foreground(ColorInfo)

	s.Muted = lipgloss.NewStyle().
		Foreground(ColorMuted)

	return s
}

// Global styles instance
var styles = DefaultStyles()

// GetStyles returns the global styles instance
func GetStyles() *Styles {
	return styles
}
