package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gophersatwork/abacus"
)

// palette is the set of colours for one theme.
type palette struct {
	background lipgloss.Color
	foreground lipgloss.Color
	muted      lipgloss.Color
	accent     lipgloss.Color
	err        lipgloss.Color
	border     lipgloss.Color
	selected   lipgloss.Color
}

var (
	lightPalette = palette{
		background: lipgloss.Color("#FFFFFF"),
		foreground: lipgloss.Color("#1D1F23"),
		muted:      lipgloss.Color("#6B7280"),
		accent:     lipgloss.Color("#3B82F6"),
		err:        lipgloss.Color("#D64545"),
		border:     lipgloss.Color("#D0D4DA"),
		selected:   lipgloss.Color("#E9EBEF"),
	}
	darkPalette = palette{
		background: lipgloss.Color("#1F2228"),
		foreground: lipgloss.Color("#EEF0F3"),
		muted:      lipgloss.Color("#8B93A1"),
		accent:     lipgloss.Color("#C9822B"),
		err:        lipgloss.Color("#FF6B6B"),
		border:     lipgloss.Color("#4A4A4A"),
		selected:   lipgloss.Color("#2B2F37"),
	}
)

// Styles renders one theme.
type Styles struct {
	App      lipgloss.Style
	Preview  lipgloss.Style
	Main     lipgloss.Style
	Error    lipgloss.Style
	Title    lipgloss.Style
	Entry    lipgloss.Style
	Selected lipgloss.Style
	Empty    lipgloss.Style
	Status   lipgloss.Style
	Help     lipgloss.Style
}

// StylesFor returns the styles of theme.
func StylesFor(theme abacus.Theme) Styles {
	p := lightPalette
	if theme == abacus.ThemeDark {
		p = darkPalette
	}

	return Styles{
		App: lipgloss.NewStyle().
			Background(p.background).
			Foreground(p.foreground).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(p.border).
			Padding(1, 2),
		Preview:  lipgloss.NewStyle().Foreground(p.muted).Align(lipgloss.Right),
		Main:     lipgloss.NewStyle().Foreground(p.foreground).Bold(true).Align(lipgloss.Right),
		Error:    lipgloss.NewStyle().Foreground(p.err).Bold(true).Align(lipgloss.Right),
		Title:    lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		Entry:    lipgloss.NewStyle().Foreground(p.foreground).PaddingLeft(2),
		Selected: lipgloss.NewStyle().Foreground(p.accent).Background(p.selected).PaddingLeft(2),
		Empty:    lipgloss.NewStyle().Foreground(p.muted).Italic(true).PaddingLeft(2),
		Status:   lipgloss.NewStyle().Foreground(p.err),
		Help:     lipgloss.NewStyle().Foreground(p.muted),
	}
}
