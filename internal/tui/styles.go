package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/vladimiradmaev/nutriscan/internal/domain"
)

type styles struct {
	header    lipgloss.Style
	section   lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	dim       lipgloss.Style
	good      lipgloss.Style
	medium    lipgloss.Style
	poor      lipgloss.Style
	selected  lipgloss.Style
	container lipgloss.Style
	footerKey lipgloss.Style
}

type palette struct {
	accent, text, muted, border, headerText lipgloss.Color
}

var palettes = map[domain.Theme]palette{
	domain.ThemeLight: {accent: "#059669", text: "#111827", muted: "#6b7280", border: "#d1d5db", headerText: "#ffffff"},
	domain.ThemeDark:  {accent: "#34d399", text: "#f3f4f6", muted: "#9ca3af", border: "#374151", headerText: "#111827"},
}

func newStyles(theme domain.Theme) styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[domain.ThemeLight]
	}

	return styles{
		header: lipgloss.NewStyle().
			Foreground(p.headerText).
			Background(p.accent).
			Bold(true).
			Padding(0, 1),
		section: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true).
			MarginTop(1),
		label: lipgloss.NewStyle().Foreground(p.muted),
		value: lipgloss.NewStyle().Foreground(p.text).Bold(true),
		dim:   lipgloss.NewStyle().Foreground(p.muted),
		good:  lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")).Bold(true),
		medium: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b")).
			Bold(true),
		poor: lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true),
		selected: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),
		container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(1, 2),
		footerKey: lipgloss.NewStyle().Foreground(p.accent).Bold(true),
	}
}

func (s styles) band(b domain.ScoreBand) lipgloss.Style {
	switch b {
	case domain.ScoreGood:
		return s.good
	case domain.ScoreMedium:
		return s.medium
	default:
		return s.poor
	}
}
