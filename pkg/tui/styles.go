package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mchmarny/blogadmin/pkg/state"
)

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	colorError  = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}
	colorActive = lipgloss.AdaptiveColor{Light: "#0B8457", Dark: "#3DDC97"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#B86E00", Dark: "#FFB347"}
)

type styles struct {
	title    lipgloss.Style
	guide    lipgloss.Style
	group    lipgloss.Style
	leaf     lipgloss.Style
	active   lipgloss.Style
	selected lipgloss.Style
	status   lipgloss.Style
	err      lipgloss.Style
	notices  map[state.Level]lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1),
		guide:    lipgloss.NewStyle().Foreground(colorMuted),
		group:    lipgloss.NewStyle().Bold(true),
		leaf:     lipgloss.NewStyle(),
		active:   lipgloss.NewStyle().Foreground(colorActive).Bold(true),
		selected: lipgloss.NewStyle().Reverse(true),
		status:   lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1),
		err:      lipgloss.NewStyle().Foreground(colorError).Padding(0, 1),
		notices: map[state.Level]lipgloss.Style{
			state.LevelInfo:    lipgloss.NewStyle().Foreground(colorAccent).Padding(0, 1),
			state.LevelSuccess: lipgloss.NewStyle().Foreground(colorActive).Padding(0, 1),
			state.LevelWarning: lipgloss.NewStyle().Foreground(colorWarn).Padding(0, 1),
			state.LevelError:   lipgloss.NewStyle().Foreground(colorError).Padding(0, 1),
		},
	}
}
