package tui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	colorAccent  = lipgloss.Color("#5865F2")
	colorLightFg = lipgloss.Color("#E3E5E8")
	colorMuted   = lipgloss.Color("#72767D")
	colorRed     = lipgloss.Color("#ED4245")
	colorGreen   = lipgloss.Color("#57F287")
	colorWhite   = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Background(colorAccent).
			Foreground(colorWhite).
			Bold(true).
			Padding(0, 1)

	frameStyle = lipgloss.NewStyle().
			Foreground(colorLightFg).
			Bold(true)

	errorMsgStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	okMsgStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	brandStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	inputBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent).
				Padding(0, 1)

	presetSelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	presetNormalStyle = lipgloss.NewStyle().
				Foreground(colorLightFg)

	presetLineStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)
