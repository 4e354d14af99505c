package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type tickMsg time.Time

// SplashModel bounces the brand once before the compose screen.
type SplashModel struct {
	frame  int
	ticks  int
	width  int
	height int
}

func NewSplashModel() SplashModel {
	return SplashModel{}
}

func (m SplashModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(90*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m SplashModel) Update(msg tea.Msg) (SplashModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.ticks++
		if m.ticks >= len(splashFrames) {
			return m, func() tea.Msg { return switchScreenMsg{target: screenCompose} }
		}
		m.frame = (m.frame + 1) % len(splashFrames)
		return m, tickCmd()

	case tea.KeyMsg:
		return m, func() tea.Msg { return switchScreenMsg{target: screenCompose} }

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m SplashModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		brandStyle.Render(splashFrames[m.frame]),
		"",
		statusBarStyle.Render("text windows for chat"),
	)

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}
