package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/guzus/relay/internal/store"
)

type screen int

const (
	screenSplash screen = iota
	screenCompose
	screenPreview
)

type switchScreenMsg struct {
	target screen
}

// MainModel routes between splash, compose, and preview screens.
type MainModel struct {
	currentScreen screen
	width         int
	height        int
	splash        SplashModel
	compose       ComposeModel
	preview       PreviewModel
}

func NewMainModel(presets []store.Preset, maxWindowSize uint64) MainModel {
	return MainModel{
		currentScreen: screenSplash,
		splash:        NewSplashModel(),
		compose:       NewComposeModel(presets, maxWindowSize),
	}
}

func (m MainModel) Init() tea.Cmd {
	return m.splash.Init()
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.splash, _ = m.splash.Update(msg)
		m.compose, _ = m.compose.Update(msg)
		m.preview, _ = m.preview.Update(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case previewMsg:
		preview, err := NewPreviewModel(msg.opts, msg.title, false)
		if err != nil {
			m.compose.err = err.Error()
			return m, nil
		}
		// Bump past the old generation so stale ticks are dropped.
		preview.id = m.preview.id + 1
		preview, _ = preview.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		m.preview = preview
		m.currentScreen = screenPreview
		return m, m.preview.Init()

	case switchScreenMsg:
		m.currentScreen = msg.target
		if msg.target == screenCompose {
			return m, m.compose.Init()
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentScreen {
	case screenSplash:
		m.splash, cmd = m.splash.Update(msg)
	case screenCompose:
		m.compose, cmd = m.compose.Update(msg)
	case screenPreview:
		m.preview, cmd = m.preview.Update(msg)
	}

	return m, cmd
}

func (m MainModel) View() string {
	switch m.currentScreen {
	case screenSplash:
		return m.splash.View()
	case screenCompose:
		return m.compose.View()
	case screenPreview:
		return m.preview.View()
	default:
		return ""
	}
}
