package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guzus/relay/internal/window"
)

// minPreviewDelay keeps a zero delay from spinning the event loop.
const minPreviewDelay = 16 * time.Millisecond

// frameMsg advances the preview whose generation matches id. Ticks from a
// preview that was replaced are dropped.
type frameMsg struct {
	id int
}

// PreviewModel plays a window animation in the terminal.
type PreviewModel struct {
	cycle      *window.Cycle
	opts       window.Options
	title      string
	frame      string
	shown      int
	paused     bool
	id         int
	standalone bool
	width      int
	height     int
}

// NewPreviewModel builds a preview of opts. A standalone preview quits on
// esc; otherwise esc returns to the compose screen.
func NewPreviewModel(opts window.Options, title string, standalone bool) (PreviewModel, error) {
	cycle, err := window.Generate(opts)
	if err != nil {
		return PreviewModel{}, err
	}
	m := PreviewModel{
		cycle:      cycle,
		opts:       opts,
		title:      title,
		standalone: standalone,
	}
	m.advance()
	return m, nil
}

func (m *PreviewModel) advance() {
	m.frame = m.cycle.Next()
	m.shown++
}

func (m PreviewModel) delay() time.Duration {
	return max(m.opts.Delay, minPreviewDelay)
}

func (m PreviewModel) Init() tea.Cmd {
	return m.nextFrame()
}

func (m PreviewModel) nextFrame() tea.Cmd {
	id := m.id
	return tea.Tick(m.delay(), func(time.Time) tea.Msg {
		return frameMsg{id: id}
	})
}

func (m PreviewModel) Update(msg tea.Msg) (PreviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if msg.id != m.id || m.paused {
			return m, nil
		}
		m.advance()
		return m, m.nextFrame()

	case tea.KeyMsg:
		switch msg.String() {
		case " ", "p":
			m.paused = !m.paused
			if !m.paused {
				m.id++
				return m, m.nextFrame()
			}
		case "r":
			m.cycle.Reset()
			m.shown = 0
			m.advance()
		case "esc", "q":
			if m.standalone {
				return m, tea.Quit
			}
			m.id++
			return m, func() tea.Msg { return switchScreenMsg{target: screenCompose} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m PreviewModel) View() string {
	if m.cycle == nil {
		return ""
	}

	status := fmt.Sprintf("%s  |  frame %d/%d  |  %q  |  window %d  |  every %s",
		m.opts.Style, (m.shown-1)%m.cycle.Len()+1, m.cycle.Len(),
		m.opts.Background, m.opts.WindowSize, m.opts.Delay)
	if m.paused {
		status += "  |  paused"
	}

	footer := "space: pause | r: restart | esc: back"
	if m.standalone {
		footer = "space: pause | r: restart | q: quit"
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		headerStyle.Render(m.title),
		"",
		frameStyle.Render(displayFrame(m.frame)),
		"",
		statusBarStyle.Render(status),
		statusBarStyle.Render(footer),
	)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// Frame returns the frame on screen.
func (m PreviewModel) Frame() string { return m.frame }

type standalonePreview struct {
	PreviewModel
}

// NewStandalonePreview wraps a preview as a program of its own for
// `relay preview`.
func NewStandalonePreview(opts window.Options, title string) (tea.Model, error) {
	m, err := NewPreviewModel(opts, title, true)
	if err != nil {
		return nil, err
	}
	return standalonePreview{m}, nil
}

func (s standalonePreview) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		return s, tea.Quit
	}
	m, cmd := s.PreviewModel.Update(msg)
	return standalonePreview{m}, cmd
}
