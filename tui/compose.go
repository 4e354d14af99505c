package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/guzus/relay/internal/command"
	"github.com/guzus/relay/internal/store"
	"github.com/guzus/relay/internal/window"
)

const composeHelp = "# `.window` syntax\n\n" +
	"```\n.window <delay> <window_size> <bracket_style> '<background>' \"<text>\"\n```\n\n" +
	"- **delay** milliseconds between frames\n" +
	"- **window_size** width of the window in characters\n" +
	"- **bracket_style** one of `square`, `squiggly`, `circle`, `none`\n" +
	"- **background** a single character filling the empty space\n\n" +
	"Example: `.window 100 10 square '_' \"hello\"`\n"

// previewMsg asks the main model to play opts.
type previewMsg struct {
	opts  window.Options
	title string
}

// ComposeModel edits a .window line and lists saved presets.
type ComposeModel struct {
	input    textinput.Model
	parser   *command.TextWindow
	presets  []store.Preset
	cursor   int
	err      string
	showHelp bool
	help     renderedHelp
	width    int
	height   int
}

// renderedHelp caches the glamour output for one wrap width.
type renderedHelp struct {
	width int
	text  string
}

func NewComposeModel(presets []store.Preset, maxWindowSize uint64) ComposeModel {
	ti := textinput.New()
	ti.Placeholder = `.window 100 10 square '_' "hello"`
	ti.Focus()
	ti.CharLimit = 4096

	m := ComposeModel{
		input:   ti,
		parser:  &command.TextWindow{MaxWindowSize: maxWindowSize},
		presets: presets,
		cursor:  -1,
	}
	return m
}

func (m ComposeModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m ComposeModel) Update(msg tea.Msg) (ComposeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(m.width-6, 10)
		m.refreshHelp()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "?":
			if m.input.Value() == "" {
				m.showHelp = !m.showHelp
				m.refreshHelp()
				return m, nil
			}
		case "up":
			if len(m.presets) > 0 {
				m.cursor = max(m.cursor-1, 0)
				m.input.SetValue(m.presets[m.cursor].Line)
				m.input.CursorEnd()
			}
			return m, nil
		case "down":
			if len(m.presets) > 0 {
				m.cursor = min(m.cursor+1, len(m.presets)-1)
				m.input.SetValue(m.presets[m.cursor].Line)
				m.input.CursorEnd()
			}
			return m, nil
		case "esc":
			m.input.Reset()
			m.cursor = -1
			m.err = ""
			return m, nil
		case "enter":
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ComposeModel) submit() (ComposeModel, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}
	opts, err := m.parser.Parse(line)
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.err = ""

	title := "preview"
	if m.cursor >= 0 && m.cursor < len(m.presets) && m.presets[m.cursor].Line == line {
		title = m.presets[m.cursor].Name
	}
	return m, func() tea.Msg { return previewMsg{opts: opts, title: title} }
}

func (m ComposeModel) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(" relay "))
	b.WriteString("\n\n")

	if m.showHelp {
		b.WriteString(m.help.text)
		b.WriteString("\n\n")
	}

	if len(m.presets) > 0 {
		for i, p := range m.presets {
			cursor := "  "
			style := presetNormalStyle
			if i == m.cursor {
				cursor = "> "
				style = presetSelectedStyle
			}
			b.WriteString(cursor + style.Render(p.Name) + "  " + presetLineStyle.Render(p.Line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(inputBorderStyle.Render(m.input.View()))
	b.WriteString("\n")

	if m.err != "" {
		b.WriteString(errorMsgStyle.Render("Error: " + m.err))
		b.WriteString("\n")
	} else if m.cursor >= 0 {
		b.WriteString(okMsgStyle.Render("preset loaded"))
		b.WriteString("\n")
	}

	footer := "enter: preview | up/down: presets | esc: clear | ?: help | ctrl+c: quit"
	b.WriteString(statusBarStyle.Render(footer))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m *ComposeModel) refreshHelp() {
	if !m.showHelp {
		return
	}
	width := max(m.width-2, 20)
	if m.help.text != "" && m.help.width == width {
		return
	}
	m.help = renderedHelp{width: width, text: renderHelp(width)}
}

func renderHelp(width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return composeHelp
	}
	out, err := r.Render(composeHelp)
	if err != nil {
		return composeHelp
	}
	return strings.TrimRight(out, "\n")
}
