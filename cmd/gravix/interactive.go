package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxHistory = 200

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	handleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	logStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B0B0B0"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

// logSink collects log lines written while the TUI owns the terminal.
type logSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *logSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		s.lines = append(s.lines, line)
	}
	return len(p), nil
}

// Drain returns and clears the collected lines.
func (s *logSink) Drain() []string {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.lines
	s.lines = nil
	return lines
}

type lineKind int

const (
	lineCommand lineKind = iota
	lineResult
	lineError
	lineLog
)

type historyLine struct {
	text string
	kind lineKind
}

type interactiveModel struct {
	console  *console
	logs     *logSink
	title    string
	input    textinput.Model
	history  []historyLine
	commands []string
	recall   int
	height   int
}

func newInteractiveModel(c *console, title string, logs *logSink) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render("gravix> ")
	ti.Placeholder = "help"
	ti.Width = 60
	ti.Focus()

	m := &interactiveModel{
		console: c,
		logs:    logs,
		title:   title,
		input:   ti,
		height:  24,
	}
	m.drainLogs()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.input.Width = msg.Width - 12

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "quit" || line == "exit" {
				return m, tea.Quit
			}
			m.exec(line)
			return m, nil

		case "up":
			if m.recall > 0 {
				m.recall--
				m.input.SetValue(m.commands[m.recall])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.recall < len(m.commands)-1 {
				m.recall++
				m.input.SetValue(m.commands[m.recall])
			} else {
				m.recall = len(m.commands)
				m.input.SetValue("")
			}
			m.input.CursorEnd()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) exec(line string) {
	if line == "" {
		return
	}
	m.commands = append(m.commands, line)
	m.recall = len(m.commands)
	m.push(lineCommand, "> "+line)

	out, err := m.console.Exec(line)
	m.drainLogs()
	if err != nil {
		m.push(lineError, err.Error())
		return
	}
	for _, l := range strings.Split(out, "\n") {
		if l != "" {
			m.push(lineResult, l)
		}
	}
}

func (m *interactiveModel) drainLogs() {
	for _, l := range m.logs.Drain() {
		m.push(lineLog, l)
	}
}

func (m *interactiveModel) push(kind lineKind, text string) {
	m.history = append(m.history, historyLine{text: text, kind: kind})
	if over := len(m.history) - maxHistory; over > 0 {
		m.history = m.history[over:]
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Gravix Console"))
	if m.title != "" {
		b.WriteString(" ")
		b.WriteString(m.title)
	}
	b.WriteString("\n\n")

	rows := m.height - 6
	if rows < 5 {
		rows = 5
	}
	start := len(m.history) - rows
	if start < 0 {
		start = 0
	}

	var hist strings.Builder
	for _, h := range m.history[start:] {
		hist.WriteString(renderLine(h))
		hist.WriteString("\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(72).Render(hist.String()),
		panelStyle.Render(m.livePanel()),
	))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter run • ↑/↓ history • help commands • esc quit"))

	return b.String()
}

func (m *interactiveModel) livePanel() string {
	b := m.console.rt.Bridge()
	var p strings.Builder
	p.WriteString("Live handles\n")
	live := b.Live()
	if len(live) == 0 {
		p.WriteString(helpStyle.Render("(none)"))
	}
	for _, h := range live {
		name, ok := b.Lookup(h)
		if !ok {
			continue
		}
		p.WriteString(handleStyle.Render(fmt.Sprintf("#%d", h)))
		p.WriteString(" " + name + "\n")
	}
	s := b.Stats()
	p.WriteString(helpStyle.Render(fmt.Sprintf("\ncalls %d • failed %d", s.Invocations, s.Failures)))
	return p.String()
}

func renderLine(h historyLine) string {
	switch h.kind {
	case lineCommand:
		return promptStyle.Render(h.text)
	case lineError:
		return errorStyle.Render("error: " + h.text)
	case lineLog:
		return logStyle.Render(h.text)
	default:
		return resultStyle.Render(h.text)
	}
}

func runInteractive(c *console, title string, logs *logSink) error {
	p := tea.NewProgram(newInteractiveModel(c, title, logs), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
