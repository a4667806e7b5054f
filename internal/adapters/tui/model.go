package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vito/progrock"
)

const (
	statusRunning  = "running"
	statusExecuted = "executed"
	statusUpToDate = "up to date"
	statusFailed   = "failed"
)

// VertexState is what the display knows about one build step.
type VertexState struct {
	ID     string
	Name   string
	Status string
	// LastLine is the most recent line of output.
	LastLine string
}

type styles struct {
	running  lipgloss.Style
	executed lipgloss.Style
	upToDate lipgloss.Style
	failed   lipgloss.Style
	detail   lipgloss.Style
}

// Model is the Bubble Tea model listing build steps as they run.
type Model struct {
	tape     TapeSource
	vertices []VertexState
	index    map[string]int
	width    int
	height   int
	spinner  spinner.Model
	styles   styles
}

// NewModel creates a model reading from tape.
func NewModel(tape TapeSource) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))

	return &Model{
		tape:    tape,
		index:   map[string]int{},
		spinner: s,
		styles: styles{
			running:  lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")),
			executed: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			upToDate: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
			failed:   lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
			detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		},
	}
}

// Init starts reading the tape and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForTape(m.tape),
		m.spinner.Tick,
	)
}

// Update handles incoming messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case MsgTapeUpdate:
		m.apply(msg.Update)
		return m, WaitForTape(m.tape)
	case MsgTapeEnded:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) apply(update *progrock.StatusUpdate) {
	if update == nil {
		return
	}
	for _, v := range update.Vertexes {
		i, ok := m.index[v.Id]
		if !ok {
			i = len(m.vertices)
			m.index[v.Id] = i
			m.vertices = append(m.vertices, VertexState{ID: v.Id, Name: v.Name, Status: statusRunning})
		}
		m.vertices[i].Status = vertexStatus(v)
	}
	for _, l := range update.Logs {
		i, ok := m.index[l.Vertex]
		if !ok {
			continue
		}
		if line := lastLine(string(l.Data)); line != "" {
			m.vertices[i].LastLine = line
		}
	}
}

func vertexStatus(v *progrock.Vertex) string {
	switch {
	case v.Error != nil:
		return statusFailed
	case v.Cached:
		return statusUpToDate
	case v.Completed != nil:
		return statusExecuted
	default:
		return statusRunning
	}
}

func lastLine(data string) string {
	lines := strings.Split(strings.TrimRight(data, "\r\n"), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// View renders one line per step, newest last. Older steps scroll off when
// the window is too short.
func (m *Model) View() string {
	var s strings.Builder

	start := 0
	if m.height > 0 && len(m.vertices) > m.height {
		start = len(m.vertices) - m.height
	}

	for _, v := range m.vertices[start:] {
		var icon string
		var style lipgloss.Style
		switch v.Status {
		case statusRunning:
			icon = m.spinner.View()
			style = m.styles.running
		case statusExecuted:
			icon = "✓"
			style = m.styles.executed
		case statusUpToDate:
			icon = "•"
			style = m.styles.upToDate
		default:
			icon = "✗"
			style = m.styles.failed
		}

		detail := ""
		switch v.Status {
		case statusUpToDate:
			detail = statusUpToDate
		case statusRunning, statusFailed:
			detail = v.LastLine
		}
		if detail = m.truncate(v.Name, detail); detail != "" {
			detail = " " + m.styles.detail.Render(detail)
		}

		line := fmt.Sprintf("%s %s%s\n", style.Render(icon), v.Name, detail)
		s.WriteString(line)
	}

	return s.String()
}

// truncate shortens detail so that the line fits the window.
func (m *Model) truncate(name, detail string) string {
	if m.width <= 0 {
		return detail
	}
	room := m.width - lipgloss.Width(name) - 3
	if room <= 0 {
		return ""
	}
	runes := []rune(detail)
	if len(runes) <= room {
		return detail
	}
	if room == 1 {
		return "…"
	}
	return string(runes[:room-1]) + "…"
}
