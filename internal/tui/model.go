package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fentz26/taskwatch/internal/models"
)

// maxLogLines bounds the sink pane.
const maxLogLines = 12

type row struct {
	label     string
	state     models.LifecycleState
	milestone string
	elapsed   time.Duration
	reason    string
}

// Model is the Bubble Tea model for a monitor run.
type Model struct {
	rows     []*row
	index    map[string]*row
	spinner  spinner.Model
	logs     []string
	partial  string
	width    int
	finished bool
	err      error
}

type transitionMsg models.Event

type logMsg string

type finishedMsg struct {
	err error
}

// NewModel creates a model with one row per label, in order.
func NewModel(labels []string) *Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(statusRunning))
	m := &Model{
		index:   make(map[string]*row, len(labels)),
		spinner: s,
		width:   80,
	}
	for _, label := range labels {
		r := &row{label: label, state: models.StateNone}
		m.rows = append(m.rows, r)
		m.index[label] = r
	}
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case transitionMsg:
		m.apply(models.Event(msg))

	case logMsg:
		m.appendLog(string(msg))

	case finishedMsg:
		m.finished = true
		m.err = msg.err
		m.appendLog("App Finished\n")
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) apply(ev models.Event) {
	r, ok := m.index[ev.Label]
	if !ok {
		r = &row{label: ev.Label}
		m.rows = append(m.rows, r)
		m.index[ev.Label] = r
	}

	switch ev.State {
	case models.StateStarted:
		r.state = models.StateRunning
	case models.StateMilestone:
		r.state = models.StateRunning
		r.milestone = strings.TrimSpace(lastLine(ev.Message))
	case models.StateDone:
		r.state = models.StateComplete
		r.elapsed = ev.Elapsed
	case models.StateError:
		r.state = models.StateError
		r.reason = ev.Reason
	}
}

// appendLog splits sink output into lines, keeping an unterminated tail
// until the rest of it arrives.
func (m *Model) appendLog(text string) {
	text = m.partial + text
	lines := strings.Split(text, "\n")
	m.partial = lines[len(lines)-1]
	m.logs = append(m.logs, lines[:len(lines)-1]...)
	if over := len(m.logs) - maxLogLines; over > 0 {
		m.logs = m.logs[over:]
	}
}

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("taskwatch") + "\n")

	var lines []string
	for _, r := range m.rows {
		lines = append(lines, labelStyle.Render(r.label)+" "+m.renderStatus(r))
	}
	if len(lines) == 0 {
		lines = append(lines, "No tasks registered.")
	}
	b.WriteString(panelStyle.Render(strings.Join(lines, "\n")) + "\n")

	for _, l := range m.logs {
		b.WriteString(logStyle.Render(l) + "\n")
	}

	live, done := m.counts()
	status := fmt.Sprintf(" Live: %d | Finished: %d/%d | q:quit", live, done, len(m.rows))
	if m.finished {
		status = fmt.Sprintf(" Finished: %d/%d", done, len(m.rows))
		if m.err != nil {
			status += " | " + m.err.Error()
		}
	}
	b.WriteString(statusBarStyle.Width(m.width).Render(status) + "\n")

	return b.String()
}

func (m *Model) renderStatus(r *row) string {
	switch r.state {
	case models.StateRunning:
		text := "running"
		if r.milestone != "" {
			text += " • " + r.milestone
		}
		return m.spinner.View() + statusRunning.Render(text)
	case models.StateComplete:
		return statusComplete.Render(fmt.Sprintf("● complete in %sms", models.FormatMillis(r.elapsed)))
	case models.StateError:
		return statusFailed.Render("● failed: " + r.reason)
	default:
		return statusWaiting.Render("● waiting")
	}
}

func (m *Model) counts() (live, done int) {
	for _, r := range m.rows {
		switch r.state {
		case models.StateRunning:
			live++
		case models.StateComplete, models.StateError:
			done++
		}
	}
	return live, done
}

func lastLine(text string) string {
	text = strings.TrimRight(text, "\n")
	if i := strings.LastIndex(text, "\n"); i >= 0 {
		return text[i+1:]
	}
	return text
}
