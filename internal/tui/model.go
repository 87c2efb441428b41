package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/postchain/internal/errors"
	"github.com/agbru/postchain/internal/dispatch"
	"github.com/agbru/postchain/internal/format"
	"github.com/agbru/postchain/internal/metrics"
	"github.com/agbru/postchain/internal/sysmon"
)

// Layout constants for the dashboard.
const (
	headerHeight  = 1
	footerHeight  = 1
	panelChrome   = 2
	minLogLines   = 3
	maxLogEntries = 500
	tickInterval  = 500 * time.Millisecond
)

// Action is something the user can trigger from the dashboard.
type Action struct {
	// Name labels the action in the log.
	Name string
	// Key triggers the action.
	Key string
	// Start launches the action and returns its job. It is called from a
	// command goroutine, never from Update.
	Start func(ctx context.Context) *dispatch.Job
}

// ResultMsg carries a line written to the display sink.
type ResultMsg struct{ Text string }

// BusyMsg reports a change of the busy indicator.
type BusyMsg struct{ Busy bool }

// TickMsg drives the periodic stats refresh.
type TickMsg time.Time

// StatsMsg carries a resource sample.
type StatsMsg struct {
	Sys     sysmon.Stats
	Runtime metrics.RuntimeSnapshot
}

type jobStartedMsg struct{ name string }

type jobDoneMsg struct {
	name     string
	duration time.Duration
	err      error
}

type logEntry struct {
	at   time.Time
	name string
	text string
	err  bool
}

// Model is the root bubbletea model of the dashboard.
type Model struct {
	header  HeaderModel
	spinner spinner.Model
	keymap  KeyMap

	actions  []Action
	bindings []key.Binding

	logs   []logEntry
	scroll int

	running int
	busy    int
	failed  bool

	width, height int

	ctx     context.Context
	sampler func() sysmon.Stats
}

// NewModel creates the dashboard model. ctx bounds every triggered job.
func NewModel(ctx context.Context, actions []Action, version string) Model {
	bindings := make([]key.Binding, len(actions))
	for i, a := range actions {
		bindings[i] = key.NewBinding(key.WithKeys(a.Key), key.WithHelp(a.Key, a.Name))
	}
	return Model{
		header:   NewHeaderModel(version),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(statusBusyStyle)),
		keymap:   DefaultKeyMap(),
		actions:  actions,
		bindings: bindings,
		ctx:      ctx,
		sampler:  sysmon.Sample,
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick, sampleStatsCmd(m.sampler))
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.header.SetWidth(msg.Width)
		return m, nil

	case ResultMsg:
		m.appendLog(logEntry{at: time.Now(), text: msg.Text})
		return m, nil

	case BusyMsg:
		if msg.Busy {
			m.busy++
		} else if m.busy > 0 {
			m.busy--
		}
		return m, nil

	case jobStartedMsg:
		m.running++
		return m, nil

	case jobDoneMsg:
		if m.running > 0 {
			m.running--
		}
		entry := logEntry{at: time.Now(), name: msg.name,
			text: "done in " + format.FormatExecutionDuration(msg.duration)}
		if msg.err != nil {
			m.failed = true
			entry.err = true
			entry.text = fmt.Sprintf("failed after %s: %v", format.FormatExecutionDuration(msg.duration), msg.err)
		}
		m.appendLog(entry)
		return m, nil

	case TickMsg:
		return m, tea.Batch(sampleStatsCmd(m.sampler), tickCmd())

	case StatsMsg:
		m.header.SetStats(msg.Sys, msg.Runtime)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Clear):
		m.logs = nil
		m.scroll = 0
		return m, nil
	case key.Matches(msg, m.keymap.Up):
		if m.scroll < len(m.logs)-1 {
			m.scroll++
		}
		return m, nil
	case key.Matches(msg, m.keymap.Down):
		if m.scroll > 0 {
			m.scroll--
		}
		return m, nil
	}
	for i, b := range m.bindings {
		if key.Matches(msg, b) {
			a := m.actions[i]
			m.appendLog(logEntry{at: time.Now(), name: a.Name, text: "started"})
			return m, tea.Batch(
				func() tea.Msg { return jobStartedMsg{name: a.Name} },
				runActionCmd(m.ctx, a),
			)
		}
	}
	return m, nil
}

func (m *Model) appendLog(e logEntry) {
	m.logs = append(m.logs, e)
	if len(m.logs) > maxLogEntries {
		m.logs = m.logs[len(m.logs)-maxLogEntries:]
	}
}

// Busy reports whether a job is running or a busy indicator is raised.
func (m Model) Busy() bool { return m.running > 0 || m.busy > 0 }

// View renders the dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	logLines := m.height - headerHeight - footerHeight - panelChrome
	if logLines < minLogLines {
		logLines = minLogLines
	}
	body := panelStyle.Width(m.width - panelChrome).Render(m.renderLogs(logLines))
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.renderFooter())
}

func (m Model) renderLogs(lines int) string {
	end := len(m.logs) - m.scroll
	start := end - lines
	if start < 0 {
		start = 0
	}
	rows := make([]string, 0, lines)
	for _, e := range m.logs[start:end] {
		row := logTimeStyle.Render(e.at.Format("15:04:05")) + " "
		if e.name != "" {
			row += logNameStyle.Render("["+e.name+"]") + " "
		}
		if e.err {
			row += logErrorStyle.Render(e.text)
		} else if e.name == "" {
			row += logSuccessStyle.Render(e.text)
		} else {
			row += e.text
		}
		rows = append(rows, row)
	}
	for len(rows) < lines {
		rows = append(rows, "")
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderFooter() string {
	status := statusIdleStyle.Render("idle")
	if m.Busy() {
		status = m.spinner.View() + statusBusyStyle.Render(fmt.Sprintf("running %d", m.running))
	}
	parts := []string{status}
	for _, b := range m.bindings {
		parts = append(parts, footerKeyStyle.Render(b.Help().Key)+" "+footerDescStyle.Render(b.Help().Desc))
	}
	for _, b := range []key.Binding{m.keymap.Clear, m.keymap.Quit} {
		parts = append(parts, footerKeyStyle.Render(b.Help().Key)+" "+footerDescStyle.Render(b.Help().Desc))
	}
	return strings.Join(parts, "  ")
}

// runActionCmd starts a and reports its outcome once the job completes.
func runActionCmd(ctx context.Context, a Action) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := a.Start(ctx).Wait(ctx)
		return jobDoneMsg{name: a.Name, duration: time.Since(start), err: err}
	}
}

// tickCmd returns a command that sends a TickMsg after tickInterval.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleStatsCmd reads system and runtime stats off the Update goroutine.
func sampleStatsCmd(sample func() sysmon.Stats) tea.Cmd {
	return func() tea.Msg {
		return StatsMsg{Sys: sample(), Runtime: metrics.ReadRuntime()}
	}
}

// Run is the entry point of the dashboard. It attaches bridge to the program,
// blocks until the user quits or ctx is done, and returns an exit code.
func Run(ctx context.Context, bridge *Bridge, actions []Action, version string) int {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	model := NewModel(ctx, actions, version)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.ref.SetProgram(p)
	defer bridge.ref.SetProgram(nil)

	finalModel, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return apperrors.ExitErrorCanceled
		}
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok && m.failed {
		return apperrors.ExitErrorChain
	}
	return apperrors.ExitSuccess
}
