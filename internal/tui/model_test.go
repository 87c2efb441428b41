package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/postchain/internal/dispatch"
	"github.com/agbru/postchain/internal/sysmon"
)

func completedJob(err error) *dispatch.Job {
	job, complete := dispatch.NewJob()
	complete(err)
	return job
}

func testModel(actions ...Action) Model {
	m := NewModel(context.Background(), actions, "v1.0.0")
	m.sampler = func() sysmon.Stats { return sysmon.Stats{CPUPercent: 12.5, MemPercent: 40} }
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	return next.(Model)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// drain executes cmd and every command it batches, feeding the resulting
// messages back into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
	case nil:
	default:
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_TriggerAction(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		err        error
		wantFailed bool
		wantText   string
	}{
		{"success", nil, false, "done in"},
		{"failure", errors.New("post step: boom"), true, "failed after"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			started := 0
			m := testModel(Action{Name: "callback", Key: "c", Start: func(context.Context) *dispatch.Job {
				started++
				return completedJob(tt.err)
			}})

			next, cmd := m.Update(runeKey('c'))
			m = drain(t, next.(Model), cmd)

			if started != 1 {
				t.Fatalf("Start called %d times, want 1", started)
			}
			if m.running != 0 {
				t.Errorf("running = %d after completion", m.running)
			}
			if m.failed != tt.wantFailed {
				t.Errorf("failed = %v, want %v", m.failed, tt.wantFailed)
			}
			last := m.logs[len(m.logs)-1]
			if last.name != "callback" || !strings.HasPrefix(last.text, tt.wantText) {
				t.Errorf("last log = %+v", last)
			}
		})
	}
}

func TestModel_UnboundKeyIgnored(t *testing.T) {
	t.Parallel()
	m := testModel(Action{Name: "prime", Key: "p", Start: func(context.Context) *dispatch.Job {
		t.Error("Start must not be called")
		return completedJob(nil)
	}})
	next, cmd := m.Update(runeKey('z'))
	if cmd != nil {
		t.Error("expected no command for an unbound key")
	}
	if len(next.(Model).logs) != 0 {
		t.Error("unbound key should not log")
	}
}

func TestModel_ResultAndBusyMessages(t *testing.T) {
	t.Parallel()
	m := testModel()

	next, _ := m.Update(ResultMsg{Text: "User Ada made 3 posts"})
	m = next.(Model)
	next, _ = m.Update(BusyMsg{Busy: true})
	m = next.(Model)
	if !m.Busy() {
		t.Error("model should be busy after BusyMsg{true}")
	}
	if !strings.Contains(m.View(), "User Ada made 3 posts") {
		t.Error("view should contain the result line")
	}
	next, _ = m.Update(BusyMsg{Busy: false})
	m = next.(Model)
	next, _ = m.Update(BusyMsg{Busy: false})
	m = next.(Model)
	if m.Busy() || m.busy != 0 {
		t.Errorf("busy = %d, want 0", m.busy)
	}
}

func TestModel_Quit(t *testing.T) {
	t.Parallel()
	_, cmd := testModel().Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_ClearAndScroll(t *testing.T) {
	t.Parallel()
	m := testModel()
	for i := 0; i < 5; i++ {
		next, _ := m.Update(ResultMsg{Text: "line"})
		m = next.(Model)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	if m.scroll != 1 {
		t.Errorf("scroll = %d, want 1", m.scroll)
	}
	next, _ = m.Update(runeKey('x'))
	m = next.(Model)
	if len(m.logs) != 0 || m.scroll != 0 {
		t.Error("clear should empty the log")
	}
}

func TestModel_LogIsBounded(t *testing.T) {
	t.Parallel()
	m := testModel()
	for i := 0; i < maxLogEntries+10; i++ {
		m.appendLog(logEntry{text: "x"})
	}
	if len(m.logs) != maxLogEntries {
		t.Errorf("len(logs) = %d, want %d", len(m.logs), maxLogEntries)
	}
}

func TestModel_Stats(t *testing.T) {
	t.Parallel()
	m := testModel()
	next, cmd := m.Update(TickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick should schedule sampling")
	}
	m = next.(Model)
	msg := sampleStatsCmd(m.sampler)().(StatsMsg)
	next, _ = m.Update(msg)
	m = next.(Model)
	if !strings.Contains(m.View(), "12.5%") {
		t.Errorf("header should show the CPU sample, got %q", m.header.View())
	}
}

func TestModel_ViewBeforeSize(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), nil, "dev")
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q", got)
	}
}

func TestModel_FooterListsActions(t *testing.T) {
	t.Parallel()
	m := testModel(
		Action{Name: "callback", Key: "c"},
		Action{Name: "prime", Key: "p"},
	)
	footer := m.renderFooter()
	for _, want := range []string{"callback", "prime", "quit", "idle"} {
		if !strings.Contains(footer, want) {
			t.Errorf("footer missing %q: %q", want, footer)
		}
	}
}

func TestBridge_NoProgram(t *testing.T) {
	t.Parallel()
	b := NewBridge()
	// Both are no-ops before a program is attached.
	b.Show("User Ada made 3 posts")
	b.SetBusy(true)
}
