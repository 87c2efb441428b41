package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/postchain/internal/compute"
	"github.com/agbru/postchain/internal/orchestration"
)

// programRef is a shared reference to the tea.Program.
// Because bubbletea copies the model on every Update, we need a pointer
// that survives copies so the bridge can send messages.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the tea.Program reference (thread-safe).
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the bubbletea program (thread-safe). It is a no-op
// before SetProgram. It must not be called from inside Update.
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// Bridge forwards output produced on the UI loop to the dashboard. It is the
// display sink of every orchestrator and the busy indicator of prime tasks
// while the dashboard runs.
type Bridge struct {
	ref *programRef
}

// Verify interface compliance.
var (
	_ orchestration.Sink = (*Bridge)(nil)
	_ compute.Indicator  = (*Bridge)(nil)
)

// NewBridge returns a bridge that drops messages until Run attaches it to a
// program.
func NewBridge() *Bridge {
	return &Bridge{ref: &programRef{}}
}

// Show implements orchestration.Sink.
func (b *Bridge) Show(text string) {
	b.ref.Send(ResultMsg{Text: text})
}

// SetBusy implements compute.Indicator.
func (b *Bridge) SetBusy(busy bool) {
	b.ref.Send(BusyMsg{Busy: busy})
}
