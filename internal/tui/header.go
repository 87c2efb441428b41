package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/postchain/internal/format"
	"github.com/agbru/postchain/internal/metrics"
	"github.com/agbru/postchain/internal/sysmon"
)

// HeaderModel renders the top bar: title, version, uptime and resource usage.
type HeaderModel struct {
	startTime time.Time
	version   string
	width     int
	sys       sysmon.Stats
	rt        metrics.RuntimeSnapshot
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{startTime: time.Now(), version: version}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) { h.width = w }

// SetStats records the latest resource samples.
func (h *HeaderModel) SetStats(sys sysmon.Stats, rt metrics.RuntimeSnapshot) {
	h.sys = sys
	h.rt = rt
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "postchain"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := dimStyle.Render(" | ")
	left := titleStyle.Render(titleText) + pipe +
		accentStyle.Render("Up: "+format.FormatExecutionDuration(time.Since(h.startTime).Truncate(time.Second)))
	right := dimStyle.Render(fmt.Sprintf("%s  heap %s  goroutines %d",
		h.sys, format.FormatMiB(h.rt.HeapAlloc), h.rt.Goroutines))

	gap := h.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return headerStyle.Width(h.width).Render(left + strings.Repeat(" ", gap) + right)
}
