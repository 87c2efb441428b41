// # Naming Conventions
//
//   - Show and Present* methods write formatted output to the presenter's
//     writer. They are called from the UI loop only.
//   - Format* functions return a formatted string without performing I/O.

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/agbru/postchain/internal/format"
	"github.com/agbru/postchain/internal/orchestration"
	"github.com/agbru/postchain/internal/ui"
)

// Presenter is the CLI presentation sink. Each write becomes one line on the
// output writer; the latest line is the current display.
type Presenter struct {
	out   io.Writer
	quiet bool
	last  string
	lines int
}

// Verify interface compliance.
var _ orchestration.Sink = (*Presenter)(nil)

// NewPresenter returns a presenter writing to out. In quiet mode lines are
// written without decoration.
func NewPresenter(out io.Writer, quiet bool) *Presenter {
	return &Presenter{out: out, quiet: quiet}
}

// Show implements orchestration.Sink.
func (p *Presenter) Show(text string) {
	p.last = text
	p.lines++
	if p.quiet {
		fmt.Fprintln(p.out, text)
		return
	}
	theme := ui.GetCurrentTheme()
	fmt.Fprintf(p.out, "%s %s\n", ui.Colorize(theme.Success, "›"), text)
}

// Last returns the most recent line, or "" if nothing was shown.
func (p *Presenter) Last() string { return p.last }

// Lines returns how many lines were shown.
func (p *Presenter) Lines() int { return p.lines }

// RunResult is the outcome of one triggered run, for the summary table.
type RunResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// PresentSummary displays the run summary table with names, durations and
// status. Uses manual padding so ANSI color codes do not break alignment.
// Nothing is written in quiet mode.
func (p *Presenter) PresentSummary(results []RunResult) {
	if p.quiet || len(results) == 0 {
		return
	}
	theme := ui.GetCurrentTheme()

	maxNameLen := len("Run")
	maxDurationLen := len("Duration")
	for _, res := range results {
		maxNameLen = max(maxNameLen, len(res.Name))
		maxDurationLen = max(maxDurationLen, len(FormatDuration(res.Duration)))
	}

	fmt.Fprintf(p.out, "\n--- Run Summary ---\n")
	fmt.Fprintf(p.out, "%s%s   %s%s   %s\n",
		ui.Colorize(theme.Bold, "Run"), padRight("", maxNameLen-len("Run")),
		ui.Colorize(theme.Bold, "Duration"), padRight("", maxDurationLen-len("Duration")),
		ui.Colorize(theme.Bold, "Status"))

	for _, res := range results {
		status := ui.Colorize(theme.Success, "OK")
		if res.Err != nil {
			status = ui.Colorize(theme.Error, fmt.Sprintf("FAILED (%v)", res.Err))
		}
		duration := FormatDuration(res.Duration)
		fmt.Fprintf(p.out, "%s%s   %s%s   %s\n",
			ui.Colorize(theme.Primary, res.Name), padRight("", maxNameLen-len(res.Name)),
			ui.Colorize(theme.Dim, duration), padRight("", maxDurationLen-len(duration)),
			status)
	}
}

// FormatDuration formats a run duration, using "< 1µs" for zero.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// padRight returns s followed by length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}
