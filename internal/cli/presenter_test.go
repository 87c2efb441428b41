package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agbru/postchain/internal/ui"
)

func withTheme(t *testing.T, theme ui.Theme) {
	t.Helper()
	original := ui.GetCurrentTheme()
	ui.SetCurrentTheme(theme)
	t.Cleanup(func() { ui.SetCurrentTheme(original) })
}

func TestPresenter_Show(t *testing.T) {
	withTheme(t, ui.NoColorTheme)

	tests := []struct {
		name  string
		quiet bool
		want  string
	}{
		{"decorated", false, "› User Ada made 3 posts\n"},
		{"quiet", true, "User Ada made 3 posts\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := NewPresenter(&buf, tt.quiet)
			p.Show("User Ada made 3 posts")
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
			if p.Last() != "User Ada made 3 posts" || p.Lines() != 1 {
				t.Errorf("Last/Lines = %q/%d", p.Last(), p.Lines())
			}
		})
	}
}

func TestPresenter_LastWriteWins(t *testing.T) {
	withTheme(t, ui.NoColorTheme)
	var buf bytes.Buffer
	p := NewPresenter(&buf, true)
	p.Show("User Ada made 3 posts")
	p.Show("Time taken (ms): 812")

	if p.Last() != "Time taken (ms): 812" {
		t.Errorf("Last = %q", p.Last())
	}
	if p.Lines() != 2 {
		t.Errorf("Lines = %d, want 2", p.Lines())
	}
}

func TestPresenter_PresentSummary(t *testing.T) {
	withTheme(t, ui.NoColorTheme)
	var buf bytes.Buffer
	p := NewPresenter(&buf, false)
	p.PresentSummary([]RunResult{
		{Name: "callback", Duration: 120 * time.Millisecond},
		{Name: "structured", Duration: 0, Err: errors.New("post step: timeout")},
	})

	out := buf.String()
	for _, want := range []string{"Run Summary", "callback", "120ms", "OK", "structured", "< 1µs", "FAILED (post step: timeout)"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary should contain %q, got:\n%s", want, out)
		}
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	header := lines[1]
	if strings.Index(header, "Duration") != strings.Index(lines[2], "120ms") {
		t.Errorf("columns are not aligned:\n%s", out)
	}
}

func TestPresenter_PresentSummaryQuiet(t *testing.T) {
	var buf bytes.Buffer
	NewPresenter(&buf, true).PresentSummary([]RunResult{{Name: "mainsafe"}})
	if buf.Len() != 0 {
		t.Errorf("quiet summary should be empty, got %q", buf.String())
	}
}
