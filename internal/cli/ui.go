//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/postchain/internal/compute"
)

// SpinnerRefreshRate defines the refresh frequency of the busy spinner.
const SpinnerRefreshRate = 120 * time.Millisecond

// Spinner abstracts a terminal spinner so the indicator can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                     { rs.s.Start() }
func (rs *realSpinner) Stop()                      { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], SpinnerRefreshRate, options...)
	return &realSpinner{s}
}

// SpinnerIndicator shows a spinner while at least one run is busy. It counts
// overlapping runs, so the spinner stops only when the last one finishes.
// SetBusy must be called from the UI loop.
type SpinnerIndicator struct {
	spinner Spinner
	label   string
	busy    int
}

var _ compute.Indicator = (*SpinnerIndicator)(nil)

// NewSpinnerIndicator returns an indicator drawing on w. The spinner only
// renders when w is a terminal.
func NewSpinnerIndicator(w io.Writer, label string) *SpinnerIndicator {
	return &SpinnerIndicator{
		spinner: newSpinner(spinner.WithWriter(w), spinner.WithHiddenCursor(true)),
		label:   label,
	}
}

// SetBusy implements compute.Indicator.
func (i *SpinnerIndicator) SetBusy(busy bool) {
	if busy {
		i.busy++
		if i.busy == 1 {
			i.spinner.UpdateSuffix(" " + i.label)
			i.spinner.Start()
		}
		return
	}
	if i.busy == 0 {
		return
	}
	i.busy--
	if i.busy == 0 {
		i.spinner.Stop()
	}
}

// Busy reports whether a run is in progress.
func (i *SpinnerIndicator) Busy() bool { return i.busy > 0 }
