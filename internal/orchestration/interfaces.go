package orchestration

import (
	"context"
	"errors"
	"fmt"

	"github.com/agbru/postchain/internal/blog"
	"github.com/agbru/postchain/internal/dispatch"
	"github.com/agbru/postchain/internal/logging"
	"github.com/agbru/postchain/internal/metrics"
)

// Sink is the presentation target of a chain. Show is only ever called from
// the UI executor, so implementations need no locking of their own.
type Sink interface {
	Show(text string)
}

// SinkFunc is a function adapter that implements Sink.
type SinkFunc func(text string)

// Show calls the underlying function.
func (f SinkFunc) Show(text string) { f(text) }

// Orchestrator runs the chain once per call to Run.
type Orchestrator interface {
	// Name returns the variant name ("callback", "structured", "mainsafe").
	Name() string
	// Run starts one chain for postID and returns immediately. The returned
	// job completes after the result has been written to the sink, or with
	// the error that stopped the chain.
	Run(ctx context.Context, postID int) *dispatch.Job
}

// Deps holds the collaborators shared by every variant.
type Deps struct {
	// Service performs the blocking fetches.
	Service blog.Service
	// UI is the single-threaded context owning the sink.
	UI dispatch.Executor
	// IO runs the blocking requests of the suspending variants.
	IO dispatch.Executor
	// Background is the home of StructuredChain tasks.
	Background dispatch.Executor
	// Sink receives the summary line.
	Sink Sink
	// Logger defaults to logging.Nop.
	Logger logging.Logger
	// Recorder defaults to metrics.Nop.
	Recorder metrics.Recorder
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	if d.Recorder == nil {
		d.Recorder = metrics.Nop{}
	}
	if d.IO == nil {
		d.IO = d.Background
	}
	if d.Background == nil {
		d.Background = d.IO
	}
	return d
}

func (d Deps) validate() error {
	switch {
	case d.Service == nil:
		return errors.New("orchestration: Service is required")
	case d.UI == nil:
		return errors.New("orchestration: UI executor is required")
	case d.IO == nil:
		return errors.New("orchestration: IO or Background executor is required")
	case d.Sink == nil:
		return errors.New("orchestration: Sink is required")
	}
	return nil
}

// Chain steps, used in StepError and the "step" log field.
const (
	StepPost        = "post"
	StepAuthor      = "author"
	StepAuthorPosts = "author_posts"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// StepError records which fetch stopped a chain.
type StepError struct {
	Step string
	Err  error
}

// Error returns the step followed by the underlying error.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s step: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error { return e.Err }

// FailedStep returns the step recorded in err, or "" if err does not carry one.
func FailedStep(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}

func failureFields(variant string, err error) []logging.Field {
	fields := []logging.Field{logging.String("variant", variant)}
	if step := FailedStep(err); step != "" {
		fields = append(fields, logging.String("step", step))
	}
	return fields
}
