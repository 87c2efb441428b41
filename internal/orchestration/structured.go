package orchestration

import (
	"context"

	"github.com/agbru/postchain/internal/blog"
	"github.com/agbru/postchain/internal/dispatch"
	"github.com/agbru/postchain/internal/logging"
	"github.com/agbru/postchain/internal/metrics"
)

// StructuredChain runs the chain as one sequential task on the background
// executor. The task switches to the UI executor only to write the result.
type StructuredChain struct {
	client     *blog.Suspending
	ui         dispatch.Executor
	background dispatch.Executor
	sink       Sink
	logger     logging.Logger
	recorder   metrics.Recorder
}

// NewStructuredChain creates a structured orchestrator.
func NewStructuredChain(d Deps) (*StructuredChain, error) {
	d = d.withDefaults()
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &StructuredChain{
		client:     blog.NewSuspending(d.Service, d.IO),
		ui:         d.UI,
		background: d.Background,
		sink:       d.Sink,
		logger:     d.Logger,
		recorder:   d.Recorder,
	}, nil
}

// Name implements Orchestrator.
func (c *StructuredChain) Name() string { return VariantStructured }

// Run implements Orchestrator. The first failing fetch ends the task; the
// failure is logged once here and becomes the job error.
func (c *StructuredChain) Run(ctx context.Context, postID int) *dispatch.Job {
	return dispatch.Launch(ctx, c.background, func(s *dispatch.Scope) error {
		result, err := fetchChain(s, c.client, postID)
		if err != nil {
			c.logger.Error("chain failed", err, failureFields(VariantStructured, err)...)
			c.recorder.ChainCompleted(VariantStructured, outcomeFailure)
			return err
		}

		_, err = dispatch.WithContext(s, c.ui, func() (struct{}, error) {
			c.sink.Show(result.String())
			return struct{}{}, nil
		})
		if err != nil {
			c.logger.Error("chain failed", err, failureFields(VariantStructured, err)...)
		}
		c.recorder.ChainCompleted(VariantStructured, outcomeOf(err))
		return err
	})
}

func outcomeOf(err error) string {
	if err != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}
