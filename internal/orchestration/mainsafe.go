package orchestration

import (
	"context"
	"runtime/debug"

	"github.com/agbru/postchain/internal/blog"
	"github.com/agbru/postchain/internal/dispatch"
	"github.com/agbru/postchain/internal/logging"
	"github.com/agbru/postchain/internal/metrics"
)

// MainSafeChain runs the chain as one sequential task confined to the UI
// executor. Its fetches go through a suspending client, so the UI executor is
// never blocked, and the result is written without any explicit hop.
type MainSafeChain struct {
	client   *blog.Suspending
	ui       dispatch.Executor
	sink     Sink
	logger   logging.Logger
	recorder metrics.Recorder
}

// NewMainSafeChain creates a main-safe orchestrator.
func NewMainSafeChain(d Deps) (*MainSafeChain, error) {
	d = d.withDefaults()
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &MainSafeChain{
		client:   blog.NewSuspending(d.Service, d.IO),
		ui:       d.UI,
		sink:     d.Sink,
		logger:   d.Logger,
		recorder: d.Recorder,
	}, nil
}

// Name implements Orchestrator.
func (c *MainSafeChain) Name() string { return VariantMainSafe }

// Run implements Orchestrator. One recovery boundary wraps the whole task:
// an error or panic from any step is logged there once and suppresses the
// sink write.
func (c *MainSafeChain) Run(ctx context.Context, postID int) *dispatch.Job {
	return dispatch.Launch(ctx, c.ui, func(s *dispatch.Scope) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &dispatch.PanicError{Value: r, Stack: debug.Stack()}
			}
			if err != nil {
				c.logger.Error("chain failed", err, failureFields(VariantMainSafe, err)...)
			}
			c.recorder.ChainCompleted(VariantMainSafe, outcomeOf(err))
		}()

		result, err := fetchChain(s, c.client, postID)
		if err != nil {
			return err
		}
		c.sink.Show(result.String())
		return nil
	})
}
