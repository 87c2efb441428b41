package orchestration

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/agbru/postchain/internal/blog"
	"github.com/agbru/postchain/internal/dispatch"
	apperrors "github.com/agbru/postchain/internal/errors"
	"github.com/agbru/postchain/internal/logging"
	"github.com/agbru/postchain/internal/metrics"
)

// States of a callback chain.
const (
	StateIdle                = "idle"
	StateAwaitingPost        = "awaiting_post"
	StateAwaitingAuthor      = "awaiting_author"
	StateAwaitingAuthorPosts = "awaiting_author_posts"
	StateDone                = "done"
	StateFailed              = "failed"
)

const (
	eventStart         = "start"
	eventPostFetched   = "post_fetched"
	eventAuthorFetched = "author_fetched"
	eventPostsFetched  = "posts_fetched"
	eventFail          = "fail"
)

var chainEvents = fsm.Events{
	{Name: eventStart, Src: []string{StateIdle}, Dst: StateAwaitingPost},
	{Name: eventPostFetched, Src: []string{StateAwaitingPost}, Dst: StateAwaitingAuthor},
	{Name: eventAuthorFetched, Src: []string{StateAwaitingAuthor}, Dst: StateAwaitingAuthorPosts},
	{Name: eventPostsFetched, Src: []string{StateAwaitingAuthorPosts}, Dst: StateDone},
	{Name: eventFail, Src: []string{StateAwaitingPost, StateAwaitingAuthor, StateAwaitingAuthorPosts}, Dst: StateFailed},
}

// CallbackChain runs the chain with nested callbacks: each fetch is issued
// from inside the success handler of the previous one. Callbacks are delivered
// on the UI executor. Each run owns a state machine
// idle → awaiting_post → awaiting_author → awaiting_author_posts → done | failed.
type CallbackChain struct {
	calls    *blog.CallService
	ui       dispatch.Executor
	sink     Sink
	logger   logging.Logger
	recorder metrics.Recorder

	// onTransition observes state changes. Set by tests.
	onTransition func(from, to string)
}

// NewCallbackChain creates a callback-driven orchestrator.
func NewCallbackChain(d Deps) (*CallbackChain, error) {
	d = d.withDefaults()
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &CallbackChain{
		calls:    blog.NewCallService(d.Service, d.UI),
		ui:       d.UI,
		sink:     d.Sink,
		logger:   d.Logger,
		recorder: d.Recorder,
	}, nil
}

// Name implements Orchestrator.
func (c *CallbackChain) Name() string { return VariantCallback }

// Run implements Orchestrator. A failed step is reported by its own handler
// only; nothing further is issued and the sink is not written.
func (c *CallbackChain) Run(ctx context.Context, postID int) *dispatch.Job {
	job, complete := dispatch.NewJob()
	r := &callbackRun{chain: c, ctx: ctx, complete: complete}
	r.machine = fsm.NewFSM(StateIdle, chainEvents, fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			c.logger.Debug("chain state changed",
				logging.String("variant", VariantCallback),
				logging.String("from", e.Src),
				logging.String("to", e.Dst),
			)
			if c.onTransition != nil {
				c.onTransition(e.Src, e.Dst)
			}
		},
	})

	r.fire(eventStart)
	c.calls.Post(postID).Enqueue(blog.CallbackFuncs[blog.Post]{
		Response: func(resp blog.Response[blog.Post]) {
			if resp.Body == nil {
				r.fail(StepPost, apperrors.EmptyBodyError{Op: "GetPost"})
				return
			}
			post := *resp.Body
			r.fire(eventPostFetched)

			c.calls.User(post.AuthorID).Enqueue(blog.CallbackFuncs[blog.Author]{
				Response: func(resp blog.Response[blog.Author]) {
					if resp.Body == nil {
						r.fail(StepAuthor, apperrors.EmptyBodyError{Op: "GetUser"})
						return
					}
					author := *resp.Body
					r.fire(eventAuthorFetched)

					c.calls.PostsByUser(author.ID).Enqueue(blog.CallbackFuncs[[]blog.Post]{
						Response: func(resp blog.Response[[]blog.Post]) {
							if resp.Body == nil {
								r.fail(StepAuthorPosts, apperrors.EmptyBodyError{Op: "GetPostsByUser"})
								return
							}
							r.fire(eventPostsFetched)
							r.succeed(NewChainResult(author, *resp.Body))
						},
						Failure: func(err error) { r.fail(StepAuthorPosts, err) },
					})
				},
				Failure: func(err error) { r.fail(StepAuthor, err) },
			})
		},
		Failure: func(err error) { r.fail(StepPost, err) },
	})
	return job
}

// callbackRun is the state of one Run call.
type callbackRun struct {
	chain    *CallbackChain
	ctx      context.Context
	machine  *fsm.FSM
	complete func(error)
}

func (r *callbackRun) fire(event string) {
	if err := r.machine.Event(r.ctx, event); err != nil {
		r.chain.logger.Debug("chain transition rejected",
			logging.String("variant", VariantCallback),
			logging.String("event", event),
			logging.Err(err),
		)
	}
}

func (r *callbackRun) succeed(result ChainResult) {
	r.chain.ui.Execute(func() {
		r.chain.sink.Show(result.String())
		r.chain.recorder.ChainCompleted(VariantCallback, outcomeSuccess)
		r.complete(nil)
	})
}

func (r *callbackRun) fail(step string, err error) {
	r.fire(eventFail)
	stepErr := &StepError{Step: step, Err: err}
	r.chain.logger.Error("chain step failed", err, failureFields(VariantCallback, stepErr)...)
	r.chain.recorder.ChainCompleted(VariantCallback, outcomeFailure)
	r.complete(stepErr)
}
