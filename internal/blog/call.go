package blog

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/agbru/postchain/internal/dispatch"
	apperrors "github.com/agbru/postchain/internal/errors"
)

// ErrAlreadyExecuted is returned when a Call is executed or enqueued twice.
var ErrAlreadyExecuted = errors.New("blog: call already executed")

// Response is the outcome of a call that reached the server. A nil Body means
// the server answered successfully but sent no payload.
type Response[T any] struct {
	Body *T
}

// Callback receives the outcome of an enqueued call. Exactly one of the two
// methods is invoked, once.
type Callback[T any] interface {
	OnResponse(resp Response[T])
	OnFailure(err error)
}

// CallbackFuncs adapts a pair of functions to Callback. Nil functions are
// skipped.
type CallbackFuncs[T any] struct {
	Response func(Response[T])
	Failure  func(error)
}

// OnResponse implements Callback.
func (f CallbackFuncs[T]) OnResponse(resp Response[T]) {
	if f.Response != nil {
		f.Response(resp)
	}
}

// OnFailure implements Callback.
func (f CallbackFuncs[T]) OnFailure(err error) {
	if f.Failure != nil {
		f.Failure(err)
	}
}

// Call is a single pending request. It can be executed or enqueued once.
type Call[T any] struct {
	fetch     func(ctx context.Context) (T, error)
	callbacks dispatch.Executor
	executed  atomic.Bool
}

// Execute performs the request on the calling goroutine.
func (c *Call[T]) Execute(ctx context.Context) (Response[T], error) {
	if !c.executed.CompareAndSwap(false, true) {
		return Response[T]{}, ErrAlreadyExecuted
	}
	return c.do(ctx)
}

// Enqueue performs the request on its own goroutine and delivers the outcome
// to cb on the callback executor.
func (c *Call[T]) Enqueue(cb Callback[T]) {
	if !c.executed.CompareAndSwap(false, true) {
		c.callbacks.Execute(func() { cb.OnFailure(ErrAlreadyExecuted) })
		return
	}
	go func() {
		resp, err := c.do(context.Background())
		c.callbacks.Execute(func() {
			if err != nil {
				cb.OnFailure(err)
				return
			}
			cb.OnResponse(resp)
		})
	}()
}

// IsExecuted reports whether the call has been executed or enqueued.
func (c *Call[T]) IsExecuted() bool { return c.executed.Load() }

func (c *Call[T]) do(ctx context.Context) (Response[T], error) {
	v, err := c.fetch(ctx)
	if err != nil {
		var empty apperrors.EmptyBodyError
		if errors.As(err, &empty) {
			return Response[T]{}, nil
		}
		return Response[T]{}, err
	}
	return Response[T]{Body: &v}, nil
}

// CallService builds Calls over a Service.
type CallService struct {
	svc       Service
	callbacks dispatch.Executor
}

// NewCallService returns a CallService whose callbacks run on callbacks.
func NewCallService(svc Service, callbacks dispatch.Executor) *CallService {
	return &CallService{svc: svc, callbacks: callbacks}
}

// Post returns a call fetching the post with the given id.
func (c *CallService) Post(id int) *Call[Post] {
	return newCall(c, func(ctx context.Context) (Post, error) { return c.svc.GetPost(ctx, id) })
}

// User returns a call fetching the author with the given id.
func (c *CallService) User(id int) *Call[Author] {
	return newCall(c, func(ctx context.Context) (Author, error) { return c.svc.GetUser(ctx, id) })
}

// PostsByUser returns a call fetching every post of the given author.
func (c *CallService) PostsByUser(id int) *Call[[]Post] {
	return newCall(c, func(ctx context.Context) ([]Post, error) { return c.svc.GetPostsByUser(ctx, id) })
}

func newCall[T any](c *CallService, fetch func(ctx context.Context) (T, error)) *Call[T] {
	return &Call[T]{fetch: fetch, callbacks: c.callbacks}
}
