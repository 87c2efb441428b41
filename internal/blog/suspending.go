package blog

import "github.com/agbru/postchain/internal/dispatch"

// Suspending exposes the fetches as suspension points of a dispatch task.
// Every request runs on the I/O executor while the calling task is parked,
// so the methods may be called from a task confined to the UI loop.
type Suspending struct {
	svc Service
	io  dispatch.Executor
}

// NewSuspending returns a Suspending client running requests on io.
func NewSuspending(svc Service, io dispatch.Executor) *Suspending {
	return &Suspending{svc: svc, io: io}
}

// GetPost fetches a post.
func (c *Suspending) GetPost(s *dispatch.Scope, id int) (Post, error) {
	return dispatch.WithContext(s, c.io, func() (Post, error) {
		return c.svc.GetPost(s.Context(), id)
	})
}

// GetUser fetches an author.
func (c *Suspending) GetUser(s *dispatch.Scope, id int) (Author, error) {
	return dispatch.WithContext(s, c.io, func() (Author, error) {
		return c.svc.GetUser(s.Context(), id)
	})
}

// GetPostsByUser fetches all posts of an author.
func (c *Suspending) GetPostsByUser(s *dispatch.Scope, id int) ([]Post, error) {
	return dispatch.WithContext(s, c.io, func() ([]Post, error) {
		return c.svc.GetPostsByUser(s.Context(), id)
	})
}
