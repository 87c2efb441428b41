//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

package blog

import "context"

// Service performs the blocking fetches. Each method is idempotent and free of
// side effects. Implementations must be safe for concurrent use.
type Service interface {
	// GetPost fetches the post with the given id.
	GetPost(ctx context.Context, id int) (Post, error)
	// GetUser fetches the author with the given id.
	GetUser(ctx context.Context, id int) (Author, error)
	// GetPostsByUser fetches every post written by the author with the given
	// id, in server order.
	GetPostsByUser(ctx context.Context, id int) ([]Post, error)
}
