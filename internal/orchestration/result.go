package orchestration

import (
	"fmt"

	"github.com/agbru/postchain/internal/blog"
	"github.com/agbru/postchain/internal/dispatch"
)

// ChainResult is the summary of a successful chain. It is built only once all
// three fetches have succeeded and is never modified afterwards.
type ChainResult struct {
	AuthorName string
	PostCount  int
}

// NewChainResult summarizes author and the posts they wrote.
func NewChainResult(author blog.Author, posts []blog.Post) ChainResult {
	return ChainResult{AuthorName: author.Name, PostCount: len(posts)}
}

// String returns the line shown to the user.
func (r ChainResult) String() string {
	return fmt.Sprintf("User %s made %d posts", r.AuthorName, r.PostCount)
}

// fetchChain is the sequential body shared by the suspending variants.
// An error at any step returns immediately, so later fetches are never issued.
func fetchChain(s *dispatch.Scope, client *blog.Suspending, postID int) (ChainResult, error) {
	post, err := client.GetPost(s, postID)
	if err != nil {
		return ChainResult{}, &StepError{Step: StepPost, Err: err}
	}
	author, err := client.GetUser(s, post.AuthorID)
	if err != nil {
		return ChainResult{}, &StepError{Step: StepAuthor, Err: err}
	}
	posts, err := client.GetPostsByUser(s, author.ID)
	if err != nil {
		return ChainResult{}, &StepError{Step: StepAuthorPosts, Err: err}
	}
	return NewChainResult(author, posts), nil
}
