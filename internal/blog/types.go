package blog

// Post is a blog entry.
type Post struct {
	ID       int    `json:"id"`
	AuthorID int    `json:"userId"`
	Title    string `json:"title"`
}

// Author is the user who wrote a post.
type Author struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Resource names used in metrics labels and span attributes.
const (
	ResourcePost      = "post"
	ResourceUser      = "user"
	ResourceUserPosts = "user_posts"
)
