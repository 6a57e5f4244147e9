package common

// UserCreatedEvent is published on UserCreatedKey after a successful sign-up.
type UserCreatedEvent struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CommentCreatedEvent is published on CommentCreatedKey so the blog owner can be told about a new review.
type CommentCreatedEvent struct {
	OwnerName    string `json:"owner_name"`
	OwnerEmail   string `json:"owner_email"`
	BlogTitle    string `json:"blog_title"`
	BlogSlug     string `json:"blog_slug"`
	CommentTitle string `json:"comment_title"`
	Rating       int    `json:"rating"`
}
