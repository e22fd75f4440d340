package posts

import "github.com/google/uuid"

// CreatePost creates a post with a fresh guid.
type CreatePost struct {
	Title   string `validate:"notblank,min=3"`
	Text    string `validate:"notblank,min=3"`
	Visible bool
}

// UpdatePost replaces every field of a post.
type UpdatePost struct {
	Guid    uuid.UUID `validate:"required"`
	Title   string    `validate:"notblank,min=3"`
	Text    string    `validate:"notblank,min=3"`
	Visible bool
}

// UpdatePartialPost changes only the fields that are set.
type UpdatePartialPost struct {
	Guid    uuid.UUID `validate:"required"`
	Title   *string   `validate:"omitempty,min=3"`
	Text    *string   `validate:"omitempty,min=3"`
	Visible *bool
}

// DeletePost removes a post.
type DeletePost struct {
	Guid uuid.UUID `validate:"required"`
}

// GetPostByGuid fetches one post.
type GetPostByGuid struct {
	Guid uuid.UUID `validate:"required"`
}

// GetPosts lists every post.
type GetPosts struct{}

// Published after the matching command saved its change.
type (
	PostCreated          struct{ Post *PostDTO }
	PostUpdated          struct{ Post *PostDTO }
	PostUpdatedPartially struct{ Post *PostDTO }
	PostDeleted          struct{ Post *PostDTO }
)
