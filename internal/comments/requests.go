package comments

import "github.com/google/uuid"

// CreateComment adds a comment to an existing post.
type CreateComment struct {
	PostGuid uuid.UUID `validate:"required"`
	Text     string    `validate:"notblank,min=3"`
	Visible  bool
}

// UpdateComment replaces every field of a comment, including its post.
type UpdateComment struct {
	Guid     uuid.UUID `validate:"required"`
	PostGuid uuid.UUID `validate:"required"`
	Text     string    `validate:"notblank,min=3"`
	Visible  bool
}

// UpdatePartialComment changes only the fields that are set. PostGuid is
// checked against the posts service but does not move the comment.
type UpdatePartialComment struct {
	Guid     uuid.UUID `validate:"required"`
	PostGuid uuid.UUID `validate:"required"`
	Text     *string   `validate:"omitempty,min=3"`
	Visible  *bool
}

// DeleteComment removes a comment by guid.
type DeleteComment struct {
	Guid uuid.UUID `validate:"required"`
}

// GetCommentByGuid fetches one comment.
type GetCommentByGuid struct {
	Guid uuid.UUID `validate:"required"`
}

// GetCommentsByPostGuid lists the comments of one post.
type GetCommentsByPostGuid struct {
	PostGuid uuid.UUID `validate:"required"`
}

// Published after the matching command saved its change.
type (
	CommentCreated          struct{ Comment *CommentDTO }
	CommentUpdated          struct{ Comment *CommentDTO }
	CommentUpdatedPartially struct{ Comment *CommentDTO }
	CommentDeleted          struct{ Comment *CommentDTO }
)
