// Package comments implements the comments service. Every operation that
// touches a comment first confirms its post exists by asking the posts
// service through PostService.
package comments

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"blog-go-template/internal/shared"
)

// Comment belongs to exactly one post.
type Comment struct {
	Guid     uuid.UUID
	PostGuid uuid.UUID
	Text     string
	Visible  bool
}

// NewComment builds a Comment, rejecting nil guids and blank text.
func NewComment(guid, postGuid uuid.UUID, text string, visible bool) (*Comment, error) {
	c := &Comment{Guid: guid, PostGuid: postGuid, Text: text, Visible: visible}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Comment) check() error {
	if err := shared.Invariant(c.Guid != uuid.Nil, "comment guid is empty"); err != nil {
		return err
	}
	if err := shared.Invariant(c.PostGuid != uuid.Nil, "comment post guid is empty"); err != nil {
		return err
	}
	return shared.Invariant(strings.TrimSpace(c.Text) != "", "comment text is blank")
}

// CommentDTO is the wire form of a Comment.
type CommentDTO struct {
	Guid     uuid.UUID `json:"guid"`
	PostGuid uuid.UUID `json:"postGuid"`
	Text     string    `json:"text"`
	Visible  bool      `json:"visible"`
}

// ToDTO maps c to its wire form.
func ToDTO(c *Comment) *CommentDTO {
	return &CommentDTO{Guid: c.Guid, PostGuid: c.PostGuid, Text: c.Text, Visible: c.Visible}
}

// PostDTO is what the posts service answers for a single post.
type PostDTO struct {
	Guid    uuid.UUID `json:"guid"`
	Title   string    `json:"title"`
	Text    string    `json:"text"`
	Visible bool      `json:"visible"`
}

// PostService looks posts up in the posts service. GetByGuid returns nil
// without error when the posts service does not answer with the post.
type PostService interface {
	GetByGuid(ctx context.Context, guid uuid.UUID) (*PostDTO, error)
}

// Repository stores comments. GetByGuid returns nil without error when the
// comment does not exist. Writes report whether a row changed.
type Repository interface {
	GetByGuid(ctx context.Context, guid uuid.UUID) (*Comment, error)
	GetByPostGuid(ctx context.Context, postGuid uuid.UUID) ([]Comment, error)
	Create(ctx context.Context, c *Comment) (bool, error)
	Update(ctx context.Context, c *Comment) (bool, error)
	Delete(ctx context.Context, c *Comment) (bool, error)
}
