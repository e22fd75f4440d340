// Package posts implements the posts service: the Post entity, its commands
// and queries, and the pipelines that run them.
package posts

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"blog-go-template/internal/shared"
)

// Post is a blog post.
type Post struct {
	Guid    uuid.UUID
	Title   string
	Text    string
	Visible bool
}

// NewPost builds a Post, rejecting a nil guid and blank title or text.
func NewPost(guid uuid.UUID, title, text string, visible bool) (*Post, error) {
	p := &Post{Guid: guid, Title: title, Text: text, Visible: visible}
	if err := p.check(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Post) check() error {
	if err := shared.Invariant(p.Guid != uuid.Nil, "post guid is empty"); err != nil {
		return err
	}
	if err := shared.Invariant(strings.TrimSpace(p.Title) != "", "post title is blank"); err != nil {
		return err
	}
	return shared.Invariant(strings.TrimSpace(p.Text) != "", "post text is blank")
}

// PostDTO is the wire form of a Post.
type PostDTO struct {
	Guid    uuid.UUID `json:"guid"`
	Title   string    `json:"title"`
	Text    string    `json:"text"`
	Visible bool      `json:"visible"`
}

// ToDTO maps p to its wire form.
func ToDTO(p *Post) *PostDTO {
	return &PostDTO{Guid: p.Guid, Title: p.Title, Text: p.Text, Visible: p.Visible}
}

// Repository stores posts. GetByGuid returns nil without error when the post
// does not exist. Writes report whether a row changed.
type Repository interface {
	List(ctx context.Context) ([]Post, error)
	GetByGuid(ctx context.Context, guid uuid.UUID) (*Post, error)
	Create(ctx context.Context, p *Post) (bool, error)
	Update(ctx context.Context, p *Post) (bool, error)
	Delete(ctx context.Context, p *Post) (bool, error)
}
