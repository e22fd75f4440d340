package posts

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"blog-go-template/internal/pipeline"
	"blog-go-template/internal/shared"
)

// Service exposes every posts operation as a pipeline with the standard
// behaviors. It is safe for concurrent use.
type Service struct {
	create        *pipeline.Pipeline[CreatePost, postResult]
	update        *pipeline.Pipeline[UpdatePost, postResult]
	updatePartial *pipeline.Pipeline[UpdatePartialPost, postResult]
	remove        *pipeline.Pipeline[DeletePost, postResult]
	get           *pipeline.Pipeline[GetPostByGuid, postResult]
	list          *pipeline.Pipeline[GetPosts, postsResult]
}

// NewService builds the pipelines. metrics may be nil.
func NewService(log *slog.Logger, metrics *pipeline.Metrics, repo Repository, v Validator, pub Publisher) *Service {
	h := &handlers{repo: repo, validator: v, publisher: pub, newGuid: uuid.New}
	return &Service{
		create:        pipeline.StandardFunc(log, metrics, h.createPost),
		update:        pipeline.StandardFunc(log, metrics, h.updatePost),
		updatePartial: pipeline.StandardFunc(log, metrics, h.updatePartialPost),
		remove:        pipeline.StandardFunc(log, metrics, h.deletePost),
		get:           pipeline.StandardFunc(log, metrics, h.getPostByGuid),
		list:          pipeline.StandardFunc(log, metrics, h.getPosts),
	}
}

// CreatePost stores a new post under a fresh guid and publishes PostCreated.
func (s *Service) CreatePost(ctx context.Context, cmd CreatePost) (shared.Result[*PostDTO], error) {
	return s.create.Send(ctx, cmd)
}

// UpdatePost replaces every field of an existing post.
func (s *Service) UpdatePost(ctx context.Context, cmd UpdatePost) (shared.Result[*PostDTO], error) {
	return s.update.Send(ctx, cmd)
}

// UpdatePartialPost changes only the fields set on cmd.
func (s *Service) UpdatePartialPost(ctx context.Context, cmd UpdatePartialPost) (shared.Result[*PostDTO], error) {
	return s.updatePartial.Send(ctx, cmd)
}

// DeletePost removes a post and answers with its last state.
func (s *Service) DeletePost(ctx context.Context, cmd DeletePost) (shared.Result[*PostDTO], error) {
	return s.remove.Send(ctx, cmd)
}

// GetPostByGuid returns one post, or a NotFound failure.
func (s *Service) GetPostByGuid(ctx context.Context, q GetPostByGuid) (shared.Result[*PostDTO], error) {
	return s.get.Send(ctx, q)
}

// GetPosts returns every post in insertion order. The list is never nil.
func (s *Service) GetPosts(ctx context.Context, q GetPosts) (shared.Result[[]*PostDTO], error) {
	return s.list.Send(ctx, q)
}
