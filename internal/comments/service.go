package comments

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"blog-go-template/internal/pipeline"
	"blog-go-template/internal/shared"
)

// Service exposes every comments operation as a pipeline with the standard
// behaviors. It is safe for concurrent use.
type Service struct {
	create        *pipeline.Pipeline[CreateComment, commentResult]
	update        *pipeline.Pipeline[UpdateComment, commentResult]
	updatePartial *pipeline.Pipeline[UpdatePartialComment, commentResult]
	remove        *pipeline.Pipeline[DeleteComment, commentResult]
	get           *pipeline.Pipeline[GetCommentByGuid, commentResult]
	byPost        *pipeline.Pipeline[GetCommentsByPostGuid, commentsResult]
}

// Deps are the collaborators of the comments handlers.
type Deps struct {
	Repo      Repository
	Posts     PostService
	Validator Validator
	Publisher Publisher
}

// NewService builds the pipelines. metrics may be nil.
func NewService(log *slog.Logger, metrics *pipeline.Metrics, deps Deps) *Service {
	h := &handlers{
		repo:      deps.Repo,
		posts:     deps.Posts,
		validator: deps.Validator,
		publisher: deps.Publisher,
		newGuid:   uuid.New,
	}
	return &Service{
		create:        pipeline.StandardFunc(log, metrics, h.createComment),
		update:        pipeline.StandardFunc(log, metrics, h.updateComment),
		updatePartial: pipeline.StandardFunc(log, metrics, h.updatePartialComment),
		remove:        pipeline.StandardFunc(log, metrics, h.deleteComment),
		get:           pipeline.StandardFunc(log, metrics, h.getCommentByGuid),
		byPost:        pipeline.StandardFunc(log, metrics, h.getCommentsByPostGuid),
	}
}

// CreateComment stores a comment once the posts service confirms its post.
func (s *Service) CreateComment(ctx context.Context, cmd CreateComment) (shared.Result[*CommentDTO], error) {
	return s.create.Send(ctx, cmd)
}

// UpdateComment replaces every field of a comment, moving it when PostGuid changes.
func (s *Service) UpdateComment(ctx context.Context, cmd UpdateComment) (shared.Result[*CommentDTO], error) {
	return s.update.Send(ctx, cmd)
}

// UpdatePartialComment changes only the fields set on cmd.
func (s *Service) UpdatePartialComment(ctx context.Context, cmd UpdatePartialComment) (shared.Result[*CommentDTO], error) {
	return s.updatePartial.Send(ctx, cmd)
}

// DeleteComment removes a comment whose post still exists.
func (s *Service) DeleteComment(ctx context.Context, cmd DeleteComment) (shared.Result[*CommentDTO], error) {
	return s.remove.Send(ctx, cmd)
}

// GetCommentByGuid returns one comment, or a NotFound failure.
func (s *Service) GetCommentByGuid(ctx context.Context, q GetCommentByGuid) (shared.Result[*CommentDTO], error) {
	return s.get.Send(ctx, q)
}

// GetCommentsByPostGuid lists the comments of a post in insertion order.
func (s *Service) GetCommentsByPostGuid(ctx context.Context, q GetCommentsByPostGuid) (shared.Result[[]*CommentDTO], error) {
	return s.byPost.Send(ctx, q)
}
