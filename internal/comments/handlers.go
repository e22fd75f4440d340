package comments

import (
	"context"

	"github.com/google/uuid"

	"blog-go-template/internal/shared"
)

// Validator checks a request and reports each failed rule as a Validation error.
type Validator interface {
	Check(s any) ([]shared.Error, error)
}

// Publisher delivers notifications to their subscribers.
type Publisher interface {
	Publish(ctx context.Context, n any) error
}

type (
	commentResult  = shared.Result[*CommentDTO]
	commentsResult = shared.Result[[]*CommentDTO]
)

type handlers struct {
	repo      Repository
	posts     PostService
	validator Validator
	publisher Publisher
	newGuid   func() uuid.UUID
}

// validate returns a failed result when req breaks a rule.
func validate[T any](v Validator, req any) (shared.Result[T], bool, error) {
	errs, err := v.Check(req)
	if err != nil {
		return shared.Result[T]{}, false, shared.Wrapf(err, "validate %T", req)
	}
	if len(errs) > 0 {
		return shared.Fail[T](errs...), false, nil
	}
	return shared.Result[T]{}, true, nil
}

// postExists reports whether the posts service knows guid.
func (h *handlers) postExists(ctx context.Context, guid uuid.UUID) (bool, error) {
	post, err := h.posts.GetByGuid(ctx, guid)
	if err != nil {
		return false, shared.Wrapf(err, "get post %s", guid)
	}
	return post != nil, nil
}

func (h *handlers) createComment(ctx context.Context, cmd CreateComment) (commentResult, error) {
	if r, ok, err := validate[*CommentDTO](h.validator, cmd); !ok {
		return r, err
	}

	ok, err := h.postExists(ctx, cmd.PostGuid)
	if err != nil {
		return commentResult{}, err
	}
	if !ok {
		return shared.Fail[*CommentDTO](shared.ServiceError()), nil
	}

	c, err := NewComment(h.newGuid(), cmd.PostGuid, cmd.Text, cmd.Visible)
	if err != nil {
		return commentResult{}, err
	}

	saved, err := h.repo.Create(ctx, c)
	if err != nil {
		return commentResult{}, shared.Wrap(err, "create comment")
	}
	if !saved {
		return shared.Fail[*CommentDTO](shared.SaveError()), nil
	}
	return h.publish(ctx, c, func(dto *CommentDTO) any { return CommentCreated{Comment: dto} })
}

func (h *handlers) updateComment(ctx context.Context, cmd UpdateComment) (commentResult, error) {
	if r, ok, err := validate[*CommentDTO](h.validator, cmd); !ok {
		return r, err
	}

	c, err := h.repo.GetByGuid(ctx, cmd.Guid)
	if err != nil {
		return commentResult{}, shared.Wrapf(err, "get comment %s", cmd.Guid)
	}
	if c == nil {
		return shared.Fail[*CommentDTO](shared.NotFoundError()), nil
	}

	ok, err := h.postExists(ctx, cmd.PostGuid)
	if err != nil {
		return commentResult{}, err
	}
	if !ok {
		return shared.Fail[*CommentDTO](shared.ServiceError()), nil
	}

	c.PostGuid, c.Text, c.Visible = cmd.PostGuid, cmd.Text, cmd.Visible
	return h.update(ctx, c, func(dto *CommentDTO) any { return CommentUpdated{Comment: dto} })
}

func (h *handlers) updatePartialComment(ctx context.Context, cmd UpdatePartialComment) (commentResult, error) {
	if r, ok, err := validate[*CommentDTO](h.validator, cmd); !ok {
		return r, err
	}

	c, err := h.repo.GetByGuid(ctx, cmd.Guid)
	if err != nil {
		return commentResult{}, shared.Wrapf(err, "get comment %s", cmd.Guid)
	}
	if c == nil {
		return shared.Fail[*CommentDTO](shared.NotFoundError()), nil
	}

	ok, err := h.postExists(ctx, cmd.PostGuid)
	if err != nil {
		return commentResult{}, err
	}
	if !ok {
		return shared.Fail[*CommentDTO](shared.ServiceError()), nil
	}

	if cmd.Text != nil {
		c.Text = *cmd.Text
	}
	if cmd.Visible != nil {
		c.Visible = *cmd.Visible
	}
	return h.update(ctx, c, func(dto *CommentDTO) any { return CommentUpdatedPartially{Comment: dto} })
}

func (h *handlers) update(ctx context.Context, c *Comment, notification func(*CommentDTO) any) (commentResult, error) {
	if err := c.check(); err != nil {
		return commentResult{}, err
	}

	saved, err := h.repo.Update(ctx, c)
	if err != nil {
		return commentResult{}, shared.Wrapf(err, "update comment %s", c.Guid)
	}
	if !saved {
		return shared.Fail[*CommentDTO](shared.SaveError()), nil
	}
	return h.publish(ctx, c, notification)
}

func (h *handlers) deleteComment(ctx context.Context, cmd DeleteComment) (commentResult, error) {
	if r, ok, err := validate[*CommentDTO](h.validator, cmd); !ok {
		return r, err
	}

	c, err := h.repo.GetByGuid(ctx, cmd.Guid)
	if err != nil {
		return commentResult{}, shared.Wrapf(err, "get comment %s", cmd.Guid)
	}
	if c == nil {
		return shared.Fail[*CommentDTO](shared.NotFoundError()), nil
	}

	ok, err := h.postExists(ctx, c.PostGuid)
	if err != nil {
		return commentResult{}, err
	}
	if !ok {
		return shared.Fail[*CommentDTO](shared.ServiceError()), nil
	}

	deleted, err := h.repo.Delete(ctx, c)
	if err != nil {
		return commentResult{}, shared.Wrapf(err, "delete comment %s", c.Guid)
	}
	if !deleted {
		return shared.Fail[*CommentDTO](shared.SaveError()), nil
	}
	return h.publish(ctx, c, func(dto *CommentDTO) any { return CommentDeleted{Comment: dto} })
}

func (h *handlers) publish(ctx context.Context, c *Comment, notification func(*CommentDTO) any) (commentResult, error) {
	dto := ToDTO(c)
	if err := h.publisher.Publish(ctx, notification(dto)); err != nil {
		return commentResult{}, err
	}
	return shared.Ok(dto), nil
}

func (h *handlers) getCommentByGuid(ctx context.Context, q GetCommentByGuid) (commentResult, error) {
	if r, ok, err := validate[*CommentDTO](h.validator, q); !ok {
		return r, err
	}

	c, err := h.repo.GetByGuid(ctx, q.Guid)
	if err != nil {
		return commentResult{}, shared.Wrapf(err, "get comment %s", q.Guid)
	}
	if c == nil {
		return shared.Fail[*CommentDTO](shared.NotFoundError()), nil
	}

	ok, err := h.postExists(ctx, c.PostGuid)
	if err != nil {
		return commentResult{}, err
	}
	if !ok {
		return shared.Fail[*CommentDTO](shared.ServiceError()), nil
	}
	return shared.Ok(ToDTO(c)), nil
}

func (h *handlers) getCommentsByPostGuid(ctx context.Context, q GetCommentsByPostGuid) (commentsResult, error) {
	if r, ok, err := validate[[]*CommentDTO](h.validator, q); !ok {
		return r, err
	}

	ok, err := h.postExists(ctx, q.PostGuid)
	if err != nil {
		return commentsResult{}, err
	}
	if !ok {
		return shared.Fail[[]*CommentDTO](shared.ServiceError()), nil
	}

	list, err := h.repo.GetByPostGuid(ctx, q.PostGuid)
	if err != nil {
		return commentsResult{}, shared.Wrapf(err, "list comments of post %s", q.PostGuid)
	}

	dtos := make([]*CommentDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, ToDTO(&list[i]))
	}
	return shared.Ok(dtos), nil
}
