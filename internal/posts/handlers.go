package posts

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
	postResult  = shared.Result[*PostDTO]
	postsResult = shared.Result[[]*PostDTO]
)

type handlers struct {
	repo      Repository
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

func (h *handlers) createPost(ctx context.Context, cmd CreatePost) (postResult, error) {
	if r, ok, err := validate[*PostDTO](h.validator, cmd); !ok {
		return r, err
	}

	post, err := NewPost(h.newGuid(), cmd.Title, cmd.Text, cmd.Visible)
	if err != nil {
		return postResult{}, err
	}

	saved, err := h.repo.Create(ctx, post)
	if err != nil {
		return postResult{}, shared.Wrap(err, "create post")
	}
	if !saved {
		return shared.Fail[*PostDTO](shared.SaveError()), nil
	}

	dto := ToDTO(post)
	if err := h.publisher.Publish(ctx, PostCreated{Post: dto}); err != nil {
		return postResult{}, err
	}
	return shared.Ok(dto), nil
}

func (h *handlers) updatePost(ctx context.Context, cmd UpdatePost) (postResult, error) {
	if r, ok, err := validate[*PostDTO](h.validator, cmd); !ok {
		return r, err
	}

	post, err := h.repo.GetByGuid(ctx, cmd.Guid)
	if err != nil {
		return postResult{}, shared.Wrapf(err, "get post %s", cmd.Guid)
	}
	if post == nil {
		return shared.Fail[*PostDTO](shared.NotFoundError()), nil
	}

	post.Title, post.Text, post.Visible = cmd.Title, cmd.Text, cmd.Visible
	return h.save(ctx, post, func(dto *PostDTO) any { return PostUpdated{Post: dto} })
}

func (h *handlers) updatePartialPost(ctx context.Context, cmd UpdatePartialPost) (postResult, error) {
	if r, ok, err := validate[*PostDTO](h.validator, cmd); !ok {
		return r, err
	}

	post, err := h.repo.GetByGuid(ctx, cmd.Guid)
	if err != nil {
		return postResult{}, shared.Wrapf(err, "get post %s", cmd.Guid)
	}
	if post == nil {
		return shared.Fail[*PostDTO](shared.NotFoundError()), nil
	}

	if cmd.Title != nil {
		post.Title = *cmd.Title
	}
	if cmd.Text != nil {
		post.Text = *cmd.Text
	}
	if cmd.Visible != nil {
		post.Visible = *cmd.Visible
	}
	return h.save(ctx, post, func(dto *PostDTO) any { return PostUpdatedPartially{Post: dto} })
}

func (h *handlers) save(ctx context.Context, post *Post, notification func(*PostDTO) any) (postResult, error) {
	if err := post.check(); err != nil {
		return postResult{}, err
	}

	saved, err := h.repo.Update(ctx, post)
	if err != nil {
		return postResult{}, shared.Wrapf(err, "update post %s", post.Guid)
	}
	if !saved {
		return shared.Fail[*PostDTO](shared.SaveError()), nil
	}

	dto := ToDTO(post)
	if err := h.publisher.Publish(ctx, notification(dto)); err != nil {
		return postResult{}, err
	}
	return shared.Ok(dto), nil
}

func (h *handlers) deletePost(ctx context.Context, cmd DeletePost) (postResult, error) {
	if r, ok, err := validate[*PostDTO](h.validator, cmd); !ok {
		return r, err
	}

	post, err := h.repo.GetByGuid(ctx, cmd.Guid)
	if err != nil {
		return postResult{}, shared.Wrapf(err, "get post %s", cmd.Guid)
	}
	if post == nil {
		return shared.Fail[*PostDTO](shared.NotFoundError()), nil
	}

	deleted, err := h.repo.Delete(ctx, post)
	if err != nil {
		return postResult{}, shared.Wrapf(err, "delete post %s", post.Guid)
	}
	if !deleted {
		return shared.Fail[*PostDTO](shared.SaveError()), nil
	}

	dto := ToDTO(post)
	if err := h.publisher.Publish(ctx, PostDeleted{Post: dto}); err != nil {
		return postResult{}, err
	}
	return shared.Ok(dto), nil
}

func (h *handlers) getPostByGuid(ctx context.Context, q GetPostByGuid) (postResult, error) {
	if r, ok, err := validate[*PostDTO](h.validator, q); !ok {
		return r, err
	}

	post, err := h.repo.GetByGuid(ctx, q.Guid)
	if err != nil {
		return postResult{}, shared.Wrapf(err, "get post %s", q.Guid)
	}
	if post == nil {
		return shared.Fail[*PostDTO](shared.NotFoundError()), nil
	}
	return shared.Ok(ToDTO(post)), nil
}

func (h *handlers) getPosts(ctx context.Context, _ GetPosts) (postsResult, error) {
	list, err := h.repo.List(ctx)
	if err != nil {
		return postsResult{}, shared.Wrap(err, "list posts")
	}

	// never nil: an empty list is a 200 with [], not a 204
	dtos := make([]*PostDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, ToDTO(&list[i]))
	}
	return shared.Ok(dtos), nil
}
