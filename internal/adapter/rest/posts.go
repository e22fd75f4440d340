package rest

import (
	"context"

	"github.com/gin-gonic/gin"

	"blog-go-template/internal/posts"
	"blog-go-template/internal/shared"
)

// PostsAPI is the posts service as seen by the HTTP layer.
type PostsAPI interface {
	CreatePost(ctx context.Context, cmd posts.CreatePost) (shared.Result[*posts.PostDTO], error)
	UpdatePost(ctx context.Context, cmd posts.UpdatePost) (shared.Result[*posts.PostDTO], error)
	UpdatePartialPost(ctx context.Context, cmd posts.UpdatePartialPost) (shared.Result[*posts.PostDTO], error)
	DeletePost(ctx context.Context, cmd posts.DeletePost) (shared.Result[*posts.PostDTO], error)
	GetPostByGuid(ctx context.Context, q posts.GetPostByGuid) (shared.Result[*posts.PostDTO], error)
	GetPosts(ctx context.Context, q posts.GetPosts) (shared.Result[[]*posts.PostDTO], error)
}

type postBody struct {
	Title   *string `json:"title" form:"title"`
	Text    *string `json:"text" form:"text"`
	Visible *bool   `json:"visible" form:"visible"`
}

type postsHandler struct {
	svc PostsAPI
}

// RegisterPosts mounts the posts endpoints under Prefix.
func RegisterPosts(r gin.IRouter, svc PostsAPI) {
	h := postsHandler{svc: svc}
	g := r.Group(Prefix + "/posts")
	g.GET("", h.list)
	g.GET("/:guid", h.get)
	g.POST("", h.create)
	g.PUT("/:guid", h.update)
	g.PATCH("/:guid", h.updatePartial)
	g.DELETE("/:guid", h.remove)
}

func (h postsHandler) list(c *gin.Context) {
	r, err := h.svc.GetPosts(c.Request.Context(), posts.GetPosts{})
	reply(c, r, err)
}

func (h postsHandler) get(c *gin.Context) {
	guid, ok := pathGuid(c, "guid")
	if !ok {
		return
	}
	r, err := h.svc.GetPostByGuid(c.Request.Context(), posts.GetPostByGuid{Guid: guid})
	reply(c, r, err)
}

func (h postsHandler) create(c *gin.Context) {
	var body postBody
	if !bind(c, &body) {
		return
	}
	r, err := h.svc.CreatePost(c.Request.Context(), posts.CreatePost{
		Title:   deref(body.Title),
		Text:    deref(body.Text),
		Visible: deref(body.Visible),
	})
	reply(c, r, err)
}

func (h postsHandler) update(c *gin.Context) {
	guid, ok := pathGuid(c, "guid")
	if !ok {
		return
	}
	var body postBody
	if !bind(c, &body) {
		return
	}
	r, err := h.svc.UpdatePost(c.Request.Context(), posts.UpdatePost{
		Guid:    guid,
		Title:   deref(body.Title),
		Text:    deref(body.Text),
		Visible: deref(body.Visible),
	})
	reply(c, r, err)
}

func (h postsHandler) updatePartial(c *gin.Context) {
	guid, ok := pathGuid(c, "guid")
	if !ok {
		return
	}
	var body postBody
	if !bind(c, &body) {
		return
	}
	r, err := h.svc.UpdatePartialPost(c.Request.Context(), posts.UpdatePartialPost{
		Guid:    guid,
		Title:   body.Title,
		Text:    body.Text,
		Visible: body.Visible,
	})
	reply(c, r, err)
}

func (h postsHandler) remove(c *gin.Context) {
	guid, ok := pathGuid(c, "guid")
	if !ok {
		return
	}
	r, err := h.svc.DeletePost(c.Request.Context(), posts.DeletePost{Guid: guid})
	reply(c, r, err)
}
