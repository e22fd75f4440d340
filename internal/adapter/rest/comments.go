package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-go-template/internal/comments"
	"blog-go-template/internal/shared"
)

// CommentsAPI is the comments service as seen by the HTTP layer.
type CommentsAPI interface {
	CreateComment(ctx context.Context, cmd comments.CreateComment) (shared.Result[*comments.CommentDTO], error)
	UpdateComment(ctx context.Context, cmd comments.UpdateComment) (shared.Result[*comments.CommentDTO], error)
	UpdatePartialComment(ctx context.Context, cmd comments.UpdatePartialComment) (shared.Result[*comments.CommentDTO], error)
	DeleteComment(ctx context.Context, cmd comments.DeleteComment) (shared.Result[*comments.CommentDTO], error)
	GetCommentByGuid(ctx context.Context, q comments.GetCommentByGuid) (shared.Result[*comments.CommentDTO], error)
	GetCommentsByPostGuid(ctx context.Context, q comments.GetCommentsByPostGuid) (shared.Result[[]*comments.CommentDTO], error)
}

type commentBody struct {
	PostGuid string  `json:"postGuid" form:"postGuid"`
	Text     *string `json:"text" form:"text"`
	Visible  *bool   `json:"visible" form:"visible"`
}

type commentsHandler struct {
	svc CommentsAPI
}

// RegisterComments mounts the comments endpoints under Prefix.
func RegisterComments(r gin.IRouter, svc CommentsAPI) {
	h := commentsHandler{svc: svc}
	g := r.Group(Prefix + "/comments")
	g.GET("", h.list)
	g.GET("/:guid", h.get)
	g.GET("/post/:postGuid", h.byPost)
	g.POST("", h.create)
	g.PUT("/:guid", h.update)
	g.PATCH("/:guid", h.updatePartial)
	g.DELETE("/:guid", h.remove)
}

// list has no query behind it; comments are listed per post.
func (h commentsHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, []*comments.CommentDTO{})
}

func (h commentsHandler) get(c *gin.Context) {
	guid, ok := pathGuid(c, "guid")
	if !ok {
		return
	}
	r, err := h.svc.GetCommentByGuid(c.Request.Context(), comments.GetCommentByGuid{Guid: guid})
	reply(c, r, err)
}

func (h commentsHandler) byPost(c *gin.Context) {
	postGuid, ok := pathGuid(c, "postGuid")
	if !ok {
		return
	}
	r, err := h.svc.GetCommentsByPostGuid(c.Request.Context(), comments.GetCommentsByPostGuid{PostGuid: postGuid})
	reply(c, r, err)
}

func (h commentsHandler) create(c *gin.Context) {
	var body commentBody
	if !bind(c, &body) {
		return
	}
	postGuid, ok := bodyGuid(c, "postGuid", body.PostGuid)
	if !ok {
		return
	}
	r, err := h.svc.CreateComment(c.Request.Context(), comments.CreateComment{
		PostGuid: postGuid,
		Text:     deref(body.Text),
		Visible:  deref(body.Visible),
	})
	reply(c, r, err)
}

func (h commentsHandler) update(c *gin.Context) {
	guid, ok := pathGuid(c, "guid")
	if !ok {
		return
	}
	var body commentBody
	if !bind(c, &body) {
		return
	}
	postGuid, ok := bodyGuid(c, "postGuid", body.PostGuid)
	if !ok {
		return
	}
	r, err := h.svc.UpdateComment(c.Request.Context(), comments.UpdateComment{
		Guid:     guid,
		PostGuid: postGuid,
		Text:     deref(body.Text),
		Visible:  deref(body.Visible),
	})
	reply(c, r, err)
}

func (h commentsHandler) updatePartial(c *gin.Context) {
	guid, ok := pathGuid(c, "guid")
	if !ok {
		return
	}
	var body commentBody
	if !bind(c, &body) {
		return
	}
	postGuid, ok := bodyGuid(c, "postGuid", body.PostGuid)
	if !ok {
		return
	}
	r, err := h.svc.UpdatePartialComment(c.Request.Context(), comments.UpdatePartialComment{
		Guid:     guid,
		PostGuid: postGuid,
		Text:     body.Text,
		Visible:  body.Visible,
	})
	reply(c, r, err)
}

func (h commentsHandler) remove(c *gin.Context) {
	guid, ok := pathGuid(c, "guid")
	if !ok {
		return
	}
	r, err := h.svc.DeleteComment(c.Request.Context(), comments.DeleteComment{Guid: guid})
	reply(c, r, err)
}
