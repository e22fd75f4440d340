// Package rest mounts the posts and comments endpoints on a gin router and
// translates handler results into HTTP answers.
package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blog-go-template/internal/shared"
	"blog-go-template/internal/transport/httpx"
)

// Prefix is the path every API route is mounted under.
const Prefix = "/api/v1"

// serializerErrors is the errors key used when a body cannot be decoded.
const serializerErrors = "serializerErrors"

// reply writes the answer for a pipeline call. A non-nil err never reaches
// this point through the standard behaviors but is still a server error.
func reply[T any](c *gin.Context, r shared.Result[T], err error) {
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	httpx.Respond(c, r, httpx.Identity[T])
}

// bind decodes the JSON or form body into dst. An empty body is accepted and
// left to validation. On failure it answers 400 and returns false.
func bind(c *gin.Context, dst any) bool {
	err := c.ShouldBind(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	badRequest(c, err)
	return false
}

func badRequest(c *gin.Context, err error) {
	httpx.Write(c, httpx.Outcome[struct{}]{
		Kind:   httpx.OutcomeBadRequest,
		Errors: map[string][]string{serializerErrors: {err.Error()}},
	})
}

// pathGuid parses the named route parameter. A malformed guid matches no
// route, so it answers 404.
func pathGuid(c *gin.Context, name string) (uuid.UUID, bool) {
	g, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.Status(http.StatusNotFound)
		return uuid.Nil, false
	}
	return g, true
}

// bodyGuid parses a guid sent in a body. An empty value is the nil guid and
// is reported by validation.
func bodyGuid(c *gin.Context, field, value string) (uuid.UUID, bool) {
	if value == "" {
		return uuid.Nil, true
	}
	g, err := uuid.Parse(value)
	if err != nil {
		badRequest(c, errors.New("'"+field+"' is not a valid guid"))
		return uuid.Nil, false
	}
	return g, true
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
