// Package postsapi is the comments service's client for the posts service.
package postsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"blog-go-template/internal/comments"
	"blog-go-template/internal/platform/httpclient"
)

// Client looks posts up over HTTP.
type Client struct {
	client  *httpclient.Client
	baseURL string
	timeout time.Duration
}

var _ comments.PostService = (*Client)(nil)

// New creates a client for the posts service at baseURL.
func New(c *httpclient.Client, baseURL string) *Client {
	return &Client{client: c, baseURL: strings.TrimRight(baseURL, "/"), timeout: 10 * time.Second}
}

// GetByGuid fetches the post with guid. Any non-2xx answer yields nil
// without error; transport and decoding failures are errors.
func (c *Client) GetByGuid(ctx context.Context, guid uuid.UUID) (*comments.PostDTO, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Get(ctx, c.baseURL+"/api/v1/posts/"+guid.String())
	if err != nil {
		return nil, fmt.Errorf("postsapi: get %s: %w", guid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var post comments.PostDTO
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, fmt.Errorf("postsapi: decode post %s: %w", guid, err)
	}
	return &post, nil
}
