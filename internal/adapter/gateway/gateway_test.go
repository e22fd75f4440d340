package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-go-template/internal/adapter/scheduler"
)

func init() { gin.SetMode(gin.TestMode) }

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// echo answers with the path it received.
func echo(t *testing.T, name string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Upstream", name)
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, r.Method+" "+r.URL.RequestURI())
	}))
	t.Cleanup(srv.Close)
	return srv
}

// serve runs the gateway behind a real listener, so requests reach the
// reverse proxy with a live connection context.
func serve(t *testing.T, routes RouteFile, checker *HealthChecker, m *Metrics, l *ClientLimiter) *httptest.Server {
	t.Helper()
	g, err := New(discard(), routes, checker, m)
	require.NoError(t, err)
	e := gin.New()
	e.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "Healthy") })
	g.Register(e, l)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

type reply struct {
	Code   int
	Header http.Header
	Body   string
}

func do(t *testing.T, srv *httptest.Server, method, path string) reply {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return reply{Code: resp.StatusCode, Header: resp.Header, Body: string(body)}
}

func TestParseRoutes(t *testing.T) {
	f, err := ParseRoutes([]byte(`
routes:
  - prefix: /api/v1/posts/
    upstream: http://posts:5001
  - prefix: /api/v1/comments
    upstream: http://comments:5002
    strip_prefix: true
    methods: [get, post]
`))
	require.NoError(t, err)
	require.Len(t, f.Routes, 2)
	assert.Equal(t, "/api/v1/posts", f.Routes[0].Prefix)
	assert.Equal(t, []string{"GET", "POST"}, f.Routes[1].Methods)
	assert.True(t, f.Routes[1].StripPrefix)
}

func TestParseRoutesRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "routes: []"},
		{"relative prefix", "routes:\n  - prefix: api\n    upstream: http://x"},
		{"bad upstream", "routes:\n  - prefix: /api\n    upstream: not a url"},
		{"bad method", "routes:\n  - prefix: /api\n    upstream: http://x\n    methods: [FETCH]"},
		{"unknown key", "routes:\n  - prefix: /api\n    upstream: http://x\n    timeout: 3"},
		{"duplicate", "routes:\n  - prefix: /a\n    upstream: http://x\n  - prefix: /a/\n    upstream: http://y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRoutes([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadRoutesMissingFile(t *testing.T) {
	_, err := LoadRoutes(t.TempDir() + "/missing.yaml")
	assert.Error(t, err)
}

func TestMatchLongestPrefix(t *testing.T) {
	tb, err := newTable(RouteFile{Routes: []Route{
		{Prefix: "/", Upstream: "http://root"},
		{Prefix: "/api/v1", Upstream: "http://api"},
		{Prefix: "/api/v1/comments", Upstream: "http://comments"},
	}})
	require.NoError(t, err)

	tests := map[string]string{
		"/api/v1/comments/post/1": "http://comments",
		"/api/v1/comments":        "http://comments",
		"/api/v1/commentsX":       "http://api",
		"/api/v1/posts":           "http://api",
		"/other":                  "http://root",
	}
	for path, want := range tests {
		r := tb.match(path)
		require.NotNil(t, r, path)
		assert.Equal(t, want, r.Upstream, path)
	}
}

func TestUpstreamPath(t *testing.T) {
	r := &route{Route: Route{Prefix: "/svc", StripPrefix: true}}
	assert.Equal(t, "/posts/1", r.upstreamPath("/svc/posts/1"))
	assert.Equal(t, "/", r.upstreamPath("/svc"))

	r.StripPrefix = false
	assert.Equal(t, "/svc/posts/1", r.upstreamPath("/svc/posts/1"))
}

func TestProxy(t *testing.T) {
	posts := echo(t, "posts")
	comments := echo(t, "comments")
	routes := RouteFile{Routes: []Route{
		{Prefix: "/api/v1/posts", Upstream: posts.URL},
		{Prefix: "/c", Upstream: comments.URL + "/api/v1/comments", StripPrefix: true, Methods: []string{"GET"}},
	}}
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	srv := serve(t, routes, nil, m, nil)

	w := do(t, srv, http.MethodPost, "/api/v1/posts?x=1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "posts", w.Header.Get("X-Upstream"))
	assert.Equal(t, "POST /api/v1/posts?x=1", w.Body)

	w = do(t, srv, http.MethodGet, "/c/post/42")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "GET /api/v1/comments/post/42", w.Body)

	w = do(t, srv, http.MethodDelete, "/c/42")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = do(t, srv, http.MethodGet, "/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodGet, "/health")
	assert.Equal(t, "Healthy", w.Body)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.Requests.WithLabelValues("/api/v1/posts", "200")) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/c", "405")))
}

func TestProxyUnreachableUpstream(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	srv := serve(t, RouteFile{Routes: []Route{{Prefix: "/api", Upstream: dead.URL}}}, nil, nil, nil)

	w := do(t, srv, http.MethodGet, "/api/x")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

type getterFunc func(ctx context.Context, url string) (*http.Response, error)

func (f getterFunc) Get(ctx context.Context, url string) (*http.Response, error) { return f(ctx, url) }

func TestHealthCheckerMarksDownAndRecovers(t *testing.T) {
	upstream := echo(t, "posts")
	var failing atomic.Bool
	var checked atomic.Value
	client := getterFunc(func(ctx context.Context, url string) (*http.Response, error) {
		checked.Store(url)
		if failing.Load() {
			return nil, errors.New("connection refused")
		}
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(""))}, nil
	})
	routes := RouteFile{Routes: []Route{{Prefix: "/api", Upstream: upstream.URL}}}
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	p := NewHealthChecker(client, discard(), routes, m.UpstreamUp)
	srv := serve(t, routes, p, m, nil)

	assert.True(t, p.Up(upstream.URL))
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/x").Code)

	failing.Store(true)
	require.NoError(t, p.CheckAll(context.Background()))
	assert.Equal(t, upstream.URL+"/health", checked.Load())
	assert.False(t, p.Up(upstream.URL))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.UpstreamUp.WithLabelValues(upstream.URL)))
	assert.Equal(t, http.StatusServiceUnavailable, do(t, srv, http.MethodGet, "/api/x").Code)

	failing.Store(false)
	require.NoError(t, p.CheckAll(context.Background()))
	assert.True(t, p.Up(upstream.URL))
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/x").Code)
}

func TestHealthCheckerIgnoresCanceledCheck(t *testing.T) {
	client := getterFunc(func(ctx context.Context, url string) (*http.Response, error) {
		return nil, ctx.Err()
	})
	p := NewHealthChecker(client, discard(), RouteFile{Routes: []Route{{Prefix: "/a", Upstream: "http://a"}}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.CheckAll(ctx), context.Canceled)
	assert.True(t, p.Up("http://a"))
}

func TestHealthCheckerSchedule(t *testing.T) {
	var calls atomic.Int64
	client := getterFunc(func(ctx context.Context, url string) (*http.Response, error) {
		calls.Add(1)
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil
	})
	p := NewHealthChecker(client, discard(), RouteFile{Routes: []Route{{Prefix: "/a", Upstream: "http://a"}}}, nil)

	s := scheduler.New(scheduler.Config{Logger: discard()})
	require.NoError(t, p.Schedule(s, "@every 1s", time.Second))
	assert.Error(t, p.Schedule(s, "bogus", time.Second))

	s.Start()
	defer func() { _ = s.Stop(context.Background()) }()
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestClientLimiter(t *testing.T) {
	assert.Nil(t, NewClientLimiter(0, 1, 0))
	var nilLimiter *ClientLimiter
	assert.True(t, nilLimiter.Allow("x", time.Now()))

	now := time.Unix(1000, 0)
	l := NewClientLimiter(1, 2, time.Minute)
	assert.True(t, l.Allow("a", now))
	assert.True(t, l.Allow("a", now))
	assert.False(t, l.Allow("a", now))
	assert.True(t, l.Allow("b", now), "buckets are per client")
	assert.True(t, l.Allow("a", now.Add(time.Second)), "tokens refill")
	assert.True(t, l.Allow("  ", now), "blank keys are not limited")
	assert.Equal(t, 2, l.Len())
}

func TestClientLimiterEvictsIdle(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewClientLimiter(1000, 1000, time.Minute)
	l.Allow("idle", now)
	later := now.Add(2 * time.Minute)
	for i := 0; i < 511; i++ {
		l.Allow("busy", later)
	}
	assert.Equal(t, 1, l.Len())
}

func TestLimiterMiddleware(t *testing.T) {
	upstream := echo(t, "posts")
	l := NewClientLimiter(0.5, 1, time.Minute)
	srv := serve(t, RouteFile{Routes: []Route{{Prefix: "/api", Upstream: upstream.URL}}}, nil, nil, l)

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/x").Code)
	w := do(t, srv, http.MethodGet, "/api/x")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header.Get("Retry-After"))
}
