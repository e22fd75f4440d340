package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-go-template/internal/pipeline"
	"blog-go-template/internal/shared"
)

type getPost struct{ ID string }

type logRecord struct {
	Level    string `json:"level"`
	Msg      string `json:"msg"`
	Behavior string `json:"behavior"`
	Request  string `json:"request"`
	Error    string `json:"error"`
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func records(t *testing.T, buf *bytes.Buffer) []logRecord {
	t.Helper()
	var out []logRecord
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var r logRecord
		require.NoError(t, json.Unmarshal([]byte(line), &r))
		out = append(out, r)
	}
	return out
}

func countLevel(recs []logRecord, level string) int {
	n := 0
	for _, r := range recs {
		if r.Level == level {
			n++
		}
	}
	return n
}

func TestSendRunsBehaviorsOutermostFirst(t *testing.T) {
	var trace []string
	mark := func(name string) pipeline.Behavior[getPost, string] {
		return pipeline.BehaviorFunc[getPost, string](func(ctx context.Context, req getPost, next pipeline.Next[string]) (string, error) {
			trace = append(trace, name+">")
			resp, err := next(ctx)
			trace = append(trace, "<"+name)
			return resp, err
		})
	}
	h := pipeline.HandlerFunc[getPost, string](func(ctx context.Context, req getPost) (string, error) {
		trace = append(trace, "handler")
		return "post " + req.ID, nil
	})

	p := pipeline.New(h, mark("a"), mark("b"), mark("c"))
	resp, err := p.Send(context.Background(), getPost{ID: "1"})

	require.NoError(t, err)
	assert.Equal(t, "post 1", resp)
	assert.Equal(t, []string{"a>", "b>", "c>", "handler", "<c", "<b", "<a"}, trace)
}

func TestSendWithoutBehaviors(t *testing.T) {
	h := pipeline.HandlerFunc[getPost, int](func(ctx context.Context, req getPost) (int, error) {
		return 7, nil
	})
	resp, err := pipeline.New(h).Send(context.Background(), getPost{})
	require.NoError(t, err)
	assert.Equal(t, 7, resp)
}

func TestContextReachesHandler(t *testing.T) {
	type key struct{}
	log, _ := newTestLogger()
	h := pipeline.HandlerFunc[getPost, string](func(ctx context.Context, req getPost) (string, error) {
		v, _ := ctx.Value(key{}).(string)
		return v, nil
	})

	ctx := context.WithValue(context.Background(), key{}, "trace-id")
	resp, err := pipeline.Standard(log, nil, h).Send(ctx, getPost{})
	require.NoError(t, err)
	assert.Equal(t, "trace-id", resp)
}

func TestStandardSuccessLogging(t *testing.T) {
	log, buf := newTestLogger()
	h := pipeline.HandlerFunc[getPost, shared.Result[string]](func(ctx context.Context, req getPost) (shared.Result[string], error) {
		return shared.Ok("ok"), nil
	})

	resp, err := pipeline.Standard(log, nil, h).Send(context.Background(), getPost{ID: "1"})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())

	recs := records(t, buf)
	assert.Equal(t, 6, countLevel(recs, "INFO"))
	assert.Zero(t, countLevel(recs, "ERROR"))

	var behaviors []string
	for _, r := range recs {
		assert.Equal(t, "getPost", r.Request)
		behaviors = append(behaviors, r.Behavior+" "+r.Msg)
	}
	assert.Equal(t, []string{
		"ExceptionBehavior handling request",
		"LoggingBehavior handling request",
		"PerformanceBehavior handling request",
		"PerformanceBehavior handled request",
		"LoggingBehavior handled request",
		"ExceptionBehavior handled request",
	}, behaviors)
}

func TestStandardContainsReturnedError(t *testing.T) {
	log, buf := newTestLogger()
	h := pipeline.HandlerFunc[getPost, shared.Result[string]](func(ctx context.Context, req getPost) (shared.Result[string], error) {
		return shared.Ok("ignored"), errors.New("database is gone")
	})

	resp, err := pipeline.Standard(log, nil, h).Send(context.Background(), getPost{})
	require.NoError(t, err)
	assert.True(t, resp.IsEmpty())

	recs := records(t, buf)
	assert.Equal(t, 3, countLevel(recs, "INFO"), "only entry records")
	require.Equal(t, 1, countLevel(recs, "ERROR"))
	for _, r := range recs {
		if r.Level == "ERROR" {
			assert.Equal(t, "ExceptionBehavior", r.Behavior)
			assert.Equal(t, "database is gone", r.Error)
		}
	}
}

func TestStandardContainsPanic(t *testing.T) {
	log, buf := newTestLogger()
	h := pipeline.HandlerFunc[getPost, *string](func(ctx context.Context, req getPost) (*string, error) {
		panic("nil map write")
	})

	var resp *string
	var err error
	assert.NotPanics(t, func() {
		resp, err = pipeline.Standard(log, nil, h).Send(context.Background(), getPost{})
	})
	require.NoError(t, err)
	assert.Nil(t, resp)

	recs := records(t, buf)
	assert.Equal(t, 3, countLevel(recs, "INFO"))
	assert.Equal(t, 1, countLevel(recs, "ERROR"))
}

func TestLoggingPropagatesFailures(t *testing.T) {
	log, buf := newTestLogger()
	boom := errors.New("boom")
	h := pipeline.HandlerFunc[getPost, int](func(ctx context.Context, req getPost) (int, error) {
		return 0, boom
	})

	_, err := pipeline.New(h, pipeline.Logging[getPost, int](log)).Send(context.Background(), getPost{})
	assert.ErrorIs(t, err, boom)

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "handling request", recs[0].Msg)
}

func TestPerformancePropagatesPanic(t *testing.T) {
	log, _ := newTestLogger()
	h := pipeline.HandlerFunc[getPost, int](func(ctx context.Context, req getPost) (int, error) {
		panic("boom")
	})

	p := pipeline.New(h, pipeline.Performance[getPost, int](log, nil))
	assert.Panics(t, func() {
		_, _ = p.Send(context.Background(), getPost{})
	})
}

func TestPerformanceObservesDuration(t *testing.T) {
	log, _ := newTestLogger()
	reg := prometheus.NewRegistry()
	metrics, err := pipeline.NewMetrics(reg, "blog")
	require.NoError(t, err)

	h := pipeline.HandlerFunc[getPost, int](func(ctx context.Context, req getPost) (int, error) {
		return 1, nil
	})
	p := pipeline.Standard(log, metrics, h)
	for range 3 {
		_, err := p.Send(context.Background(), getPost{})
		require.NoError(t, err)
	}

	count, err := testutil.GatherAndCount(reg, "blog_pipeline_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "one series per request type")

	_, err = pipeline.NewMetrics(reg, "blog")
	assert.Error(t, err, "duplicate registration")
}

func TestStandardFuncWrapsPlainFunction(t *testing.T) {
	log, buf := newTestLogger()
	p := pipeline.StandardFunc(log, nil, func(ctx context.Context, req getPost) (shared.Result[string], error) {
		return shared.Ok("post " + req.ID), nil
	})

	resp, err := p.Send(context.Background(), getPost{ID: "7"})
	require.NoError(t, err)
	assert.Equal(t, "post 7", resp.Value())
	assert.Len(t, records(t, buf), 6)
}
