package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"blog-go-template/internal/shared"
)

const (
	msgHandling = "handling request"
	msgHandled  = "handled request"
	msgFailed   = "request failed"
)

type exception[Req, Resp any] struct {
	log      *slog.Logger
	request  string
	response string
}

// Exception contains every error and panic raised further down the chain. It
// logs exactly one error record and answers the zero Resp with a nil error.
func Exception[Req, Resp any](log *slog.Logger) Behavior[Req, Resp] {
	return exception[Req, Resp]{log: log, request: typeName[Req](), response: typeName[Resp]()}
}

func (b exception[Req, Resp]) Handle(ctx context.Context, req Req, next Next[Resp]) (resp Resp, err error) {
	b.log.InfoContext(ctx, msgHandling,
		slog.String("behavior", "ExceptionBehavior"),
		slog.String("request", b.request))

	defer func() {
		if r := recover(); r != nil {
			b.log.ErrorContext(ctx, msgFailed,
				slog.String("behavior", "ExceptionBehavior"),
				slog.String("request", b.request),
				slog.String("error", fmt.Sprint(r)),
				slog.Bool("panic", true),
				slog.String("stack", string(debug.Stack())))
			var zero Resp
			resp, err = zero, nil
		}
	}()

	resp, err = next(ctx)
	if err != nil {
		b.log.ErrorContext(ctx, msgFailed,
			slog.String("behavior", "ExceptionBehavior"),
			slog.String("request", b.request),
			slog.String("error", err.Error()),
			slog.String("kind", shared.KindOf(err).String()),
			slog.Bool("canceled", shared.IsCanceled(err)),
			slog.Bool("timeout", shared.IsTimeout(err)))
		var zero Resp
		return zero, nil
	}

	b.log.InfoContext(ctx, msgHandled,
		slog.String("behavior", "ExceptionBehavior"),
		slog.String("request", b.request),
		slog.String("response", b.response))
	return resp, nil
}

type logging[Req, Resp any] struct {
	log      *slog.Logger
	request  string
	response string
}

// Logging records entry and exit of every request. Failures pass through
// without an exit record.
func Logging[Req, Resp any](log *slog.Logger) Behavior[Req, Resp] {
	return logging[Req, Resp]{log: log, request: typeName[Req](), response: typeName[Resp]()}
}

func (b logging[Req, Resp]) Handle(ctx context.Context, req Req, next Next[Resp]) (Resp, error) {
	b.log.InfoContext(ctx, msgHandling,
		slog.String("behavior", "LoggingBehavior"),
		slog.String("request", b.request))

	resp, err := next(ctx)
	if err != nil {
		return resp, err
	}

	b.log.InfoContext(ctx, msgHandled,
		slog.String("behavior", "LoggingBehavior"),
		slog.String("request", b.request),
		slog.String("response", b.response))
	return resp, nil
}

type performance[Req, Resp any] struct {
	log      *slog.Logger
	metrics  *Metrics
	request  string
	response string
}

// Performance measures the time spent in the rest of the chain.
func Performance[Req, Resp any](log *slog.Logger, metrics *Metrics) Behavior[Req, Resp] {
	return performance[Req, Resp]{log: log, metrics: metrics, request: typeName[Req](), response: typeName[Resp]()}
}

func (b performance[Req, Resp]) Handle(ctx context.Context, req Req, next Next[Resp]) (Resp, error) {
	b.log.InfoContext(ctx, msgHandling,
		slog.String("behavior", "PerformanceBehavior"),
		slog.String("request", b.request))

	start := time.Now()
	resp, err := next(ctx)
	elapsed := time.Since(start)
	if err != nil {
		return resp, err
	}

	b.metrics.observe(b.request, elapsed)
	b.log.InfoContext(ctx, msgHandled,
		slog.String("behavior", "PerformanceBehavior"),
		slog.String("request", b.request),
		slog.String("response", b.response),
		slog.Int64("elapsed_ms", elapsed.Milliseconds()))
	return resp, nil
}
