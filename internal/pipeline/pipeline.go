// Package pipeline runs request handlers behind an ordered chain of behaviors.
package pipeline

import (
	"context"
	"log/slog"
	"reflect"
)

// Next invokes the rest of the chain. A behavior calls it at most once.
type Next[Resp any] func(ctx context.Context) (Resp, error)

// Behavior wraps the handling of one request type.
type Behavior[Req, Resp any] interface {
	Handle(ctx context.Context, req Req, next Next[Resp]) (Resp, error)
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc[Req, Resp any] func(ctx context.Context, req Req, next Next[Resp]) (Resp, error)

// Handle calls f.
func (f BehaviorFunc[Req, Resp]) Handle(ctx context.Context, req Req, next Next[Resp]) (Resp, error) {
	return f(ctx, req, next)
}

// Handler answers one request type.
type Handler[Req, Resp any] interface {
	Handle(ctx context.Context, req Req) (Resp, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Handle calls f.
func (f HandlerFunc[Req, Resp]) Handle(ctx context.Context, req Req) (Resp, error) {
	return f(ctx, req)
}

// Pipeline is a handler composed with its behaviors. It is built once and is
// safe for concurrent use.
type Pipeline[Req, Resp any] struct {
	handler   Handler[Req, Resp]
	behaviors []Behavior[Req, Resp]
}

// New composes h with behaviors. The first behavior is the outermost.
func New[Req, Resp any](h Handler[Req, Resp], behaviors ...Behavior[Req, Resp]) *Pipeline[Req, Resp] {
	return &Pipeline[Req, Resp]{handler: h, behaviors: behaviors}
}

// Standard composes h with the exception, logging and performance behaviors in that order.
// metrics may be nil.
func Standard[Req, Resp any](log *slog.Logger, metrics *Metrics, h Handler[Req, Resp]) *Pipeline[Req, Resp] {
	return New(h,
		Exception[Req, Resp](log),
		Logging[Req, Resp](log),
		Performance[Req, Resp](log, metrics),
	)
}

// StandardFunc is Standard for a plain handler function.
func StandardFunc[Req, Resp any](log *slog.Logger, metrics *Metrics, fn func(ctx context.Context, req Req) (Resp, error)) *Pipeline[Req, Resp] {
	return Standard[Req, Resp](log, metrics, HandlerFunc[Req, Resp](fn))
}

// Send runs req through the behaviors and the handler.
func (p *Pipeline[Req, Resp]) Send(ctx context.Context, req Req) (Resp, error) {
	next := Next[Resp](func(ctx context.Context) (Resp, error) {
		return p.handler.Handle(ctx, req)
	})
	for i := len(p.behaviors) - 1; i >= 0; i-- {
		b, inner := p.behaviors[i], next
		next = func(ctx context.Context) (Resp, error) {
			return b.Handle(ctx, req, inner)
		}
	}
	return next(ctx)
}

// typeName returns the short name of T for log records.
func typeName[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if n := t.Name(); n != "" {
		return n
	}
	return t.String()
}
