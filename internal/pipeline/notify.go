package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"
)

// Publisher delivers notifications synchronously to the handlers subscribed
// to their type. Every published notification is logged.
type Publisher struct {
	log *slog.Logger

	mu       sync.RWMutex
	handlers map[reflect.Type][]func(context.Context, any) error
}

// NewPublisher creates a publisher without subscribers.
func NewPublisher(log *slog.Logger) *Publisher {
	return &Publisher{log: log, handlers: make(map[reflect.Type][]func(context.Context, any) error)}
}

// Subscribe registers h for notifications of type N.
func Subscribe[N any](p *Publisher, h func(ctx context.Context, n N) error) {
	t := reflect.TypeFor[N]()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[t] = append(p.handlers[t], func(ctx context.Context, n any) error {
		return h(ctx, n.(N))
	})
}

// Publish hands n to every subscriber of its type in registration order.
// Errors from subscribers are joined and returned after all of them ran.
func (p *Publisher) Publish(ctx context.Context, n any) error {
	if n == nil {
		return nil
	}
	t := reflect.TypeOf(n)
	p.log.InfoContext(ctx, "handling notification", slog.String("notification", t.Name()))

	p.mu.RLock()
	hs := p.handlers[t]
	p.mu.RUnlock()

	var errs []error
	for _, h := range hs {
		if err := h(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
