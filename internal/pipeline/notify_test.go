package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-go-template/internal/pipeline"
)

type postCreated struct{ Title string }

type postDeleted struct{ Title string }

func TestPublishDeliversByType(t *testing.T) {
	log, buf := newTestLogger()
	p := pipeline.NewPublisher(log)

	var created, deleted []string
	pipeline.Subscribe(p, func(ctx context.Context, n postCreated) error {
		created = append(created, "first:"+n.Title)
		return nil
	})
	pipeline.Subscribe(p, func(ctx context.Context, n postCreated) error {
		created = append(created, "second:"+n.Title)
		return nil
	})
	pipeline.Subscribe(p, func(ctx context.Context, n postDeleted) error {
		deleted = append(deleted, n.Title)
		return nil
	})

	require.NoError(t, p.Publish(context.Background(), postCreated{Title: "hello"}))

	assert.Equal(t, []string{"first:hello", "second:hello"}, created)
	assert.Empty(t, deleted)

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "handling notification", recs[0].Msg)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	log, buf := newTestLogger()
	p := pipeline.NewPublisher(log)

	assert.NoError(t, p.Publish(context.Background(), postDeleted{}))
	assert.NoError(t, p.Publish(context.Background(), nil))
	assert.Len(t, records(t, buf), 1)
}

func TestPublishJoinsErrors(t *testing.T) {
	log, _ := newTestLogger()
	p := pipeline.NewPublisher(log)
	first, second := errors.New("first"), errors.New("second")
	calls := 0

	pipeline.Subscribe(p, func(ctx context.Context, n postCreated) error { calls++; return first })
	pipeline.Subscribe(p, func(ctx context.Context, n postCreated) error { calls++; return second })

	err := p.Publish(context.Background(), postCreated{})
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}
