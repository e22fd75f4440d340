package app

import (
	"context"
	"time"

	"blog-go-template/internal/adapter/external/postsapi"
	"blog-go-template/internal/adapter/rest"
	"blog-go-template/internal/adapter/store"
	"blog-go-template/internal/comments"
	"blog-go-template/internal/pipeline"
	"blog-go-template/internal/platform/httpclient"
	"blog-go-template/internal/transport/httpx"
	"blog-go-template/internal/validation"
)

func (a *App) runComments(ctx context.Context) error {
	db, err := a.openDatabase(ctx, "comments")
	if err != nil {
		return err
	}
	defer db.close()

	var repo comments.Repository
	if db.pg != nil {
		repo = store.NewPostgresComments(db.pg)
	} else {
		repo = store.NewSQLiteComments(db.sqlite)
	}

	v, err := validation.New()
	if err != nil {
		return err
	}
	reg := a.registry()
	metrics, err := pipeline.NewMetrics(reg, "blog")
	if err != nil {
		return err
	}
	client := httpclient.New(
		httpclient.WithLogger(a.log),
		httpclient.WithTimeout(5*time.Second),
		httpclient.WithRetries(2, 200*time.Millisecond),
		httpclient.WithMaxBackoff(2*time.Second),
	)
	svc := comments.NewService(a.log, metrics, comments.Deps{
		Repo:      repo,
		Posts:     postsapi.New(client, a.cfg.PostsServiceURL),
		Validator: v,
		Publisher: pipeline.NewPublisher(a.log),
	})

	e := httpx.NewEngine(a.log, a.cfg.Env, reg)
	rest.RegisterComments(e, svc)
	return httpx.Serve(ctx, a.log, a.cfg.HTTP.Addr, e)
}
