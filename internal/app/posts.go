package app

import (
	"context"

	"blog-go-template/internal/adapter/rest"
	"blog-go-template/internal/adapter/store"
	"blog-go-template/internal/pipeline"
	"blog-go-template/internal/posts"
	"blog-go-template/internal/transport/httpx"
	"blog-go-template/internal/validation"
)

func (a *App) runPosts(ctx context.Context) error {
	db, err := a.openDatabase(ctx, "posts")
	if err != nil {
		return err
	}
	defer db.close()

	var repo posts.Repository
	if db.pg != nil {
		repo = store.NewPostgresPosts(db.pg)
	} else {
		repo = store.NewSQLitePosts(db.sqlite)
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
	svc := posts.NewService(a.log, metrics, repo, v, pipeline.NewPublisher(a.log))

	e := httpx.NewEngine(a.log, a.cfg.Env, reg)
	rest.RegisterPosts(e, svc)
	return httpx.Serve(ctx, a.log, a.cfg.HTTP.Addr, e)
}
