package app

import (
	"context"
	"log/slog"
	"time"

	"blog-go-template/internal/adapter/gateway"
	"blog-go-template/internal/adapter/scheduler"
	"blog-go-template/internal/platform/httpclient"
	"blog-go-template/internal/transport/httpx"
)

const healthTimeout = 5 * time.Second

func (a *App) runGateway(ctx context.Context) error {
	routes, err := gateway.LoadRoutes(a.cfg.Gateway.RoutesFile)
	if err != nil {
		return err
	}
	reg := a.registry()
	metrics, err := gateway.NewMetrics(reg)
	if err != nil {
		return err
	}

	client := httpclient.New(httpclient.WithLogger(a.log), httpclient.WithTimeout(healthTimeout))
	checker := gateway.NewHealthChecker(client, a.log, routes, metrics.UpstreamUp)

	sched := scheduler.New(scheduler.Config{
		Logger: a.log,
		Hooks:  scheduler.Hooks{OnFinish: metrics.ObserveJob},
	})
	if err := checker.Schedule(sched, a.cfg.Gateway.HealthSchedule, healthTimeout); err != nil {
		return err
	}
	sched.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()
		if err := sched.Stop(stopCtx); err != nil {
			a.log.Warn("scheduler stop", slog.Any("err", err))
		}
	}()

	g, err := gateway.New(a.log, routes, checker, metrics)
	if err != nil {
		return err
	}
	limiter := gateway.NewClientLimiter(a.cfg.Gateway.RateRPS, a.cfg.Gateway.RateBurst, 10*time.Minute)

	e := httpx.NewEngine(a.log, a.cfg.Env, reg)
	g.Register(e, limiter)
	a.log.Info("gateway routes loaded", slog.Int("routes", len(routes.Routes)))
	return httpx.Serve(ctx, a.log, a.cfg.HTTP.Addr, e)
}
