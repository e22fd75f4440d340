// Package app wires configuration, storage, pipelines and transports into the
// runnable posts, comments and gateway processes.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"blog-go-template/internal/config"
	"blog-go-template/internal/platform/logger"
	"blog-go-template/internal/platform/pg"
	"blog-go-template/internal/platform/sqlite"
	"blog-go-template/migrations"
	"blog-go-template/pkg/retry"
)

// App wires application components.
type App struct {
	cfg config.Config
	log *slog.Logger
}

// New loads configuration for service and builds its logger.
func New(service config.Service) (*App, error) {
	cfg, err := config.Load(service)
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{
		Env:          cfg.Env,
		ConsoleLevel: cfg.Log.ConsoleLevel,
		FileLevel:    cfg.Log.FileLevel,
		File:         cfg.Log.File,
		App:          string(service),
	})
	return &App{cfg: cfg, log: log}, nil
}

// Run serves until SIGINT or SIGTERM.
func (a *App) Run() error {
	defer logger.Close(a.log)
	a.log.Info("starting", slog.String("addr", a.cfg.HTTP.Addr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch a.cfg.Service {
	case config.Posts:
		err = a.runPosts(ctx)
	case config.Comments:
		err = a.runComments(ctx)
	case config.Gateway:
		err = a.runGateway(ctx)
	default:
		err = fmt.Errorf("unknown service %q", a.cfg.Service)
	}
	if err != nil {
		a.log.Error("stopped with error", slog.Any("err", err))
		return err
	}
	a.log.Info("stopped")
	return nil
}

func (a *App) registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// database is the opened store of one service: exactly one runner is set.
type database struct {
	sqlite *sqlite.TxRunner
	pg     *pg.TxRunner
	close  func()
}

func (a *App) openDatabase(ctx context.Context, service string) (database, error) {
	if a.cfg.DB.Driver == "postgres" {
		return a.openPostgres(ctx, service)
	}
	return a.openSQLite(ctx, service)
}

func (a *App) openSQLite(ctx context.Context, service string) (database, error) {
	db, err := sqlite.Open(ctx, a.cfg.DB.Path, sqlite.DefaultOptions())
	if err != nil {
		return database{}, err
	}
	version, err := sqlite.ApplyMigrations(db, migrations.FS, migrations.Dir(service, "sqlite"))
	if err != nil {
		_ = db.Close()
		return database{}, err
	}
	a.log.Info("sqlite ready", slog.String("path", a.cfg.DB.Path), slog.Uint64("schema", uint64(version)))
	return database{sqlite: sqlite.NewTxRunner(db), close: closeDB(a.log, db)}, nil
}

func (a *App) openPostgres(ctx context.Context, service string) (database, error) {
	dsn := a.cfg.DB.DSN
	err := pg.WaitForDB(ctx, dsn, retry.Config{
		MaxAttempts:  10,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		Jitter:       true,
		OnRetry: func(attempt int, err error, next time.Duration) {
			a.log.Warn("waiting for postgres",
				slog.Int("attempt", attempt),
				slog.Duration("next", next),
				slog.Any("err", err))
		},
	})
	if err != nil {
		return database{}, err
	}

	info, err := pg.ApplyMigrations(dsn, migrations.FS, migrations.Dir(service, "postgres"))
	if err != nil {
		return database{}, err
	}
	a.log.Info("postgres migrated",
		slog.Bool("applied", info.Applied),
		slog.Uint64("from", uint64(info.CurrentVersion)),
		slog.Uint64("to", uint64(info.FinalVersion)))

	pool, err := pg.NewPool(ctx, dsn, pg.DefaultPoolOptions())
	if err != nil {
		return database{}, err
	}
	return database{pg: pg.NewTxRunner(pool), close: pool.Close}, nil
}

func closeDB(log *slog.Logger, db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Warn("close database", slog.Any("err", err))
		}
	}
}
