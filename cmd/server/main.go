package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jmoiron/sqlx"

	"github.com/Proton-105/socialpulse-onboarding/internal/accountcache"
	"github.com/Proton-105/socialpulse-onboarding/internal/api"
	"github.com/Proton-105/socialpulse-onboarding/internal/database"
	apperrors "github.com/Proton-105/socialpulse-onboarding/internal/errors"
	"github.com/Proton-105/socialpulse-onboarding/internal/health"
	"github.com/Proton-105/socialpulse-onboarding/internal/lifecycle"
	"github.com/Proton-105/socialpulse-onboarding/internal/onboarding"
	"github.com/Proton-105/socialpulse-onboarding/internal/recommendation"
	"github.com/Proton-105/socialpulse-onboarding/internal/repository"
	"github.com/Proton-105/socialpulse-onboarding/internal/state"
	"github.com/Proton-105/socialpulse-onboarding/pkg/config"
	"github.com/Proton-105/socialpulse-onboarding/pkg/graceful"
	"github.com/Proton-105/socialpulse-onboarding/pkg/logger"
	appredis "github.com/Proton-105/socialpulse-onboarding/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "onboarding server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
	}

	log := logger.New(*cfg)
	slog.SetDefault(log)

	config.Watch(v, log, func(next *config.Config) {
		logger.SetLevel(next.Logger.Level)
	})

	log.Info("starting onboarding server",
		slog.String("env", cfg.AppEnv),
		slog.String("addr", cfg.HTTP.Addr),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("locking", cfg.Locking.Driver),
	)

	shutdown := lifecycle.NewShutdown(log)
	checker := health.NewChecker(log)

	// flush hooks are registered first so they run even when startup fails
	shutdown.Register(lifecycle.PhaseFlush, "logger", func(context.Context) error {
		return logger.Close()
	})
	if cfg.Sentry.Enabled {
		shutdown.Register(lifecycle.PhaseFlush, "sentry", func(context.Context) error {
			if !sentry.Flush(2 * time.Second) {
				return fmt.Errorf("sentry flush timed out")
			}
			return nil
		})
	}

	serveErr := serve(ctx, cfg, log, shutdown, checker)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	return serveErr
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger, shutdown *lifecycle.Shutdown, checker *health.Checker) error {
	accounts, recs, err := openStorage(ctx, cfg, log, shutdown, checker)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(cfg.Recommendations.CatalogPath)
	if err != nil {
		return err
	}

	var opts []onboarding.Option
	if cfg.NeedsRedis() {
		client, err := appredis.New(ctx, appredis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		shutdown.Register(lifecycle.PhaseRelease, "redis", func(context.Context) error {
			return client.Close()
		})
		checker.AddCheck("redis", health.NewRedisChecker(client.Client))

		if cfg.Locking.Driver == "redis" {
			opts = append(opts, onboarding.WithLocker(state.NewRedisLocker(client.Client, log, cfg.Locking.TTL)))
		}
		if cfg.Cache.Enabled {
			opts = append(opts, onboarding.WithAccountCache(accountcache.NewCache(client.Client), cfg.Cache.TTL))
		}
	}

	orchestrator := onboarding.NewOrchestrator(accounts, recs, recommendation.NewGenerator(catalog), log, opts...)
	probes := lifecycle.NewProbes(checker, log)
	handler := api.NewHandler(orchestrator, apperrors.NewHandler(log, cfg.Sentry.Enabled), checker, probes)

	srv := graceful.NewServer(log, &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(handler, log),
		ReadHeaderTimeout: 10 * time.Second,
	}, cfg.HTTP.ShutdownTimeout)

	go func() {
		<-ctx.Done()
		probes.MarkDraining()
	}()

	return srv.ListenAndServe(ctx)
}

func openStorage(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	shutdown *lifecycle.Shutdown,
	checker *health.Checker,
) (repository.AccountRepository, repository.RecommendationRepository, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn("using in-memory storage; data is lost on restart")
		store := repository.NewMemoryStore()
		return store.Accounts(), store.Recommendations(), nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.GetDBConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	shutdown.Register(lifecycle.PhaseRelease, "postgres", func(context.Context) error {
		return db.Close()
	})

	if cfg.Storage.Postgres.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Storage.Postgres.MaxOpenConns)
	}

	version, err := database.NewMigrator(db.DB, log).Up()
	if err != nil {
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	log.Info("database migrations applied", slog.Uint64("version", uint64(version)))

	checker.AddCheck("postgres", health.NewDBChecker(db.DB))

	return repository.NewPostgresAccountRepository(db, log), repository.NewPostgresRecommendationRepository(db, log), nil
}

func loadCatalog(path string) (*recommendation.Catalog, error) {
	if path == "" {
		return recommendation.DefaultCatalog()
	}

	catalog, err := recommendation.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return catalog, nil
}
