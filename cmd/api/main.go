package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baharkarakas/adledger/internal/api"
	"github.com/baharkarakas/adledger/internal/auth"
	"github.com/baharkarakas/adledger/internal/cache"
	"github.com/baharkarakas/adledger/internal/config"
	"github.com/baharkarakas/adledger/internal/db"
	"github.com/baharkarakas/adledger/internal/logger"
	"github.com/baharkarakas/adledger/internal/metrics"
	"github.com/baharkarakas/adledger/internal/notify"
	repo "github.com/baharkarakas/adledger/internal/repository"
	"github.com/baharkarakas/adledger/internal/repository/memory"
	"github.com/baharkarakas/adledger/internal/repository/postgres"
	"github.com/baharkarakas/adledger/internal/services"
	"github.com/baharkarakas/adledger/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	metrics.Init()

	repos, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	dispatcher, closeDispatcher, err := openDispatcher(cfg, log)
	if err != nil {
		return err
	}

	wp := worker.NewPool(cfg.Workers)
	notifier := notify.NewNotifier(repos.Notifications, dispatcher, wp, notify.WithLogger(log))
	// Fan-out jobs feed wp, so they get their own pool.
	fanout := worker.NewPool(1)

	statsCache, closeCache := openCache(cfg)

	ledgerSvc := services.NewLedgerService(repos.UoW, repos.Ledger, notifier, log)
	r := api.NewRouter(api.RouterDeps{
		Cfg:        cfg,
		Tokens:     auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL),
		Users:      services.NewUserService(repos.Users),
		Balances:   services.NewBalanceService(repos.Users),
		Ledger:     ledgerSvc,
		Orders:     services.NewOrderService(repos.Products, ledgerSvc),
		Payments:   services.NewPaymentService(repos.Charges, repos.UoW, notifier, log),
		Banners:    services.NewBannerService(repos.Banners, services.NewScreenRegistry(repos.Listings), nil, log),
		Moderation: services.NewModerationService(repos.Distributions, repos.Users, repos.UoW, notifier, fanout, log),
		Stats:      services.NewStatsService(repos.Charges, statsCache, cfg.StatsCacheTTL, log),
		Notifier:   notifier,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env, "store", cfg.Store, "notify", cfg.NotifyBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	// pending notifications still go out before the bus closes
	fanout.Stop()
	wp.Stop()
	if err := closeCache(); err != nil {
		log.Warn("close cache", "err", err)
	}
	if err := closeDispatcher(); err != nil {
		log.Warn("close dispatcher", "err", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.Repositories, func(), error) {
	if cfg.Store == "memory" {
		log.Warn("using in-memory store, data is lost on exit")
		return memory.New().Repositories(), func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return repo.Repositories{}, nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.Migrate {
		if err := db.RunMigrations(pool, log); err != nil {
			pool.Close()
			return repo.Repositories{}, nil, fmt.Errorf("migrations: %w", err)
		}
	}
	return postgres.NewRepositories(pool), pool.Close, nil
}

func openDispatcher(cfg config.Config, log *slog.Logger) (notify.Dispatcher, func() error, error) {
	var (
		d notify.Dispatcher
		c io.Closer
	)
	switch cfg.NotifyBackend {
	case "kafka":
		k := notify.NewKafkaDispatcher(cfg.KafkaBrokers, cfg.KafkaTopic)
		d, c = k, k
	case "redis":
		rd := notify.NewRedisDispatcher(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), cfg.RedisPushKey)
		d, c = rd, rd
	case "log", "":
		return notify.LogDispatcher{Log: log}, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown NOTIFY_BACKEND %q", cfg.NotifyBackend)
	}
	return d, c.Close, nil
}

func openCache(cfg config.Config) (services.Cache, func() error) {
	if cfg.CacheBackend != "redis" {
		return nil, func() error { return nil }
	}
	c := cache.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), "adledger:")
	return c, c.Close
}
