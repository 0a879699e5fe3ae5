package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/quizbowl/internal/config"
	"github.com/playperu/quizbowl/internal/database"
	"github.com/playperu/quizbowl/internal/handler/health"
	"github.com/playperu/quizbowl/internal/handler/scoreboard"
	"github.com/playperu/quizbowl/internal/migrations"
	"github.com/playperu/quizbowl/internal/server"
	"github.com/playperu/quizbowl/internal/sheets"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// gameStore is what the registry needs from a backend: game documents plus
// the spreadsheet rounds exports write to.
type gameStore interface {
	server.Store
	sheets.Sheet
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	var (
		store  gameStore
		checks = map[string]health.Checker{}
	)
	switch cfg.StoreBackend {
	case "redis":
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		store = server.NewRedisStore(rdb)
		checks["redis"] = redisChecker{rdb}

	default:
		db, err := database.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("connecting to sqlite: %w", err)
		}
		defer db.Close()

		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("connected to sqlite", "path", cfg.DBPath)

		store = server.NewDocStore(db)
		checks["sqlite"] = dbChecker{db}
	}

	games := server.NewRegistry(store, store, server.NewBroker(), logger, cfg.SaveDebounce)
	checks["games"] = health.CheckFunc(func(ctx context.Context) error {
		_, err := games.List(ctx)
		return err
	})

	if cfg.SeedDemo {
		if err := server.SeedDemo(ctx, logger, games, cfg.DefaultFormat); err != nil {
			return fmt.Errorf("seeding demo game: %w", err)
		}
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, games, cfg.DefaultFormat, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
		r.Mount("/ws", scoreboard.NewHandler(logger, games).Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		shutdownErr := srv.Shutdown(context.Background())

		// Pending autosaves are written even when open streams kept the
		// server from stopping cleanly.
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("saving pending games")
		return errors.Join(shutdownErr, games.Flush(flushCtx))
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

// redisChecker adapts *redis.Client to health.Checker.
type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }
