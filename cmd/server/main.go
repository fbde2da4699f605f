// The dashboard server wires a snapshot source and a document sink to
// the core and serves the derived views over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/viewdeck/video-dashboard-go/internal/config"
	"github.com/viewdeck/video-dashboard-go/internal/docstore"
	"github.com/viewdeck/video-dashboard-go/internal/handler"
	"github.com/viewdeck/video-dashboard-go/internal/middleware"
	"github.com/viewdeck/video-dashboard-go/internal/service"
	"github.com/viewdeck/video-dashboard-go/internal/source"
	"github.com/viewdeck/video-dashboard-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		logger.Log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, sink, cleanup, err := buildBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	dashboard := service.NewDashboard(src, sink)
	if err := dashboard.Start(ctx); err != nil {
		return fmt.Errorf("start dashboard: %w", err)
	}
	defer dashboard.Close()

	settings := service.NewSettingsService(service.NewMemoryKV(), sink)
	settings.Init()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router,
		handler.NewDashboardHandler(dashboard),
		handler.NewSettingsHandler(settings),
		middleware.NewAPIKeyAuth(cfg.Server.APIKeys),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("server listening",
			zap.Int("port", cfg.Server.Port),
			zap.String("backend", cfg.Source.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildBackend(ctx context.Context, cfg *config.Config) (source.Source, source.Sink, func(), error) {
	switch cfg.Source.Backend {
	case config.SourceMemory:
		mem := source.NewMemory()
		return mem, mem, func() {}, nil

	case config.SourcePostgres:
		pg, pool, err := connectDocstore(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		return pg, pg, pool.Close, nil

	case config.SourceAMQP:
		// Snapshots arrive over RabbitMQ; writes go through Postgres,
		// whose change feed the snapshot publisher follows.
		pg, pool, err := connectDocstore(ctx, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		amqpSrc, err := source.NewAMQPSource(&cfg.RabbitMQ)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		cleanup := func() {
			_ = amqpSrc.Close()
			pool.Close()
		}
		return amqpSrc, pg, cleanup, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown source backend %q", cfg.Source.Backend)
	}
}

func connectDocstore(ctx context.Context, cfg *config.Config) (*docstore.Postgres, *pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL())
	if err != nil {
		return nil, nil, fmt.Errorf("parse database config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConnections)
	poolCfg.MinConns = int32(cfg.Database.MinConnections)
	poolCfg.MaxConnIdleTime = cfg.Database.MaxIdleTime
	poolCfg.MaxConnLifetime = cfg.Database.MaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	pg, err := docstore.New(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pg, pool, nil
}
