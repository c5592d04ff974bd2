package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/miniledger/easyexp-go/internal/config"
	"github.com/miniledger/easyexp-go/internal/domain"
	"github.com/miniledger/easyexp-go/internal/handler"
	"github.com/miniledger/easyexp-go/internal/infra/cache"
	"github.com/miniledger/easyexp-go/internal/infra/mongo"
	"github.com/miniledger/easyexp-go/internal/infra/observability"
	"github.com/miniledger/easyexp-go/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "easyexp:", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.Duration("jwt_ttl", cfg.JWTTTL),
		zap.Duration("config_cache_ttl", cfg.ConfigCacheTTL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, "easyexp-api")
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Storage ---
	store, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("mongo close", zap.Error(err))
		}
	}()

	// --- Services ---
	authSvc := service.NewAuthService(store, cfg.JWTSecret, cfg.JWTTTL, logger)
	configSvc := service.NewConfigService(store, cache.New[domain.Config](cfg.ConfigCacheTTL), metrics, logger)
	expenseSvc := service.NewExpenseService(store, configSvc, metrics, logger)
	statsSvc := service.NewStatsService(store, metrics, logger)
	exportSvc := service.NewExportService(store, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Auth:    authSvc,
		Expense: expenseSvc,
		Config:  configSvc,
		Stats:   statsSvc,
		Export:  exportSvc,
	}, store, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
