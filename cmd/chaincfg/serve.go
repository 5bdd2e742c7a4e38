package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/chaincfg/internal/application/publisher"
	"github.com/aescanero/chaincfg/internal/config"
	"github.com/aescanero/chaincfg/internal/toolchain"
	eventsmemory "github.com/aescanero/chaincfg/pkg/adapters/events/memory"
	"github.com/aescanero/chaincfg/pkg/adapters/events/redis"
	metricsprom "github.com/aescanero/chaincfg/pkg/adapters/metrics/prometheus"
	storagememory "github.com/aescanero/chaincfg/pkg/adapters/storage/memory"
	redisstorage "github.com/aescanero/chaincfg/pkg/adapters/storage/redis"
	"github.com/aescanero/chaincfg/pkg/api/grpc"
	"github.com/aescanero/chaincfg/pkg/api/http"
	"github.com/aescanero/chaincfg/pkg/api/websocket"
	"github.com/aescanero/chaincfg/pkg/ports"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Publish the toolchain configuration and serve it",
		Long: `Load the toolchain configuration, publish a redacted snapshot to the
configured store and serve it over HTTP, WebSocket and gRPC until
interrupted.

Daemon settings are read from CHAINCFG_*, LOG_LEVEL and REDIS_* variables.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	environ, err := toolchain.Environ(cfg.DotEnvPath)
	if err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	toolchainCfg := toolchain.Load(environ)

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting chaincfg",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("store", cfg.Store))

	// Initialize adapters
	var (
		store       ports.SnapshotStore
		eventBus    ports.EventBus
		redisClient *goredis.Client
	)

	switch cfg.Store {
	case config.StoreRedis:
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.StartupTimeout)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

		store = redisstorage.NewSnapshotStore(redisClient, cfg.Snapshot.TTL, logger)
		eventBus = redis.NewStreamsEventBus(redisClient, logger)
	default:
		store = storagememory.NewInMemorySnapshotStore()
		eventBus = eventsmemory.NewInMemoryEventBus()
	}

	metricsCollector := metricsprom.NewCollector(prometheus.DefaultRegisterer)

	// Initialize application components
	pub := publisher.NewManager(
		toolchainCfg,
		store,
		eventBus,
		metricsCollector,
		logger,
		cfg.Snapshot.TTL,
	)

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Addr:      cfg.GetHTTPAddr(),
		Publisher: pub,
		Store:     store,
		Metrics:   metricsCollector,
		Logger:    logger,
	})

	wsHandler := websocket.NewHandler(eventBus, pub, logger)
	httpServer.SetupWebSocket(wsHandler)

	grpcServer, err := grpc.NewServer(&grpc.Config{
		Addr:   cfg.GetGRPCAddr(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := grpcServer.Start(); err != nil {
			logger.Fatal("gRPC server failed", zap.Error(err))
		}
	}()

	// Publish the configuration once
	publishCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.StartupTimeout)
	_, err = pub.Publish(publishCtx)
	cancel()
	if err != nil {
		logger.Fatal("failed to publish configuration", zap.Error(err))
	}
	grpcServer.MarkServing()

	keepalive := publisher.NewKeepalive(pub, cfg.Snapshot.KeepaliveInterval, logger)
	keepalive.Start()

	logger.Info("chaincfg started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Strings("networks", toolchainCfg.NetworkNames()))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ShutdownTimeout)
	defer cancel()

	keepalive.Stop()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("gRPC server shutdown error", zap.Error(err))
	}

	if err := eventBus.Close(); err != nil {
		logger.Error("event bus close error", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}

	logger.Info("chaincfg shut down complete")
	return nil
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
