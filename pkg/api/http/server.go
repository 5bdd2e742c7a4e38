package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aescanero/chaincfg/internal/application/publisher"
	"github.com/aescanero/chaincfg/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP API server
type Server struct {
	router    *gin.Engine
	server    *http.Server
	publisher *publisher.Manager
	store     ports.SnapshotStore
	metrics   ports.MetricsCollector
	logger    *zap.Logger
}

// Config holds HTTP server configuration
type Config struct {
	Addr      string
	Publisher *publisher.Manager
	Store     ports.SnapshotStore
	Metrics   ports.MetricsCollector
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Logger, cfg.Metrics))
	router.Use(corsMiddleware())

	s := &Server{
		router:    router,
		publisher: cfg.Publisher,
		store:     cfg.Store,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.setupRoutes(gatherer)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// Metrics
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/config", s.handleGetConfig)
		v1.GET("/compiler", s.handleGetCompiler)
		v1.GET("/networks", s.handleListNetworks)
		v1.GET("/networks/:name", s.handleGetNetwork)
		v1.GET("/verification", s.handleGetVerification)
		v1.GET("/snapshot", s.handleGetSnapshot)
		v1.GET("/validate", s.handleValidate)
	}
}

// SetupWebSocket adds the event stream handler to the server
func (s *Server) SetupWebSocket(handler interface{}) {
	if wsHandler, ok := handler.(interface {
		HandleEventStream(*gin.Context)
	}); ok {
		s.router.GET("/api/v1/events/ws", wsHandler.HandleEventStream)
	}
}

// Handler returns the underlying HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}

// requestLogger is a middleware for request logging and metrics
func requestLogger(logger *zap.Logger, metrics ports.MetricsCollector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if metrics != nil {
			metrics.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status())
		}

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration),
			zap.String("client_ip", c.ClientIP()))
	}
}
