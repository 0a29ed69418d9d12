package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agexparts/freight-service/internal/api/handlers"
	"github.com/agexparts/freight-service/internal/bootstrap"
	"github.com/agexparts/freight-service/internal/config"
	"github.com/agexparts/freight-service/pkg/logging"
	"github.com/agexparts/freight-service/pkg/metrics"
	"github.com/agexparts/freight-service/pkg/middleware"
	"github.com/agexparts/freight-service/pkg/tracing"
)

const serviceName = "freight-service"

func main() {
	cfg := config.Load(serviceName)

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting freight-service API")

	ctx := context.Background()

	tracerProvider, err := tracing.Initialize(ctx, cfg.Tracing)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", cfg.Tracing.OTLPEndpoint)
	}

	m := metrics.New(metrics.DefaultConfig(serviceName))
	logger.Info("Metrics initialized")

	pipeline, err := bootstrap.New(ctx, cfg, logger, m)
	if err != nil {
		logger.WithError(err).Error("Failed to build quote pipeline")
		os.Exit(1)
	}
	defer func() {
		if err := pipeline.Close(context.Background()); err != nil {
			logger.WithError(err).Error("Failed to close quote pipeline")
		}
	}()
	logger.Info("Quote pipeline ready", "cacheBackend", cfg.Cache.Backend, "cacheTTL", cfg.Cache.TTL)

	router := newRouter(pipeline.Service, pipeline.Ready, logger, m)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

func newRouter(service handlers.QuoteService, ready func(ctx context.Context) error, logger *logging.Logger, m *metrics.Metrics) *gin.Engine {
	router := gin.New()

	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.TracingMiddleware(serviceName))

	router.NoRoute(middleware.NoRoute())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, ready))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	v1 := router.Group("/api/v1")
	handlers.NewQuoteHandler(service, logger).RegisterRoutes(v1)

	return router
}
