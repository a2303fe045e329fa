// Package server wires the read-only report endpoints onto an echo instance.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"budget-tracker/internal/config"
	"budget-tracker/internal/handlers"
	"budget-tracker/internal/middleware"
	"budget-tracker/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// MetricsExporter records metrics and exposes the registry they live in
type MetricsExporter interface {
	services.MetricsRecorderInterface
	Registry() *prometheus.Registry
}

type Server struct {
	echo        *echo.Echo
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(
	cfg config.ServerConfig,
	service services.BudgetServiceInterface,
	metrics MetricsExporter,
	backend string,
	logger *slog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.NewHTTPErrorHandler(logger, metrics)
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(rateLimiter.Middleware())

	healthHandler := handlers.NewHealthCheckHandler(service, backend, logger)
	reportHandler := handlers.NewReportHandler(service)

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/transactions", reportHandler.ListTransactions)
	e.GET("/summary", reportHandler.GetSummary)
	e.GET("/balance", reportHandler.GetBalance)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	return &Server{
		echo:        e,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.rateLimiter.Run(ctx)
		return nil
	})

	g.Go(func() error {
		s.logger.Info("report server listening", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info("report server shutting down")
		return s.echo.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
