package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Akseler/landing/internal/api/router"
	"github.com/Akseler/landing/internal/app/bootstrap"
	appconfig "github.com/Akseler/landing/internal/config"
	httpmiddleware "github.com/Akseler/landing/internal/http/middleware"
	"github.com/Akseler/landing/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting landing API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
		logger.Info("oauth state stored in redis", "addr", cfg.RedisAddr)
	}

	metricsHandler, registerer := setupMetrics(cfg.MetricsEnabled)

	calendarHandler := bootstrap.BuildCalendarHandler(cfg, bootstrap.CalendarDeps{
		Credentials: bootstrap.BuildCredentialStore(cfg, pool, logger),
		States:      bootstrap.BuildStateStore(redisClient),
		Registerer:  registerer,
		Logger:      logger,
	})

	submitLimiter := httpmiddleware.NewRateLimiter(cfg.SubmitRatePerMinute, cfg.SubmitRateBurst)
	go submitLimiter.Run(ctx)

	r := router.New(&router.Config{
		Logger:             logger,
		Calendar:           calendarHandler,
		SubmitLimiter:      submitLimiter,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics returns the /metrics handler and the registry collectors
// register with. Both are nil when metrics are disabled.
func setupMetrics(enabled bool) (http.Handler, prometheus.Registerer) {
	if !enabled {
		return nil, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), reg
}
