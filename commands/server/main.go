// Run the vacancy board server.
//
// Settings come from the environment; DATABASE_URL is required. The GraphQL
// endpoint is served at /graphql on PORT (4000 by default).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shyp/joblog/config"
	"github.com/Shyp/joblog/metrics"
	"github.com/Shyp/joblog/models/db"
	"github.com/Shyp/joblog/schema"
	"github.com/Shyp/joblog/server"
	"github.com/Shyp/joblog/setup"
	"github.com/gorilla/handlers"
)

func configure(ctx context.Context, cfg *config.Server, logger *slog.Logger) (http.Handler, *db.Pool, error) {
	connector := &setup.DatabaseURLConnector{Driver: cfg.DBDriver, URL: cfg.DatabaseURL}
	pool, err := setup.DB(ctx, connector, cfg.DBConns, cfg.AcquireTimeout, 30*time.Second)
	if err != nil {
		return nil, nil, err
	}

	s, err := schema.New()
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	metrics.Namespace = "joblog.server"
	metrics.Start("web", cfg.MetricsLogInterval, logger)

	go setup.MeasureActiveQueries(ctx, pool, 5*time.Second)
	go setup.MeasurePool(ctx, pool, 5*time.Second)
	go setup.MeasureVacancies(ctx, pool, time.Minute)

	var limiter server.Limiter
	switch {
	case cfg.RateLimitRPS <= 0:
		logger.Info("rate limiting disabled")
	case cfg.RedisURL != "":
		client, err := setup.Redis(ctx, cfg.RedisURL)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		limiter = server.NewRedisLimiter(client, cfg.RateLimitBurst, time.Second)
		logger.Info("rate limiting with redis", "limit", cfg.RateLimitBurst, "window", "1s")
	default:
		l := server.NewLocalLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		l.StartJanitor(ctx, 2*time.Minute)
		limiter = l
	}

	h := server.Get(server.Config{
		Pool:                         pool,
		Schema:                       s,
		AllowedOrigins:               cfg.AllowedOrigins,
		Limiter:                      limiter,
		TrustForwardedFor:            cfg.TrustProxyHeaders,
		AllowUnencryptedProxyTraffic: cfg.AllowUnencryptedProxyTraffic,
		DebugTraffic:                 cfg.DebugHTTPTraffic,
	})
	return h, pool, nil
}

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("could not load configuration", "err", err)
		os.Exit(2)
	}
	logger := setup.Logger(cfg.LogLevel)
	slog.SetDefault(logger)
	server.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, pool, err := configure(ctx, cfg, logger)
	if err != nil {
		logger.Error("could not start server", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           handlers.LoggingHandler(os.Stdout, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("error shutting down", "err", err)
		}
	}()

	logger.Info("listening", "port", cfg.Port, "version", config.Version)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
