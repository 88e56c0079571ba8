package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/techb2bnew/coconut-delivery/api/controllers"
	"github.com/techb2bnew/coconut-delivery/api/routes"
	"github.com/techb2bnew/coconut-delivery/internal/estimation"
	"github.com/techb2bnew/coconut-delivery/internal/estimation/session"
	"github.com/techb2bnew/coconut-delivery/internal/orders"
	"github.com/techb2bnew/coconut-delivery/internal/rules"
	"github.com/techb2bnew/coconut-delivery/pkg/config"
	"github.com/techb2bnew/coconut-delivery/pkg/db"
	"github.com/techb2bnew/coconut-delivery/pkg/logger"
	"github.com/techb2bnew/coconut-delivery/pkg/metrics"
	"github.com/techb2bnew/coconut-delivery/pkg/migrate"
	"github.com/techb2bnew/coconut-delivery/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis is optional. Without it the estimator reads rules straight
	// from the database on every request.
	var redisClient *redis.Client
	if cfg.FeatureFlags.RuleCache && (cfg.Redis.URL != "" || cfg.Redis.Address != "") {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Warn(context.Background(), "redis unavailable, continuing without rule cache")
			redisClient = nil
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	estimatorMetrics := metrics.NewEstimatorMetrics(registry)

	rulesRepo, err := rules.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create rule repository", err)
		os.Exit(1)
	}
	ruleSource := rulesRepo
	if redisClient != nil {
		ruleSource, err = rules.NewCachedRepository(rulesRepo, redisClient, cfg.Estimator.RuleCacheTTL, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create cached rule repository", err)
			os.Exit(1)
		}
	}

	estimator, err := estimation.NewService(ruleSource, logg, estimatorMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create estimation service", err)
		os.Exit(1)
	}

	sessions, err := session.NewManager(estimator, cfg.Estimator.Debounce(), logg, estimatorMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create estimate session manager", err)
		os.Exit(1)
	}
	defer sessions.Shutdown()

	ordersRepo, err := orders.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create order repository", err)
		os.Exit(1)
	}
	ordersSvc, err := orders.NewService(ordersRepo, estimator, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	var cachePinger controllers.Pinger
	if redisClient != nil {
		cachePinger = redisClient
	}
	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, cachePinger, estimator, sessions, ruleSource, ordersRepo, ordersSvc, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
