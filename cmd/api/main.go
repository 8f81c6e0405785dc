package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ridgelinearms/armory-backend/api/routes"
	"github.com/ridgelinearms/armory-backend/internal/catalog"
	"github.com/ridgelinearms/armory-backend/internal/compliance"
	"github.com/ridgelinearms/armory-backend/internal/ffl"
	"github.com/ridgelinearms/armory-backend/internal/fulfillment"
	"github.com/ridgelinearms/armory-backend/internal/orders"
	"github.com/ridgelinearms/armory-backend/internal/pricing"
	"github.com/ridgelinearms/armory-backend/internal/rules"
	"github.com/ridgelinearms/armory-backend/pkg/config"
	"github.com/ridgelinearms/armory-backend/pkg/db"
	"github.com/ridgelinearms/armory-backend/pkg/logger"
	"github.com/ridgelinearms/armory-backend/pkg/metrics"
	"github.com/ridgelinearms/armory-backend/pkg/migrate"
	"github.com/ridgelinearms/armory-backend/pkg/outbox"
	"github.com/ridgelinearms/armory-backend/pkg/redis"
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
	cfg.Service.Kind = "api"

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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.NewEngineMetrics(registry)

	catalogRepo := catalog.NewRepo(dbClient.DB())
	dealerRepo := ffl.NewRepo(dbClient.DB())
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	ruleLoader, err := pricing.NewLoader(pricing.NewRepo(dbClient.DB()), logg, engineMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create rule loader", err)
		os.Exit(1)
	}

	router, err := fulfillment.NewRouter(cfg.Routing)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment router", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	allocator, err := orders.NewRedisAllocator(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create base number allocator", err)
		os.Exit(1)
	}
	highest, err := ordersRepo.MaxBaseNumber(context.Background())
	if err != nil {
		logg.Error(context.Background(), "failed to read highest base number", err)
		os.Exit(1)
	}
	if err := allocator.Seed(context.Background(), highest); err != nil {
		logg.Error(context.Background(), "failed to seed base number counter", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(
		dbClient,
		ordersRepo,
		catalogRepo,
		ruleLoader,
		router,
		dealerRepo,
		allocator,
		outboxSvc,
		logg,
		engineMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	rulesSvc, err := rules.NewService(dbClient, rules.NewRepository(dbClient.DB()), outboxSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create rules service", err)
		os.Exit(1)
	}

	holdRepo := compliance.NewRepository(dbClient.DB())
	tracker, err := compliance.NewTracker(dbClient, holdRepo, dealerRepo, outboxSvc, logg, engineMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create hold tracker", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:     cfg,
			Logger:     logg,
			Redis:      redisClient,
			Metrics:    registry,
			Catalog:    catalogRepo,
			RuleLoader: ruleLoader,
			Orders:     ordersSvc,
			Rules:      rulesSvc,
			HoldQueue:  holdRepo,
			Tracker:    tracker,
			Dealers:    dealerRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
