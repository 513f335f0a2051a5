package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/OmeoneChain/omeonechain-sub009/internal/config"
	"github.com/OmeoneChain/omeonechain-sub009/internal/db"
	"github.com/OmeoneChain/omeonechain-sub009/internal/handler"
	"github.com/OmeoneChain/omeonechain-sub009/internal/middleware"
	"github.com/OmeoneChain/omeonechain-sub009/internal/repository"
	"github.com/OmeoneChain/omeonechain-sub009/internal/router"
	"github.com/OmeoneChain/omeonechain-sub009/internal/service"
)

const expiryInterval = time.Minute

func main() {
	cfg := config.Load()

	middleware.InitLogger(cfg.LogLevel, "discovery-engine")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	handler.InitMetrics(pool)

	// Repositories
	contentRepo := repository.NewContentRepo(pool)
	engagementRepo := repository.NewEngagementRepo(pool)
	requestRepo := repository.NewRequestRepo(pool)
	graphRepo := repository.NewGraphRepo(pool)

	// Services
	trustSvc := service.NewTrustService(graphRepo, contentRepo, cache)
	trendingSvc := service.NewTrendingService(contentRepo, cache, cfg.TrendingPoolSize, cfg.TrendingWindowDays)
	discoverySvc := service.NewDiscoveryService(contentRepo, trustSvc)
	engagementSvc := service.NewEngagementService(engagementRepo, cache)
	requestSvc := service.NewRequestService(requestRepo)

	// Background workers
	ledgerWorker := service.NewLedgerWorker(pool, engagementRepo, cache)
	go ledgerWorker.Start(ctx)

	expiryWorker := service.NewExpiryWorker(requestRepo, expiryInterval)
	go expiryWorker.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "OmeoneChain Discovery API",
		ServerHeader: "OmeoneChain",
	})

	router.Setup(app, &router.Handlers{
		Feed:       handler.NewFeedHandler(trendingSvc, discoverySvc),
		Engagement: handler.NewEngagementHandler(engagementSvc),
		Trust:      handler.NewTrustHandler(trustSvc),
		Request:    handler.NewRequestHandler(requestSvc),
		Stats:      handler.NewStatsHandler(contentRepo),
		Health:     handler.NewHealthHandler(pool, cache.Client()),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("discovery engine starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
