package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cloudshelf/storefront/internal/cart"
	"github.com/cloudshelf/storefront/internal/catalog"
	"github.com/cloudshelf/storefront/internal/checkout"
	"github.com/cloudshelf/storefront/internal/config"
	"github.com/cloudshelf/storefront/internal/db"
	"github.com/cloudshelf/storefront/internal/events"
	"github.com/cloudshelf/storefront/internal/httpapi"
	"github.com/cloudshelf/storefront/internal/order"
	"github.com/cloudshelf/storefront/internal/payment"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lmicroseconds)

	if cfg.DatabaseDSN == "" {
		logger.Fatal("DATABASE_DSN not set")
	}
	if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
		logger.Fatalf("run migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("open db pool: %v", err)
	}
	defer pool.Close()

	cartRepo := cart.NewPostgresRepository(pool)
	attemptRepo := checkout.NewPostgresRepository(pool)

	// Shared HTTP client for the upstream bookstore API
	sharedHTTP := &http.Client{
		Timeout: cfg.UpstreamTimeout,
	}

	// Catalog cache is optional; without Redis every listing hits upstream.
	var cache *catalog.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = catalog.NewCache(rdb, cfg.CatalogCacheTTL)
	}

	catalogClient := catalog.NewClient(cfg.APIBaseURL, cfg.APIKey, sharedHTTP, cache, logger)
	paymentClient := payment.NewClient(cfg.APIBaseURL, cfg.APIKey, sharedHTTP, logger)
	orderResolver := order.NewResolver(cfg.APIBaseURL, cfg.APIKey, sharedHTTP, logger)

	// Event publishing is optional too; confirmed orders are never blocked
	// on the broker.
	var publisher checkout.EventPublisher
	if cfg.RabbitURL != "" {
		rabbitConn := events.MustDial(cfg.RabbitURL, logger)
		defer rabbitConn.Close()

		p, err := events.NewPublisher(rabbitConn)
		if err != nil {
			logger.Fatalf("create event publisher: %v", err)
		}
		defer p.Close()
		publisher = p
	}

	orchestrator := checkout.NewOrchestrator(attemptRepo, cartRepo, paymentClient, publisher, logger)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:           logger,
		Catalog:          httpapi.NewCatalogHandler(catalogClient, logger),
		Cart:             httpapi.NewCartHandler(cartRepo, logger),
		Checkout:         httpapi.NewCheckoutHandler(orchestrator, logger),
		Order:            httpapi.NewOrderHandler(orderResolver, logger),
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Printf("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
	logger.Printf("shutdown complete")
}
