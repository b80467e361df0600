package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"exchange-rate-resolver/internal/adapter/cache"
	httpRouter "exchange-rate-resolver/internal/adapter/http"
	"exchange-rate-resolver/internal/adapter/repository"
	"exchange-rate-resolver/internal/config"
	"exchange-rate-resolver/internal/domain/model"
	"exchange-rate-resolver/internal/domain/ports"
	"exchange-rate-resolver/internal/metrics"
	"exchange-rate-resolver/internal/service"
	"exchange-rate-resolver/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger(os.Getenv("LOG_LEVEL")).Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logger.Level, cfg.Logger.Format, os.Stdout)
	log.Info("Starting exchange rate resolver", "cache_driver", cfg.Cache.Driver)

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	ctx, cancelRefresh := context.WithCancel(context.Background())
	defer cancelRefresh()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open cache store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	rateClient := repository.NewExchangeAPI(
		cfg.ExchangeAPI.BaseURL,
		cfg.ExchangeAPI.APIKey,
		cfg.ExchangeAPI.UserAgent,
		cfg.ExchangeAPI.Timeout,
		log,
		appMetrics,
	)

	resolver := service.NewRateResolver(rateClient, store, log, service.WithMetrics(appMetrics))
	catalog := service.NewCurrencyCatalog(rateClient, store, log, service.WithMetrics(appMetrics))

	handler := httpRouter.NewHandler(resolver, catalog, log, appMetrics)
	router := httpRouter.NewRouter(handler, log, appMetrics, prometheus.DefaultGatherer)
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go refreshCache(ctx, catalog, store, cfg.ExchangeAPI.RefreshRate, log)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	cancelRefresh()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		return
	}

	log.Info("Server exited")
}

// openStore builds the CacheStore selected by cache.driver and returns its cleanup.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.CacheStore, func(), error) {
	switch cfg.Cache.Driver {
	case config.DriverRedis:
		store, err := cache.InitRedisStore(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.KeyPrefix, cfg.Cache.TTL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using Redis cache store", "addr", cfg.Redis.Addr)
		return store, func() { _ = store.Close() }, nil

	case config.DriverPostgres:
		store, err := cache.InitPostgresStore(ctx, cfg.Postgres.DSN(), cfg.Postgres.Timeout, cfg.Cache.TTL, log)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	default:
		log.Info("Using in-memory cache store", "ttl", cfg.Cache.TTL)
		return cache.NewMemoryCache(cfg.Cache.TTL, log), func() {}, nil
	}
}

// refreshCache re-warms the currency list and sweeps expired entries on every tick.
func refreshCache(ctx context.Context, catalog *service.CurrencyCatalog, store ports.CacheStore, interval time.Duration, log *logger.Logger) {
	refresh := func() {
		if _, err := catalog.ListCurrencies(ctx, model.CacheOptions{BustCache: true}); err != nil {
			log.Error("Failed to refresh currency list", "error", err)
		}
		if expiring, ok := store.(ports.ExpiringCache); ok {
			if err := expiring.ClearExpired(ctx); err != nil {
				log.Error("Failed to clear expired cache entries", "error", err)
			}
		}
	}

	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			refresh()
		case <-ctx.Done():
			log.Info("Stopping cache refresh goroutine")
			return
		}
	}
}
