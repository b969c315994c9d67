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

	"storeledger/backend/internal/cache"
	"storeledger/backend/internal/config"
	"storeledger/backend/internal/httpapi"
	"storeledger/backend/internal/inventory"
	"storeledger/backend/internal/lock"
	"storeledger/backend/internal/logging"
	"storeledger/backend/internal/metrics"
	"storeledger/backend/internal/service"
	"storeledger/backend/internal/stats"
	"storeledger/backend/internal/store"
	"storeledger/backend/internal/store/memory"
	pgstore "storeledger/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	if err := validateSecurityConfig(cfg); err != nil {
		logger.Fatalf("invalid security configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with in-memory fallback", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		logger.Info("repository: postgres")
	} else {
		repo = memory.NewSeeded()
		logger.Info("repository: in-memory")
	}

	var (
		cacheStore cache.StatisticsCache = cache.NewMemoryStatisticsCache()
		locker     lock.Locker           = lock.NewLocal()
	)
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisStatisticsCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warnf("redis unavailable (%v), using in-process cache and locks", err)
			_ = redisCache.Close()
		} else {
			cacheStore = redisCache
			locker = lock.NewRedis(redisCache.Client(), time.Duration(cfg.LockTTLSeconds)*time.Second, logger)
			closers = append(closers, redisCache.Close)
			logger.Info("cache: redis")
		}
	} else {
		logger.Info("cache: in-process")
	}

	m := metrics.New()
	engine := stats.NewEngine(cacheStore, time.Duration(cfg.StatisticsTTLSeconds)*time.Second, logger, m)
	svc := service.New(repo, inventory.NewLedger(inventory.Policy(cfg.StockPolicy), logger, m), engine, service.Options{
		Locker:   locker,
		Logger:   logger,
		Metrics:  m,
		Location: cfg.Location(),
	})
	api := httpapi.New(svc, httpapi.NewIdentity(cfg.AuthSecret), cfg.AllowedOrigin, logger, m)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Infof("store ledger listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Errorf("close error: %v", err)
		}
	}

	logger.Info("server stopped")
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("LEDGER_TIMEZONE %q is not a known zone: %w", cfg.Timezone, err)
	}
	return nil
}
