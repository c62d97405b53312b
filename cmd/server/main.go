package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coinchat/query-service/internal/cache"
	"github.com/coinchat/query-service/internal/coingecko"
	"github.com/coinchat/query-service/internal/config"
	"github.com/coinchat/query-service/internal/database"
	"github.com/coinchat/query-service/internal/health"
	"github.com/coinchat/query-service/internal/query"
	"github.com/coinchat/query-service/internal/seeder"
	"github.com/coinchat/query-service/internal/server"
	"github.com/coinchat/query-service/pkg/utils"
)

func main() {
	logger := utils.NewLogger("query-service")

	cfg := config.Load()
	logger.WithFields(logrus.Fields{
		"port":          cfg.Port,
		"seed_enabled":  cfg.SeedEnabled,
		"seed_schedule": cfg.SeedSchedule,
	}).Info("Configuration loaded")

	db, err := database.NewConnection(cfg.DatabaseURI, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	cacheGw := cache.NewGateway(cfg.RedisURI, logger)
	remote := coingecko.NewClient(cfg.CoinGeckoBaseURL, cacheGw, logger)
	repo := database.NewRepository(db, logger)

	resolver := query.NewResolver(repo, remote, cacheGw, logger)
	service := query.NewService(query.NewClassifier(), resolver, query.NewFormatter(), logger)

	checker := health.NewChecker(db, cacheGw, logger)
	httpServer := server.New(service, logger).Start(cfg.Port, checker.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seed *seeder.Seeder
	if cfg.SeedEnabled {
		seed = seeder.New(remote, repo, cfg.SeedCoinLimit, cfg.SeedHistoryCoins, cfg.SeedHistoryDays, logger)
		if err := seed.Start(ctx, cfg.SeedSchedule); err != nil {
			logger.WithError(err).Fatal("Failed to start seeder")
		}
	}

	logger.Info("Query service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down query service...")

	if seed != nil {
		seed.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shutdown server gracefully")
	}

	cancel()

	logger.Info("Query service stopped")
}
