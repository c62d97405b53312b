package seeder

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/coinchat/query-service/internal/coingecko"
	"github.com/coinchat/query-service/internal/database"
)

// Seeder keeps the local store populated: it pulls the market listing
// and recent history from the provider on a schedule and upserts them.
// It is the only writer; the query pipeline reads only.
type Seeder struct {
	remote       *coingecko.Client
	repo         *database.Repository
	cron         *cron.Cron
	logger       *logrus.Logger
	coinLimit    int
	historyCoins int
	historyDays  int
}

func New(remote *coingecko.Client, repo *database.Repository, coinLimit, historyCoins, historyDays int, logger *logrus.Logger) *Seeder {
	return &Seeder{
		remote:       remote,
		repo:         repo,
		cron:         cron.New(cron.WithSeconds()),
		logger:       logger,
		coinLimit:    coinLimit,
		historyCoins: historyCoins,
		historyDays:  historyDays,
	}
}

func (s *Seeder) Start(ctx context.Context, schedule string) error {
	s.logger.WithField("schedule", schedule).Info("Starting market data seeder")

	_, err := s.cron.AddFunc(schedule, func() {
		s.Sync(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	// Run initial sync
	go s.Sync(ctx)

	return nil
}

func (s *Seeder) Stop() {
	s.logger.Info("Stopping market data seeder")
	s.cron.Stop()
}

// Sync runs one seeding cycle. Failures are logged, never fatal; the
// next cycle retries from scratch and every upsert is idempotent.
func (s *Seeder) Sync(ctx context.Context) {
	start := time.Now()
	s.logger.Info("Starting market data sync cycle")

	coins, err := s.remote.FetchMarkets(ctx, s.coinLimit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch market listing")
		return
	}

	if err := s.repo.UpsertCoins(ctx, coins); err != nil {
		s.logger.WithError(err).Error("Failed to upsert coins")
		return
	}

	historyCount := 0
	for i, coin := range coins {
		if i >= s.historyCoins {
			break
		}

		points, err := s.remote.FetchHistory(ctx, coin.CoinID, s.historyDays)
		if err != nil {
			s.logger.WithError(err).WithField("coin_id", coin.CoinID).Warn("Failed to fetch history, skipping coin")
			continue
		}

		if err := s.repo.UpsertHistory(ctx, coin.CoinID, points); err != nil {
			s.logger.WithError(err).WithField("coin_id", coin.CoinID).Error("Failed to upsert history")
			continue
		}
		historyCount++
	}

	s.logger.WithFields(logrus.Fields{
		"coins_count":   len(coins),
		"history_coins": historyCount,
		"duration_ms":   time.Since(start).Milliseconds(),
	}).Info("Market data sync cycle completed")
}
