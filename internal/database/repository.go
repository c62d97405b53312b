package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coinchat/query-service/pkg/models"
	"github.com/coinchat/query-service/pkg/utils"
)

// Repository holds the read queries used by the resolver and the upserts
// used by the seeder. The query pipeline itself never writes.
type Repository struct {
	db     *DB
	logger *logrus.Logger
}

func NewRepository(db *DB, logger *logrus.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetCoin looks up one coin by identifier, symbol or lower-cased display
// name. Returns nil without error when the coin is not stored locally.
func (r *Repository) GetCoin(ctx context.Context, identifier string) (*models.CoinSnapshot, error) {
	query := `
        SELECT coin_id, symbol, name,
               COALESCE(current_price::text, '0'),
               COALESCE(volume_24h::text, '0'),
               COALESCE(change_24h::text, '0'),
               COALESCE(market_cap::text, '0'),
               last_updated
        FROM coins
        WHERE coin_id = $1 OR symbol = $1 OR LOWER(name) = $1
        LIMIT 1
    `

	var (
		coin                             models.CoinSnapshot
		price, volume, change, marketCap string
	)
	err := r.db.QueryRowContext(ctx, query, identifier).Scan(
		&coin.CoinID, &coin.Symbol, &coin.Name,
		&price, &volume, &change, &marketCap,
		&coin.LastUpdated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get coin %s: %w", identifier, err)
	}

	coin.CurrentPrice = utils.ParseFloatSafe(price)
	coin.Volume24h = utils.ParseFloatSafe(volume)
	coin.Change24h = utils.ParseFloatSafe(change)
	coin.MarketCap = utils.ParseFloatSafe(marketCap)

	return &coin, nil
}

// GetHistory reads price history for a coin from the time floor onward,
// newest first, capped at limit points.
func (r *Repository) GetHistory(ctx context.Context, coinID string, since time.Time, limit int) ([]models.HistoryPoint, error) {
	query := `
        SELECT timestamp, COALESCE(price::text, '0')
        FROM coin_history
        WHERE coin_id = $1 AND timestamp >= $2
        ORDER BY timestamp DESC
        LIMIT $3
    `

	rows, err := r.db.QueryContext(ctx, query, coinID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", coinID, err)
	}
	defer rows.Close()

	var points []models.HistoryPoint
	for rows.Next() {
		var (
			point models.HistoryPoint
			price string
		)
		if err := rows.Scan(&point.Timestamp, &price); err != nil {
			r.logger.WithError(err).WithField("coin_id", coinID).Error("Failed to scan history point")
			continue
		}
		point.Price = utils.ParseFloatSafe(price)
		points = append(points, point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history for %s: %w", coinID, err)
	}

	return points, nil
}

// GetTopCoins returns up to limit coins ordered by market cap descending.
func (r *Repository) GetTopCoins(ctx context.Context, limit int) ([]models.CoinSnapshot, error) {
	query := `
        SELECT coin_id, symbol, name,
               COALESCE(current_price::text, '0'),
               COALESCE(volume_24h::text, '0'),
               COALESCE(change_24h::text, '0'),
               COALESCE(market_cap::text, '0'),
               last_updated
        FROM coins
        ORDER BY market_cap DESC NULLS LAST
        LIMIT $1
    `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top coins: %w", err)
	}
	defer rows.Close()

	var coins []models.CoinSnapshot
	for rows.Next() {
		var (
			coin                             models.CoinSnapshot
			price, volume, change, marketCap string
		)
		err := rows.Scan(
			&coin.CoinID, &coin.Symbol, &coin.Name,
			&price, &volume, &change, &marketCap,
			&coin.LastUpdated,
		)
		if err != nil {
			r.logger.WithError(err).Error("Failed to scan coin")
			continue
		}
		coin.CurrentPrice = utils.ParseFloatSafe(price)
		coin.Volume24h = utils.ParseFloatSafe(volume)
		coin.Change24h = utils.ParseFloatSafe(change)
		coin.MarketCap = utils.ParseFloatSafe(marketCap)
		coins = append(coins, coin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top coins: %w", err)
	}

	return coins, nil
}

// UpsertCoins bulk-inserts snapshots, updating existing rows on conflict.
// Idempotent; called only by the seeding job.
func (r *Repository) UpsertCoins(ctx context.Context, coins []models.CoinSnapshot) error {
	if len(coins) == 0 {
		return nil
	}

	start := time.Now()

	query := `
        INSERT INTO coins (coin_id, symbol, name, current_price, volume_24h, change_24h, market_cap, last_updated)
        VALUES `

	values := make([]string, 0, len(coins))
	args := make([]interface{}, 0, len(coins)*8)

	for i, coin := range coins {
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*8+1, i*8+2, i*8+3, i*8+4, i*8+5, i*8+6, i*8+7, i*8+8))

		args = append(args, coin.CoinID, coin.Symbol, coin.Name, coin.CurrentPrice,
			coin.Volume24h, coin.Change24h, coin.MarketCap, coin.LastUpdated)
	}

	query += strings.Join(values, ", ")
	query += ` ON CONFLICT (coin_id) DO UPDATE SET
        symbol = EXCLUDED.symbol, name = EXCLUDED.name,
        current_price = EXCLUDED.current_price, volume_24h = EXCLUDED.volume_24h,
        change_24h = EXCLUDED.change_24h, market_cap = EXCLUDED.market_cap,
        last_updated = EXCLUDED.last_updated`

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("Failed to upsert coins")
		return fmt.Errorf("failed to upsert coins: %w", err)
	}

	duration := time.Since(start)
	r.logger.WithFields(logrus.Fields{
		"coins_count": len(coins),
		"duration_ms": duration.Milliseconds(),
	}).Info("Successfully upserted coins")

	return nil
}

// UpsertHistory bulk-inserts history points for one coin, idempotent on
// (coin_id, timestamp).
func (r *Repository) UpsertHistory(ctx context.Context, coinID string, points []models.HistoryPoint) error {
	if len(points) == 0 {
		return nil
	}

	query := `
        INSERT INTO coin_history (coin_id, timestamp, price)
        VALUES `

	values := make([]string, 0, len(points))
	args := make([]interface{}, 0, len(points)*3)

	for i, point := range points {
		values = append(values, fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3))
		args = append(args, coinID, point.Timestamp, point.Price)
	}

	query += strings.Join(values, ", ")
	query += ` ON CONFLICT (coin_id, timestamp) DO UPDATE SET price = EXCLUDED.price`

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).WithField("coin_id", coinID).Error("Failed to upsert history")
		return fmt.Errorf("failed to upsert history for %s: %w", coinID, err)
	}

	r.logger.WithFields(logrus.Fields{
		"coin_id":      coinID,
		"points_count": len(points),
	}).Info("Successfully upserted coin history")

	return nil
}
