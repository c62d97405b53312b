package coingecko

import (
	"encoding/json"
	"time"

	"github.com/coinchat/query-service/pkg/models"
	"github.com/coinchat/query-service/pkg/utils"
)

// marketRow is the provider's market listing shape. Numeric fields can be
// null; normalization coerces them to zero so no raw provider shape
// crosses into the resolver.
type marketRow struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	CurrentPrice             *float64 `json:"current_price"`
	TotalVolume              *float64 `json:"total_volume"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	MarketCap                *float64 `json:"market_cap"`
	LastUpdated              string   `json:"last_updated"`
}

// indexEntry is one row of the provider's full coin index.
type indexEntry struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// marketChart is the provider's time-series shape: [timestamp_ms, price]
// pairs, oldest first.
type marketChart struct {
	Prices [][]json.Number `json:"prices"`
}

func (row marketRow) toSnapshot() models.CoinSnapshot {
	lastUpdated, err := time.Parse(time.RFC3339, row.LastUpdated)
	if err != nil {
		lastUpdated = time.Now().UTC()
	}

	return models.CoinSnapshot{
		CoinID:       row.ID,
		Symbol:       row.Symbol,
		Name:         row.Name,
		CurrentPrice: derefFloat(row.CurrentPrice),
		Volume24h:    derefFloat(row.TotalVolume),
		Change24h:    derefFloat(row.PriceChangePercentage24h),
		MarketCap:    derefFloat(row.MarketCap),
		LastUpdated:  lastUpdated,
	}
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return utils.SanitizeFloat(*f)
}

func (chart marketChart) toPoints() []models.HistoryPoint {
	points := make([]models.HistoryPoint, 0, len(chart.Prices))

	// Provider delivers oldest first; reverse to newest first.
	for i := len(chart.Prices) - 1; i >= 0; i-- {
		pair := chart.Prices[i]
		if len(pair) < 2 {
			continue
		}

		ms, err := pair[0].Int64()
		if err != nil {
			continue
		}

		points = append(points, models.HistoryPoint{
			Timestamp: time.UnixMilli(ms).UTC(),
			Price:     utils.ParseFloatSafe(pair[1].String()),
		})
	}

	return points
}
