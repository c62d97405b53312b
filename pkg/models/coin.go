package models

import (
	"time"
)

// CoinSnapshot is the normalized market view of a single coin. Both the
// local store and the remote provider are coerced into this shape before
// any formatting happens; numeric fields are always finite.
type CoinSnapshot struct {
	CoinID       string    `json:"coin_id" db:"coin_id"`
	Symbol       string    `json:"symbol" db:"symbol"`
	Name         string    `json:"name" db:"name"`
	CurrentPrice float64   `json:"current_price" db:"current_price"`
	Volume24h    float64   `json:"volume_24h" db:"volume_24h"`
	Change24h    float64   `json:"change_24h" db:"change_24h"`
	MarketCap    float64   `json:"market_cap" db:"market_cap"`
	LastUpdated  time.Time `json:"last_updated" db:"last_updated"`
}

// HistoryPoint is one daily price observation. Sequences are delivered
// newest-first; consumers that chart them re-sort chronologically.
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Price     float64   `json:"price" db:"price"`
}
