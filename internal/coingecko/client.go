package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/coinchat/query-service/internal/cache"
	"github.com/coinchat/query-service/pkg/models"
)

var (
	// ErrRateLimited is returned when the provider answers 429 and the
	// retry budget is exhausted.
	ErrRateLimited = errors.New("provider rate limited")
	// ErrUnavailable covers every other provider failure.
	ErrUnavailable = errors.New("provider unavailable")
)

const (
	historyRetryBase  = 10 * time.Second
	historyMaxRetries = 3
)

// Client fetches market data from a CoinGecko-compatible API. Search
// results go through the cache gateway; other callers do their own
// caching.
type Client struct {
	client *resty.Client
	cache  *cache.Gateway
	logger *logrus.Logger
	sleep  func(time.Duration)
}

func NewClient(baseURL string, cacheGw *cache.Gateway, logger *logrus.Logger) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)
	client.SetHeader("Accept", "application/json")

	return &Client{
		client: client,
		cache:  cacheGw,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// FetchMarkets returns up to limit coins ordered by market cap descending.
func (c *Client) FetchMarkets(ctx context.Context, limit int) ([]models.CoinSnapshot, error) {
	return c.fetchMarkets(ctx, limit, "")
}

func (c *Client) fetchMarkets(ctx context.Context, limit int, ids string) ([]models.CoinSnapshot, error) {
	params := map[string]string{
		"vs_currency": "usd",
		"order":       "market_cap_desc",
		"per_page":    strconv.Itoa(limit),
		"page":        "1",
	}
	if ids != "" {
		params["ids"] = ids
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/coins/markets")
	if err != nil {
		c.logger.WithError(err).Error("Failed to fetch markets")
		return nil, fmt.Errorf("failed to fetch markets: %w", ErrUnavailable)
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("failed to fetch markets: %w", err)
	}

	var rows []marketRow
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal markets: %w", ErrUnavailable)
	}

	coins := make([]models.CoinSnapshot, 0, len(rows))
	for _, row := range rows {
		coins = append(coins, row.toSnapshot())
	}

	c.logger.WithField("coins_count", len(coins)).Debug("Fetched market listing")
	return coins, nil
}

// FetchHistory returns the daily price series for a coin, newest first.
// On 429 the call waits 10s * 2^attempt and retries; the schedule is
// 10s, 20s, 40s, and the fourth failure is terminal.
func (c *Client) FetchHistory(ctx context.Context, coinID string, days int) ([]models.HistoryPoint, error) {
	for attempt := 0; ; attempt++ {
		points, err := c.fetchHistoryOnce(ctx, coinID, days)
		if err == nil {
			return points, nil
		}
		if !errors.Is(err, ErrRateLimited) || attempt >= historyMaxRetries {
			return nil, err
		}

		delay := historyRetryBase * time.Duration(1<<attempt)
		c.logger.WithFields(logrus.Fields{
			"coin_id": coinID,
			"attempt": attempt + 1,
			"delay":   delay,
		}).Warn("History fetch rate limited, backing off")
		c.sleep(delay)
	}
}

func (c *Client) fetchHistoryOnce(ctx context.Context, coinID string, days int) ([]models.HistoryPoint, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"vs_currency": "usd",
			"days":        strconv.Itoa(days),
			"interval":    "daily",
		}).
		Get("/coins/" + coinID + "/market_chart")
	if err != nil {
		c.logger.WithError(err).WithField("coin_id", coinID).Error("Failed to fetch history")
		return nil, fmt.Errorf("failed to fetch history for %s: %w", coinID, ErrUnavailable)
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", coinID, err)
	}

	var chart marketChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history for %s: %w", coinID, ErrUnavailable)
	}

	return chart.toPoints(), nil
}

// searchResult is the cached outcome of a coin search. Misses are cached
// too, so repeated lookups of garbage input don't hit the provider.
type searchResult struct {
	Found bool                 `json:"found"`
	Coin  *models.CoinSnapshot `json:"coin,omitempty"`
}

// SearchCoin scans the provider's full coin index for the query: exact
// id/symbol/name match first, then first substring match, both in index
// order. Search is advisory, so unexpected provider errors degrade to an
// absent result instead of propagating.
func (c *Client) SearchCoin(ctx context.Context, query string) *models.CoinSnapshot {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return nil
	}

	key := cache.Key("search", normalized)

	var cached searchResult
	if c.cache.Get(ctx, key, &cached) {
		return cached.Coin
	}

	index, err := c.fetchIndex(ctx)
	if err != nil {
		c.logger.WithError(err).WithField("query", normalized).Warn("Coin search failed, treating as not found")
		return nil
	}

	match := matchIndex(index, normalized)
	if match == nil {
		c.cache.Set(ctx, key, searchResult{Found: false}, cache.TTLSearch)
		return nil
	}

	coins, err := c.fetchMarkets(ctx, 1, match.ID)
	if err != nil || len(coins) == 0 {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"query":   normalized,
			"coin_id": match.ID,
		}).Warn("Failed to hydrate search match, treating as not found")
		return nil
	}

	coin := coins[0]
	c.cache.Set(ctx, key, searchResult{Found: true, Coin: &coin}, cache.TTLSearch)
	return &coin
}

func (c *Client) fetchIndex(ctx context.Context) ([]indexEntry, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/coins/list")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch coin index: %w", ErrUnavailable)
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("failed to fetch coin index: %w", err)
	}

	var index []indexEntry
	if err := json.Unmarshal(resp.Body(), &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal coin index: %w", ErrUnavailable)
	}

	return index, nil
}

// matchIndex prefers the first exact match in index order, then the
// first substring match.
func matchIndex(index []indexEntry, query string) *indexEntry {
	var substring *indexEntry

	for i := range index {
		entry := &index[i]
		id := strings.ToLower(entry.ID)
		symbol := strings.ToLower(entry.Symbol)
		name := strings.ToLower(entry.Name)

		if id == query || symbol == query || name == query {
			return entry
		}
		if substring == nil &&
			(strings.Contains(id, query) || strings.Contains(symbol, query) || strings.Contains(name, query)) {
			substring = entry
		}
	}

	return substring
}

func checkStatus(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == http.StatusOK:
		return nil
	case resp.StatusCode() == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("unexpected status %d: %w", resp.StatusCode(), ErrUnavailable)
	}
}
