package query

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coinchat/query-service/internal/cache"
	"github.com/coinchat/query-service/pkg/models"
)

// historyPointCap bounds any trend window read from the store.
const historyPointCap = 100

// Store is the read-only view of the local data store.
type Store interface {
	GetCoin(ctx context.Context, identifier string) (*models.CoinSnapshot, error)
	GetHistory(ctx context.Context, coinID string, since time.Time, limit int) ([]models.HistoryPoint, error)
	GetTopCoins(ctx context.Context, limit int) ([]models.CoinSnapshot, error)
}

// Remote is the provider-backed coin search consulted on local misses.
// A nil result means the coin is absent (search never errors).
type Remote interface {
	SearchCoin(ctx context.Context, query string) *models.CoinSnapshot
}

// Cache is the cache-aside gateway surface the resolver needs.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

// TrendResult is a resolved trend window: the coin, its history newest
// first, and the percent change across the window.
type TrendResult struct {
	Coin      models.CoinSnapshot
	Days      int
	Points    []models.HistoryPoint
	ChangePct float64
}

// Resolver turns an intent's parameters into normalized records. Local
// data always wins over remote, even if stale, trading freshness for
// latency and provider quota.
type Resolver struct {
	store  Store
	remote Remote
	cache  Cache
	logger *logrus.Logger
	now    func() time.Time
}

func NewResolver(store Store, remote Remote, cacheGw Cache, logger *logrus.Logger) *Resolver {
	return &Resolver{
		store:  store,
		remote: remote,
		cache:  cacheGw,
		logger: logger,
		now:    time.Now,
	}
}

// ResolveCoin resolves a single-coin lookup: cache, then local store,
// then the remote index.
func (r *Resolver) ResolveCoin(ctx context.Context, name string) (*models.CoinSnapshot, error) {
	key := cache.Key("coins", name)

	var cached models.CoinSnapshot
	if r.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	coin, err := r.store.GetCoin(ctx, name)
	if err != nil {
		return nil, err
	}
	if coin != nil {
		r.cache.Set(ctx, key, coin, cache.TTLCoins)
		return coin, nil
	}

	r.logger.WithField("coin", name).Debug("Coin not in local store, searching provider index")

	if found := r.remote.SearchCoin(ctx, name); found != nil {
		r.cache.Set(ctx, key, found, cache.TTLCoins)
		return found, nil
	}

	return nil, &CoinNotFoundError{Name: name}
}

// ResolveTrend resolves the coin and reads its local history window,
// newest first. History is only kept locally; a coin known solely to the
// remote index reports HistoryUnavailableError with its display name.
func (r *Resolver) ResolveTrend(ctx context.Context, name string, days int) (*TrendResult, error) {
	coin, err := r.store.GetCoin(ctx, name)
	if err != nil {
		return nil, err
	}
	if coin == nil {
		remote := r.remote.SearchCoin(ctx, name)
		if remote == nil {
			return nil, &CoinNotFoundError{Name: name}
		}
		return nil, &HistoryUnavailableError{Name: remote.Name}
	}

	key := cache.Key("history", coin.CoinID, strconv.Itoa(days))

	var points []models.HistoryPoint
	if !r.cache.Get(ctx, key, &points) {
		since := r.now().AddDate(0, 0, -days)
		points, err = r.store.GetHistory(ctx, coin.CoinID, since, historyPointCap)
		if err != nil {
			return nil, err
		}
		r.cache.Set(ctx, key, points, cache.TTLHistory)
	}

	if len(points) == 0 {
		return nil, &HistoryUnavailableError{Name: coin.Name}
	}

	return &TrendResult{
		Coin:      *coin,
		Days:      days,
		Points:    points,
		ChangePct: trendChange(points),
	}, nil
}

// ResolveTop reads the local ranking by market cap. No remote fallback;
// an empty store yields an empty list, not an error.
func (r *Resolver) ResolveTop(ctx context.Context, limit int) ([]models.CoinSnapshot, error) {
	return r.store.GetTopCoins(ctx, limit)
}

// trendChange computes (newest - oldest) / oldest * 100 over a
// newest-first window. A zero oldest price yields 0, which also covers
// the single-point window.
func trendChange(points []models.HistoryPoint) float64 {
	if len(points) == 0 {
		return 0
	}

	newest := points[0].Price
	oldest := points[len(points)-1].Price
	if oldest == 0 {
		return 0
	}

	return (newest - oldest) / oldest * 100
}
