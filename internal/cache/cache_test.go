package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/coinchat/query-service/pkg/models"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func newTestGateway(t *testing.T) (*Gateway, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewGatewayWithClient(client, newTestLogger()), mr
}

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "crypto:coins:bitcoin", Key("coins", "bitcoin"))
	assert.Equal(t, "crypto:history:bitcoin:7", Key("history", "bitcoin", "7"))
	assert.Equal(t, "crypto:search:bitcoin cash", Key("search", "bitcoin cash"))
}

func TestGateway_RoundTrip(t *testing.T) {
	t.Parallel()

	gateway, _ := newTestGateway(t)
	ctx := context.Background()

	stored := models.CoinSnapshot{
		CoinID:       "bitcoin",
		Symbol:       "btc",
		Name:         "Bitcoin",
		CurrentPrice: 45000.50,
		LastUpdated:  time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}

	gateway.Set(ctx, Key("coins", "bitcoin"), stored, TTLCoins)

	var loaded models.CoinSnapshot
	assert.True(t, gateway.Get(ctx, Key("coins", "bitcoin"), &loaded))
	assert.Equal(t, stored, loaded)
}

func TestGateway_TTLExpiry(t *testing.T) {
	t.Parallel()

	gateway, mr := newTestGateway(t)
	ctx := context.Background()

	gateway.Set(ctx, Key("coins", "bitcoin"), "cached", TTLCoins)

	var loaded string
	assert.True(t, gateway.Get(ctx, Key("coins", "bitcoin"), &loaded))

	mr.FastForward(TTLCoins + time.Second)

	assert.False(t, gateway.Get(ctx, Key("coins", "bitcoin"), &loaded))
}

func TestGateway_MissReturnsFalse(t *testing.T) {
	t.Parallel()

	gateway, _ := newTestGateway(t)

	var loaded models.CoinSnapshot
	assert.False(t, gateway.Get(context.Background(), Key("coins", "nope"), &loaded))
}

func TestGateway_UnconfiguredIsNoop(t *testing.T) {
	t.Parallel()

	gateway := NewGateway("", newTestLogger())
	ctx := context.Background()

	// Neither operation may panic or error without a configured store.
	gateway.Set(ctx, Key("coins", "bitcoin"), "value", TTLCoins)

	var loaded string
	assert.False(t, gateway.Get(ctx, Key("coins", "bitcoin"), &loaded))
	assert.NoError(t, gateway.HealthCheck(ctx))
}

func TestGateway_UnreachableStoreDegrades(t *testing.T) {
	t.Parallel()

	gateway, mr := newTestGateway(t)
	ctx := context.Background()

	mr.Close()

	gateway.Set(ctx, Key("coins", "bitcoin"), "value", TTLCoins)

	var loaded string
	assert.False(t, gateway.Get(ctx, Key("coins", "bitcoin"), &loaded))
}
