package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// TTLs are fixed per key type; redis is trusted to expire keys.
const (
	TTLCoins   = 60 * time.Second
	TTLHistory = 300 * time.Second
	TTLSearch  = 3600 * time.Second
)

// Gateway is a cache-aside layer over redis. A nil or unreachable client
// degrades Get and Set to no-ops; caching is an optimization, never a
// correctness dependency.
type Gateway struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewGateway(redisURI string, logger *logrus.Logger) *Gateway {
	if redisURI == "" {
		logger.Warn("Redis not configured, caching disabled")
		return &Gateway{logger: logger}
	}

	opts, err := redis.ParseURL(redisURI)
	if err != nil {
		logger.WithError(err).Warn("Invalid redis URI, caching disabled")
		return &Gateway{logger: logger}
	}

	return &Gateway{
		client: redis.NewClient(opts),
		logger: logger,
	}
}

// NewGatewayWithClient wires an existing client; used by tests.
func NewGatewayWithClient(client *redis.Client, logger *logrus.Logger) *Gateway {
	return &Gateway{client: client, logger: logger}
}

// Key builds a namespaced cache key: crypto:<type>:<arg1>:<arg2>...
// Free-text arguments are lower-cased by callers before they get here.
func Key(keyType string, args ...string) string {
	parts := append([]string{"crypto", keyType}, args...)
	return strings.Join(parts, ":")
}

// Get unmarshals the cached value for key into dest and reports whether
// a value was found. Any cache failure is treated as a miss.
func (g *Gateway) Get(ctx context.Context, key string, dest interface{}) bool {
	if g == nil || g.client == nil {
		return false
	}

	data, err := g.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			g.logger.WithError(err).WithField("key", key).Debug("Cache get failed")
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		g.logger.WithError(err).WithField("key", key).Debug("Failed to unmarshal cached value")
		return false
	}

	return true
}

// Set stores value under key with the given TTL. Failures are logged and
// swallowed.
func (g *Gateway) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if g == nil || g.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		g.logger.WithError(err).WithField("key", key).Debug("Failed to marshal value for cache")
		return
	}

	if err := g.client.Set(ctx, key, data, ttl).Err(); err != nil {
		g.logger.WithError(err).WithField("key", key).Debug("Cache set failed")
	}
}

// HealthCheck pings redis; reports healthy when caching is disabled.
func (g *Gateway) HealthCheck(ctx context.Context) error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Ping(ctx).Err()
}
