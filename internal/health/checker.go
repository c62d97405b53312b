package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coinchat/query-service/internal/cache"
	"github.com/coinchat/query-service/internal/database"
)

type Checker struct {
	db     *database.DB
	cache  *cache.Gateway
	logger *logrus.Logger
}

type Status struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func NewChecker(db *database.DB, cacheGw *cache.Gateway, logger *logrus.Logger) *Checker {
	return &Checker{
		db:     db,
		cache:  cacheGw,
		logger: logger,
	}
}

func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		status := c.Check(ctx)

		w.Header().Set("Content-Type", "application/json")
		if status.Status == "healthy" {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		json.NewEncoder(w).Encode(status)
	}
}

func (c *Checker) Check(ctx context.Context) Status {
	services := make(map[string]string)
	overallStatus := "healthy"

	if err := c.db.HealthCheck(); err != nil {
		services["database"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
		c.logger.WithError(err).Error("Database health check failed")
	} else {
		services["database"] = "healthy"
	}

	// Cache is optional; an unreachable redis degrades answers, it does
	// not make the service unhealthy.
	if err := c.cache.HealthCheck(ctx); err != nil {
		services["cache"] = "degraded: " + err.Error()
		c.logger.WithError(err).Warn("Cache health check failed")
	} else {
		services["cache"] = "healthy"
	}

	return Status{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Services:  services,
	}
}
