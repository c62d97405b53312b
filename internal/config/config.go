package config

import (
	"os"
	"strconv"
)

type Config struct {
	DatabaseURI      string
	RedisURI         string
	CoinGeckoBaseURL string
	Port             string
	SeedEnabled      bool
	SeedSchedule     string
	SeedCoinLimit    int
	SeedHistoryCoins int
	SeedHistoryDays  int
}

func Load() *Config {
	return &Config{
		DatabaseURI:      getEnv("DB_URI", "postgres://localhost:5432/coinchat?sslmode=disable"),
		RedisURI:         getEnv("REDIS_URI", ""),
		CoinGeckoBaseURL: getEnv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
		Port:             getEnv("PORT", "8080"),
		SeedEnabled:      getEnvBool("SEED_ENABLED", true),
		SeedSchedule:     getEnv("SEED_SCHEDULE", "0 */10 * * * *"),
		SeedCoinLimit:    getEnvInt("SEED_COIN_LIMIT", 100),
		SeedHistoryCoins: getEnvInt("SEED_HISTORY_COINS", 10),
		SeedHistoryDays:  getEnvInt("SEED_HISTORY_DAYS", 30),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
