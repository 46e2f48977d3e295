package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port            string
	UpstreamTimeout time.Duration

	// Upstream bookstore API (catalog, payment, orders)
	APIBaseURL string
	APIKey     string

	// Persistence and infra
	DatabaseDSN string
	RabbitURL   string
	RedisAddr   string

	CatalogCacheTTL time.Duration

	// CORS
	CORSAllowOrigins []string
}

func Load() Config {
	port := getenv("PORT", "8080")

	timeout := parseDuration(getenv("UPSTREAM_TIMEOUT", "10s"), 10*time.Second)
	cacheTTL := parseDuration(getenv("CATALOG_CACHE_TTL", "60s"), 60*time.Second)

	cfg := Config{
		Port:            port,
		UpstreamTimeout: timeout,

		APIBaseURL: getenv("API_BASE_URL", "http://bookstore-api:3001/api"),
		APIKey:     getenv("API_KEY", ""),

		DatabaseDSN: getenv("DATABASE_DSN", ""),
		RabbitURL:   getenv("RABBITMQ_URL", ""),
		RedisAddr:   getenv("REDIS_ADDR", ""),

		CatalogCacheTTL: cacheTTL,

		CORSAllowOrigins: splitCSV(getenv("CORS_ALLOW_ORIGINS", "*")),
	}

	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
