package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	PostgresURL   string
	KafkaBrokers  []string
	SnapshotEvery int
	AppendRetries int
	Redis         RedisConfig
}

// RedisConfig captures snapshot cache settings. An empty URL disables Redis;
// snapshots then live in memory only.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SnapshotTTL  time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TEMPO_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Server{
		Addr:          addr,
		PostgresURL:   os.Getenv("TEMPO_POSTGRES_URL"),
		KafkaBrokers:  splitList(os.Getenv("TEMPO_KAFKA_BROKERS")),
		SnapshotEvery: intFromEnv("TEMPO_SNAPSHOT_EVERY", 20),
		AppendRetries: intFromEnv("TEMPO_APPEND_RETRIES", 3),
		Redis: RedisConfig{
			URL:          os.Getenv("TEMPO_REDIS_URL"),
			PoolSize:     intFromEnv("TEMPO_REDIS_POOL_SIZE", 10),
			MinIdleConns: intFromEnv("TEMPO_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			SnapshotTTL:  24 * time.Hour,
		},
	}
}

func intFromEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
