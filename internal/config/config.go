// Package config reads runtime settings from the environment. Call
// godotenv.Load before Load to pick up a local .env file.
package config

import (
	"os"
	"strconv"
	"strings"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=ccchat port=5432 sslmode=disable TimeZone=UTC"

type Config struct {
	Port        string
	GinMode     string
	LogLevel    string
	DatabaseURL string

	// NatsURL 为空时不发布投票事件
	NatsURL     string
	NatsSubject string

	CacheSize int
	HotWindow int // 热门排序参与计算的最近帖子数
	PageSize  int
}

func Load() Config {
	return Config{
		Port:        getenv("PORT", "8080"),
		GinMode:     getenv("GIN_MODE", "release"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		DatabaseURL: getenv("DATABASE_URL", defaultDSN),
		NatsURL:     getenv("NATS_URL", ""),
		NatsSubject: getenv("NATS_SUBJECT", "ccchat.votes"),
		CacheSize:   envInt("CACHE_SIZE", 500),
		HotWindow:   envInt("HOT_WINDOW", 500),
		PageSize:    envInt("PAGE_SIZE", 30),
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
