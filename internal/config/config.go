package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// Scoring weights. Must sum to 1 so the composite stays in [0,1].
	WeightText  = 0.35
	WeightPhone = 0.25
	WeightEmail = 0.20
	WeightName  = 0.15
	WeightTime  = 0.05

	// Clustering
	DefaultThreshold = 0.72

	// Normalization
	MaxTextLen          = 5000
	EmailBlockPrefixLen = 4

	// TF-IDF model
	TFIDFMinDocFreq  = 2
	TFIDFMaxFeatures = 20000

	// Dedupe run lock
	RunLockKey   = "dedupe:run_lock"
	RunLockTTL   = 10 * time.Minute
	WatermarkKey = "dedupe:watermark"
)

// Config holds the runtime settings read from the environment.
type Config struct {
	ListenAddr    string
	RedisAddr     string
	RedisPassword string
	DefaultRegion string // region for phone parsing, e.g. "IN"
	Threshold     float64

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
}

// Load reads the configuration from environment variables, applying defaults
// for anything unset.
func Load() *Config {
	cfg := &Config{
		ListenAddr:    envOr("LISTEN_ADDR", ":8080"),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		DefaultRegion: envOr("DEFAULT_REGION", "IN"),
		Threshold:     DefaultThreshold,
		DBHost:        envOr("DB_HOST", "localhost"),
		DBUser:        envOr("DB_USER", "user"),
		DBPassword:    envOr("DB_PASSWORD", "password"),
		DBName:        envOr("DB_NAME", "grievancedesk"),
		DBPort:        envOr("DB_PORT", "5432"),
	}
	if raw := os.Getenv("DEDUPE_THRESHOLD"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 && v <= 1 {
			cfg.Threshold = v
		}
	}
	return cfg
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
