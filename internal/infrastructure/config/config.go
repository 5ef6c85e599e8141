package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration
	DatabasePath    string

	// Review writes
	PersistTimeout time.Duration
	WriterWorkers  int // 0 persists ratings synchronously

	// Session housekeeping
	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration

	// Stats cache, disabled when RedisAddr is empty
	RedisAddr     string
	StatsCacheTTL time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()
	return &Config{
		ServerAddress:        mustGetenv("SERVER_ADDRESS"),
		ShutdownTimeout:      mustGetDuration("SHUTDOWN_TIMEOUT"),
		DatabasePath:         getenvDefault("DATABASE_PATH", "gelos.db"),
		PersistTimeout:       getDurationDefault("PERSIST_TIMEOUT", 5*time.Second),
		WriterWorkers:        getIntDefault("WRITER_WORKERS", 4),
		SessionIdleTimeout:   getDurationDefault("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		SessionSweepInterval: getDurationDefault("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		StatsCacheTTL:        getDurationDefault("STATS_CACHE_TTL", time.Minute),
	}
}

func mustGetenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	return v
}

func mustGetDuration(k string) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getDurationDefault(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getIntDefault(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Fatalf("config: %s=%q is not a valid non-negative integer", k, v)
	}
	return n
}
