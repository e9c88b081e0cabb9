package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config collects the runtime settings for the service. All values come
// from environment variables with working defaults, so a bare process
// starts against a local SQLite file.
type Config struct {
	// StorageBackend selects the durable key-value store:
	// "sqlite" (default), "mysql", "redis" or "memory".
	StorageBackend string

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string

	// MySQL settings, used when StorageBackend is "mysql".
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Redis settings, used when StorageBackend is "redis".
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Simulated network latency for the asynchronous operations.
	// Zero disables the delay (tests run with the zero value).
	AuthLatency   time.Duration
	CreateLatency time.Duration
	VoteLatency   time.Duration

	// SeedPolls loads the sample dataset when the store has no polls yet.
	SeedPolls bool

	// Per-user vote rate limiting, disabled unless ENABLE_RATE_LIMIT=true.
	RateLimitEnabled bool
	UserVoteRate     int // votes per second
	UserVoteBurst    int
}

// Load reads the configuration from the environment.
func Load() *Config {
	cfg := &Config{
		StorageBackend: getEnv("STORAGE_BACKEND", "sqlite"),
		SQLitePath:     getEnv("SQLITE_PATH", "pollstore.db"),
		DBUser:         getEnv("DB_USER", "voteuser"),
		DBPassword:     getEnv("DB_PASSWORD", "votepassword"),
		DBHost:         getEnv("DB_HOST", "mysql"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBName:         getEnv("DB_NAME", "votingdb"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		AuthLatency:    getEnvDuration("AUTH_LATENCY", time.Second),
		CreateLatency:  getEnvDuration("CREATE_LATENCY", time.Second),
		VoteLatency:    getEnvDuration("VOTE_LATENCY", 500*time.Millisecond),
		SeedPolls:      getEnv("SEED_POLLS", "true") == "true",
		UserVoteRate:   getEnvInt("USER_RATE_LIMIT", 10),
	}
	cfg.UserVoteBurst = cfg.UserVoteRate * 2
	if burst := getEnvInt("USER_RATE_BURST", 0); burst > 0 {
		cfg.UserVoteBurst = burst
	}
	if os.Getenv("ENABLE_RATE_LIMIT") == "true" {
		cfg.RateLimitEnabled = true
	}
	return cfg
}

// getEnv returns the environment variable value or the default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid value for %s: %q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
