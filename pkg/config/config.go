package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. Every limit the pipeline
// observes (worker count, batch size, attempt ceiling, backoff, timeouts)
// lives here and is passed into the components that need it.
type Config struct {
	ServerPort string
	LogLevel   string

	// StorageBackend selects "sqlite" or "postgres".
	StorageBackend string
	SQLitePath     string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	// RedisAddr empty disables the checkpoint counters.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Fetcher selects "http" or "browser".
	Fetcher      string
	UserAgent    string
	FetchTimeout time.Duration
	SettleDelay  time.Duration

	WorkerCount int
	BatchSize   int
	MaxAttempts int
	BaseBackoff time.Duration

	OutputDir string
}

// Load loads configuration from the environment, with a .env file honored
// when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		StorageBackend:   getEnv("STORAGE_BACKEND", "sqlite"),
		SQLitePath:       getEnv("SQLITE_PATH", "listings.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "user"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresDB:       getEnv("POSTGRES_DB", "listings"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		Fetcher:          getEnv("FETCHER", "http"),
		UserAgent:        getEnv("USER_AGENT", ""),
		FetchTimeout:     getEnvAsDuration("FETCH_TIMEOUT_SECONDS", 15),
		SettleDelay:      getEnvAsDuration("SETTLE_DELAY_SECONDS", 2),
		WorkerCount:      getEnvAsInt("WORKER_COUNT", 3),
		BatchSize:        getEnvAsInt("BATCH_SIZE", 100),
		MaxAttempts:      getEnvAsInt("MAX_ATTEMPTS", 3),
		BaseBackoff:      getEnvAsDuration("BASE_BACKOFF_SECONDS", 1),
		OutputDir:        getEnv("OUTPUT_DIR", "output"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Second
}
