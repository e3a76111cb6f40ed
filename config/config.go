package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// Run-scoped inputs (weekend count, zip code, radius) come from CLI flags instead.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	TuroBaseURL    string
	GeocodeBaseURL string
	SearchMake     string
	SearchModel    string
	ItemsPerPage   int
	PickupTime     string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	HTTPTimeout    time.Duration

	CSVOutputDir string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		TuroBaseURL:    getEnv("TURO_BASE_URL", "https://turo.com"),
		GeocodeBaseURL: getEnv("GEOCODE_BASE_URL", "https://api.zippopotam.us"),
		SearchMake:     getEnv("SEARCH_MAKE", "Tesla"),
		SearchModel:    getEnv("SEARCH_MODEL", "Model 3"),
		ItemsPerPage:   getEnvInt("ITEMS_PER_PAGE", 200),
		PickupTime:     getEnv("PICKUP_TIME", "10:00"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 500),
		MaxRetries:     getEnvInt("MAX_RETRIES", 4),
		RetryBaseDelay: getEnvDuration("RETRY_BASE_DELAY_MS", 1000),
		RetryMaxDelay:  getEnvDuration("RETRY_MAX_DELAY_MS", 8000),
		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT_MS", 15000),

		CSVOutputDir: getEnv("CSV_OUTPUT_DIR", "./output"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallbackMs int) time.Duration {
	return time.Duration(getEnvInt(key, fallbackMs)) * time.Millisecond
}
