package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ListenAddr string

	StatesCSVURL     string
	CandidatesCSVURL string

	// When set, feeds are loaded from these {head, rows} JSON endpoints
	// instead of being built from the CSV sheets.
	CandidatesFeedURL string
	StatesFeedURL     string

	MaxRetries     int
	HTTPTimeoutSec int
	FeedTTLSec     int
	LoadTimeoutSec int

	ExportCSVPath string
	SearchBaseURL string
	LogLevel      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":"+getEnv("PORT", "8080")),

		StatesCSVURL:     getEnv("STATES_CSV_URL", ""),
		CandidatesCSVURL: getEnv("CANDIDATES_CSV_URL", ""),

		CandidatesFeedURL: getEnv("CANDIDATES_FEED_URL", ""),
		StatesFeedURL:     getEnv("STATES_FEED_URL", ""),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		HTTPTimeoutSec: getEnvInt("HTTP_TIMEOUT_SEC", 20),
		FeedTTLSec:     getEnvInt("FEED_TTL_SEC", 600),
		LoadTimeoutSec: getEnvInt("LOAD_TIMEOUT_SEC", 60),

		ExportCSVPath: getEnv("EXPORT_CSV_PATH", ""),
		SearchBaseURL: getEnv("SEARCH_BASE_URL", "https://www.google.com/search?q=support+campaign+"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// UseRemoteFeeds reports whether feeds come from prebuilt JSON endpoints.
func (c *Config) UseRemoteFeeds() bool {
	return c.CandidatesFeedURL != ""
}

// HTTPTimeout returns the per-request timeout for outbound fetches.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// FeedTTL returns how long a loaded feed is served before being refreshed.
// Zero or less disables caching.
func (c *Config) FeedTTL() time.Duration {
	return time.Duration(c.FeedTTLSec) * time.Second
}

// LoadTimeout bounds one shared feed load, retries included.
func (c *Config) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutSec) * time.Second
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
