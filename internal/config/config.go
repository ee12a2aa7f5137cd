package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret string
	JWTIssuer string

	SearchAPIBaseURL string
	SearchAPIKey     string
	SearchAPITimeout time.Duration
	SearchPageLimit  int

	CompletionBaseURL string
	CompletionAPIKey  string
	CompletionModel   string
	CompletionTimeout time.Duration

	NATSURL         string
	NATSConnTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	TraceCollectorURL string

	// Pipeline tuning. These trade API rate-limit pressure against latency
	// and are deliberately not hard-coded at call sites.
	MaxQueries         int
	SearchBatchSize    int
	ExtractChunkSize   int
	ExtractConcurrency int
	ScoreChunkSize     int
	ScoreConcurrency   int
	EnrichTopN         int

	// ScanInterval enables the periodic scan scheduler when > 0.
	ScanInterval time.Duration
}

// Load reads configuration from the environment, optionally seeded from a
// .env file when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Port:        getEnvString("PORT", "8080"),
		DatabaseURL: getEnvString("DATABASE_URL", ""),

		JWTSecret: getEnvString("JWT_SECRET", "dev-secret-change"),
		JWTIssuer: getEnvString("JWT_ISSUER", "jobscout"),

		SearchAPIBaseURL: getEnvString("SEARCH_API_BASE_URL", "https://api.firecrawl.dev"),
		SearchAPIKey:     getEnvString("SEARCH_API_KEY", ""),
		SearchAPITimeout: getEnvDuration("SEARCH_API_TIMEOUT", 30*time.Second),
		SearchPageLimit:  getEnvInt("SEARCH_PAGE_LIMIT", 20),

		CompletionBaseURL: getEnvString("COMPLETION_BASE_URL", "https://ai.gateway.lovable.dev/v1"),
		CompletionAPIKey:  getEnvString("COMPLETION_API_KEY", ""),
		CompletionModel:   getEnvString("COMPLETION_MODEL", "google/gemini-3-flash-preview"),
		CompletionTimeout: getEnvDuration("COMPLETION_TIMEOUT", 60*time.Second),

		NATSURL:         getEnvString("NATS_URL", "nats://localhost:4222"),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 6*time.Hour),

		TraceCollectorURL: getEnvString("TRACE_COLLECTOR_URL", ""),

		MaxQueries:         getEnvInt("MAX_QUERIES", 80),
		SearchBatchSize:    getEnvInt("SEARCH_BATCH_SIZE", 5),
		ExtractChunkSize:   getEnvInt("EXTRACT_CHUNK_SIZE", 20),
		ExtractConcurrency: getEnvInt("EXTRACT_CONCURRENCY", 3),
		ScoreChunkSize:     getEnvInt("SCORE_CHUNK_SIZE", 10),
		ScoreConcurrency:   getEnvInt("SCORE_CONCURRENCY", 3),
		EnrichTopN:         getEnvInt("ENRICH_TOP_N", 5),

		ScanInterval: getEnvDuration("SCAN_INTERVAL", 0),
	}

	return config, nil
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
