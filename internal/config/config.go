package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog retrieval backends.
const (
	CatalogBackendPostgres      = "postgres"
	CatalogBackendElasticsearch = "elasticsearch"
)

// Enhancement cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB      DatabaseConfig
	Redis   RedisConfig
	Groq    GroqConfig
	Search  SearchConfig
	Catalog CatalogConfig

	CORSAllowedOrigins []string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// GroqConfig contains credentials for the LLM query enhancer. An empty
// APIKey disables the LLM path.
type GroqConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	RequestTimeout time.Duration
}

// Enabled reports whether an API key is configured.
func (g GroqConfig) Enabled() bool {
	return g.APIKey != ""
}

// SearchConfig contains query enhancement and ranking parameters.
type SearchConfig struct {
	LLMTimeout         time.Duration
	CacheTTL           time.Duration
	CacheSweepInterval time.Duration
	CacheBackend       string
	CandidateLimit     int
	VocabularyFile     string
	RateLimitPerMinute int
}

// CatalogConfig selects the candidate retrieval backend.
type CatalogConfig struct {
	Backend       string
	Elasticsearch ElasticsearchConfig
}

// ElasticsearchConfig contains Elasticsearch connection parameters.
type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
	// SyncInterval re-mirrors the catalog into the index periodically.
	// Zero disables the background sync.
	SyncInterval time.Duration
}

// Enabled reports whether at least one address is configured.
func (e ElasticsearchConfig) Enabled() bool {
	return len(e.Addresses) > 0
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "4000")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", "*")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Groq
	cfg.Groq = GroqConfig{
		APIKey:  getEnv("GROQ_API_KEY", ""),
		Model:   getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		BaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
	}

	// Search
	cfg.Search = SearchConfig{
		CacheBackend:       strings.ToLower(getEnv("ENHANCEMENT_CACHE_BACKEND", CacheBackendMemory)),
		CandidateLimit:     getEnvInt("SEARCH_CANDIDATE_LIMIT", 150),
		VocabularyFile:     getEnv("SEARCH_VOCABULARY_FILE", ""),
		RateLimitPerMinute: getEnvInt("SEARCH_RATE_LIMIT", 120),
	}

	// Catalog
	cfg.Catalog = CatalogConfig{
		Backend: strings.ToLower(getEnv("CATALOG_BACKEND", CatalogBackendPostgres)),
		Elasticsearch: ElasticsearchConfig{
			Addresses: getEnvList("ELASTICSEARCH_ADDRESSES", ""),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:     getEnv("ELASTICSEARCH_INDEX", "products"),
		},
	}

	// Durations
	var err error
	if cfg.Groq.RequestTimeout, err = parseDurationEnv("GROQ_REQUEST_TIMEOUT", "10s"); err != nil {
		return nil, fmt.Errorf("invalid GROQ_REQUEST_TIMEOUT: %w", err)
	}
	if cfg.Search.LLMTimeout, err = parseDurationEnv("LLM_TIMEOUT", "800ms"); err != nil {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
	}
	if cfg.Search.CacheTTL, err = parseDurationEnv("ENHANCEMENT_CACHE_TTL", "30m"); err != nil {
		return nil, fmt.Errorf("invalid ENHANCEMENT_CACHE_TTL: %w", err)
	}
	if cfg.Search.CacheSweepInterval, err = parseDurationEnv("ENHANCEMENT_CACHE_SWEEP", "5m"); err != nil {
		return nil, fmt.Errorf("invalid ENHANCEMENT_CACHE_SWEEP: %w", err)
	}
	if cfg.Catalog.Elasticsearch.SyncInterval, err = parseDurationEnv("ELASTICSEARCH_SYNC_INTERVAL", "0s"); err != nil {
		return nil, fmt.Errorf("invalid ELASTICSEARCH_SYNC_INTERVAL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set for authentication")
	}

	switch cfg.Search.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("ENHANCEMENT_CACHE_BACKEND must be %q or %q, got %q", CacheBackendMemory, CacheBackendRedis, cfg.Search.CacheBackend)
	}

	switch cfg.Catalog.Backend {
	case CatalogBackendPostgres:
	case CatalogBackendElasticsearch:
		if !cfg.Catalog.Elasticsearch.Enabled() {
			return errors.New("CATALOG_BACKEND=elasticsearch requires ELASTICSEARCH_ADDRESSES")
		}
	default:
		return fmt.Errorf("CATALOG_BACKEND must be %q or %q, got %q", CatalogBackendPostgres, CatalogBackendElasticsearch, cfg.Catalog.Backend)
	}

	if cfg.Search.CandidateLimit <= 0 {
		return errors.New("SEARCH_CANDIDATE_LIMIT must be positive")
	}
	if cfg.Search.LLMTimeout == 0 {
		return errors.New("LLM_TIMEOUT must be greater than zero")
	}
	if cfg.Search.CacheTTL == 0 || cfg.Search.CacheSweepInterval == 0 {
		return errors.New("ENHANCEMENT_CACHE_TTL and ENHANCEMENT_CACHE_SWEEP must be greater than zero")
	}

	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvList splits a comma-separated variable, dropping blank items.
func getEnvList(key, def string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, def), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
