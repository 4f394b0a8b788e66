package config

import (
	"avito-position-probe/models"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"

	SessionBackendMemory   = "memory"
	SessionBackendPostgres = "postgres"
)

type Config struct {
	BaseURL        string
	RequestDelay   time.Duration
	MaxQueries     int
	RequestTimeout time.Duration
	RequestsPerMin int
	MaxRetries     int
	MaxWorkers     int
	FetchMode      string
	Headless       bool
	CSVPath        string
	LogLevel       string
	LogFormat      string
	SessionBackend string
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://www.avito.ru",
		RequestDelay:   20 * time.Second,
		MaxQueries:     10,
		RequestTimeout: 25 * time.Second,
		RequestsPerMin: 6,
		MaxRetries:     3,
		MaxWorkers:     2,
		FetchMode:      FetchModeHTTP,
		Headless:       true,
		CSVPath:        "",
		LogLevel:       "info",
		LogFormat:      "text",
		SessionBackend: SessionBackendMemory,
		DBHost:         "localhost",
		DBPort:         5433,
		DBUser:         "postgres",
		DBPassword:     "postgres",
		DBName:         "avito_probe",
		DBSSLMode:      "disable",
	}
}

// Load reads an optional .env file, then overlays environment variables on the
// defaults. A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	def := DefaultConfig()
	cfg := &Config{
		BaseURL:        strings.TrimRight(getEnv("AVITO_BASE_URL", def.BaseURL), "/"),
		RequestDelay:   getEnvAsDuration("REQUEST_DELAY", def.RequestDelay),
		MaxQueries:     getEnvAsInt("MAX_QUERIES", def.MaxQueries),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", def.RequestTimeout),
		RequestsPerMin: getEnvAsInt("REQUESTS_PER_MINUTE", def.RequestsPerMin),
		MaxRetries:     getEnvAsInt("MAX_RETRIES", def.MaxRetries),
		MaxWorkers:     getEnvAsInt("MAX_WORKERS", def.MaxWorkers),
		FetchMode:      strings.ToLower(getEnv("FETCH_MODE", def.FetchMode)),
		Headless:       getEnvAsBool("HEADLESS", def.Headless),
		CSVPath:        getEnv("CSV_PATH", def.CSVPath),
		LogLevel:       getEnv("LOG_LEVEL", def.LogLevel),
		LogFormat:      getEnv("LOG_FORMAT", def.LogFormat),
		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", def.SessionBackend)),
		DBHost:         getEnv("DB_HOST", def.DBHost),
		DBPort:         getEnvAsInt("DB_PORT", def.DBPort),
		DBUser:         getEnv("DB_USER", def.DBUser),
		DBPassword:     getEnv("DB_PASSWORD", def.DBPassword),
		DBName:         getEnv("DB_NAME", def.DBName),
		DBSSLMode:      getEnv("DB_SSLMODE", def.DBSSLMode),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the sweep cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return &models.ConfigError{Field: "AVITO_BASE_URL", Reason: "is required"}
	case c.MaxQueries <= 0:
		return &models.ConfigError{Field: "MAX_QUERIES", Reason: "must be positive"}
	case c.MaxWorkers <= 0:
		return &models.ConfigError{Field: "MAX_WORKERS", Reason: "must be positive"}
	case c.RequestDelay < 0:
		return &models.ConfigError{Field: "REQUEST_DELAY", Reason: "must not be negative"}
	case c.RequestTimeout <= 0:
		return &models.ConfigError{Field: "REQUEST_TIMEOUT", Reason: "must be positive"}
	case c.FetchMode != FetchModeHTTP && c.FetchMode != FetchModeBrowser:
		return &models.ConfigError{Field: "FETCH_MODE", Reason: fmt.Sprintf("unknown mode %q", c.FetchMode)}
	case c.SessionBackend != SessionBackendMemory && c.SessionBackend != SessionBackendPostgres:
		return &models.ConfigError{Field: "SESSION_BACKEND", Reason: fmt.Sprintf("unknown backend %q", c.SessionBackend)}
	}
	return nil
}

// DSN builds the PostgreSQL connection string used by the session store.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("20s") or plain seconds ("20").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
