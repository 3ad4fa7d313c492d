package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Analyzer AnalyzerConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// AnalyzerConfig holds document-analysis service configuration
type AnalyzerConfig struct {
	Endpoint     string
	APIKey       string
	ModelID      string
	PollInterval time.Duration
	Timeout      time.Duration
}

// StorageConfig holds object-store configuration
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// BaseURL overrides the account URL recorded on file rows; when empty
	// the store's endpoint URL is used.
	BaseURL string
}

// PipelineConfig holds the persistence defaults and container names
type PipelineConfig struct {
	ArchiveContainer string
	SourceContainer  string
	DefaultSiteID    int
	DefaultStatusID  int
	CreatedBy        string
}

// IngestConfig holds local trigger (watcher) configuration
type IngestConfig struct {
	WatchDirs   []string
	Debounce    time.Duration
	Workers     int
	QueueSize   int
	JobTimeout  time.Duration
	InitialScan bool
}

// LoadConfig loads configuration from the environment, with an optional
// .env file for local development.
func LoadConfig() *Config {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Analyzer: AnalyzerConfig{
			Endpoint:     getEnv("ANALYZER_ENDPOINT", ""),
			APIKey:       getEnv("ANALYZER_API_KEY", ""),
			ModelID:      getEnv("ANALYZER_MODEL_ID", ""),
			PollInterval: getEnvAsDuration("ANALYZER_POLL_INTERVAL", 2*time.Second),
			Timeout:      getEnvAsDuration("ANALYZER_TIMEOUT", 2*time.Minute),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
			UseSSL:    getEnv("STORAGE_USE_SSL", "true") == "true",
			BaseURL:   getEnv("STORAGE_BASE_URL", ""),
		},
		Pipeline: PipelineConfig{
			ArchiveContainer: getEnv("ARCHIVE_CONTAINER", "archive"),
			SourceContainer:  getEnv("SOURCE_CONTAINER", "eem-training"),
			DefaultSiteID:    getEnvAsInt("DEFAULT_SITE_ID", 1),
			DefaultStatusID:  getEnvAsInt("DEFAULT_STATUS_ID", 1),
			CreatedBy:        getEnv("CREATED_BY", "invoice-ingest"),
		},
		Ingest: IngestConfig{
			WatchDirs:   splitList(getEnv("WATCH_DIRS", "")),
			Debounce:    getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
			Workers:     getEnvAsInt("PIPELINE_WORKERS", 4),
			QueueSize:   getEnvAsInt("PIPELINE_QUEUE_SIZE", 256),
			JobTimeout:  getEnvAsDuration("PIPELINE_JOB_TIMEOUT", 3*time.Minute),
			InitialScan: getEnv("WATCH_INITIAL_SCAN", "false") == "true",
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Analyzer.Endpoint == "" {
		return NewAppError("CONFIG_ERROR", "ANALYZER_ENDPOINT is required", ErrInvalidInput)
	}
	if c.Analyzer.ModelID == "" {
		return NewAppError("CONFIG_ERROR", "ANALYZER_MODEL_ID is required", ErrInvalidInput)
	}
	if c.Pipeline.ArchiveContainer == "" {
		return NewAppError("CONFIG_ERROR", "ARCHIVE_CONTAINER is required", ErrInvalidInput)
	}
	return nil
}
