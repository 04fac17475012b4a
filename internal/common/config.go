package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Textract   TextractConfig
	Extraction ExtractionConfig
	Ingest     IngestConfig
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

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// TextractConfig holds provider-related configuration
type TextractConfig struct {
	Region         string
	PollInterval   time.Duration
	Timeout        time.Duration
	ArtifactBucket string // empty disables artifact upload
}

// ExtractionConfig holds the extraction core's tunables
type ExtractionConfig struct {
	ConfidenceThreshold float64 // [0,1]
}

// IngestConfig holds block-dump ingestion configuration
type IngestConfig struct {
	WatchDir       string // empty disables the watcher
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", "docextract.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Textract: TextractConfig{
			Region:         getEnv("AWS_REGION", "us-east-1"),
			PollInterval:   getEnvAsDuration("TEXTRACT_POLL_INTERVAL", 2*time.Second),
			Timeout:        time.Duration(getEnvAsInt("TEXTRACT_TIMEOUT_MINUTES", 10)) * time.Minute,
			ArtifactBucket: getEnv("ARTIFACT_BUCKET", ""),
		},
		Extraction: ExtractionConfig{
			ConfidenceThreshold: getEnvAsFloat64("SIGNATURE_CONFIDENCE_THRESHOLD", 0.85),
		},
		Ingest: IngestConfig{
			WatchDir:       getEnv("WATCH_DIR", ""),
			Workers:        getEnvAsInt("WORKERS", 4),
			QueueSize:      getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 15*time.Minute),
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

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if t := c.Extraction.ConfidenceThreshold; t < 0 || t > 1 {
		return NewAppError("CONFIG_ERROR", "SIGNATURE_CONFIDENCE_THRESHOLD must be in [0,1]", ErrInvalidInput)
	}
	if c.Textract.PollInterval <= 0 || c.Textract.Timeout <= 0 {
		return NewAppError("CONFIG_ERROR", "textract poll interval and timeout must be positive", ErrInvalidInput)
	}
	return nil
}
