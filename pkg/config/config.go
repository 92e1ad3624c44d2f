// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	// Input/output layout
	InputDir    string
	OutputDir   string
	MappingFile string
	ScriptFile  string

	// Reconciliation settings
	ReferenceLabel string
	LegacySources  []string
	NullSentinels  []string
	WorkerPoolSize int
	Debug          bool

	// Report archiving
	ArchiveEnabled bool

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables. A .env file
// in the working directory is read first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		InputDir:    getEnv("INPUT_DIR", "INPUT"),
		OutputDir:   getEnv("OUTPUT_DIR", "OUTPUT"),
		MappingFile: getEnv("MAPPING_FILE", ""),
		ScriptFile:  getEnv("SCRIPT_FILE", ""),

		ReferenceLabel: getEnv("REFERENCE_LABEL", "SNOWFLAKE"),
		LegacySources:  getEnvAsStringSlice("LEGACY_NULL_SOURCES", []string{"DATAVISION"}),
		NullSentinels:  getEnvAsStringSlice("NULL_SENTINELS", []string{"Softbank"}),
		WorkerPoolSize: getEnvAsInt("WORKER_POOL_SIZE", 0), // 0 means use runtime.NumCPU()
		Debug:          getEnvAsBool("DEBUG", false),

		ArchiveEnabled: getEnvAsBool("ARCHIVE_ENABLED", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// DEBUG is the one-switch override: it wins over LOG_LEVEL so a run
	// can be re-executed verbosely without touching the rest of the env.
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	if cfg.MappingFile == "" {
		cfg.MappingFile = cfg.InputDir + "/CONFIG/column_mappings.json"
	}
	if cfg.ScriptFile == "" {
		cfg.ScriptFile = cfg.InputDir + "/INPUT_SQL_QUERIES.sql"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ArchiveConfig holds object storage settings for report archiving
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// LoadArchiveConfig loads archive storage configuration from environment variables
func LoadArchiveConfig() (*ArchiveConfig, error) {
	endpoint := os.Getenv("ARCHIVE_ENDPOINT")
	if endpoint == "" {
		return nil, errors.New("ARCHIVE_ENDPOINT environment variable is required")
	}

	accessKey := os.Getenv("ARCHIVE_ACCESS_KEY")
	if accessKey == "" {
		return nil, errors.New("ARCHIVE_ACCESS_KEY environment variable is required")
	}

	secretKey := os.Getenv("ARCHIVE_SECRET_KEY")
	if secretKey == "" {
		return nil, errors.New("ARCHIVE_SECRET_KEY environment variable is required")
	}

	bucket := os.Getenv("ARCHIVE_BUCKET")
	if bucket == "" {
		return nil, errors.New("ARCHIVE_BUCKET environment variable is required")
	}

	return &ArchiveConfig{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Bucket:    bucket,
		Prefix:    getEnv("ARCHIVE_PREFIX", "tablerecon"),
		UseSSL:    getEnvAsBool("ARCHIVE_USE_SSL", false),
	}, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return errors.New("input directory is required")
	}

	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}

	if c.ReferenceLabel == "" {
		return errors.New("reference label is required")
	}

	if c.WorkerPoolSize < 0 {
		return errors.New("worker pool size cannot be negative")
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
