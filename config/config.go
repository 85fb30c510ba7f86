package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"reelspin/database"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Account configuration
	StartingBalance     int64
	BalanceSyncInterval time.Duration // How often dirty balances are retried against the store

	// Transport configuration
	HTTPAddr            string
	GRPCAddr            string // Empty disables the decision gRPC server
	DecisionServiceAddr string // Remote decision service; empty uses the local policy
	DecisionTimeout     time.Duration

	// Spin pacing
	AutoSpinDelay  time.Duration
	TurboSpinDelay time.Duration

	// Policy configuration
	ScheduleFile string // YAML file with the scheduled win table
	HouseWinCap  int64  // Total paid wins after which probability mode stops paying (0 = no cap)

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated); empty disables publishing

	// Announcements
	DiscordWebhookURL string
	BigWinThreshold   int64

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine; the process environment still applies
	_ = godotenv.Load(getEnvWithDefault("ENV_FILE", ".env"))

	config := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		StartingBalance:     100000,
		BalanceSyncInterval: 30 * time.Second,

		HTTPAddr:            getEnvWithDefault("HTTP_ADDR", ":5000"),
		GRPCAddr:            os.Getenv("GRPC_ADDR"),
		DecisionServiceAddr: os.Getenv("DECISION_SERVICE_ADDR"),
		DecisionTimeout:     3 * time.Second,

		AutoSpinDelay:  1000 * time.Millisecond,
		TurboSpinDelay: 150 * time.Millisecond,

		ScheduleFile: os.Getenv("SCHEDULE_FILE"),
		HouseWinCap:  5000000,

		NATSServers: os.Getenv("NATS_SERVERS"),

		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		BigWinThreshold:   100000,

		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "reelspin"),
		OTelExportIntervalMillis: 15000,

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := strconv.ParseInt(balance, 10, 64); err == nil && parsed >= 0 {
			config.StartingBalance = parsed
		}
	}
	if limit := os.Getenv("HOUSE_WIN_CAP"); limit != "" {
		if parsed, err := strconv.ParseInt(limit, 10, 64); err == nil && parsed >= 0 {
			config.HouseWinCap = parsed
		}
	}
	if threshold := os.Getenv("BIG_WIN_THRESHOLD"); threshold != "" {
		if parsed, err := strconv.ParseInt(threshold, 10, 64); err == nil && parsed > 0 {
			config.BigWinThreshold = parsed
		}
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MILLIS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil && parsed > 0 {
			config.OTelExportIntervalMillis = parsed
		}
	}
	config.DecisionTimeout = getDurationWithDefault("DECISION_TIMEOUT", config.DecisionTimeout)
	config.AutoSpinDelay = getDurationWithDefault("AUTO_SPIN_DELAY", config.AutoSpinDelay)
	config.TurboSpinDelay = getDurationWithDefault("TURBO_SPIN_DELAY", config.TurboSpinDelay)
	config.BalanceSyncInterval = getDurationWithDefault("BALANCE_SYNC_INTERVAL", config.BalanceSyncInterval)

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationWithDefault parses a Go duration string ("150ms", "3s") from the environment
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		StartingBalance:     100000,
		BalanceSyncInterval: time.Second,
		HTTPAddr:            ":0",
		DecisionTimeout:     time.Second,
		AutoSpinDelay:       20 * time.Millisecond,
		TurboSpinDelay:      5 * time.Millisecond,
		HouseWinCap:         5000000,
		BigWinThreshold:     100000,
		OTelExporterType:    "none",
		OTelServiceName:     "reelspin-test",
		LogLevel:            "debug",
	}
}
