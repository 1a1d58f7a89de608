// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Identity providers.
const (
	IdentityFirebase = "firebase"
	IdentityLocal    = "local"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Identity  IdentityConfig
	Payment   PaymentConfig
	Events    EventsConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	DataPath    string // search index, local auth key
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ClientDomain string // allowed CORS origin and checkout redirect base
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// IdentityConfig selects and configures the bearer token verifier.
type IdentityConfig struct {
	Provider string
	// FirebaseServiceKey is the base64-encoded service account JSON.
	FirebaseServiceKey string
	// LocalTokenDuration is the lifetime of tokens minted by bookctl.
	LocalTokenDuration time.Duration
}

// PaymentConfig holds checkout provider settings.
type PaymentConfig struct {
	StripeSecretKey string
	Currency        string
}

// EventsConfig holds RabbitMQ settings. An empty URL disables publishing.
type EventsConfig struct {
	AMQPURL  string
	Queue    string
	PoolSize int
}

// RateLimitConfig bounds per-IP write traffic.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("bookcourier", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the search index and local auth key")
	databaseURL := fs.String("database-url", "", "SQLite database path")
	port := fs.String("port", "", "Server port (default: 3000)")
	clientDomain := fs.String("client-domain", "", "Allowed CORS origin and checkout redirect base")
	identityProvider := fs.String("identity-provider", "", "Identity provider (firebase, local)")
	amqpURL := fs.String("amqp-url", "", "RabbitMQ URL (empty disables event publishing)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			DataPath:    getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL: getConfigValue(*databaseURL, "DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Port:         getConfigValue(*port, "PORT", "3000"),
			ClientDomain: strings.TrimRight(getConfigValue(*clientDomain, "CLIENT_DOMAIN", "http://localhost:5173"), "/"),
		},
		Identity: IdentityConfig{
			Provider:           strings.ToLower(getConfigValue(*identityProvider, "IDENTITY_PROVIDER", IdentityFirebase)),
			FirebaseServiceKey: getConfigValue("", "FB_SERVICE_KEY", ""),
		},
		Payment: PaymentConfig{
			StripeSecretKey: getConfigValue("", "STRIPE_SECRET_KEY", ""),
			Currency:        strings.ToLower(getConfigValue("", "PAYMENT_CURRENCY", "usd")),
		},
		Events: EventsConfig{
			AMQPURL:  getConfigValue(*amqpURL, "AMQP_URL", ""),
			Queue:    getConfigValue("", "AMQP_QUEUE", "bookcourier.events"),
			PoolSize: getIntConfigValue("", "AMQP_POOL_SIZE", 4),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getIntConfigValue("", "RATE_LIMIT_RPM", 30),
			Burst:             getIntConfigValue("", "RATE_LIMIT_BURST", 10),
		},
	}

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		dst       *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{"", "LOCAL_TOKEN_DURATION", "24h", &cfg.Identity.LocalTokenDuration},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Database.URL == "" {
		return errors.New("database url cannot be empty after expansion")
	}

	if c.Server.Port == "" {
		return errors.New("PORT is required")
	}

	switch c.Identity.Provider {
	case IdentityFirebase:
		if c.Identity.FirebaseServiceKey == "" {
			return errors.New("FB_SERVICE_KEY is required when IDENTITY_PROVIDER=firebase")
		}
		if _, err := base64.StdEncoding.DecodeString(c.Identity.FirebaseServiceKey); err != nil {
			return fmt.Errorf("FB_SERVICE_KEY is not valid base64: %w", err)
		}
	case IdentityLocal:
		if c.App.Environment == "production" {
			return errors.New("IDENTITY_PROVIDER=local is not allowed in production")
		}
	default:
		return fmt.Errorf("invalid identity provider: %q (must be firebase or local)", c.Identity.Provider)
	}

	if c.App.Environment == "production" && c.Payment.StripeSecretKey == "" {
		return errors.New("STRIPE_SECRET_KEY is required in production")
	}

	if c.Events.AMQPURL != "" && c.Events.PoolSize < 1 {
		return fmt.Errorf("AMQP_POOL_SIZE must be at least 1, got %d", c.Events.PoolSize)
	}

	if c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_RPM must be at least 1, got %d", c.RateLimit.RequestsPerMinute)
	}

	return nil
}

// FirebaseCredentialsJSON decodes the service account key.
func (c *Config) FirebaseCredentialsJSON() ([]byte, error) {
	return base64.StdEncoding.DecodeString(c.Identity.FirebaseServiceKey)
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandPaths resolves the data directory and the database path.
// The database defaults to <data path>/bookcourier.db.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	dataPath, err := expandPath(c.App.DataPath, filepath.Join(homeDir, "BookCourier", "data"))
	if err != nil {
		return err
	}
	c.App.DataPath = dataPath

	// In-memory and URI forms are passed through untouched.
	if c.Database.URL == ":memory:" || strings.HasPrefix(c.Database.URL, "file:") {
		return nil
	}

	dbPath, err := expandPath(c.Database.URL, filepath.Join(dataPath, "bookcourier.db"))
	if err != nil {
		return err
	}
	c.Database.URL = dbPath
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Env vars already set take precedence over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
