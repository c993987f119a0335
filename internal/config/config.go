package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cesargomez89/gtstats/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port        string
	DataDir     string
	DBPath      string
	BaseURL     string
	APIBaseURL  string
	FetchDelay  time.Duration
	HTTPTimeout time.Duration
	LogLevel    string
	LogFormat   string
	Env         string
	CORSOrigin  string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", constants.DefaultPort),
		DataDir:     getEnv("DATA_DIR", constants.DefaultDataDir),
		DBPath:      getEnv("DB_PATH", constants.DefaultDBPath),
		BaseURL:     getEnv("GT_BASE_URL", constants.DefaultBaseURL),
		APIBaseURL:  getEnv("GT_API_BASE_URL", constants.DefaultAPIBaseURL),
		FetchDelay:  getEnvMillis("FETCH_DELAY_MS", constants.DefaultFetchDelay),
		HTTPTimeout: getEnvMillis("HTTP_TIMEOUT_MS", constants.DefaultHTTPTimeout),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		Env:         getEnv("APP_ENV", "production"),
		CORSOrigin:  getEnv("CORS_ORIGIN", constants.DefaultCORSOrigin),
	}

	// Development serves to any origin, mirroring the relaxed policy there.
	if cfg.Development() && os.Getenv("CORS_ORIGIN") == "" {
		cfg.CORSOrigin = "*"
	}

	return cfg
}

// Development reports whether the scheduler should stay disarmed.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DataDir == "" {
		errors = append(errors, "DATA_DIR cannot be empty")
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.BaseURL == "" {
		errors = append(errors, "GT_BASE_URL cannot be empty")
	} else if !validURL(c.BaseURL) {
		errors = append(errors, fmt.Sprintf("GT_BASE_URL is not a valid URL: %s", c.BaseURL))
	}

	if c.APIBaseURL == "" {
		errors = append(errors, "GT_API_BASE_URL cannot be empty")
	} else if !validURL(c.APIBaseURL) {
		errors = append(errors, fmt.Sprintf("GT_API_BASE_URL is not a valid URL: %s", c.APIBaseURL))
	}

	if c.FetchDelay < 0 {
		errors = append(errors, "FETCH_DELAY_MS cannot be negative")
	}

	if c.HTTPTimeout <= 0 {
		errors = append(errors, "HTTP_TIMEOUT_MS must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvMillis retrieves an environment variable expressed in milliseconds.
func getEnvMillis(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	ms, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
