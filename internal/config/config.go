package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DisplayModeCollapsed = "collapsed"
	DisplayModeExpanded  = "expanded"
)

// Config holds all configuration for the client
type Config struct {
	// Verification service configuration
	VerifyServiceURL string
	VerifyTimeout    time.Duration

	// Presentation configuration
	EvidenceDisplayMode string

	// Server configuration
	ServerPort string
	LogLevel   string

	// CORS configuration for the JSON state endpoint
	CORSOrigins []string

	// Session configuration
	SessionTTL time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	timeoutSeconds, err := getEnvInt("VERIFY_TIMEOUT_SECONDS", 120)
	if err != nil {
		return nil, err
	}
	ttlMinutes, err := getEnvInt("SESSION_TTL_MINUTES", 30)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		VerifyServiceURL:    strings.TrimRight(getEnvWithDefault("VERIFY_SERVICE_URL", "http://localhost:8000"), "/"),
		VerifyTimeout:       time.Duration(timeoutSeconds) * time.Second,
		EvidenceDisplayMode: strings.ToLower(getEnvWithDefault("EVIDENCE_DISPLAY_MODE", DisplayModeCollapsed)),
		ServerPort:          getEnvWithDefault("SERVER_PORT", "5173"),
		LogLevel:            getEnvWithDefault("LOG_LEVEL", "INFO"),
		SessionTTL:          time.Duration(ttlMinutes) * time.Minute,
	}

	// Parse CORS origins
	corsOriginsStr := getEnvWithDefault("CORS_ORIGINS", "http://localhost:5173")
	cfg.CORSOrigins = strings.Split(corsOriginsStr, ",")
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values Load cannot default its way out of
func (c *Config) Validate() error {
	u, err := url.Parse(c.VerifyServiceURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("VERIFY_SERVICE_URL must be an absolute http(s) URL, got %q", c.VerifyServiceURL)
	}
	if c.VerifyTimeout <= 0 {
		return fmt.Errorf("VERIFY_TIMEOUT_SECONDS must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}
	switch c.EvidenceDisplayMode {
	case DisplayModeCollapsed, DisplayModeExpanded:
	default:
		return fmt.Errorf("EVIDENCE_DISPLAY_MODE must be %q or %q, got %q", DisplayModeCollapsed, DisplayModeExpanded, c.EvidenceDisplayMode)
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
