package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all client configuration.
// Precedence: environment variables > config file > defaults.
type Config struct {
	// Backend
	APIBaseURL  string        `yaml:"api_base_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Session persistence
	SessionFile string `yaml:"session_file"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Resilience (transport-level failures on reads only)
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`

	// Store behaviour
	ErrorTTL       time.Duration `yaml:"error_ttl"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
	PageSize       int           `yaml:"page_size"`

	// Observability
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	MetricsAddr  string `yaml:"metrics_addr"`
}

// Load reads configuration from the optional YAML file and the environment.
func Load() *Config {
	cfg := &Config{
		APIBaseURL:     "http://localhost:8080/api",
		HTTPTimeout:    10 * time.Second,
		SessionFile:    defaultSessionFile(),
		LogLevel:       "info",
		MaxRetries:     2,
		InitialBackoff: 100 * time.Millisecond,
		ErrorTTL:       5 * time.Second,
		SearchDebounce: 300 * time.Millisecond,
		PageSize:       10,
		OTLPEndpoint:   "",
		MetricsAddr:    "",
	}

	cfg.mergeFile(configFilePath())
	cfg.mergeEnv()
	return cfg
}

func configFilePath() string {
	if p := os.Getenv("CRMDESK_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "crmdesk", "config.yaml")
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".crmdesk-session.json"
	}
	return filepath.Join(dir, "crmdesk", "session.json")
}

// mergeFile overlays values from a YAML config file. A missing or unreadable
// file is ignored.
func (c *Config) mergeFile(path string) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = yaml.Unmarshal(data, c)
}

// mergeEnv overlays values from environment variables.
func (c *Config) mergeEnv() {
	c.APIBaseURL = getEnv("API_BASE_URL", c.APIBaseURL)
	c.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", c.HTTPTimeout)
	c.SessionFile = getEnv("SESSION_FILE", c.SessionFile)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.MaxRetries = getEnvInt("MAX_RETRIES", c.MaxRetries)
	c.InitialBackoff = getEnvDuration("INITIAL_BACKOFF", c.InitialBackoff)
	c.ErrorTTL = getEnvDuration("ERROR_TTL", c.ErrorTTL)
	c.SearchDebounce = getEnvDuration("SEARCH_DEBOUNCE", c.SearchDebounce)
	c.PageSize = getEnvInt("PAGE_SIZE", c.PageSize)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)
	c.MetricsAddr = getEnv("METRICS_ADDR", c.MetricsAddr)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
