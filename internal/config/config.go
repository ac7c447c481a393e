package config

import (
	"errors"
	"fmt"
	"os"

	"ridepulse/internal/models"

	"github.com/joho/godotenv"
	yamlv2 "gopkg.in/yaml.v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Redis      RedisConfig      `yaml:"redis"`
	API        APIConfig        `yaml:"api"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	CacheTTL int    `yaml:"cache_ttl_seconds"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// PipelineConfig tunes cleaning and aggregation. The booking status
// label sets live in a separate file (see LoadStatuses) because they
// are dataset vocabulary, not deployment settings.
type PipelineConfig struct {
	TopN              int    `yaml:"top_n"`
	HistogramBins     int    `yaml:"histogram_bins"`
	MaxUploadBytes    int64  `yaml:"max_upload_bytes"`
	SessionTTLSeconds int    `yaml:"session_ttl_seconds"`
	MaxSessions       int    `yaml:"max_sessions"`
	StatusesPath      string `yaml:"statuses_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// StatusLabels groups booking status labels by meaning. Which labels
// exist is dataset-defined, so they are configuration rather than an
// enum in code.
type StatusLabels struct {
	Completed         []string `yaml:"completed"`
	CustomerCancelled []string `yaml:"customer_cancelled"`
	DriverCancelled   []string `yaml:"driver_cancelled"`
	NoDriver          []string `yaml:"no_driver"`
}

func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Substitute environment variables before parsing.
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// LoadStatuses reads the status label sets. An empty path falls back
// to the defaults for the NCR dataset.
func LoadStatuses(path string) (*StatusLabels, error) {
	if path == "" {
		return DefaultStatuses(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statuses file: %w", err)
	}

	var wrapper struct {
		Statuses StatusLabels `yaml:"statuses"`
	}
	if err := yamlv2.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse statuses file: %w", err)
	}

	labels := wrapper.Statuses
	if len(labels.Completed) == 0 {
		return nil, errors.New("statuses file defines no completed labels")
	}
	return &labels, nil
}

func DefaultStatuses() *StatusLabels {
	return &StatusLabels{
		Completed:         models.DefaultCompletedStatuses,
		CustomerCancelled: models.DefaultCustomerCancelledStatuses,
		DriverCancelled:   models.DefaultDriverCancelledStatuses,
		NoDriver:          models.DefaultNoDriverStatuses,
	}
}

func (c *Config) Validate() error {
	if c.API.Auth.Enabled && len(c.API.Auth.APIKeys) == 0 {
		return errors.New("api auth enabled but no api keys configured")
	}

	// Check for duplicate API keys
	seen := make(map[string]bool, len(c.API.Auth.APIKeys))
	for _, k := range c.API.Auth.APIKeys {
		if k.Key == "" {
			return fmt.Errorf("api key '%s' has empty key value", k.Name)
		}
		if seen[k.Key] {
			return fmt.Errorf("duplicate api key found: %s", k.Name)
		}
		seen[k.Key] = true
	}

	if c.Pipeline.MaxUploadBytes < 0 {
		return errors.New("pipeline.max_upload_bytes must not be negative")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}

	if c.Redis.CacheTTL == 0 {
		c.Redis.CacheTTL = models.DefaultCacheTTL
	}

	// Pipeline defaults
	if c.Pipeline.TopN == 0 {
		c.Pipeline.TopN = models.DefaultTopN
	}
	if c.Pipeline.HistogramBins == 0 {
		c.Pipeline.HistogramBins = models.DefaultHistogramBins
	}
	if c.Pipeline.MaxUploadBytes == 0 {
		c.Pipeline.MaxUploadBytes = models.DefaultMaxUploadBytes
	}
	if c.Pipeline.SessionTTLSeconds == 0 {
		c.Pipeline.SessionTTLSeconds = models.DefaultSessionTTL
	}
	if c.Pipeline.MaxSessions == 0 {
		c.Pipeline.MaxSessions = models.DefaultMaxSessions
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
