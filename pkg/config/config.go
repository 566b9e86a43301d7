package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Twitter scraper
type Config struct {
	// Twitter API settings
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry behaviour for the feed client
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Persistent storage settings
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Media resolution settings
	Media MediaConfig `yaml:"media" json:"media"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds Twitter API specific configuration
type TwitterConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	BearerToken    string        `yaml:"bearer_token" json:"bearer_token"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	PageSize       int           `yaml:"page_size" json:"page_size"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// RetryConfig holds retry configuration for the feed client
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// StorageConfig holds persistence settings
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" json:"database_path"`
}

// MediaConfig holds media resolver settings
type MediaConfig struct {
	Directory       string        `yaml:"directory" json:"directory"`
	DownloadTimeout time.Duration `yaml:"download_timeout" json:"download_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			BaseURL:        "https://api.twitter.com/1.1",
			UserAgent:      "twscraper/1.0",
			PageSize:       200,
			RequestTimeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Retry: RetryConfig{
			Enabled:     true,
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			MaxDelay:    30 * time.Second,
		},
		Storage: StorageConfig{
			DatabasePath: "./twscraper.db",
		},
		Media: MediaConfig{
			Directory:       "./media",
			DownloadTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults for
// anything the file does not set, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Missing files are not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("TWSCRAPER_BEARER_TOKEN"); token != "" {
		c.Twitter.BearerToken = token
	}
	if baseURL := os.Getenv("TWSCRAPER_BASE_URL"); baseURL != "" {
		c.Twitter.BaseURL = baseURL
	}
	if userAgent := os.Getenv("TWSCRAPER_USER_AGENT"); userAgent != "" {
		c.Twitter.UserAgent = userAgent
	}
	if dbPath := os.Getenv("TWSCRAPER_DATABASE_PATH"); dbPath != "" {
		c.Storage.DatabasePath = dbPath
	}
	if mediaDir := os.Getenv("TWSCRAPER_MEDIA_DIR"); mediaDir != "" {
		c.Media.Directory = mediaDir
	}
	if level := os.Getenv("TWSCRAPER_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if rpm := os.Getenv("TWSCRAPER_REQUESTS_PER_MINUTE"); rpm != "" {
		v, err := strconv.Atoi(rpm)
		if err != nil {
			return fmt.Errorf("invalid TWSCRAPER_REQUESTS_PER_MINUTE: %w", err)
		}
		c.RateLimit.RequestsPerMinute = v
	}
	return nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Twitter.BaseURL == "" {
		return errors.New("twitter.base_url must not be empty")
	}
	if c.Twitter.PageSize <= 0 {
		return errors.New("twitter.page_size must be positive")
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		return errors.New("rate_limit.requests_per_minute must be positive")
	}
	if c.Retry.MaxAttempts < 0 {
		return errors.New("retry.max_attempts must not be negative")
	}
	if c.Storage.DatabasePath == "" {
		return errors.New("storage.database_path must not be empty")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("unknown logging level: %s", c.Logging.Level)
	}
	return nil
}

// Save writes the configuration to a YAML file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
