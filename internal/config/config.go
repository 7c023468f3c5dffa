package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/autoseed/internal/assets"
	"github.com/Lumos-Labs-HQ/autoseed/internal/seeder"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string   `json:"environment" mapstructure:"environment"`
	LogsDir     string   `json:"logs_dir" mapstructure:"logs_dir"`
	Database    Database `json:"database" mapstructure:"database"`
	Seeding     Seeding  `json:"seeding" mapstructure:"seeding"`
	Assets      Assets   `json:"assets" mapstructure:"assets"`
	Cache       Cache    `json:"cache" mapstructure:"cache"`
	Metrics     Metrics  `json:"metrics" mapstructure:"metrics"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

type Seeding struct {
	BatchSize     int  `json:"batch_size" mapstructure:"batch_size"`
	Strict        bool `json:"strict" mapstructure:"strict"`
	IncludeAssets bool `json:"include_assets" mapstructure:"include_assets"`
	Reset         bool `json:"reset" mapstructure:"reset"`
	Progress      bool `json:"progress" mapstructure:"progress"`
}

type Assets struct {
	Storage       string        `json:"storage" mapstructure:"storage"` // gridfs or local
	Dir           string        `json:"dir" mapstructure:"dir"`
	Bucket        string        `json:"bucket" mapstructure:"bucket"`
	PublicBaseURL string        `json:"public_base_url" mapstructure:"public_base_url"`
	Timeout       time.Duration `json:"timeout" mapstructure:"timeout"`
	MaxBytes      int64         `json:"max_bytes" mapstructure:"max_bytes"`
	MaxRetries    int           `json:"max_retries" mapstructure:"max_retries"`
}

type Cache struct {
	RedisURL string        `json:"redis_url" mapstructure:"redis_url"`
	TTL      time.Duration `json:"ttl" mapstructure:"ttl"`
}

type Metrics struct {
	PushURL string `json:"push_url" mapstructure:"push_url"`
	Job     string `json:"job" mapstructure:"job"`
}

var (
	supportedProviders    = []string{"mongodb", "mongo", "postgresql", "postgres", "mysql", "sqlite", "sqlite3", "memory"}
	supportedEnvironments = []string{"development", "staging", "production", "test"}
	supportedStorages     = []string{"gridfs", "local"}
)

// SetDefaults registers every key, so environment variables can override
// keys that no config file mentions.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("logs_dir", "logs")
	v.SetDefault("database.provider", "mongodb")
	v.SetDefault("database.url_env", "MONGODB_URI")
	v.SetDefault("seeding.batch_size", seeder.DefaultBatchSize)
	v.SetDefault("seeding.strict", false)
	v.SetDefault("seeding.include_assets", false)
	v.SetDefault("seeding.reset", false)
	v.SetDefault("seeding.progress", true)
	v.SetDefault("assets.storage", "gridfs")
	v.SetDefault("assets.dir", "assets")
	v.SetDefault("assets.bucket", "assets")
	v.SetDefault("assets.public_base_url", "")
	v.SetDefault("assets.timeout", 15*time.Second)
	v.SetDefault("assets.max_bytes", 5<<20)
	v.SetDefault("assets.max_retries", 2)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 30*24*time.Hour)
	v.SetDefault("metrics.push_url", "")
	v.SetDefault("metrics.job", "autoseed")
}

func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.LogsDir == "" {
		cfg.LogsDir = "logs"
	}
	cfg.Database.Provider = strings.ToLower(cfg.Database.Provider)
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = "mongodb"
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = "MONGODB_URI"
	}
	if cfg.Assets.Storage == "" {
		cfg.Assets.Storage = "gridfs"
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if !contains(supportedProviders, c.Database.Provider) {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}
	if !contains(supportedEnvironments, c.Environment) {
		return fmt.Errorf("unsupported environment: %s. Supported environments: %v", c.Environment, supportedEnvironments)
	}
	if c.Seeding.BatchSize < 1 {
		return fmt.Errorf("seeding.batch_size must be positive, got %d", c.Seeding.BatchSize)
	}
	if c.Seeding.IncludeAssets && !contains(supportedStorages, c.Assets.Storage) {
		return fmt.Errorf("unsupported assets.storage: %s. Supported storages: %v", c.Assets.Storage, supportedStorages)
	}
	if c.Assets.MaxBytes < 0 {
		return fmt.Errorf("assets.max_bytes cannot be negative")
	}
	return nil
}

// GetDatabaseURL reads the connection string from the configured variable.
// The memory provider needs none.
func (c *Config) GetDatabaseURL() (string, error) {
	if c.Database.Provider == "memory" {
		return "memory://", nil
	}
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) SeedOptions() seeder.Options {
	return seeder.Options{
		BatchSize:     c.Seeding.BatchSize,
		Strict:        c.Seeding.Strict,
		IncludeAssets: c.Seeding.IncludeAssets,
		Reset:         c.Seeding.Reset,
		Progress:      c.Seeding.Progress,
		Environment:   c.Environment,
		LogsDir:       c.LogsDir,
	}
}

func (c *Config) FetcherConfig() assets.Config {
	return assets.Config{
		Enabled:       c.Seeding.IncludeAssets,
		Timeout:       c.Assets.Timeout,
		MaxBytes:      c.Assets.MaxBytes,
		MaxRetries:    c.Assets.MaxRetries,
		PublicBaseURL: c.Assets.PublicBaseURL,
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
