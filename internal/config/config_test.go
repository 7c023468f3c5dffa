package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "logs", cfg.LogsDir)
	assert.Equal(t, "mongodb", cfg.Database.Provider)
	assert.Equal(t, "MONGODB_URI", cfg.Database.URLEnv)
	assert.Equal(t, 100, cfg.Seeding.BatchSize)
	assert.False(t, cfg.Seeding.Strict)
	assert.False(t, cfg.Seeding.IncludeAssets)
	assert.True(t, cfg.Seeding.Progress)
	assert.Equal(t, 15*time.Second, cfg.Assets.Timeout)
	assert.Equal(t, "autoseed", cfg.Metrics.Job)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "autoseed.config.yaml")
	content := `
environment: Production
logs_dir: /var/log/autoseed
database:
  provider: sqlite
  url_env: SEED_DB
seeding:
  batch_size: 250
  strict: true
  include_assets: true
assets:
  storage: local
  timeout: 3s
cache:
  redis_url: redis://localhost:6379/2
  ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "Setup: WriteFile should not fail")

	v := newViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "/var/log/autoseed", cfg.LogsDir)
	assert.Equal(t, "sqlite", cfg.Database.Provider)
	assert.Equal(t, "SEED_DB", cfg.Database.URLEnv)
	assert.Equal(t, 250, cfg.Seeding.BatchSize)
	assert.True(t, cfg.Seeding.Strict)
	assert.Equal(t, "local", cfg.Assets.Storage)
	assert.Equal(t, 3*time.Second, cfg.Assets.Timeout)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	require.NoError(t, cfg.Validate())

	opts := cfg.SeedOptions()
	assert.Equal(t, 250, opts.BatchSize)
	assert.True(t, opts.Strict)
	assert.True(t, opts.IncludeAssets)
	assert.Equal(t, "production", opts.Environment)

	fc := cfg.FetcherConfig()
	assert.True(t, fc.Enabled)
	assert.Equal(t, 3*time.Second, fc.Timeout)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("AUTOSEED_SEEDING_BATCH_SIZE", "7")
	t.Setenv("AUTOSEED_DATABASE_PROVIDER", "postgresql")

	v := newViper(t)
	v.SetEnvPrefix("AUTOSEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Seeding.BatchSize)
	assert.Equal(t, "postgresql", cfg.Database.Provider)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mutate func(*Config)

		wantErr bool
	}{
		"Valid":                   {mutate: func(c *Config) {}},
		"Unknown provider":        {mutate: func(c *Config) { c.Database.Provider = "oracle" }, wantErr: true},
		"Unknown environment":     {mutate: func(c *Config) { c.Environment = "qa" }, wantErr: true},
		"Negative batch size":     {mutate: func(c *Config) { c.Seeding.BatchSize = -1 }, wantErr: true},
		"MySQL provider":          {mutate: func(c *Config) { c.Database.Provider = "mysql" }},
		"Unknown asset storage": {mutate: func(c *Config) {
			c.Seeding.IncludeAssets = true
			c.Assets.Storage = "s3"
		}, wantErr: true},
		"Storage ignored without assets": {mutate: func(c *Config) { c.Assets.Storage = "s3" }},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg, err := LoadFrom(newViper(t))
			require.NoError(t, err)
			tc.mutate(cfg)

			if tc.wantErr {
				require.Error(t, cfg.Validate())
				return
			}
			require.NoError(t, cfg.Validate())
		})
	}
}

func TestZeroBatchSizeIsRejected(t *testing.T) {
	t.Parallel()

	v := newViper(t)
	v.Set("seeding.batch_size", 0)

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Seeding.BatchSize, "An explicit zero must reach validation")
	require.ErrorContains(t, cfg.Validate(), "seeding.batch_size must be positive")
}

func TestGetDatabaseURL(t *testing.T) {
	t.Setenv("SEED_TEST_URI", "mongodb://localhost:27017/autoseed")

	cfg := &Config{Database: Database{Provider: "mongodb", URLEnv: "SEED_TEST_URI"}}
	url, err := cfg.GetDatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017/autoseed", url)

	cfg.Database.URLEnv = "SEED_TEST_MISSING_URI"
	_, err = cfg.GetDatabaseURL()
	require.Error(t, err)

	cfg.Database.Provider = "memory"
	url, err = cfg.GetDatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "memory://", url)
}
