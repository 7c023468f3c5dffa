package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Lumos-Labs-HQ/autoseed/internal/config"
	"github.com/Lumos-Labs-HQ/autoseed/internal/seeder"
	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and restores flag state afterwards.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		seedDryRun = false
		for _, name := range []string{"strict", "reset", "include-assets"} {
			_ = seedCmd.Flags().Set(name, "false")
		}
		_ = seedCmd.Flags().Set("progress", "true")
	})
	rootCmd.SetArgs(args)
	return Execute()
}

func TestConnectStoreWithoutURL(t *testing.T) {
	t.Setenv("AUTOSEED_TEST_DB_URI", "")
	cfg := &config.Config{Database: config.Database{Provider: "mongodb", URLEnv: "AUTOSEED_TEST_DB_URI"}}

	store, err := connectStore(context.Background(), cfg)

	require.Error(t, err)
	assert.Nil(t, store)
	var connErr *types.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "mongodb", connErr.Provider)
	assert.Contains(t, err.Error(), "AUTOSEED_TEST_DB_URI")
}

func TestConnectStoreMemory(t *testing.T) {
	cfg := &config.Config{Database: config.Database{Provider: "memory"}}

	store, err := connectStore(context.Background(), cfg)

	require.NoError(t, err)
	assert.Equal(t, "memory", store.Provider())
	require.NoError(t, store.Close())
}

func TestSeedFailsWithoutDatabaseURL(t *testing.T) {
	t.Setenv("AUTOSEED_DATABASE_URL_ENV", "AUTOSEED_TEST_MISSING_URI")
	t.Setenv("AUTOSEED_TEST_MISSING_URI", "")
	t.Setenv("AUTOSEED_LOGS_DIR", t.TempDir())

	err := runCLI(t, "seed", "cities", "--progress=false")

	require.Error(t, err, "A missing connection string must fail the command")
	assert.Equal(t, types.KindConnection, types.KindOf(err))
}

func TestSeedDryRunUsesMemoryStore(t *testing.T) {
	logs := t.TempDir()
	t.Setenv("AUTOSEED_DATABASE_URL_ENV", "AUTOSEED_TEST_MISSING_URI")
	t.Setenv("AUTOSEED_TEST_MISSING_URI", "")
	t.Setenv("AUTOSEED_LOGS_DIR", logs)

	err := runCLI(t, "seed", "cities", "--dry-run", "--progress=false")
	require.NoError(t, err, "Dry run must not need a database URL")

	files, err := filepath.Glob(filepath.Join(logs, "seeding-report-*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var report seeder.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "memory", report.Provider)
	assert.Equal(t, []string{"cities"}, report.Order)
	assert.Equal(t, 1, report.Summary.CompletedModules)
}
