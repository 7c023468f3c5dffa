package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lumos-Labs-HQ/autoseed/internal/assets"
	"github.com/Lumos-Labs-HQ/autoseed/internal/catalog"
	"github.com/Lumos-Labs-HQ/autoseed/internal/config"
	"github.com/Lumos-Labs-HQ/autoseed/internal/database"
	"github.com/Lumos-Labs-HQ/autoseed/internal/database/mongodb"
	"github.com/Lumos-Labs-HQ/autoseed/internal/metrics"
	"github.com/Lumos-Labs-HQ/autoseed/internal/seeder"
	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const connectTimeout = 10 * time.Second

var seedDryRun bool

var seedCmd = &cobra.Command{
	Use:   "seed [domain...]",
	Short: "Seed reference data",
	Long: `Seed every domain, or only the named ones, in dependency order.

Records are upserted by natural key: existing documents are updated and
missing ones are created. Naming a child domain does not seed its parents.

Examples:
  autoseed seed
  autoseed seed brands models --batch-size 50
  autoseed seed --include-assets --strict
  autoseed seed --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if seedDryRun {
			color.Yellow("🧪 Dry run: seeding into an in-memory store")
			cfg.Database.Provider = "memory"
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := connectStore(ctx, cfg)
		if err != nil {
			return err
		}

		o := seeder.NewOrchestrator(store, newFetcher(ctx, cfg, store), catalog.Domains(), cfg.SeedOptions(), newMetrics(cfg))
		report, err := o.Run(ctx, args)
		if err != nil {
			return err
		}

		if report.Summary.FailedModules > 0 || report.Summary.Failed > 0 {
			color.Yellow("\n⚠️  Seeding finished with failures. See the report for details.")
			return nil
		}
		color.Green("\n🎉 Seeding completed successfully!")
		return nil
	},
}

func connectStore(ctx context.Context, cfg *config.Config) (database.Store, error) {
	store, err := database.NewStore(cfg.Database.Provider)
	if err != nil {
		return nil, err
	}

	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, &types.ConnectionError{Provider: store.Provider(), Err: err}
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	color.Cyan("🔌 Connecting to %s...", store.Provider())
	if err := store.Connect(connectCtx, dbURL); err != nil {
		return nil, &types.ConnectionError{Provider: store.Provider(), Err: err}
	}
	return store, nil
}

// newFetcher returns nil when assets are off. Storage or cache problems only
// degrade the fetcher.
func newFetcher(ctx context.Context, cfg *config.Config, store database.Store) seeder.AssetFetcher {
	if !cfg.Seeding.IncludeAssets {
		return nil
	}

	var storage assets.ObjectStorage
	switch cfg.Assets.Storage {
	case "gridfs":
		mongo, ok := store.(*mongodb.Adapter)
		if !ok {
			color.Yellow("⚠️  GridFS asset storage needs the mongodb provider, assets will keep their original URLs")
			break
		}
		s, err := assets.NewGridFSStorage(mongo.Database(), cfg.Assets.Bucket)
		if err != nil {
			color.Yellow("⚠️  %v, assets will keep their original URLs", err)
			break
		}
		storage = s
	case "local":
		s, err := assets.NewLocalStorage(cfg.Assets.Dir)
		if err != nil {
			color.Yellow("⚠️  %v, assets will keep their original URLs", err)
			break
		}
		storage = s
	}

	var cache assets.URLCache
	if cfg.Cache.RedisURL != "" {
		cacheCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		c, err := assets.NewRedisCache(cacheCtx, cfg.Cache.RedisURL, cfg.Cache.TTL)
		cancel()
		if err != nil {
			color.Yellow("⚠️  Asset cache disabled: %v", err)
		} else {
			cache = c
		}
	}

	return assets.NewFetcher(cfg.FetcherConfig(), storage, cache)
}

func newMetrics(cfg *config.Config) seeder.MetricsSink {
	c, err := metrics.NewCollector(cfg.Metrics.Job, cfg.Metrics.PushURL)
	if err != nil {
		color.Yellow("⚠️  Metrics disabled: %v", err)
		return nil
	}
	return c
}

func init() {
	rootCmd.AddCommand(seedCmd)

	flags := seedCmd.Flags()
	flags.Bool("strict", false, "Abort the run on the first domain failure")
	flags.Int("batch-size", seeder.DefaultBatchSize, "Records per batch")
	flags.Bool("include-assets", false, "Download logos and re-host them")
	flags.Bool("reset", false, "Drop each collection before seeding it")
	flags.Bool("progress", true, "Show a progress bar per domain")
	flags.String("env", "development", "Environment tag written to the report (development, staging, production, test)")
	flags.BoolVar(&seedDryRun, "dry-run", false, "Seed into an in-memory store without touching the database")

	for key, flag := range map[string]string{
		"seeding.strict":         "strict",
		"seeding.batch_size":     "batch-size",
		"seeding.include_assets": "include-assets",
		"seeding.reset":          "reset",
		"seeding.progress":       "progress",
		"environment":            "env",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", flag, err))
		}
	}
}
