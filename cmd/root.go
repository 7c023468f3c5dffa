package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/autoseed/internal/config"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "0.3.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════════════════╗",
		"║     █████╗ ██╗   ██╗████████╗ ██████╗                ║",
		"║    ██╔══██╗██║   ██║╚══██╔══╝██╔═══██╗               ║",
		"║    ███████║██║   ██║   ██║   ██║   ██║  🌱 seed       ║",
		"║    ██╔══██║██║   ██║   ██║   ██║   ██║               ║",
		"║    ██║  ██║╚██████╔╝   ██║   ╚██████╔╝               ║",
		"║    ╚═╝  ╚═╝ ╚═════╝    ╚═╝    ╚═════╝                ║",
		"║                                                      ║",
		"║      Idempotent reference-data seeding               ║",
		"╚══════════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("                  ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "autoseed",
	Short: "Seed reference data for the auto-parts marketplace",
	Long: `
autoseed loads the marketplace reference data (car brands, models, trims,
OBD codes, cities, services, payment methods and parts) into a database.

Every record is upserted by its natural key, so runs can be repeated safely.
Domains are seeded in dependency order and each run writes a JSON report.

Database Support:
- MongoDB (default)
- PostgreSQL
- SQLite
- In-memory (dry runs)`,
	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("autoseed version %s\n", Version)
			return
		}

		showBanner()
		fmt.Println()
		_ = cmd.Help()
	},
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./autoseed.config.yaml)")
	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load(".env.local")
	}

	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("autoseed.config")
	}

	viper.SetEnvPrefix("AUTOSEED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			color.Yellow("⚠️  Could not read config file: %v", err)
		}
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
