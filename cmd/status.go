package cmd

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/autoseed/internal/catalog"
	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the database and show seeded collection counts",
	Long: `Connect to the configured database, run the health check and print how
many documents each seeded collection holds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		store, err := connectStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		health := store.HealthCheck(ctx)
		if !health.OK {
			return &types.ConnectionError{Provider: store.Provider(), Err: fmt.Errorf("%s", health.Message)}
		}
		color.Green("💚 %s", health.Message)
		fmt.Println()

		fmt.Printf("%-18s %-18s %-10s %10s\n", "DOMAIN", "COLLECTION", "PRIORITY", "DOCUMENTS")
		for _, d := range catalog.Domains() {
			n, err := store.Collection(d.Collection).Count(ctx)
			if err != nil {
				color.Yellow("%-18s %-18s %-10s %10s", d.Name, d.Collection, d.Priority, "error")
				continue
			}
			line := fmt.Sprintf("%-18s %-18s %-10s %10d", d.Name, d.Collection, d.Priority, n)
			if n == 0 {
				color.Yellow("%s", line)
			} else {
				fmt.Println(line)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
