package cmd

import (
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/autoseed/internal/catalog"
	"github.com/Lumos-Labs-HQ/autoseed/internal/seeder"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var domainsCmd = &cobra.Command{
	Use:   "domains [domain...]",
	Short: "List domains in the order they are seeded",
	RunE: func(cmd *cobra.Command, args []string) error {
		domains := catalog.Domains()
		_, order, err := seeder.Plan(domains, args)
		if err != nil {
			return err
		}
		byName := make(map[string]seeder.Domain, len(domains))
		for _, d := range domains {
			byName[d.Name] = d
		}

		color.Cyan("📋 Seeding order")
		for i, name := range order {
			d := byName[name]
			deps := "-"
			if len(d.DependsOn) > 0 {
				deps = strings.Join(d.DependsOn, ", ")
			}
			fmt.Printf("%2d. %-16s %-18s %-9s depends on: %s\n", i+1, d.Name, d.Collection, d.Priority, deps)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(domainsCmd)
}
