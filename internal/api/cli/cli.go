// Package cli provides the offline workbench: catalog validation, drift
// scans, gap passes, scoring and comparisons over local files, with no
// server or database required.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/regtrace/regtrace/internal/api/cli/commands"
)

var rootCmd = &cobra.Command{
	Use:   "regtrace",
	Short: "Regulatory crosswalk and compliance drift workbench",
	Long: `regtrace analyzes framework version transitions offline.

Catalogs are YAML documents describing one framework version and its
requirements. A workspace file supplies the organization's controls,
assessment answers, and crosswalk mappings. Every command runs fully
in memory against those files.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(commands.NewCatalogCmd())
	rootCmd.AddCommand(commands.NewScanCmd())
	rootCmd.AddCommand(commands.NewGapsCmd())
	rootCmd.AddCommand(commands.NewScoreCmd())
	rootCmd.AddCommand(commands.NewCompareCmd())
}
