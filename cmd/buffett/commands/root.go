package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "buffett",
	Short: "Value-investing stock analysis service",
	Long: `Buffett CLI

Per-symbol financial metrics integration and value scoring.
Market data comes from Alpha Vantage, analyst ratings from a local
CSV dataset; both feed the integration engine and the batch analyzer.

Usage:
  go run ./cmd/buffett [command]

Examples:
  go run ./cmd/buffett api
  go run ./cmd/buffett analyze
  go run ./cmd/buffett stocks add AAPL
  go run ./cmd/buffett sources health`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
