package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/buffett/backend/internal/source"
	"github.com/wonny/buffett/backend/pkg/config"
	"github.com/wonny/buffett/backend/pkg/httputil"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// sourcesCmd represents the sources command group
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect the configured data sources",
	Long: `Inspect the configured data sources.

Examples:
  go run ./cmd/buffett sources health
  go run ./cmd/buffett sources schema`,
}

var sourcesHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run a health check against every data source",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, cleanup, err := openRegistry(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		for name, healthy := range registry.HealthCheckAll(cmd.Context()) {
			status := "healthy"
			if !healthy {
				status = "unhealthy"
			}
			fmt.Printf("%-16s %s\n", name, status)
		}
		return nil
	},
}

var sourcesSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the combined schema of all data sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, cleanup, err := openRegistry(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		for name, tables := range registry.CombinedSchema() {
			fmt.Printf("%s:\n", name)
			for table, columns := range tables {
				fmt.Printf("  %s: %v\n", table, columns)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesHealthCmd)
	sourcesCmd.AddCommand(sourcesSchemaCmd)
}

// openRegistry wires config, logger and both data sources into a
// registry for the sources subcommands.
func openRegistry(cmd *cobra.Command) (*source.Registry, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	httpClient := httputil.New(log)

	registry := source.NewRegistry(log)
	marketSrc := source.NewAlphaVantageSource(cfg.AlphaVantage, httpClient, log)
	analystSrc := source.NewAnalystSource(cfg.Analyst.CSVPath, log)

	if err := registry.Register(cmd.Context(), marketSrc); err != nil {
		log.WithError(err).Warn("Market source registration failed")
	}
	if err := registry.Register(cmd.Context(), analystSrc); err != nil {
		log.WithError(err).Warn("Analyst source registration failed")
	}

	return registry, registry.Cleanup, nil
}
