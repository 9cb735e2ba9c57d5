package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/buffett/backend/internal/analysis"
	"github.com/wonny/buffett/backend/internal/source"
	"github.com/wonny/buffett/backend/internal/store"
	"github.com/wonny/buffett/backend/pkg/config"
	"github.com/wonny/buffett/backend/pkg/database"
	"github.com/wonny/buffett/backend/pkg/httputil"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a one-shot batch analysis over all tracked stocks",
	Long: `Refreshes market data, analyst ratings and value scores for
every tracked stock, then prints the results ranked by total score.

Symbols without market data are removed from tracking.

Example:
  go run ./cmd/buffett analyze`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Batch Stock Analysis ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := store.NewRepository(db.Pool)
	if err := repo.EnsureSchema(cmd.Context()); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	httpClient := httputil.New(log)
	marketSrc := source.NewAlphaVantageSource(cfg.AlphaVantage, httpClient, log)
	analystSrc := source.NewAnalystSource(cfg.Analyst.CSVPath, log)
	if err := analystSrc.Connect(cmd.Context()); err != nil {
		log.WithError(err).Warn("Analyst dataset unavailable; analyzing without ratings")
	}
	defer analystSrc.Disconnect()

	analyzer := analysis.NewBatchAnalyzer(repo, marketSrc, analystSrc, log)

	report, err := analyzer.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("batch analysis: %w", err)
	}

	// Rank by total score, best first.
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].TotalScore > report.Results[j].TotalScore
	})

	fmt.Printf("\n%-8s %10s %8s %8s %6s %6s %6s\n",
		"SYMBOL", "PRICE", "P/E", "ROE", "PE_S", "ROE_S", "TOTAL")
	for _, r := range report.Results {
		fmt.Printf("%-8s %10.2f %8.2f %8.2f %6.2f %6.2f %6.2f\n",
			r.Symbol, r.Price, r.PERatio, r.ROE, r.PEScore, r.ROEScore, r.TotalScore)
	}

	if len(report.Failures) > 0 {
		fmt.Printf("\nFailed symbols (%d):\n", len(report.Failures))
		for _, f := range report.Failures {
			fmt.Printf("  %-8s %s\n", f.Symbol, f.Reason)
		}
	}

	fmt.Printf("\nAnalyzed %d, failed %d\n", len(report.Results), len(report.Failures))
	return nil
}
