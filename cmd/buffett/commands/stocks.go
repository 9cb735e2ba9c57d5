package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/internal/store"
	"github.com/wonny/buffett/backend/pkg/config"
	"github.com/wonny/buffett/backend/pkg/database"
)

// stocksCmd represents the stocks command group
var stocksCmd = &cobra.Command{
	Use:   "stocks",
	Short: "Manage tracked stock symbols",
	Long: `Manage the set of tracked stock symbols.

Examples:
  go run ./cmd/buffett stocks list
  go run ./cmd/buffett stocks add AAPL
  go run ./cmd/buffett stocks remove AAPL`,
}

var stocksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked stocks with their latest scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeDB, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		records, err := repo.ListAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("list stocks: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No stocks tracked")
			return nil
		}

		fmt.Printf("%-8s %10s %8s %8s %6s\n", "SYMBOL", "PRICE", "P/E", "ROE", "TOTAL")
		for _, r := range records {
			fmt.Printf("%-8s %10.2f %8.2f %8.2f %6.2f\n",
				r.Symbol, r.CurrentPrice, r.PERatio, r.ROE, r.TotalScore)
		}
		return nil
	},
}

var stocksAddCmd = &cobra.Command{
	Use:   "add [symbol...]",
	Short: "Track one or more symbols",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeDB, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		for _, arg := range args {
			symbol := strings.ToUpper(strings.TrimSpace(arg))
			if !contracts.ValidSymbol(symbol) {
				fmt.Printf("%-8s invalid (must be 1-5 uppercase letters)\n", arg)
				continue
			}
			if err := repo.Insert(cmd.Context(), symbol); err != nil {
				fmt.Printf("%-8s %v\n", symbol, err)
				continue
			}
			fmt.Printf("%-8s added\n", symbol)
		}
		return nil
	},
}

var stocksRemoveCmd = &cobra.Command{
	Use:   "remove [symbol...]",
	Short: "Stop tracking one or more symbols",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeDB, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		for _, arg := range args {
			symbol := strings.ToUpper(strings.TrimSpace(arg))
			if err := repo.Delete(cmd.Context(), symbol); err != nil {
				fmt.Printf("%-8s %v\n", symbol, err)
				continue
			}
			fmt.Printf("%-8s removed\n", symbol)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stocksCmd)
	stocksCmd.AddCommand(stocksListCmd)
	stocksCmd.AddCommand(stocksAddCmd)
	stocksCmd.AddCommand(stocksRemoveCmd)
}

// openStore wires config, logger, database and repository for the
// stocks subcommands.
func openStore(cmd *cobra.Command) (*store.Repository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	repo := store.NewRepository(db.Pool)
	if err := repo.EnsureSchema(cmd.Context()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	return repo, db.Close, nil
}
