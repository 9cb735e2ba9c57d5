package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/buffett/backend/internal/analysis"
	"github.com/wonny/buffett/backend/internal/scheduler"
	"github.com/wonny/buffett/backend/internal/scheduler/jobs"
	"github.com/wonny/buffett/backend/internal/source"
	"github.com/wonny/buffett/backend/internal/store"
	"github.com/wonny/buffett/backend/pkg/config"
	"github.com/wonny/buffett/backend/pkg/database"
	"github.com/wonny/buffett/backend/pkg/httputil"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the refresh scheduler without the API server",
	Long: `Runs the nightly stock refresh scheduler as a standalone
process. Useful when the API server is deployed separately.

Example:
  go run ./cmd/buffett scheduler
  go run ./cmd/buffett scheduler --now`,
	RunE: runScheduler,
}

var schedulerRunNow bool

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().BoolVar(&schedulerRunNow, "now", false, "run the refresh job immediately on startup")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Buffett Scheduler ===")

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
		log.WithError(err).Warn("Analyst dataset unavailable; refreshing without ratings")
	}
	defer analystSrc.Disconnect()

	analyzer := analysis.NewBatchAnalyzer(repo, marketSrc, analystSrc, log)

	sched := scheduler.New(log)
	job := jobs.NewRefreshJob(analyzer, log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("schedule refresh job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	if schedulerRunNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return fmt.Errorf("run refresh job: %w", err)
		}
	}

	fmt.Println("Scheduler running. Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
