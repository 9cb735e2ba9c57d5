package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/buffett/backend/internal/analysis"
	"github.com/wonny/buffett/backend/internal/api"
	"github.com/wonny/buffett/backend/internal/api/handlers"
	"github.com/wonny/buffett/backend/internal/integration"
	"github.com/wonny/buffett/backend/internal/scheduler"
	"github.com/wonny/buffett/backend/internal/scheduler/jobs"
	"github.com/wonny/buffett/backend/internal/source"
	"github.com/wonny/buffett/backend/internal/store"
	"github.com/wonny/buffett/backend/pkg/config"
	"github.com/wonny/buffett/backend/pkg/database"
	"github.com/wonny/buffett/backend/pkg/httputil"
	"github.com/wonny/buffett/backend/pkg/logger"
	"github.com/wonny/buffett/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET    /health                 - Health check
  GET    /stocks                 - List tracked stocks
  POST   /stocks                 - Track a new symbol
  GET    /stocks/{symbol}        - Get one stock record
  DELETE /stocks/{symbol}        - Stop tracking a symbol
  POST   /analyze-stocks         - Run batch analysis now
  GET    /api/analysis/{symbol}  - Integrated, scored record
  GET    /api/validate/{symbol}  - Symbol validation
  GET    /api/sources            - Registered data sources
  GET    /api/sources/health     - Source health checks
  GET    /api/sources/schema     - Combined source schema
  GET    /api/jobs               - Scheduled jobs with run stats
  GET    /api/jobs/{name}/history - Recent runs of one job

Example:
  go run ./cmd/buffett api
  go run ./cmd/buffett api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort      string
	apiScheduled bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
	apiCmd.Flags().BoolVar(&apiScheduled, "with-scheduler", true, "run the nightly refresh scheduler in-process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Buffett API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to Redis (optional cache tier)
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable; integration cache is in-memory only")
		rdb = redis.Disabled()
	}
	defer rdb.Close()

	// 5. Create repository and schema
	repo := store.NewRepository(db.Pool)
	if err := repo.EnsureSchema(cmd.Context()); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	// 6. Create data sources and registry
	httpClient := httputil.New(log)
	marketSrc := source.NewAlphaVantageSource(cfg.AlphaVantage, httpClient, log)
	analystSrc := source.NewAnalystSource(cfg.Analyst.CSVPath, log)

	registry := source.NewRegistry(log)
	defer registry.Cleanup()
	if err := registry.Register(cmd.Context(), marketSrc); err != nil {
		log.WithError(err).Warn("Market source registration failed; continuing degraded")
	}
	if err := registry.Register(cmd.Context(), analystSrc); err != nil {
		log.WithError(err).Warn("Analyst source registration failed; continuing without ratings")
	}

	// 7. Create integration engine and batch analyzer
	var rcache *redis.Cache
	if rdb.Enabled() {
		rcache = redis.NewCache(rdb, "buffett")
	}
	engine := integration.NewEngine(cfg.FreshnessWindow, rcache, log)
	analyzer := analysis.NewBatchAnalyzer(repo, marketSrc, analystSrc, log)

	// 8. Create the refresh scheduler; cron only runs with the flag on,
	// but the job registry backs /api/jobs either way
	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewRefreshJob(analyzer, log)); err != nil {
		return fmt.Errorf("schedule refresh job: %w", err)
	}
	if apiScheduled {
		sched.Start()
		defer sched.Stop()
	}

	// 9. Create handlers and router
	stockHandler := handlers.NewStockHandler(repo, log)
	analysisHandler := handlers.NewAnalysisHandler(engine, analyzer, marketSrc, analystSrc, log)
	sourceHandler := handlers.NewSourceHandler(registry, log)
	jobsHandler := handlers.NewJobsHandler(sched, log)

	router := api.NewRouter(stockHandler, analysisHandler, sourceHandler, jobsHandler, cfg.CORSOrigins, log)
	server := api.New(cfg, log, router)

	// 10. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\nServer running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
