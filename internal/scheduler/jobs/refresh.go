// Package jobs defines the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/buffett/backend/internal/analysis"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// RefreshJob reruns the batch valuation pass over every tracked stock.
// It runs nightly after US market close; the market adapter's rate
// limiter keeps the pass inside the provider quota.
type RefreshJob struct {
	analyzer *analysis.BatchAnalyzer
	logger   *logger.Logger
}

// NewRefreshJob creates a new refresh job
func NewRefreshJob(analyzer *analysis.BatchAnalyzer, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		analyzer: analyzer,
		logger:   log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "stock_refresh"
}

// Schedule returns the cron schedule (02:30 ET daily, with seconds)
func (j *RefreshJob) Schedule() string {
	return "0 30 2 * * *"
}

// Run executes the batch analysis
func (j *RefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled stock refresh")

	report, err := j.analyzer.Run(ctx)
	if err != nil {
		return fmt.Errorf("batch analysis: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"analyzed": len(report.Results),
		"failed":   len(report.Failures),
	}).Info("Scheduled stock refresh completed")

	return nil
}
