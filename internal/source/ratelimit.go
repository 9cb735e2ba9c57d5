package source

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// IntervalLimiter enforces a minimum spacing between calls to one
// external endpoint. All callers of an adapter instance share one
// limiter, so concurrent callers are serialized against the same
// timeline; there is no fairness guarantee beyond that.
type IntervalLimiter struct {
	limiter *rate.Limiter
}

// NewIntervalLimiter creates a limiter admitting one call per
// interval. The first call passes immediately.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	return &IntervalLimiter{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until at least the configured interval has elapsed since
// the previously admitted call. The only possible error is context
// cancellation.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
