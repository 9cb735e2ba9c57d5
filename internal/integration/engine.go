// Package integration orchestrates per-symbol fetches from the
// registered data sources, merges them into one unified record,
// scores it and caches the result.
package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/internal/scoring"
	"github.com/wonny/buffett/backend/internal/source"
	"github.com/wonny/buffett/backend/pkg/logger"
	"github.com/wonny/buffett/backend/pkg/redis"
)

// cachedRecord pairs an integrated record with its creation time.
type cachedRecord struct {
	rec *contracts.UnifiedRecord
	at  time.Time
}

// Engine integrates per-symbol data from the market and analyst
// sources. Integrated records are cached per symbol for the freshness
// window, locally and (when enabled) in a Redis tier whose TTL equals
// the window so freshness survives restarts.
type Engine struct {
	window time.Duration
	rcache *redis.Cache
	logger *logger.Logger

	mu      sync.RWMutex
	records map[string]cachedRecord
}

// NewEngine creates an integration engine. rcache may be nil.
func NewEngine(window time.Duration, rcache *redis.Cache, log *logger.Logger) *Engine {
	return &Engine{
		window:  window,
		rcache:  rcache,
		logger:  log.WithField("module", "integration"),
		records: make(map[string]cachedRecord),
	}
}

// Integrate returns the unified record for symbol, serving a fresh
// cached record without touching any adapter, otherwise fetching from
// both sources concurrently, merging, scoring and caching.
//
// Callers must treat an error as "skip this symbol": nothing here
// aborts a batch.
func (e *Engine) Integrate(ctx context.Context, symbol string, market, analyst source.DataSource) (*contracts.UnifiedRecord, error) {
	if rec, ok := e.Cached(ctx, symbol); ok {
		e.logger.WithField("symbol", symbol).Debug("Using cached integrated record")
		return rec, nil
	}

	quote, overview, analystRow := e.fetchAll(ctx, symbol, market, analyst)

	rec, err := merge(symbol, quote, overview, analystRow)
	if err != nil {
		return nil, fmt.Errorf("integrate %s: %w", symbol, err)
	}

	rec.Buffett = scoring.Buffett(
		rec.MarketData.Price,
		rec.Fundamental.PERatio,
		rec.Fundamental.ROE,
		rec.Fundamental.EPS,
	)

	e.store(ctx, symbol, rec)
	return rec, nil
}

// fetchAll issues the three source queries concurrently and waits for
// all of them. A failed branch yields a nil result and a log line;
// it never cancels the sibling fetches, so a symbol that is missing
// from one source still integrates with zero-defaults for that part.
func (e *Engine) fetchAll(ctx context.Context, symbol string, market, analyst source.DataSource) (quote, overview, analystRow source.Result) {
	var wg sync.WaitGroup
	var quoteErr, overviewErr, analystErr error

	wg.Add(3)
	go func() {
		defer wg.Done()
		quote, quoteErr = market.ExecuteQuery(ctx, source.Query{Function: source.FuncGlobalQuote, Symbol: symbol})
	}()
	go func() {
		defer wg.Done()
		overview, overviewErr = market.ExecuteQuery(ctx, source.Query{Function: source.FuncOverview, Symbol: symbol})
	}()
	go func() {
		defer wg.Done()
		analystRow, analystErr = analyst.ExecuteQuery(ctx, source.Query{Symbol: symbol})
	}()
	wg.Wait()

	for _, branch := range []struct {
		name string
		err  error
	}{
		{"global_quote", quoteErr},
		{"overview", overviewErr},
		{"analyst", analystErr},
	} {
		if branch.err != nil {
			e.logger.WithError(branch.err).WithFields(map[string]interface{}{
				"symbol": symbol,
				"branch": branch.name,
			}).Warn("Source fetch failed; merging without it")
		}
	}

	return quote, overview, analystRow
}

// Cached returns the integrated record for symbol if one exists and
// is younger than the freshness window.
func (e *Engine) Cached(ctx context.Context, symbol string) (*contracts.UnifiedRecord, bool) {
	e.mu.RLock()
	entry, ok := e.records[symbol]
	e.mu.RUnlock()

	if ok && time.Since(entry.at) < e.window {
		return entry.rec, true
	}

	// Redis tier: TTL equals the window, so presence implies freshness.
	if e.rcache != nil {
		var rec contracts.UnifiedRecord
		if found, err := e.rcache.Get(ctx, redis.IntegrationKey(symbol), &rec); err == nil && found {
			e.mu.Lock()
			e.records[symbol] = cachedRecord{rec: &rec, at: time.Now()}
			e.mu.Unlock()
			return &rec, true
		}
	}

	return nil, false
}

func (e *Engine) store(ctx context.Context, symbol string, rec *contracts.UnifiedRecord) {
	e.mu.Lock()
	e.records[symbol] = cachedRecord{rec: rec, at: time.Now()}
	e.mu.Unlock()

	if e.rcache != nil {
		if err := e.rcache.Set(ctx, redis.IntegrationKey(symbol), rec, e.window); err != nil {
			e.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to write integration cache")
		}
	}
}
