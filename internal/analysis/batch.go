// Package analysis runs the batch valuation pass over every tracked
// stock.
package analysis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/internal/scoring"
	"github.com/wonny/buffett/backend/internal/source"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// SymbolResult is the per-symbol outcome of a batch run.
type SymbolResult struct {
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	PERatio    float64 `json:"pe_ratio"`
	ROE        float64 `json:"roe"`
	PEScore    float64 `json:"pe_score"`
	ROEScore   float64 `json:"roe_score"`
	TotalScore float64 `json:"total_score"`
}

// SymbolFailure records a symbol that could not be analyzed.
type SymbolFailure struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// Report summarizes one batch analysis run.
type Report struct {
	Results  []SymbolResult  `json:"results"`
	Failures []SymbolFailure `json:"failures"`
	Message  string          `json:"message"`
}

// BatchAnalyzer walks the stock table, refreshes each symbol from the
// market and analyst sources, scores it with the bucketed formulas and
// writes the updated record back. Symbols go through the market
// adapter one at a time so its rate limiter paces the whole run.
type BatchAnalyzer struct {
	store   contracts.StockStore
	market  source.DataSource
	analyst source.DataSource
	logger  *logger.Logger
}

// NewBatchAnalyzer creates a batch analyzer over the given store and
// sources. analyst may be nil when no ratings file is configured.
func NewBatchAnalyzer(store contracts.StockStore, market, analyst source.DataSource, log *logger.Logger) *BatchAnalyzer {
	return &BatchAnalyzer{
		store:   store,
		market:  market,
		analyst: analyst,
		logger:  log.WithField("module", "analysis"),
	}
}

// Run analyzes every stored symbol. A failing symbol never aborts the
// run: symbols with no usable price are removed from the store and
// reported in Failures, all other errors are reported and the stored
// record left as is.
func (b *BatchAnalyzer) Run(ctx context.Context) (*Report, error) {
	records, err := b.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stocks: %w", err)
	}

	report := &Report{}
	b.logger.WithField("count", len(records)).Info("Starting batch analysis")

	for i := range records {
		rec := records[i]
		result, err := b.analyzeOne(ctx, &rec)
		if err != nil {
			b.logger.WithError(err).WithField("symbol", rec.Symbol).Warn("Symbol analysis failed")
			report.Failures = append(report.Failures, SymbolFailure{
				Symbol: rec.Symbol,
				Reason: err.Error(),
			})
			continue
		}
		report.Results = append(report.Results, *result)
	}

	report.Message = fmt.Sprintf("analyzed %d stocks, %d failed", len(report.Results), len(report.Failures))
	b.logger.WithFields(map[string]interface{}{
		"analyzed": len(report.Results),
		"failed":   len(report.Failures),
	}).Info("Batch analysis finished")

	return report, nil
}

// analyzeOne refreshes and scores a single record. Its contract with
// Run: a nil result means the symbol failed and the returned error says
// why. When the market has no price for the symbol the stale record is
// deleted so dead tickers do not accumulate.
func (b *BatchAnalyzer) analyzeOne(ctx context.Context, rec *contracts.StockRecord) (*SymbolResult, error) {
	quote, err := b.market.ExecuteQuery(ctx, source.Query{Function: source.FuncGlobalQuote, Symbol: rec.Symbol})
	if err != nil {
		b.dropSymbol(ctx, rec.Symbol)
		return nil, fmt.Errorf("fetch quote: %w", err)
	}

	price := quotePrice(quote)
	if price <= 0 {
		b.dropSymbol(ctx, rec.Symbol)
		return nil, fmt.Errorf("no valid price for %s", rec.Symbol)
	}

	rec.CurrentPrice = price
	rec.HighPrice = quoteField(quote, "03. high")
	rec.LowPrice = quoteField(quote, "04. low")

	overview, err := b.market.ExecuteQuery(ctx, source.Query{Function: source.FuncOverview, Symbol: rec.Symbol})
	if err != nil {
		b.logger.WithError(err).WithField("symbol", rec.Symbol).Warn("Overview unavailable; scoring with stored fundamentals")
	} else {
		rec.PERatio = overviewField(overview, "PERatio")
		rec.ROE = overviewField(overview, "ReturnOnEquityTTM") * 100
	}

	if b.analyst != nil {
		b.applyAnalystRow(ctx, rec)
	}

	rec.PEScore = scoring.PEBucketScore(rec.PERatio)
	rec.ROEScore = scoring.ROEBucketScore(rec.ROE)
	rec.TotalScore = scoring.BatchTotalScore(rec.PEScore, rec.ROEScore)
	rec.DCF = scoring.DCFValue(overviewField(overview, "EPS"))
	now := time.Now()
	rec.AnalysisDate = &now

	if err := b.store.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}

	return &SymbolResult{
		Symbol:     rec.Symbol,
		Price:      rec.CurrentPrice,
		PERatio:    rec.PERatio,
		ROE:        rec.ROE,
		PEScore:    rec.PEScore,
		ROEScore:   rec.ROEScore,
		TotalScore: rec.TotalScore,
	}, nil
}

// applyAnalystRow copies ratings and indicators from the analyst
// source when a row exists. A missing row is normal for symbols the
// dataset does not cover.
func (b *BatchAnalyzer) applyAnalystRow(ctx context.Context, rec *contracts.StockRecord) {
	row, err := b.analyst.ExecuteQuery(ctx, source.Query{Symbol: rec.Symbol})
	if err != nil {
		b.logger.WithField("symbol", rec.Symbol).Debug("No analyst row for symbol")
		return
	}

	rec.AnalystRatingsStrongBuy = int(rowNum(row, "analyst_ratings_strong_buy"))
	rec.AnalystRatingsBuy = int(rowNum(row, "analyst_ratings_buy"))
	rec.AnalystRatingsHold = int(rowNum(row, "analyst_ratings_hold"))
	rec.AnalystRatingsSell = int(rowNum(row, "analyst_ratings_sell"))
	rec.AnalystRatingsStrongSell = int(rowNum(row, "analyst_ratings_strong_sell"))
	rec.RSI = rowNum(row, "rsi")
	rec.MACD = rowNum(row, "macd")
	rec.Volatility = rowNum(row, "volatility")
	rec.SentimentScore = rowNum(row, "sentiment_score")
	rec.Beta = rowNum(row, "beta")
}

func (b *BatchAnalyzer) dropSymbol(ctx context.Context, symbol string) {
	if err := b.store.Delete(ctx, symbol); err != nil {
		b.logger.WithError(err).WithField("symbol", symbol).Error("Failed to remove dead symbol")
		return
	}
	b.logger.WithField("symbol", symbol).Info("Removed symbol with no market data")
}

// quotePrice extracts the current price from a GLOBAL_QUOTE response,
// 0 when absent or malformed.
func quotePrice(quote source.Result) float64 {
	return quoteField(quote, "05. price")
}

func quoteField(quote source.Result, key string) float64 {
	if quote == nil {
		return 0
	}
	inner, ok := quote["Global Quote"].(map[string]interface{})
	if !ok {
		return 0
	}
	return rowNum(inner, key)
}

func overviewField(overview source.Result, key string) float64 {
	if overview == nil {
		return 0
	}
	return rowNum(overview, key)
}

// rowNum reads a numeric field that may arrive as float64 or string,
// 0 for anything else.
func rowNum(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
