package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/wonny/buffett/backend/pkg/config"
	"github.com/wonny/buffett/backend/pkg/httputil"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// Query functions served by the Alpha Vantage endpoint.
const (
	FuncGlobalQuote = "GLOBAL_QUOTE"
	FuncOverview    = "OVERVIEW"
)

// AlphaVantageName is the registry name of the market-data source.
const AlphaVantageName = "alpha_vantage"

// knownSymbols is the allow-list used for degraded symbol validation
// when the upstream API is rate limited.
var knownSymbols = map[string]struct{}{
	"AAPL": {}, "MSFT": {}, "GOOGL": {}, "AMZN": {}, "META": {},
	"TSLA": {}, "NVDA": {}, "JPM": {}, "BAC": {}, "WMT": {},
	"PG": {}, "JNJ": {}, "UNH": {}, "MA": {}, "HD": {},
	"INTC": {}, "VZ": {}, "T": {}, "PFE": {}, "KO": {},
	"DIS": {}, "NFLX": {}, "ADBE": {}, "CSCO": {}, "CRM": {},
}

// AlphaVantageSource fetches market and fundamental data from the
// Alpha Vantage API. One instance owns one rate-limiter timeline and
// one persisted response cache; cache hits bypass the limiter.
type AlphaVantageSource struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string
	limiter    *IntervalLimiter
	cache      *ResponseCache
	meta       Metadata

	mu          sync.Mutex
	rateLimited bool
}

// NewAlphaVantageSource creates the market-data adapter.
func NewAlphaVantageSource(cfg config.AlphaVantageConfig, httpClient *httputil.Client, log *logger.Logger) *AlphaVantageSource {
	return &AlphaVantageSource{
		httpClient: httpClient,
		logger:     log.WithField("source", AlphaVantageName),
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		limiter:    NewIntervalLimiter(cfg.Interval),
		cache:      NewResponseCache(cfg.CacheFile),
		meta: Metadata{
			Name:        AlphaVantageName,
			Kind:        "api",
			Description: "Real-time financial data from Alpha Vantage API",
			LastUpdated: time.Now(),
		},
	}
}

// Metadata describes the source.
func (s *AlphaVantageSource) Metadata() Metadata {
	return s.meta
}

// Connect verifies API connectivity.
func (s *AlphaVantageSource) Connect(ctx context.Context) error {
	if !s.HealthCheck(ctx) {
		return fmt.Errorf("alpha vantage health check failed")
	}
	return nil
}

// Disconnect is a no-op; the HTTP client is shared and stateless.
func (s *AlphaVantageSource) Disconnect() error {
	return nil
}

// HealthCheck verifies connectivity with a GLOBAL_QUOTE probe for IBM.
func (s *AlphaVantageSource) HealthCheck(ctx context.Context) bool {
	resp, err := s.httpClient.Get(ctx, s.queryURL(Query{Function: FuncGlobalQuote, Symbol: "IBM"}))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Schema returns the available endpoints and their fields.
func (s *AlphaVantageSource) Schema() map[string][]string {
	return map[string][]string{
		FuncGlobalQuote: {
			"symbol", "open", "high", "low", "price", "volume",
			"latest_trading_day", "previous_close", "change", "change_percent",
		},
		FuncOverview: {
			"symbol", "pe_ratio", "peg_ratio", "roe", "eps", "profit_margin",
			"operating_margin", "return_on_assets", "return_on_equity",
		},
	}
}

// ExecuteQuery runs a query with caching and rate limiting.
//
// Response classification: a "Note" or "Information" field marks
// upstream throttling and degrades to demo data instead of failing;
// an "Error Message" field or an empty payload is a per-symbol error;
// anything else is cached and returned.
func (s *AlphaVantageSource) ExecuteQuery(ctx context.Context, q Query) (Result, error) {
	key := CacheKey(q.Function, q.Symbol)

	if res, ok := s.cache.Get(key); ok {
		s.logger.WithField("symbol", q.Symbol).Debug("Using cached response")
		return res, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := s.httpClient.Get(ctx, s.queryURL(q))
	if err != nil {
		return nil, fmt.Errorf("alpha vantage request: %w", err)
	}
	defer resp.Body.Close()

	var data Result
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode alpha vantage response: %w", err)
	}

	if _, throttled := data["Note"]; throttled {
		return s.throttledFallback(q.Symbol), nil
	}
	if _, throttled := data["Information"]; throttled {
		return s.throttledFallback(q.Symbol), nil
	}

	if msg, ok := data["Error Message"]; ok {
		return nil, fmt.Errorf("invalid symbol or data not found: %v", msg)
	}

	if isEmptyResponse(data) {
		return nil, fmt.Errorf("no data found for symbol %s", q.Symbol)
	}

	if err := s.cache.Put(key, data); err != nil {
		// A cache write failure only costs a future API call
		s.logger.WithError(err).Warn("Failed to persist response cache")
	}

	return data, nil
}

// ValidateSymbol checks whether the symbol exists upstream. When the
// endpoint is known to be rate limited the check degrades to the
// common-symbol allow-list instead of a live lookup.
func (s *AlphaVantageSource) ValidateSymbol(ctx context.Context, symbol string) (bool, string) {
	s.mu.Lock()
	limited := s.rateLimited
	s.mu.Unlock()

	if limited {
		_, ok := knownSymbols[symbol]
		return ok, "API rate limited; validating against common stocks list"
	}

	resp, err := s.httpClient.Get(ctx, s.queryURL(Query{Function: FuncGlobalQuote, Symbol: symbol}))
	if err != nil {
		_, ok := knownSymbols[symbol]
		return ok, "API error; validating against common stocks list"
	}
	defer resp.Body.Close()

	var data Result
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		_, ok := knownSymbols[symbol]
		return ok, "API error; validating against common stocks list"
	}

	if hasKey(data, "Note") || hasKey(data, "Information") {
		s.markRateLimited()
		_, ok := knownSymbols[symbol]
		return ok, "API rate limit reached; validating against common stocks list"
	}

	if quote, ok := data["Global Quote"].(map[string]interface{}); ok && len(quote) > 0 {
		return true, "symbol validated"
	}

	return false, "symbol not found"
}

// throttledFallback records the rate-limited state and substitutes a
// demo payload so a batch run degrades instead of failing wholesale.
func (s *AlphaVantageSource) throttledFallback(symbol string) Result {
	s.markRateLimited()
	s.logger.WithField("symbol", symbol).Warn("API rate limit reached; using demo data")
	return demoData(symbol)
}

func (s *AlphaVantageSource) markRateLimited() {
	s.mu.Lock()
	s.rateLimited = true
	s.mu.Unlock()
}

// queryURL builds the request URL for a query.
func (s *AlphaVantageSource) queryURL(q Query) string {
	params := url.Values{}
	params.Set("function", q.Function)
	params.Set("symbol", q.Symbol)
	params.Set("apikey", s.apiKey)
	return fmt.Sprintf("%s?%s", s.baseURL, params.Encode())
}

// isEmptyResponse reports whether the payload carries no usable data:
// an empty "Global Quote" object, or an OVERVIEW-style payload with at
// most one field.
func isEmptyResponse(data Result) bool {
	if quote, ok := data["Global Quote"]; ok {
		m, isMap := quote.(map[string]interface{})
		return !isMap || len(m) == 0
	}
	return len(data) <= 1
}

func hasKey(data Result, key string) bool {
	_, ok := data[key]
	return ok
}
