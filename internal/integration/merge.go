package integration

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/internal/source"
)

// merge folds the raw source responses into one UnifiedRecord.
//
// Missing fields default to 0. A field that is present but not
// numeric fails the whole merge with an error; the engine surfaces
// that as the integration error for the symbol instead of panicking
// or producing a half-parsed record. Ordering between the source
// responses is irrelevant: each feeds disjoint parts of the record.
func merge(symbol string, quote, overview, analyst source.Result) (*contracts.UnifiedRecord, error) {
	quoteData := subMap(quote, "Global Quote")

	rec := &contracts.UnifiedRecord{
		Symbol:      symbol,
		LastUpdated: time.Now(),
	}

	var err error

	// Market data
	if rec.MarketData.Price, err = numField(quoteData, "05. price"); err != nil {
		return nil, fmt.Errorf("merge market data: %w", err)
	}
	if rec.MarketData.High, err = numField(quoteData, "03. high"); err != nil {
		return nil, fmt.Errorf("merge market data: %w", err)
	}
	if rec.MarketData.Low, err = numField(quoteData, "04. low"); err != nil {
		return nil, fmt.Errorf("merge market data: %w", err)
	}
	if rec.MarketData.Volume, err = intField(quoteData, "06. volume"); err != nil {
		return nil, fmt.Errorf("merge market data: %w", err)
	}
	rec.MarketData.ChangePercent = strField(quoteData, "10. change percent", "0%")

	// Fundamental data. ReturnOnEquityTTM arrives as a fraction and is
	// stored as a percentage, matching the batch path and the
	// integration-path roe_score = roe/100 formula.
	if rec.Fundamental.PERatio, err = numField(overview, "PERatio"); err != nil {
		return nil, fmt.Errorf("merge fundamental data: %w", err)
	}
	roeFraction, err := numField(overview, "ReturnOnEquityTTM")
	if err != nil {
		return nil, fmt.Errorf("merge fundamental data: %w", err)
	}
	rec.Fundamental.ROE = roeFraction * 100
	if rec.Fundamental.EPS, err = numField(overview, "EPS"); err != nil {
		return nil, fmt.Errorf("merge fundamental data: %w", err)
	}
	if rec.Fundamental.ProfitMargin, err = numField(overview, "ProfitMargin"); err != nil {
		return nil, fmt.Errorf("merge fundamental data: %w", err)
	}

	// Analyst data
	ratings := &rec.AnalystData.Ratings
	for _, f := range []struct {
		dst *int
		key string
	}{
		{&ratings.StrongBuy, "analyst_ratings_strong_buy"},
		{&ratings.Buy, "analyst_ratings_buy"},
		{&ratings.Hold, "analyst_ratings_hold"},
		{&ratings.Sell, "analyst_ratings_sell"},
		{&ratings.StrongSell, "analyst_ratings_strong_sell"},
	} {
		n, err := intField(analyst, f.key)
		if err != nil {
			return nil, fmt.Errorf("merge analyst data: %w", err)
		}
		*f.dst = int(n)
	}

	ind := &rec.AnalystData.Indicators
	for _, f := range []struct {
		dst *float64
		key string
	}{
		{&ind.RSI, "rsi"},
		{&ind.MACD, "macd"},
		{&ind.Volatility, "volatility"},
		{&ind.SentimentScore, "sentiment_score"},
		{&ind.Beta, "beta"},
	} {
		v, err := numField(analyst, f.key)
		if err != nil {
			return nil, fmt.Errorf("merge analyst data: %w", err)
		}
		*f.dst = v
	}

	return rec, nil
}

// subMap returns data[key] as a nested mapping, or an empty one.
func subMap(data source.Result, key string) map[string]interface{} {
	if data == nil {
		return map[string]interface{}{}
	}
	if m, ok := data[key].(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

// numField returns m[key] as float64, 0 when absent, an error when
// present but not numeric.
func numField(m map[string]interface{}, key string) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, nil
	}
	return toFloat(v, key)
}

// intField returns m[key] as int64, 0 when absent.
func intField(m map[string]interface{}, key string) (int64, error) {
	f, err := numField(m, key)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// strField returns m[key] as a string, def when absent.
func strField(m map[string]interface{}, key, def string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return def
}

func toFloat(v interface{}, key string) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(t, "%"), 64)
		if err != nil {
			return 0, fmt.Errorf("field %s: non-numeric value %q", key, t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("field %s: unsupported type %T", key, v)
	}
}
