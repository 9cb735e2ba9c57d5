package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/buffett/backend/internal/source"
)

func sampleQuote() source.Result {
	return source.Result{
		"Global Quote": map[string]interface{}{
			"03. high":           "152.30",
			"04. low":            "148.10",
			"05. price":          "150.0",
			"06. volume":         "42000000",
			"10. change percent": "1.25%",
		},
	}
}

func sampleOverview() source.Result {
	return source.Result{
		"PERatio":           "15.0",
		"ReturnOnEquityTTM": "0.20",
		"EPS":               "5.0",
		"ProfitMargin":      "0.24",
	}
}

func sampleAnalyst() source.Result {
	return source.Result{
		"analyst_ratings_strong_buy":  15.0,
		"analyst_ratings_buy":         25.0,
		"analyst_ratings_hold":        10.0,
		"analyst_ratings_sell":        2.0,
		"analyst_ratings_strong_sell": 1.0,
		"rsi":                         65.2,
		"macd":                        1.23,
		"volatility":                  0.25,
		"sentiment_score":             0.75,
		"beta":                        1.2,
	}
}

func TestMerge(t *testing.T) {
	rec, err := merge("AAPL", sampleQuote(), sampleOverview(), sampleAnalyst())
	require.NoError(t, err)

	assert.Equal(t, "AAPL", rec.Symbol)
	assert.False(t, rec.LastUpdated.IsZero())

	assert.Equal(t, 150.0, rec.MarketData.Price)
	assert.Equal(t, 152.30, rec.MarketData.High)
	assert.Equal(t, 148.10, rec.MarketData.Low)
	assert.Equal(t, int64(42000000), rec.MarketData.Volume)
	assert.Equal(t, "1.25%", rec.MarketData.ChangePercent)

	assert.Equal(t, 15.0, rec.Fundamental.PERatio)
	// ROE arrives as a fraction and is stored as a percentage.
	assert.Equal(t, 20.0, rec.Fundamental.ROE)
	assert.Equal(t, 5.0, rec.Fundamental.EPS)
	assert.Equal(t, 0.24, rec.Fundamental.ProfitMargin)

	assert.Equal(t, 15, rec.AnalystData.Ratings.StrongBuy)
	assert.Equal(t, 25, rec.AnalystData.Ratings.Buy)
	assert.Equal(t, 10, rec.AnalystData.Ratings.Hold)
	assert.Equal(t, 2, rec.AnalystData.Ratings.Sell)
	assert.Equal(t, 1, rec.AnalystData.Ratings.StrongSell)
	assert.Equal(t, 65.2, rec.AnalystData.Indicators.RSI)
	assert.Equal(t, 1.2, rec.AnalystData.Indicators.Beta)
}

func TestMerge_MissingSourcesDefaultToZero(t *testing.T) {
	rec, err := merge("AAPL", nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, rec.MarketData.Price)
	assert.Equal(t, int64(0), rec.MarketData.Volume)
	assert.Equal(t, "0%", rec.MarketData.ChangePercent)
	assert.Equal(t, 0.0, rec.Fundamental.PERatio)
	assert.Equal(t, 0, rec.AnalystData.Ratings.Buy)
}

func TestMerge_MalformedNumericFails(t *testing.T) {
	overview := sampleOverview()
	overview["PERatio"] = "not-a-number"

	_, err := merge("AAPL", sampleQuote(), overview, sampleAnalyst())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PERatio")
}

func TestMerge_MalformedQuoteFails(t *testing.T) {
	quote := sampleQuote()
	quote["Global Quote"].(map[string]interface{})["05. price"] = "n/a"

	_, err := merge("AAPL", quote, sampleOverview(), sampleAnalyst())
	require.Error(t, err)
}

func TestMerge_PercentSuffixStripped(t *testing.T) {
	overview := sampleOverview()
	overview["ReturnOnEquityTTM"] = "0.18%"

	rec, err := merge("AAPL", sampleQuote(), overview, sampleAnalyst())
	require.NoError(t, err)
	assert.InDelta(t, 18.0, rec.Fundamental.ROE, 0.001)
}
