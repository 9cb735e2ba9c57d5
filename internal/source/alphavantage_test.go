package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/buffett/backend/pkg/config"
	"github.com/wonny/buffett/backend/pkg/httputil"
	"github.com/wonny/buffett/backend/pkg/logger"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) (*AlphaVantageSource, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.AlphaVantageConfig{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		Interval:  time.Millisecond,
		CacheFile: filepath.Join(t.TempDir(), "av_cache.json"),
	}

	log := logger.NewNop()
	src := NewAlphaVantageSource(cfg, httputil.New(log).DisableRetry(), log)
	return src, server
}

func TestAlphaVantage_ExecuteQuery_Success(t *testing.T) {
	calls := 0
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "GLOBAL_QUOTE", r.URL.Query().Get("function"))
		assert.Equal(t, "IBM", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"Global Quote": map[string]interface{}{
				"01. symbol": "IBM",
				"05. price":  "185.20",
			},
		})
	})

	res, err := src.ExecuteQuery(context.Background(), Query{Function: FuncGlobalQuote, Symbol: "IBM"})
	require.NoError(t, err)

	quote, ok := res["Global Quote"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "185.20", quote["05. price"])

	// Second call is served from cache without a network round trip.
	_, err = src.ExecuteQuery(context.Background(), Query{Function: FuncGlobalQuote, Symbol: "IBM"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestAlphaVantage_ExecuteQuery_RateLimitedKnownSymbol(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Note": "API call frequency exceeded",
		})
	})

	res, err := src.ExecuteQuery(context.Background(), Query{Function: FuncGlobalQuote, Symbol: "AAPL"})
	require.NoError(t, err)

	quote, ok := res["Global Quote"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "181.45", quote["05. price"])

	// Demo data is a substitute, not a real response: never cached.
	assert.Equal(t, 0, src.cache.Len())
}

func TestAlphaVantage_ExecuteQuery_RateLimitedGenericSymbol(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Information": "Please subscribe to a premium plan",
		})
	})

	res, err := src.ExecuteQuery(context.Background(), Query{Function: FuncGlobalQuote, Symbol: "XYZ"})
	require.NoError(t, err)

	quote, ok := res["Global Quote"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "101.00", quote["05. price"])
	assert.Equal(t, "XYZ", quote["01. symbol"])
}

func TestAlphaVantage_ExecuteQuery_ErrorMessage(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Error Message": "Invalid API call",
		})
	})

	_, err := src.ExecuteQuery(context.Background(), Query{Function: FuncGlobalQuote, Symbol: "BOGUS"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid symbol or data not found")
}

func TestAlphaVantage_ExecuteQuery_EmptyQuote(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Global Quote": map[string]interface{}{},
		})
	})

	_, err := src.ExecuteQuery(context.Background(), Query{Function: FuncGlobalQuote, Symbol: "ZZZZ"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data found for symbol ZZZZ")
}

func TestAlphaVantage_ExecuteQuery_EmptyOverview(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		// OVERVIEW for an unknown symbol returns just the symbol echo.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Symbol": "ZZZZ",
		})
	})

	_, err := src.ExecuteQuery(context.Background(), Query{Function: FuncOverview, Symbol: "ZZZZ"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data found for symbol ZZZZ")
}

func TestAlphaVantage_ValidateSymbol(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if symbol == "IBM" {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"Global Quote": map[string]interface{}{"01. symbol": "IBM"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Global Quote": map[string]interface{}{},
		})
	})

	valid, reason := src.ValidateSymbol(context.Background(), "IBM")
	assert.True(t, valid)
	assert.Equal(t, "symbol validated", reason)

	valid, _ = src.ValidateSymbol(context.Background(), "ZZZZ")
	assert.False(t, valid)
}

func TestAlphaVantage_ValidateSymbol_Degraded(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Note": "API call frequency exceeded",
		})
	})

	// First call detects throttling and flips to degraded mode.
	valid, reason := src.ValidateSymbol(context.Background(), "AAPL")
	assert.True(t, valid)
	assert.Contains(t, reason, "common stocks list")

	// Degraded mode accepts only allow-listed symbols.
	valid, reason = src.ValidateSymbol(context.Background(), "ZZZZ")
	assert.False(t, valid)
	assert.Contains(t, reason, "common stocks list")
}

func TestAlphaVantage_HealthCheck(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	assert.True(t, src.HealthCheck(context.Background()))

	down, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	assert.False(t, down.HealthCheck(context.Background()))
}
