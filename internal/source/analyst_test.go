package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/buffett/backend/pkg/logger"
)

const analystCSV = `symbol,analyst_ratings_buy,analyst_ratings_hold,analyst_ratings_sell,analyst_ratings_strong_sell,analyst_ratings_strong_buy,rsi,macd,volatility,sentiment_score,beta
AAPL,25,10,2,1,15,65.2,1.23,0.25,0.75,1.2
MSFT,30,8,1,0,20,58.7,2.15,0.22,0.82,1.1
`

func newTestAnalyst(t *testing.T, csv string) *AnalystSource {
	t.Helper()

	path := filepath.Join(t.TempDir(), "analyst_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	return NewAnalystSource(path, logger.NewNop())
}

func TestAnalystSource_Connect(t *testing.T) {
	src := newTestAnalyst(t, analystCSV)

	require.NoError(t, src.Connect(context.Background()))
	assert.True(t, src.HealthCheck(context.Background()))

	schema := src.Schema()
	require.Contains(t, schema, "analyst_ratings")
	assert.Contains(t, schema["analyst_ratings"], "symbol")
	assert.Contains(t, schema["analyst_ratings"], "rsi")
}

func TestAnalystSource_ConnectMissingFile(t *testing.T) {
	src := NewAnalystSource(filepath.Join(t.TempDir(), "nope.csv"), logger.NewNop())

	require.Error(t, src.Connect(context.Background()))
	assert.False(t, src.HealthCheck(context.Background()))
}

func TestAnalystSource_ExecuteQuery(t *testing.T) {
	src := newTestAnalyst(t, analystCSV)
	require.NoError(t, src.Connect(context.Background()))

	res, err := src.ExecuteQuery(context.Background(), Query{Symbol: "AAPL"})
	require.NoError(t, err)

	// Numeric cells parse to float64, the symbol stays a string.
	assert.Equal(t, "AAPL", res["symbol"])
	assert.Equal(t, 25.0, res["analyst_ratings_buy"])
	assert.Equal(t, 65.2, res["rsi"])
	assert.Equal(t, 1.2, res["beta"])
}

func TestAnalystSource_ExecuteQueryMiss(t *testing.T) {
	src := newTestAnalyst(t, analystCSV)
	require.NoError(t, src.Connect(context.Background()))

	_, err := src.ExecuteQuery(context.Background(), Query{Symbol: "TSLA"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data found for symbol TSLA")

	_, err = src.ExecuteQuery(context.Background(), Query{})
	require.Error(t, err)
}

func TestAnalystSource_Disconnect(t *testing.T) {
	src := newTestAnalyst(t, analystCSV)
	require.NoError(t, src.Connect(context.Background()))
	require.NoError(t, src.Disconnect())

	assert.False(t, src.HealthCheck(context.Background()))
	_, err := src.ExecuteQuery(context.Background(), Query{Symbol: "AAPL"})
	assert.Error(t, err)
}
