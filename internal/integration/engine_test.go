package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/buffett/backend/internal/source"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// scriptedSource answers ExecuteQuery from a per-function response map
// and counts calls.
type scriptedSource struct {
	name      string
	responses map[string]source.Result
	errs      map[string]error

	mu    sync.Mutex
	calls int
}

func (s *scriptedSource) Metadata() source.Metadata {
	return source.Metadata{Name: s.name, Kind: "fake"}
}

func (s *scriptedSource) Connect(ctx context.Context) error    { return nil }
func (s *scriptedSource) Disconnect() error                    { return nil }
func (s *scriptedSource) HealthCheck(ctx context.Context) bool { return true }
func (s *scriptedSource) Schema() map[string][]string          { return nil }

func (s *scriptedSource) ExecuteQuery(ctx context.Context, q source.Query) (source.Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if err, ok := s.errs[q.Function]; ok {
		return nil, err
	}
	return s.responses[q.Function], nil
}

func (s *scriptedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestMarket() *scriptedSource {
	return &scriptedSource{
		name: "market",
		responses: map[string]source.Result{
			source.FuncGlobalQuote: sampleQuote(),
			source.FuncOverview:    sampleOverview(),
		},
	}
}

func newTestAnalyst() *scriptedSource {
	return &scriptedSource{
		name:      "analyst",
		responses: map[string]source.Result{"": sampleAnalyst()},
	}
}

func TestEngine_Integrate(t *testing.T) {
	engine := NewEngine(time.Hour, nil, logger.NewNop())
	market := newTestMarket()
	analyst := newTestAnalyst()

	rec, err := engine.Integrate(context.Background(), "AAPL", market, analyst)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", rec.Symbol)
	assert.Equal(t, 150.0, rec.MarketData.Price)
	assert.Equal(t, 20.0, rec.Fundamental.ROE)

	// Scores from the linear formulas, rounded to 2 places.
	assert.InDelta(t, 0.07, rec.Buffett.PEScore, 0.001)
	assert.InDelta(t, 0.2, rec.Buffett.ROEScore, 0.001)
	assert.InDelta(t, -0.85, rec.Buffett.DCFScore, 0.001)
	assert.InDelta(t, -0.59, rec.Buffett.TotalScore, 0.001)
}

func TestEngine_IntegrateServesCachedRecord(t *testing.T) {
	engine := NewEngine(time.Hour, nil, logger.NewNop())
	market := newTestMarket()
	analyst := newTestAnalyst()

	first, err := engine.Integrate(context.Background(), "AAPL", market, analyst)
	require.NoError(t, err)
	marketCalls := market.callCount()

	second, err := engine.Integrate(context.Background(), "AAPL", market, analyst)
	require.NoError(t, err)

	// Within the freshness window no adapter is touched.
	assert.Equal(t, marketCalls, market.callCount())
	assert.Same(t, first, second)
}

func TestEngine_IntegrateRefetchesAfterWindow(t *testing.T) {
	engine := NewEngine(10*time.Millisecond, nil, logger.NewNop())
	market := newTestMarket()
	analyst := newTestAnalyst()

	_, err := engine.Integrate(context.Background(), "AAPL", market, analyst)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = engine.Integrate(context.Background(), "AAPL", market, analyst)
	require.NoError(t, err)
	assert.Equal(t, 4, market.callCount())
}

func TestEngine_IntegrateToleratesBranchFailure(t *testing.T) {
	engine := NewEngine(time.Hour, nil, logger.NewNop())
	market := newTestMarket()
	market.errs = map[string]error{source.FuncOverview: errors.New("upstream down")}
	analyst := newTestAnalyst()

	rec, err := engine.Integrate(context.Background(), "AAPL", market, analyst)
	require.NoError(t, err)

	// Market quote survives, fundamentals fall back to zero defaults.
	assert.Equal(t, 150.0, rec.MarketData.Price)
	assert.Equal(t, 0.0, rec.Fundamental.PERatio)
	assert.Equal(t, 0.0, rec.Buffett.PEScore)
}

func TestEngine_IntegrateRecordsPerSymbol(t *testing.T) {
	engine := NewEngine(time.Hour, nil, logger.NewNop())
	market := newTestMarket()
	analyst := newTestAnalyst()

	_, err := engine.Integrate(context.Background(), "AAPL", market, analyst)
	require.NoError(t, err)

	// A different symbol misses the cache and fetches again.
	_, err = engine.Integrate(context.Background(), "MSFT", market, analyst)
	require.NoError(t, err)
	assert.Equal(t, 4, market.callCount())
}
