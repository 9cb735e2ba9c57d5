package contracts

import (
	"context"
	"errors"
	"regexp"
	"time"
)

var (
	// ErrNotFound is returned when a stock record does not exist.
	ErrNotFound = errors.New("stock not found")

	// ErrInvalidSymbol is returned when a symbol fails format validation.
	ErrInvalidSymbol = errors.New("invalid stock symbol format")
)

// symbolPattern matches ticker symbols: 1-5 uppercase letters.
var symbolPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// ValidSymbol reports whether s is a well-formed ticker symbol.
func ValidSymbol(s string) bool {
	return symbolPattern.MatchString(s)
}

// StockRecord is the durable per-symbol row in the stock store.
// Scores are always derived by the scoring engine, never user-supplied.
type StockRecord struct {
	Symbol    string    `json:"symbol"`
	CreatedAt time.Time `json:"created_at"`

	// Price information
	CurrentPrice float64 `json:"current_price"`
	HighPrice    float64 `json:"high_price"`
	LowPrice     float64 `json:"low_price"`

	// Financial metrics
	PERatio float64 `json:"pe_ratio"`
	ROE     float64 `json:"roe"`
	DCF     float64 `json:"dcf"`

	// Analyst data
	AnalysisDate             *time.Time `json:"analysis_date,omitempty"`
	AnalystRatingsStrongBuy  int        `json:"analyst_ratings_strong_buy"`
	AnalystRatingsBuy        int        `json:"analyst_ratings_buy"`
	AnalystRatingsHold       int        `json:"analyst_ratings_hold"`
	AnalystRatingsSell       int        `json:"analyst_ratings_sell"`
	AnalystRatingsStrongSell int        `json:"analyst_ratings_strong_sell"`
	RSI                      float64    `json:"rsi"`
	MACD                     float64    `json:"macd"`
	Volatility               float64    `json:"volatility"`
	SentimentScore           float64    `json:"sentiment_score"`
	Beta                     float64    `json:"beta"`

	// Derived scores
	PEScore    float64 `json:"pe_score"`
	ROEScore   float64 `json:"roe_score"`
	DCFScore   float64 `json:"dcf_score"`
	TotalScore float64 `json:"total_score"`
}

// StockStore is the durable keyed table of stock records.
// Symbol is the uniqueness key.
type StockStore interface {
	// ListAll returns every stored record ordered by symbol.
	ListAll(ctx context.Context) ([]StockRecord, error)

	// Get returns the record for symbol or ErrNotFound.
	Get(ctx context.Context, symbol string) (*StockRecord, error)

	// Upsert inserts or replaces the record keyed by its symbol.
	// The symbol must pass ValidSymbol.
	Upsert(ctx context.Context, rec *StockRecord) error

	// Delete removes the record for symbol. Deleting an absent symbol
	// is not an error.
	Delete(ctx context.Context, symbol string) error
}
