package contracts

import "time"

// UnifiedRecord is the integrated view of one symbol across all
// sources, produced by the integration engine. It is ephemeral:
// created per integration call, cached with a freshness window and
// superseded by the next successful integration.
//
// JSON field names follow the established wire shape consumed by the
// frontend, including the historical "buffet_analysis" spelling.
type UnifiedRecord struct {
	Symbol      string      `json:"symbol"`
	LastUpdated time.Time   `json:"last_updated"`
	MarketData  MarketData  `json:"market_data"`
	Fundamental Fundamental `json:"fundamental_data"`
	AnalystData AnalystData `json:"analyst_data"`
	Buffett     Scores      `json:"buffet_analysis"`
}

// MarketData holds quote-level fields.
type MarketData struct {
	Price         float64 `json:"price"`
	Volume        int64   `json:"volume"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	ChangePercent string  `json:"change_percent"`
}

// Fundamental holds company-overview fields. ROE is a percentage.
type Fundamental struct {
	PERatio      float64 `json:"pe_ratio"`
	ROE          float64 `json:"roe"`
	EPS          float64 `json:"eps"`
	ProfitMargin float64 `json:"profit_margin"`
}

// AnalystData holds ratings and technical indicators from the analyst
// dataset.
type AnalystData struct {
	Ratings    Ratings    `json:"ratings"`
	Indicators Indicators `json:"technical_indicators"`
}

// Ratings holds analyst rating counts by category.
type Ratings struct {
	StrongBuy  int `json:"strong_buy"`
	Buy        int `json:"buy"`
	Hold       int `json:"hold"`
	Sell       int `json:"sell"`
	StrongSell int `json:"strong_sell"`
}

// Indicators holds technical indicators from the analyst dataset.
type Indicators struct {
	RSI            float64 `json:"rsi"`
	MACD           float64 `json:"macd"`
	Volatility     float64 `json:"volatility"`
	SentimentScore float64 `json:"sentiment_score"`
	Beta           float64 `json:"beta"`
}

// Scores holds the value-investing sub-scores and their total.
type Scores struct {
	PEScore    float64 `json:"pe_score"`
	ROEScore   float64 `json:"roe_score"`
	DCFScore   float64 `json:"dcf_score"`
	TotalScore float64 `json:"total_score"`
}
