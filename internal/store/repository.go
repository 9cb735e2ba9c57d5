// Package store implements the durable stock record table on
// PostgreSQL.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// Repository is the pgx-backed contracts.StockStore.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the stocks table when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS stocks (
			symbol                       TEXT PRIMARY KEY,
			created_at                   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			current_price                DOUBLE PRECISION NOT NULL DEFAULT 0,
			high_price                   DOUBLE PRECISION NOT NULL DEFAULT 0,
			low_price                    DOUBLE PRECISION NOT NULL DEFAULT 0,
			pe_ratio                     DOUBLE PRECISION NOT NULL DEFAULT 0,
			roe                          DOUBLE PRECISION NOT NULL DEFAULT 0,
			dcf                          DOUBLE PRECISION NOT NULL DEFAULT 0,
			analysis_date                TIMESTAMPTZ,
			analyst_ratings_strong_buy   INTEGER NOT NULL DEFAULT 0,
			analyst_ratings_buy          INTEGER NOT NULL DEFAULT 0,
			analyst_ratings_hold         INTEGER NOT NULL DEFAULT 0,
			analyst_ratings_sell         INTEGER NOT NULL DEFAULT 0,
			analyst_ratings_strong_sell  INTEGER NOT NULL DEFAULT 0,
			rsi                          DOUBLE PRECISION NOT NULL DEFAULT 0,
			macd                         DOUBLE PRECISION NOT NULL DEFAULT 0,
			volatility                   DOUBLE PRECISION NOT NULL DEFAULT 0,
			sentiment_score              DOUBLE PRECISION NOT NULL DEFAULT 0,
			beta                         DOUBLE PRECISION NOT NULL DEFAULT 0,
			pe_score                     DOUBLE PRECISION NOT NULL DEFAULT 0,
			roe_score                    DOUBLE PRECISION NOT NULL DEFAULT 0,
			dcf_score                    DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_score                  DOUBLE PRECISION NOT NULL DEFAULT 0
		)
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create stocks table: %w", err)
	}
	return nil
}

const recordColumns = `
	symbol, created_at, current_price, high_price, low_price,
	pe_ratio, roe, dcf, analysis_date,
	analyst_ratings_strong_buy, analyst_ratings_buy, analyst_ratings_hold,
	analyst_ratings_sell, analyst_ratings_strong_sell,
	rsi, macd, volatility, sentiment_score, beta,
	pe_score, roe_score, dcf_score, total_score
`

// ListAll returns every stored record ordered by symbol.
func (r *Repository) ListAll(ctx context.Context) ([]contracts.StockRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM stocks ORDER BY symbol`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query stocks: %w", err)
	}
	defer rows.Close()

	var records []contracts.StockRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}

// Get returns the record for symbol or contracts.ErrNotFound.
func (r *Repository) Get(ctx context.Context, symbol string) (*contracts.StockRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM stocks WHERE symbol = $1`

	rows, err := r.db.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query stock %s: %w", symbol, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query stock %s: %w", symbol, err)
		}
		return nil, contracts.ErrNotFound
	}

	rec, err := scanRecord(rows)
	if err != nil {
		return nil, fmt.Errorf("scan stock %s: %w", symbol, err)
	}
	return rec, nil
}

// Upsert inserts or replaces the record keyed by its symbol. The
// single-statement upsert means a failure leaves no partial write.
func (r *Repository) Upsert(ctx context.Context, rec *contracts.StockRecord) error {
	if !contracts.ValidSymbol(rec.Symbol) {
		return fmt.Errorf("upsert %q: %w", rec.Symbol, contracts.ErrInvalidSymbol)
	}

	query := `
		INSERT INTO stocks (
			symbol, current_price, high_price, low_price,
			pe_ratio, roe, dcf, analysis_date,
			analyst_ratings_strong_buy, analyst_ratings_buy, analyst_ratings_hold,
			analyst_ratings_sell, analyst_ratings_strong_sell,
			rsi, macd, volatility, sentiment_score, beta,
			pe_score, roe_score, dcf_score, total_score
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
		ON CONFLICT (symbol) DO UPDATE SET
			current_price = EXCLUDED.current_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			pe_ratio = EXCLUDED.pe_ratio,
			roe = EXCLUDED.roe,
			dcf = EXCLUDED.dcf,
			analysis_date = EXCLUDED.analysis_date,
			analyst_ratings_strong_buy = EXCLUDED.analyst_ratings_strong_buy,
			analyst_ratings_buy = EXCLUDED.analyst_ratings_buy,
			analyst_ratings_hold = EXCLUDED.analyst_ratings_hold,
			analyst_ratings_sell = EXCLUDED.analyst_ratings_sell,
			analyst_ratings_strong_sell = EXCLUDED.analyst_ratings_strong_sell,
			rsi = EXCLUDED.rsi,
			macd = EXCLUDED.macd,
			volatility = EXCLUDED.volatility,
			sentiment_score = EXCLUDED.sentiment_score,
			beta = EXCLUDED.beta,
			pe_score = EXCLUDED.pe_score,
			roe_score = EXCLUDED.roe_score,
			dcf_score = EXCLUDED.dcf_score,
			total_score = EXCLUDED.total_score
	`

	_, err := r.db.Exec(ctx, query,
		rec.Symbol, rec.CurrentPrice, rec.HighPrice, rec.LowPrice,
		rec.PERatio, rec.ROE, rec.DCF, rec.AnalysisDate,
		rec.AnalystRatingsStrongBuy, rec.AnalystRatingsBuy, rec.AnalystRatingsHold,
		rec.AnalystRatingsSell, rec.AnalystRatingsStrongSell,
		rec.RSI, rec.MACD, rec.Volatility, rec.SentimentScore, rec.Beta,
		rec.PEScore, rec.ROEScore, rec.DCFScore, rec.TotalScore,
	)
	if err != nil {
		return fmt.Errorf("upsert stock %s: %w", rec.Symbol, err)
	}

	return nil
}

// Delete removes the record for symbol.
func (r *Repository) Delete(ctx context.Context, symbol string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM stocks WHERE symbol = $1`, symbol); err != nil {
		return fmt.Errorf("delete stock %s: %w", symbol, err)
	}
	return nil
}

// Insert adds a bare symbol row, failing when it already exists.
func (r *Repository) Insert(ctx context.Context, symbol string) error {
	if !contracts.ValidSymbol(symbol) {
		return fmt.Errorf("insert %q: %w", symbol, contracts.ErrInvalidSymbol)
	}

	tag, err := r.db.Exec(ctx,
		`INSERT INTO stocks (symbol) VALUES ($1) ON CONFLICT (symbol) DO NOTHING`, symbol)
	if err != nil {
		return fmt.Errorf("insert stock %s: %w", symbol, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock %s already exists", symbol)
	}
	return nil
}

func scanRecord(row pgx.Rows) (*contracts.StockRecord, error) {
	var rec contracts.StockRecord
	err := row.Scan(
		&rec.Symbol, &rec.CreatedAt, &rec.CurrentPrice, &rec.HighPrice, &rec.LowPrice,
		&rec.PERatio, &rec.ROE, &rec.DCF, &rec.AnalysisDate,
		&rec.AnalystRatingsStrongBuy, &rec.AnalystRatingsBuy, &rec.AnalystRatingsHold,
		&rec.AnalystRatingsSell, &rec.AnalystRatingsStrongSell,
		&rec.RSI, &rec.MACD, &rec.Volatility, &rec.SentimentScore, &rec.Beta,
		&rec.PEScore, &rec.ROEScore, &rec.DCFScore, &rec.TotalScore,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
