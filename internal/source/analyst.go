package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/wonny/buffett/backend/pkg/logger"
)

// AnalystName is the registry name of the analyst ratings source.
const AnalystName = "analyst_data"

// AnalystSource serves analyst ratings and technical indicators from a
// tabular CSV file. The file is loaded once at Connect; queries look
// up the first row matching the symbol.
type AnalystSource struct {
	logger  *logger.Logger
	csvPath string
	meta    Metadata

	mu      sync.RWMutex
	columns []string
	rows    []map[string]interface{}
}

// NewAnalystSource creates the analyst-data adapter.
func NewAnalystSource(csvPath string, log *logger.Logger) *AnalystSource {
	return &AnalystSource{
		logger:  log.WithField("source", AnalystName),
		csvPath: csvPath,
		meta: Metadata{
			Name:        AnalystName,
			Kind:        "csv",
			Description: "Analyst ratings and technical indicators from CSV",
			LastUpdated: time.Now(),
		},
	}
}

// Metadata describes the source.
func (s *AnalystSource) Metadata() Metadata {
	return s.meta
}

// Connect loads the CSV dataset into memory.
func (s *AnalystSource) Connect(ctx context.Context) error {
	f, err := os.Open(s.csvPath)
	if err != nil {
		return fmt.Errorf("open analyst csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("read analyst csv: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("analyst csv %s is empty", s.csvPath)
	}

	columns := records[0]
	rows := make([]map[string]interface{}, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if i >= len(record) {
				break
			}
			row[col] = parseCell(record[i])
		}
		rows = append(rows, row)
	}

	s.mu.Lock()
	s.columns = columns
	s.rows = rows
	s.mu.Unlock()

	s.logger.WithField("rows", len(rows)).Info("Loaded analyst dataset")
	return nil
}

// Disconnect clears the loaded dataset.
func (s *AnalystSource) Disconnect() error {
	s.mu.Lock()
	s.columns = nil
	s.rows = nil
	s.mu.Unlock()
	return nil
}

// HealthCheck reports whether the dataset is loaded and non-empty.
func (s *AnalystSource) HealthCheck(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows) > 0
}

// Schema returns the CSV columns.
func (s *AnalystSource) Schema() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.columns == nil {
		return map[string][]string{}
	}
	cols := make([]string, len(s.columns))
	copy(cols, s.columns)
	return map[string][]string{"analyst_ratings": cols}
}

// ExecuteQuery looks up the first row matching the query symbol and
// returns it flattened to a field->value mapping.
func (s *AnalystSource) ExecuteQuery(ctx context.Context, q Query) (Result, error) {
	if q.Symbol == "" {
		return nil, fmt.Errorf("query must include symbol")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, row := range s.rows {
		if sym, ok := row["symbol"].(string); ok && sym == q.Symbol {
			res := make(Result, len(row))
			for k, v := range row {
				res[k] = v
			}
			return res, nil
		}
	}

	return nil, fmt.Errorf("no data found for symbol %s", q.Symbol)
}

// parseCell converts a CSV cell to a number when possible, keeping the
// string otherwise (symbols, dates).
func parseCell(cell string) interface{} {
	if cell == "" {
		return cell
	}
	if n, err := strconv.ParseFloat(cell, 64); err == nil {
		return n
	}
	return cell
}
