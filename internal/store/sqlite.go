package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ ResultStore = (*SQLiteStore)(nil)

// SQLiteStore implements ResultStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const resultsSchema = `
CREATE TABLE IF NOT EXISTS results (
	symbol           TEXT NOT NULL,
	key              TEXT NOT NULL,
	indicator        TEXT NOT NULL,
	final_return     REAL NOT NULL,
	max_drawdown     REAL NOT NULL,
	accuracy         REAL NOT NULL,
	trades           INTEGER NOT NULL,
	validation_start TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	PRIMARY KEY (symbol, key)
);`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, ensures the
// schema exists, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(resultsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating results schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSummary inserts or replaces the summary for (symbol, key).
func (s *SQLiteStore) SaveSummary(ctx context.Context, sum Summary) error {
	if sum.CreatedAt.IsZero() {
		sum.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO results
			(symbol, key, indicator, final_return, max_drawdown, accuracy,
			 trades, validation_start, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.Symbol, sum.Key, sum.Indicator, sum.FinalReturn, sum.MaxDrawdown,
		sum.Accuracy, sum.Trades,
		sum.ValidationStart.UTC().Format(time.RFC3339),
		sum.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving summary %s/%s: %w", sum.Symbol, sum.Key, err)
	}
	return nil
}

// ListSummaries returns all summaries for a symbol, best final return first.
func (s *SQLiteStore) ListSummaries(ctx context.Context, symbol string) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, key, indicator, final_return, max_drawdown, accuracy,
		       trades, validation_start, created_at
		FROM results
		WHERE symbol = ?
		ORDER BY final_return DESC`, symbol)
	if err != nil {
		return nil, fmt.Errorf("listing summaries for %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var validation, created string
		if err := rows.Scan(&sum.Symbol, &sum.Key, &sum.Indicator,
			&sum.FinalReturn, &sum.MaxDrawdown, &sum.Accuracy, &sum.Trades,
			&validation, &created); err != nil {
			return nil, err
		}
		if sum.ValidationStart, err = time.Parse(time.RFC3339, validation); err != nil {
			return nil, fmt.Errorf("summary %s/%s has bad validation_start %q: %w",
				sum.Symbol, sum.Key, validation, err)
		}
		if sum.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("summary %s/%s has bad created_at %q: %w",
				sum.Symbol, sum.Key, created, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
