package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/hupe1980/prodsearch/productive"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS productive (
	n        INTEGER PRIMARY KEY,
	digits   INTEGER NOT NULL,
	chunk_hi INTEGER NOT NULL
)`

// Sink writes results into a SQLite database.
type Sink struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Sink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: init %s: %w", path, err)
		}
	}
	return &Sink{db: db, path: path}, nil
}

// Path returns the database path.
func (s *Sink) Path() string { return s.path }

// Commit inserts the results of the chunk ending at hi in one transaction.
func (s *Sink) Commit(ctx context.Context, hi uint64, values []uint64) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO productive (n, digits, chunk_hi) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("sqlite: prepare: %w", err)
	}
	defer stmt.Close()

	for _, v := range values {
		if _, err := stmt.ExecContext(ctx, int64(v), productive.DigitCount(v), int64(hi)); err != nil {
			return fmt.Errorf("sqlite: insert %d: %w", v, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Count returns the number of stored results.
func (s *Sink) Count(ctx context.Context) (uint64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM productive").Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return uint64(n), nil
}

// Values returns every stored result in increasing order.
func (s *Sink) Values(ctx context.Context) ([]uint64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT n FROM productive")
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		out = append(out, uint64(n))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	slices.Sort(out)
	return out, nil
}

// DigitHistogram returns the number of results per digit count.
func (s *Sink) DigitHistogram(ctx context.Context) (map[int]uint64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT digits, COUNT(*) FROM productive GROUP BY digits")
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	hist := make(map[int]uint64)
	for rows.Next() {
		var (
			digits int
			count  int64
		)
		if err := rows.Scan(&digits, &count); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		hist[digits] = uint64(count)
	}
	return hist, rows.Err()
}

// Close closes the database.
func (s *Sink) Close() error {
	return s.db.Close()
}
