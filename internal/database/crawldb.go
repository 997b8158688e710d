package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/nightcrawler/internal/model"
)

// ErrRunNotFound is returned when no run matches the requested ID.
var ErrRunNotFound = errors.New("run not found")

// CrawlDB provides SQLite-based storage for crawl run history.
// It manages the connection and provides methods for saving and loading runs.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "nightcrawler.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids lock
	// contention errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Each row is one completed crawl run. The full result (URL list and
	-- aggregated headers) is stored as JSON; the counters are duplicated
	-- into columns so listings never need to parse the JSON blob.
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		pages_fetched INTEGER NOT NULL,
		pages_failed INTEGER NOT NULL,
		result TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed_url);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := cdb.db.Exec(schema)
	return err
}

// SaveRun persists a completed crawl run and returns its row ID.
func (cdb *CrawlDB) SaveRun(ctx context.Context, record *model.RunRecord) (int64, error) {
	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal result: %w", err)
	}

	res, err := cdb.db.ExecContext(ctx, `
		INSERT INTO runs (seed_url, started_at, finished_at, pages_fetched, pages_failed, result)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.SeedURL,
		record.StartedAt.UTC().Format(time.RFC3339Nano),
		record.FinishedAt.UTC().Format(time.RFC3339Nano),
		record.PagesFetched,
		record.PagesFailed,
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return res.LastInsertId()
}

// GetRun loads one run by ID, including the full result.
// Returns ErrRunNotFound if the ID does not exist.
func (cdb *CrawlDB) GetRun(ctx context.Context, id int64) (*model.RunRecord, error) {
	row := cdb.db.QueryRowContext(ctx, `
		SELECT id, seed_url, started_at, finished_at, pages_fetched, pages_failed, result
		FROM runs WHERE id = ?`, id)

	var record model.RunRecord
	var startedAt, finishedAt, resultJSON string
	err := row.Scan(
		&record.ID,
		&record.SeedURL,
		&startedAt,
		&finishedAt,
		&record.PagesFetched,
		&record.PagesFailed,
		&resultJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", id, err)
	}

	record.StartedAt = parseTimestamp(startedAt)
	record.FinishedAt = parseTimestamp(finishedAt)

	var result model.CrawlResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result for run %d: %w", id, err)
	}
	record.Result = &result

	return &record, nil
}

// ListRuns returns run metadata newest-first, at most limit rows.
// The Result field is left nil; use GetRun for the full data.
// A limit of 0 or less means no limit.
func (cdb *CrawlDB) ListRuns(ctx context.Context, limit int) ([]*model.RunRecord, error) {
	query := `
		SELECT id, seed_url, started_at, finished_at, pages_fetched, pages_failed
		FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var records []*model.RunRecord
	for rows.Next() {
		var record model.RunRecord
		var startedAt, finishedAt string
		if err := rows.Scan(
			&record.ID,
			&record.SeedURL,
			&startedAt,
			&finishedAt,
			&record.PagesFetched,
			&record.PagesFailed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		record.StartedAt = parseTimestamp(startedAt)
		record.FinishedAt = parseTimestamp(finishedAt)
		records = append(records, &record)
	}

	return records, rows.Err()
}

// LatestRun returns the most recent run for the given seed URL, including
// the full result. Returns ErrRunNotFound if the seed has never been crawled.
func (cdb *CrawlDB) LatestRun(ctx context.Context, seedURL string) (*model.RunRecord, error) {
	row := cdb.db.QueryRowContext(ctx, `
		SELECT id FROM runs WHERE seed_url = ?
		ORDER BY started_at DESC, id DESC LIMIT 1`, seedURL)

	var id int64
	err := row.Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest run for %s: %w", seedURL, err)
	}

	return cdb.GetRun(ctx, id)
}

// parseTimestamp parses a stored timestamp, trying the formats SQLite may
// hand back. Zero time on failure; a corrupt timestamp should not make the
// whole run unreadable.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
