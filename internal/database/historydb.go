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

	"github.com/iranrevolution2026/posters/internal/model"
)

// FileName is the name of the database file inside the history directory.
const FileName = "posters.db"

// HistoryDB provides SQLite-based storage for run summaries.
//
// Design decision: a single database file per user, in the XDG data
// directory, shared by every input batch. Runs are append-only; nothing
// is updated after SaveRun returns.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per generate run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		input TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		template TEXT NOT NULL,
		total INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		canceled INTEGER NOT NULL,
		placeholders INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- One row per record of a run
	CREATE TABLE IF NOT EXISTS posters (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		record_index INTEGER NOT NULL,
		record_id TEXT NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		path TEXT,
		digest TEXT,
		image_reason TEXT,
		warnings TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_posters_run ON posters(run_id);
	CREATE INDEX IF NOT EXISTS idx_posters_record ON posters(record_id);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a run summary and one row per outcome in a single
// transaction. It returns the run ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, summary *model.Summary) (id int64, err error) {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // the original error is returned
		}
	}()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (started_at, input, output_dir, template, total, succeeded, failed, canceled, placeholders, duration_ns, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		formatTimestamp(summary.StartedAt),
		summary.Input,
		summary.OutputDir,
		summary.Template,
		summary.Total,
		summary.Succeeded,
		summary.Failed,
		summary.Canceled,
		summary.Placeholders,
		int64(summary.Duration),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	if id, err = result.LastInsertId(); err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO posters (run_id, record_index, record_id, name, status, path, digest, image_reason, warnings)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare poster insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range summary.Outcomes {
		warningsJSON, err := json.Marshal(o.Warnings)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize warnings: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			id,
			o.Index,
			o.ID,
			o.Name,
			o.Status.String(),
			o.Path,
			o.Digest,
			o.ImageReason,
			string(warningsJSON),
		); err != nil {
			return 0, fmt.Errorf("failed to insert poster %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// RunMetadata contains summary information about a stored run.
// This is used for listing runs without loading every outcome.
type RunMetadata struct {
	ID           int64
	StartedAt    time.Time
	Input        string
	OutputDir    string
	Template     string
	Total        int
	Succeeded    int
	Failed       int
	Canceled     int
	Placeholders int
	Duration     time.Duration
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, started_at, input, output_dir, template, total, succeeded, failed, canceled, placeholders, duration_ns
	FROM runs
	ORDER BY id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var startedAt string
		var duration int64

		if err := rows.Scan(
			&meta.ID,
			&startedAt,
			&meta.Input,
			&meta.OutputDir,
			&meta.Template,
			&meta.Total,
			&meta.Succeeded,
			&meta.Failed,
			&meta.Canceled,
			&meta.Placeholders,
			&duration,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		meta.StartedAt = parseTimestamp(startedAt)
		meta.Duration = time.Duration(duration)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRun retrieves the full summary of a run.
// It returns nil without an error when no run has that ID.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*model.Summary, error) {
	var summaryJSON string
	err := hdb.db.QueryRowContext(ctx, `SELECT summary_json FROM runs WHERE id = ?`, id).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var summary model.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse run summary: %w", err)
	}
	return &summary, nil
}

// PosterEntry is one stored poster of a record.
type PosterEntry struct {
	RunID       int64
	StartedAt   time.Time
	RecordID    string
	Name        string
	Status      model.Status
	Path        string
	Digest      string
	ImageReason string
	Warnings    []string
}

// PosterHistory returns every stored poster of a record, newest first.
func (hdb *HistoryDB) PosterHistory(ctx context.Context, recordID string) ([]PosterEntry, error) {
	query := `
	SELECT p.run_id, r.started_at, p.record_id, p.name, p.status, p.path, p.digest, p.image_reason, p.warnings
	FROM posters p
	JOIN runs r ON r.id = p.run_id
	WHERE p.record_id = ?
	ORDER BY p.run_id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get poster history: %w", err)
	}
	defer rows.Close()

	var results []PosterEntry
	for rows.Next() {
		var entry PosterEntry
		var startedAt, status string
		var path, digest, reason, warnings sql.NullString

		if err := rows.Scan(
			&entry.RunID,
			&startedAt,
			&entry.RecordID,
			&entry.Name,
			&status,
			&path,
			&digest,
			&reason,
			&warnings,
		); err != nil {
			return nil, fmt.Errorf("failed to scan poster: %w", err)
		}

		entry.StartedAt = parseTimestamp(startedAt)
		if err := entry.Status.UnmarshalText([]byte(status)); err != nil {
			return nil, fmt.Errorf("failed to parse poster status: %w", err)
		}
		entry.Path = path.String
		entry.Digest = digest.String
		entry.ImageReason = reason.String
		if warnings.Valid && warnings.String != "" {
			if err := json.Unmarshal([]byte(warnings.String), &entry.Warnings); err != nil {
				entry.Warnings = nil
			}
		}

		results = append(results, entry)
	}

	return results, rows.Err()
}

// formatTimestamp stores times in UTC so they sort as text.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
