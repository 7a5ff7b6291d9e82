package store

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

	"github.com/nao1215/cubegrab/internal/model"
)

// SQLiteFileName is the database file created in the store directory.
const SQLiteFileName = "cubegrab.db"

// SQLiteStore is the SQLite implementation of Store.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// Options configures SQLiteStore behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// OpenSQLite opens or creates the SQLite store in dbDir.
func OpenSQLite(dbDir string, opts Options) (*SQLiteStore, error) {
	dbPath := filepath.Join(dbDir, SQLiteFileName)

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?mode=rwc"
	} else if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		}
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createTables() error {
	schema := `
	-- Content-addressed file bytes
	CREATE TABLE IF NOT EXISTS blobs (
		digest TEXT PRIMARY KEY,
		data BLOB NOT NULL
	);

	-- Files belonging to a conversion: tiles and the stitched result
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversion_id TEXT NOT NULL,
		name TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		digest TEXT NOT NULL REFERENCES blobs(digest),
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(conversion_id, name)
	);

	CREATE INDEX IF NOT EXISTS idx_files_conversion ON files(conversion_id);

	-- Acquisition reports as JSON
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversion_id TEXT NOT NULL,
		url TEXT NOT NULL,
		succeeded INTEGER NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_url ON reports(url);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON reports(timestamp);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveFile implements Store.
func (s *SQLiteStore) SaveFile(ctx context.Context, conversionID, name string, data []byte, mimeType string) (*model.FileRecord, error) {
	digest := Digest(data)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO blobs (digest, data) VALUES (?, ?)`, digest, data); err != nil {
		return nil, fmt.Errorf("failed to store file data: %w", err)
	}

	query := `
	INSERT INTO files (conversion_id, name, mime_type, size, digest)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(conversion_id, name) DO UPDATE SET
		mime_type = excluded.mime_type,
		size = excluded.size,
		digest = excluded.digest,
		timestamp = CURRENT_TIMESTAMP
	RETURNING id, timestamp
	`
	rec := &model.FileRecord{
		ConversionID: conversionID,
		Name:         name,
		MIMEType:     mimeType,
		Size:         int64(len(data)),
		Digest:       digest,
	}
	var timestamp string
	if err := tx.QueryRowContext(ctx, query, conversionID, name, mimeType, len(data), digest).Scan(&rec.ID, &timestamp); err != nil {
		return nil, fmt.Errorf("failed to insert file record: %w", err)
	}
	rec.CreatedAt = parseTimestamp(timestamp)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit file: %w", err)
	}
	return rec, nil
}

// Files implements Store.
func (s *SQLiteStore) Files(ctx context.Context, conversionID string) ([]model.FileRecord, error) {
	query := `
	SELECT id, conversion_id, name, mime_type, size, digest, timestamp
	FROM files
	WHERE conversion_id = ?
	ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, conversionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var records []model.FileRecord
	for rows.Next() {
		var rec model.FileRecord
		var timestamp string
		if err := rows.Scan(&rec.ID, &rec.ConversionID, &rec.Name, &rec.MIMEType, &rec.Size, &rec.Digest, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		rec.CreatedAt = parseTimestamp(timestamp)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FileData implements Store.
func (s *SQLiteStore) FileData(ctx context.Context, digest string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE digest = ?`, digest).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: blob %s", ErrNotFound, digest)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}
	return data, nil
}

// SaveReport implements Store.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *model.AcquisitionReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO reports (conversion_id, url, succeeded, report_json)
	VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, report.ConversionID, report.URL, report.Succeeded(), string(reportJSON)); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Reports implements Store.
func (s *SQLiteStore) Reports(ctx context.Context, url string, limit int) ([]*model.AcquisitionReport, error) {
	query := `SELECT report_json FROM reports`
	var args []any
	if url != "" {
		query += ` WHERE url = ?`
		args = append(args, url)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []*model.AcquisitionReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		var report model.AcquisitionReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			return nil, fmt.Errorf("failed to parse report: %w", err)
		}
		reports = append(reports, &report)
	}
	return reports, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
