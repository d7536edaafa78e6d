package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"itcx/internal/config"
)

// Entry is one extracted image recorded in the catalog.
type Entry struct {
	ID          int64
	SourcePath  string
	ItemIndex   int
	Format      string
	Width       uint32
	Height      uint32
	OutputPath  string
	OutputBytes int64
	ExtractedAt time.Time
}

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open connects to the catalog database at the configured path, acquiring
// the writer lock and applying migrations. It fails immediately when another
// process holds the lock.
func Open(cfg *config.Config) (*Store, error) {
	dbPath := cfg.Paths.CatalogPath
	if dbPath == "" {
		return nil, fmt.Errorf("catalog: no catalog path configured")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog directory: %w", err)
	}

	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("catalog %s is locked by another itcx process", dbPath)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close releases the database connection and the writer lock. Safe to call
// more than once.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if s.lock != nil {
		_ = s.lock.Unlock()
		s.lock = nil
	}
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Record inserts one extracted image and returns its row id.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	when := entry.ExtractedAt
	if when.IsZero() {
		when = time.Now().UTC()
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO artwork (
            source_path, item_index, format, width, height,
            output_path, output_bytes, extracted_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SourcePath,
		entry.ItemIndex,
		entry.Format,
		entry.Width,
		entry.Height,
		entry.OutputPath,
		entry.OutputBytes,
		when.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert artwork: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns the most recently extracted entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, source_path, item_index, format, width, height,
            output_path, output_bytes, extracted_at
        FROM artwork ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query artwork: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// BySource returns every entry recorded for one source file, in item order.
func (s *Store) BySource(ctx context.Context, sourcePath string) ([]Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, source_path, item_index, format, width, height,
            output_path, output_bytes, extracted_at
        FROM artwork WHERE source_path = ? ORDER BY item_index`,
		sourcePath,
	)
	if err != nil {
		return nil, fmt.Errorf("query artwork by source: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var entry Entry
		var extractedAt string
		if err := rows.Scan(
			&entry.ID,
			&entry.SourcePath,
			&entry.ItemIndex,
			&entry.Format,
			&entry.Width,
			&entry.Height,
			&entry.OutputPath,
			&entry.OutputBytes,
			&extractedAt,
		); err != nil {
			return nil, fmt.Errorf("scan artwork row: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, extractedAt); err == nil {
			entry.ExtractedAt = parsed
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
