// SPDX-License-Identifier: MIT

package library

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)
)

// timeFormat keeps nanosecond precision so two scans within the same second
// still produce distinguishable scan_time stamps.
const timeFormat = time.RFC3339Nano

// Store provides SQLite persistence for the record index.
type Store struct {
	db *sql.DB
}

// NewStore initializes the SQLite store and runs migrations. WAL mode and a
// busy timeout keep concurrent API reads from colliding with scan writes.
func NewStore(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs database schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS roots (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		last_scan_time TEXT,
		last_scan_status TEXT NOT NULL DEFAULT 'never' CHECK(last_scan_status IN ('never', 'running', 'ok', 'degraded', 'failed')),
		total_records INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS records (
		root_id TEXT NOT NULL,
		rel_path TEXT NOT NULL,
		number INTEGER NOT NULL DEFAULT 0,
		title TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT '',
		superseded_by TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL DEFAULT '',
		deciders TEXT NOT NULL DEFAULT '',
		chosen TEXT NOT NULL DEFAULT '',
		checksum TEXT NOT NULL DEFAULT '',
		size_bytes INTEGER NOT NULL DEFAULT 0,
		mod_time TEXT NOT NULL,
		scan_time TEXT NOT NULL,
		findings INTEGER NOT NULL DEFAULT 0,
		worst_severity TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (root_id, rel_path)
	);

	CREATE INDEX IF NOT EXISTS idx_records_root ON records(root_id);
	CREATE INDEX IF NOT EXISTS idx_records_number ON records(root_id, number);
	CREATE INDEX IF NOT EXISTS idx_records_status ON records(root_id, status);
	CREATE INDEX IF NOT EXISTS idx_records_scan_time ON records(root_id, scan_time);
	`

	_, err := s.db.Exec(schema)
	return err
}

// UpsertRoot inserts or updates a docs root.
func (s *Store) UpsertRoot(ctx context.Context, id, path string) error {
	query := `
	INSERT INTO roots (id, path, last_scan_status)
	VALUES (?, ?, 'never')
	ON CONFLICT(id) DO UPDATE SET path = excluded.path
	`
	_, err := s.db.ExecContext(ctx, query, id, path)
	return err
}

// GetRoot retrieves a single docs root by ID. Returns nil when absent.
func (s *Store) GetRoot(ctx context.Context, id string) (*Root, error) {
	query := `
	SELECT id, path, last_scan_time, last_scan_status, total_records
	FROM roots
	WHERE id = ?
	`

	var r Root
	var lastScanTimeStr sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.Path, &lastScanTimeStr, &r.LastScanStatus, &r.TotalRecords,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if lastScanTimeStr.Valid {
		t, err := time.Parse(timeFormat, lastScanTimeStr.String)
		if err == nil {
			r.LastScanTime = &t
		}
	}

	return &r, nil
}

// BeginScan marks the root as running. The returned scan time stamps every
// record upserted during this scan and later drives DeleteMissing.
func (s *Store) BeginScan(ctx context.Context, rootID string) (time.Time, error) {
	scanTime := time.Now().UTC()
	query := `
	UPDATE roots
	SET last_scan_status = 'running'
	WHERE id = ?
	`
	if _, err := s.db.ExecContext(ctx, query, rootID); err != nil {
		return time.Time{}, err
	}
	return scanTime, nil
}

// FinishScan records the outcome of a scan on the root row.
func (s *Store) FinishScan(ctx context.Context, rootID string, status RootStatus, scanTime time.Time, totalRecords int) error {
	query := `
	UPDATE roots
	SET last_scan_status = ?,
	    last_scan_time = ?,
	    total_records = ?
	WHERE id = ?
	`
	_, err := s.db.ExecContext(ctx, query, status.String(), scanTime.Format(timeFormat), totalRecords, rootID)
	return err
}

// UpsertRecord inserts or updates one index row inside a scan transaction.
func (s *Store) UpsertRecord(ctx context.Context, tx *sql.Tx, rec IndexedRecord) error {
	query := `
	INSERT INTO records (root_id, rel_path, number, title, status, superseded_by, date, deciders, chosen, checksum, size_bytes, mod_time, scan_time, findings, worst_severity)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(root_id, rel_path) DO UPDATE SET
		number = excluded.number,
		title = excluded.title,
		status = excluded.status,
		superseded_by = excluded.superseded_by,
		date = excluded.date,
		deciders = excluded.deciders,
		chosen = excluded.chosen,
		checksum = excluded.checksum,
		size_bytes = excluded.size_bytes,
		mod_time = excluded.mod_time,
		scan_time = excluded.scan_time,
		findings = excluded.findings,
		worst_severity = excluded.worst_severity
	`

	_, err := tx.ExecContext(ctx, query,
		rec.RootID,
		rec.RelPath,
		rec.Number,
		rec.Title,
		rec.Status,
		rec.SupersededBy,
		rec.Date,
		decidersToCSV(rec.Deciders),
		rec.Chosen,
		rec.Checksum,
		rec.SizeBytes,
		rec.ModTime.Format(timeFormat),
		rec.ScanTime.Format(timeFormat),
		rec.Findings,
		rec.WorstSeverity,
	)
	return err
}

// DeleteMissing removes index rows that were not stamped by the given scan,
// i.e. documents deleted or renamed since the previous scan.
func (s *Store) DeleteMissing(ctx context.Context, tx *sql.Tx, rootID string, scanTime time.Time) (int64, error) {
	query := `
	DELETE FROM records
	WHERE root_id = ? AND scan_time != ?
	`
	res, err := tx.ExecContext(ctx, query, rootID, scanTime.Format(timeFormat))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// BeginTx starts a transaction for the scan upsert+delete pass.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}
