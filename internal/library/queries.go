// SPDX-License-Identifier: MIT

package library

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

const recordColumns = `root_id, rel_path, number, title, status, superseded_by, date, deciders, chosen, checksum, size_bytes, mod_time, scan_time, findings, worst_severity`

func scanRecord(scan func(dest ...any) error) (IndexedRecord, error) {
	var rec IndexedRecord
	var deciders, modTimeStr, scanTimeStr string

	err := scan(
		&rec.RootID,
		&rec.RelPath,
		&rec.Number,
		&rec.Title,
		&rec.Status,
		&rec.SupersededBy,
		&rec.Date,
		&deciders,
		&rec.Chosen,
		&rec.Checksum,
		&rec.SizeBytes,
		&modTimeStr,
		&scanTimeStr,
		&rec.Findings,
		&rec.WorstSeverity,
	)
	if err != nil {
		return rec, err
	}

	rec.Deciders = decidersFromCSV(deciders)
	rec.ModTime, _ = time.Parse(timeFormat, modTimeStr)
	rec.ScanTime, _ = time.Parse(timeFormat, scanTimeStr)

	return rec, nil
}

// GetRecord retrieves one record by its NNNN number. When several documents
// carry the same number the lowest rel_path wins, matching the scan order.
// Returns nil when absent.
func (s *Store) GetRecord(ctx context.Context, rootID string, number int) (*IndexedRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM records
	WHERE root_id = ? AND number = ?
	ORDER BY rel_path
	LIMIT 1
	`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, rootID, number).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRecordByPath retrieves one record by its root-relative path. Returns
// nil when absent.
func (s *Store) GetRecordByPath(ctx context.Context, rootID, relPath string) (*IndexedRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM records
	WHERE root_id = ? AND rel_path = ?
	`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, rootID, relPath).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecords returns index rows for a root ordered by number then path,
// optionally narrowed by status and decider.
func (s *Store) ListRecords(ctx context.Context, rootID string, filter ListFilter) ([]IndexedRecord, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + recordColumns + ` FROM records WHERE root_id = ?`)
	args := []any{rootID}

	if filter.Status != "" {
		sb.WriteString(` AND status = ?`)
		args = append(args, filter.Status)
	}
	if filter.Decider != "" {
		// Exact segment match inside the CSV column.
		sb.WriteString(` AND instr(',' || deciders || ',', ',' || ? || ',') > 0`)
		args = append(args, filter.Decider)
	}
	sb.WriteString(` ORDER BY number, rel_path`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []IndexedRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Stats aggregates the index for one root: record counts by status, total
// findings, and record counts by worst finding severity.
func (s *Store) Stats(ctx context.Context, rootID string) (*Stats, error) {
	stats := &Stats{
		RecordsByStatus:   make(map[string]int),
		RecordsBySeverity: make(map[string]int),
	}

	statusQuery := `
	SELECT status, COUNT(*), COALESCE(SUM(findings), 0)
	FROM records
	WHERE root_id = ?
	GROUP BY status
	`
	rows, err := s.db.QueryContext(ctx, statusQuery, rootID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var status string
		var count, findings int
		if err := rows.Scan(&status, &count, &findings); err != nil {
			return nil, err
		}
		if status == "" {
			status = "unknown"
		}
		stats.RecordsByStatus[status] = count
		stats.TotalRecords += count
		stats.TotalFindings += findings
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	severityQuery := `
	SELECT worst_severity, COUNT(*)
	FROM records
	WHERE root_id = ? AND worst_severity != ''
	GROUP BY worst_severity
	`
	sevRows, err := s.db.QueryContext(ctx, severityQuery, rootID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = sevRows.Close() }()

	for sevRows.Next() {
		var severity string
		var count int
		if err := sevRows.Scan(&severity, &count); err != nil {
			return nil, err
		}
		stats.RecordsBySeverity[severity] = count
	}

	return stats, sevRows.Err()
}
