// SPDX-License-Identifier: MIT

// Package library persists the scan-derived record index in SQLite. The
// index is rebuilt by every scan, so deleting the database file is always
// safe; it exists to serve queries without re-parsing the docs tree.
package library

import (
	"strings"
	"time"
)

// RootStatus represents the scan state of an indexed docs root.
type RootStatus string

const (
	RootStatusNever    RootStatus = "never"    // not yet scanned
	RootStatusRunning  RootStatus = "running"  // scan in progress
	RootStatusOK       RootStatus = "ok"       // last scan clean
	RootStatusDegraded RootStatus = "degraded" // last scan had findings with error severity
	RootStatusFailed   RootStatus = "failed"   // last scan aborted
)

// String returns the string representation of RootStatus.
func (r RootStatus) String() string {
	return string(r)
}

// Root is one indexed docs root with its runtime scan status.
type Root struct {
	ID             string     `json:"id"`
	Path           string     `json:"path"`
	LastScanTime   *time.Time `json:"last_scan_time,omitempty"`
	LastScanStatus RootStatus `json:"last_scan_status"`
	TotalRecords   int        `json:"total_records"`
}

// IndexedRecord is the index row for one decision record document.
type IndexedRecord struct {
	RootID        string    `json:"-"`
	RelPath       string    `json:"rel_path"`
	Number        int       `json:"number,omitempty"`
	Title         string    `json:"title"`
	Status        string    `json:"status,omitempty"`
	SupersededBy  string    `json:"superseded_by,omitempty"`
	Date          string    `json:"date,omitempty"`
	Deciders      []string  `json:"deciders,omitempty"`
	Chosen        string    `json:"chosen,omitempty"`
	Checksum      string    `json:"checksum"`
	SizeBytes     int64     `json:"size_bytes"`
	ModTime       time.Time `json:"mod_time"`
	ScanTime      time.Time `json:"scan_time"`
	Findings      int       `json:"findings"`
	WorstSeverity string    `json:"worst_severity,omitempty"`
}

// decidersToCSV flattens the decider list for storage. Names never contain
// commas in the MADR dialect (they are comma-separated in the source line).
func decidersToCSV(deciders []string) string {
	return strings.Join(deciders, ",")
}

func decidersFromCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ListFilter narrows ListRecords results. Empty fields match everything.
type ListFilter struct {
	Status  string
	Decider string
}

// Stats summarizes the index for one root.
type Stats struct {
	TotalRecords      int            `json:"total_records"`
	RecordsByStatus   map[string]int `json:"records_by_status"`
	TotalFindings     int            `json:"total_findings"`
	RecordsBySeverity map[string]int `json:"records_by_severity"`
}
