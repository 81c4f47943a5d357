// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldScanID    = "scan_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStage     = "stage"

	// Record fields
	FieldRecord = "record"
	FieldStatus = "status"
	FieldRule   = "rule"

	// Path fields
	FieldPath      = "path"
	FieldDocsDir   = "docs_dir"
	FieldDataDir   = "data_dir"
	FieldFinalPath = "final_path"
)
