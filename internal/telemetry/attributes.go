// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Record attributes
	RecordNumberKey = "record.number"
	RecordStatusKey = "record.status"
	RecordPathKey   = "record.path"

	// Scan attributes
	ScanDocumentsKey  = "scan.documents"
	ScanFindingsKey   = "scan.findings"
	ScanFailedKey     = "scan.failed_documents"
	ScanOutcomeKey    = "scan.outcome"
	ScanDurationMSKey = "scan.duration_ms"

	// Lint attributes
	LintRuleKey     = "lint.rule"
	LintSeverityKey = "lint.severity"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// RecordAttributes creates record-related span attributes. Zero or empty
// values are omitted.
func RecordAttributes(number int, status, relPath string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if number > 0 {
		attrs = append(attrs, attribute.Int(RecordNumberKey, number))
	}
	if status != "" {
		attrs = append(attrs, attribute.String(RecordStatusKey, status))
	}
	if relPath != "" {
		attrs = append(attrs, attribute.String(RecordPathKey, relPath))
	}
	return attrs
}

// ScanAttributes creates scan-summary span attributes.
func ScanAttributes(documents, findings, failed int, outcome string, durationMS int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(ScanDocumentsKey, documents),
		attribute.Int(ScanFindingsKey, findings),
		attribute.Int(ScanFailedKey, failed),
		attribute.String(ScanOutcomeKey, outcome),
		attribute.Int64(ScanDurationMSKey, durationMS),
	}
}

// LintAttributes creates lint-finding span attributes.
func LintAttributes(rule, severity string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(LintRuleKey, rule),
		attribute.String(LintSeverityKey, severity),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
