// SPDX-License-Identifier: MIT
package telemetry

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestHTTPAttributes(t *testing.T) {
	attrs := HTTPAttributes("GET", "/api/records", "http://localhost:8080/api/records", 200)

	if len(attrs) != 4 {
		t.Fatalf("Expected 4 attributes, got %d", len(attrs))
	}

	verifyAttribute(t, attrs, HTTPMethodKey, "GET")
	verifyAttribute(t, attrs, HTTPRouteKey, "/api/records")
	verifyAttribute(t, attrs, HTTPURLKey, "http://localhost:8080/api/records")
	verifyIntAttribute(t, attrs, HTTPStatusCodeKey, 200)
}

func TestRecordAttributes(t *testing.T) {
	tests := []struct {
		name    string
		number  int
		status  string
		relPath string
		wantLen int
	}{
		{
			name:    "all fields",
			number:  7,
			status:  "accepted",
			relPath: "0007-choose-db.md",
			wantLen: 3,
		},
		{
			name:    "only path",
			relPath: "0007-choose-db.md",
			wantLen: 1,
		},
		{
			name:    "empty fields",
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := RecordAttributes(tt.number, tt.status, tt.relPath)

			if len(attrs) != tt.wantLen {
				t.Errorf("Expected %d attributes, got %d", tt.wantLen, len(attrs))
			}

			if tt.number > 0 {
				verifyIntAttribute(t, attrs, RecordNumberKey, tt.number)
			}
			if tt.status != "" {
				verifyAttribute(t, attrs, RecordStatusKey, tt.status)
			}
			if tt.relPath != "" {
				verifyAttribute(t, attrs, RecordPathKey, tt.relPath)
			}
		})
	}
}

func TestScanAttributes(t *testing.T) {
	attrs := ScanAttributes(42, 7, 1, "degraded", 1500)

	if len(attrs) != 5 {
		t.Fatalf("Expected 5 attributes, got %d", len(attrs))
	}

	verifyIntAttribute(t, attrs, ScanDocumentsKey, 42)
	verifyIntAttribute(t, attrs, ScanFindingsKey, 7)
	verifyIntAttribute(t, attrs, ScanFailedKey, 1)
	verifyAttribute(t, attrs, ScanOutcomeKey, "degraded")
	verifyInt64Attribute(t, attrs, ScanDurationMSKey, 1500)
}

func TestLintAttributes(t *testing.T) {
	attrs := LintAttributes("missing-date", "error")

	if len(attrs) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(attrs))
	}

	verifyAttribute(t, attrs, LintRuleKey, "missing-date")
	verifyAttribute(t, attrs, LintSeverityKey, "error")
}

func TestErrorAttributes(t *testing.T) {
	err := errors.New("test error")
	attrs := ErrorAttributes(err, "parse_error")

	if len(attrs) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(attrs))
	}

	verifyBoolAttribute(t, attrs, ErrorKey, true)
	verifyAttribute(t, attrs, ErrorTypeKey, "parse_error")
}

// Helper functions for attribute verification

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key, expectedValue string) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsString() != expectedValue {
				t.Errorf("Expected %s=%s, got %s", key, expectedValue, attr.Value.AsString())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}

func verifyIntAttribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue int) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsInt64() != int64(expectedValue) {
				t.Errorf("Expected %s=%d, got %d", key, expectedValue, attr.Value.AsInt64())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}

func verifyInt64Attribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue int64) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsInt64() != expectedValue {
				t.Errorf("Expected %s=%d, got %d", key, expectedValue, attr.Value.AsInt64())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}

func verifyBoolAttribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue bool) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsBool() != expectedValue {
				t.Errorf("Expected %s=%t, got %t", key, expectedValue, attr.Value.AsBool())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}
