// SPDX-License-Identifier: MIT
package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidator_Port(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"valid port 80", 80, false},
		{"valid port 8080", 8080, false},
		{"valid port 65535", 65535, false},
		{"valid port 1", 1, false},
		{"invalid port 0", 0, true},
		{"invalid port -1", -1, true},
		{"invalid port 65536", 65536, true},
		{"invalid port 100000", 100000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Port("testPort", tt.port)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_ListenAddr(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"port only", ":8080", false},
		{"host and port", "127.0.0.1:8080", false},
		{"all interfaces", "0.0.0.0:9090", false},
		{"ephemeral port", ":0", false},
		{"empty", "", true},
		{"no port", "127.0.0.1", true},
		{"bare port", "8080", true},
		{"port out of range", ":70000", true},
		{"non-numeric port", ":http", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.ListenAddr("listen", tt.addr)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_Range(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		min     int
		max     int
		wantErr bool
	}{
		{"in range", 5, 1, 10, false},
		{"at min", 1, 1, 10, false},
		{"at max", 10, 1, 10, false},
		{"below min", 0, 1, 10, true},
		{"above max", 11, 1, 10, true},
		{"negative range", -5, -10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Range("testValue", tt.value, tt.min, tt.max)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_UnitInterval(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"zero", 0.0, false},
		{"one", 1.0, false},
		{"half", 0.5, false},
		{"negative", -0.1, true},
		{"above one", 1.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.UnitInterval("sampleRate", tt.value)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_GlobPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"markdown files", "*.md", false},
		{"numbered records", "[0-9]*.md", false},
		{"everything", "*", false},
		{"empty", "", true},
		{"unterminated class", "[0-9.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.GlobPattern("filePattern", tt.pattern)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	nonExistentDir := filepath.Join(tmpDir, "nonexistent")

	tests := []struct {
		name      string
		path      string
		mustExist bool
		wantErr   bool
	}{
		{"existing dir", tmpDir, true, false},
		{"existing dir no mustExist", tmpDir, false, false},
		{"nonexistent mustExist", nonExistentDir, true, true},
		{"nonexistent create", filepath.Join(tmpDir, "autocreate"), false, false},
		{"empty path", "", false, true},
		{"path traversal", "../etc", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Directory("testDir", tt.path, tt.mustExist)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_DirectoryCreation(t *testing.T) {
	tmpDir := t.TempDir()
	newDir := filepath.Join(tmpDir, "auto", "create", "nested")

	v := New()
	v.Directory("testDir", newDir, false)

	if !v.IsValid() {
		t.Errorf("unexpected error: %v", v.Err())
	}
	if _, err := os.Stat(newDir); os.IsNotExist(err) {
		t.Error("directory was not created")
	}
}

func TestValidator_NotEmpty(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"non-empty", "hello", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"tab only", "\t", true},
		{"newline only", "\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.NotEmpty("testField", tt.value)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_OneOf(t *testing.T) {
	allowed := []string{"grpc", "http"}

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid grpc", "grpc", false},
		{"valid http", "http", false},
		{"invalid udp", "udp", true},
		{"invalid empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.OneOf("testField", tt.value, allowed)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_Positive(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"positive 1", 1, false},
		{"positive 100", 100, false},
		{"zero", 0, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Positive("testField", tt.value)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_NonNegative(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"positive 1", 1, false},
		{"zero", 0, false},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.NonNegative("testField", tt.value)

			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_MultipleErrors(t *testing.T) {
	v := New()

	v.Port("port", 0)           // Invalid
	v.ListenAddr("listen", "x") // Invalid
	v.NotEmpty("docs", "")      // Invalid

	if v.IsValid() {
		t.Fatal("expected errors, got none")
	}

	errors := v.Errors()
	if len(errors) != 3 {
		t.Errorf("expected 3 errors, got %d", len(errors))
	}

	err := v.Err()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	errorMsg := err.Error()
	for _, field := range []string{"port", "listen", "docs"} {
		if !strings.Contains(errorMsg, field) {
			t.Errorf("error message should mention %q", field)
		}
	}
}

func TestValidator_Chaining(t *testing.T) {
	v := New()

	v.ListenAddr("listen", ":8080")
	v.Range("maxParallel", 8, 1, 64)
	v.NotEmpty("docsDir", "./docs/adr")
	v.GlobPattern("filePattern", "*.md")
	v.UnitInterval("sampleRate", 0.25)

	if !v.IsValid() {
		t.Errorf("unexpected errors: %v", v.Err())
	}
}

func TestValidator_Clear(t *testing.T) {
	v := New()
	v.Port("port", 0)
	if v.IsValid() {
		t.Fatal("expected error before Clear")
	}

	v.Clear()
	if !v.IsValid() {
		t.Error("expected no errors after Clear")
	}
	if v.Err() != nil {
		t.Error("expected nil Err after Clear")
	}
}

func TestValidationError_Single(t *testing.T) {
	v := New()
	v.NotEmpty("dataDir", "")

	err := v.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	want := "validation failed for dataDir: value cannot be empty"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	ve, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(ve.Errors()) != 1 {
		t.Errorf("expected 1 bundled error, got %d", len(ve.Errors()))
	}
}

func TestLogLevel_IsValid(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  bool
	}{
		{LogLevelDebug, true},
		{LogLevelInfo, true},
		{LogLevelWarn, true},
		{LogLevelError, true},
		{LogLevel("invalid"), false},
		{LogLevel(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			if got := tt.level.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"info", LogLevelInfo, false},
		{"warn", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"invalid", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}
