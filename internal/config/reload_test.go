// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeScanConfig writes a minimal valid config file with the given strict
// flag so reload tests have one observable knob.
func writeScanConfig(t *testing.T, path string, strict bool) {
	t.Helper()
	content := "scan:\n  strict: false\n"
	if strict {
		content = "scan:\n  strict: true\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestNewHolder(t *testing.T) {
	initial := Default()
	initial.DocsDir = "/tmp/docs"

	holder := NewHolder(initial, NewLoader("", "test"), "/path/to/config.yaml")
	if holder == nil {
		t.Fatal("expected Holder, got nil")
	}

	got := holder.Get()
	if got.DocsDir != initial.DocsDir {
		t.Errorf("expected DocsDir %q, got %q", initial.DocsDir, got.DocsDir)
	}
}

func TestHolderGetReturnsCopy(t *testing.T) {
	initial := Default()
	initial.DocsDir = "initial"

	holder := NewHolder(initial, NewLoader("", "test"), "")

	got := holder.Get()
	got.DocsDir = "modified"
	if holder.Get().DocsDir != "initial" {
		t.Error("Get() should return a copy, not a reference")
	}
}

func TestHolderReloadSuccess(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeScanConfig(t, configPath, false)

	loader := NewLoader(configPath, "test")
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load initial config: %v", err)
	}
	if initial.Strict {
		t.Fatal("initial config should not be strict")
	}

	holder := NewHolder(initial, loader, configPath)

	writeScanConfig(t, configPath, true)

	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}

	if !holder.Get().Strict {
		t.Error("expected Strict=true after reload")
	}
}

func TestHolderReloadKeepsOldConfigOnFailure(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeScanConfig(t, configPath, true)

	loader := NewLoader(configPath, "test")
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load initial config: %v", err)
	}

	holder := NewHolder(initial, loader, configPath)

	// maxParallel outside the allowed range fails validation.
	invalid := "scan:\n  maxParallel: 9999\n"
	if err := os.WriteFile(configPath, []byte(invalid), 0o600); err != nil {
		t.Fatalf("failed to write invalid config: %v", err)
	}

	if err := holder.Reload(context.Background()); err == nil {
		t.Fatal("expected Reload() to fail with validation error, got nil")
	}

	got := holder.Get()
	if !got.Strict {
		t.Error("expected old config to be preserved after failed reload")
	}
	if got.MaxParallel != defaultMaxParallel {
		t.Errorf("expected MaxParallel %d, got %d", defaultMaxParallel, got.MaxParallel)
	}
}

func TestHolderRegisterListener(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeScanConfig(t, configPath, false)

	loader := NewLoader(configPath, "test")
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	holder := NewHolder(initial, loader, configPath)

	ch := make(chan Config, 1)
	holder.RegisterListener(ch)

	writeScanConfig(t, configPath, true)
	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}

	select {
	case received := <-ch:
		if !received.Strict {
			t.Error("expected listener to receive the reloaded config")
		}
	default:
		t.Error("listener did not receive config update")
	}
}

func TestHolderNotifyListenersNonBlocking(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeScanConfig(t, configPath, false)

	loader := NewLoader(configPath, "test")
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	holder := NewHolder(initial, loader, configPath)

	// Unbuffered channel with no reader must not block the reload.
	ch := make(chan Config)
	holder.RegisterListener(ch)

	writeScanConfig(t, configPath, true)
	if err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}
}

func TestHolderStartWatcherWithoutPath(t *testing.T) {
	holder := NewHolder(Default(), NewLoader("", "test"), "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := holder.StartWatcher(ctx); err != nil {
		t.Fatalf("StartWatcher() without path should be a no-op, got %v", err)
	}
}

func TestHolderWatcherTriggersReload(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	writeScanConfig(t, configPath, false)

	loader := NewLoader(configPath, "test")
	initial, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	holder := NewHolder(initial, loader, configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := holder.StartWatcher(ctx); err != nil {
		t.Fatalf("StartWatcher() failed: %v", err)
	}
	defer holder.Stop()

	writeScanConfig(t, configPath, true)

	// The watcher debounces for 500ms before reloading.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if holder.Get().Strict {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("watcher did not reload config within deadline")
}
