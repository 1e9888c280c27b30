package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tome-t", "config.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.ServerURL != DefaultServerURL {
		t.Errorf("ServerURL = %q, want %q", cfg.ServerURL, DefaultServerURL)
	}
	if cfg.CellWidth != DefaultCellWidth || cfg.CellHeight != DefaultCellHeight {
		t.Errorf("cell size = %dx%d, want defaults", cfg.CellWidth, cfg.CellHeight)
	}
	if cfg.PageCacheSize != DefaultPageCacheSize {
		t.Errorf("PageCacheSize = %d", cfg.PageCacheSize)
	}
	if want := filepath.Join(filepath.Dir(path), "state.db"); cfg.StateDB != want {
		t.Errorf("StateDB = %q, want %q", cfg.StateDB, want)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tome-t", "config.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if err := cfg.SetServerURL("http://books:9000"); err != nil {
		t.Fatalf("SetServerURL failed: %v", err)
	}

	reloaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.ServerURL != "http://books:9000" {
		t.Errorf("ServerURL = %q after reload", reloaded.ServerURL)
	}
	if reloaded.ReportTimeoutDuration().Seconds() != DefaultReportTimeout {
		t.Errorf("ReportTimeoutDuration = %v", reloaded.ReportTimeoutDuration())
	}
}

func TestLoadFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("Expected an error for a corrupt config file")
	}
}
