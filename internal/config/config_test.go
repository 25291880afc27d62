package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RepoMap.MinIntervalSecs != 10 {
		t.Errorf("expected default MinIntervalSecs=10, got %d", cfg.RepoMap.MinIntervalSecs)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	claudeDir := filepath.Join(dir, ".claude")
	if err := os.MkdirAll(claudeDir, 0o755); err != nil {
		t.Fatal(err)
	}
	yamlContent := "repo_map:\n  min_interval_secs: 5\n"
	if err := os.WriteFile(filepath.Join(claudeDir, "autoeng.yaml"), []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RepoMap.MinIntervalSecs != 5 {
		t.Errorf("RepoMap.MinIntervalSecs = %d, want 5", cfg.RepoMap.MinIntervalSecs)
	}
	// Unset sections still carry their compiled-in defaults.
	if cfg.Reviewer.MaxRetries != 3 {
		t.Errorf("Reviewer.MaxRetries = %d, want 3", cfg.Reviewer.MaxRetries)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	dir := t.TempDir()
	claudeDir := filepath.Join(dir, ".claude")
	if err := os.MkdirAll(claudeDir, 0o755); err != nil {
		t.Fatal(err)
	}
	yamlContent := "bogus_section:\n  value: 1\n"
	if err := os.WriteFile(filepath.Join(claudeDir, "autoeng.yaml"), []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("expected error for unknown top-level key, got nil")
	}
}

func TestLoadJSONVariant(t *testing.T) {
	dir := t.TempDir()
	claudeDir := filepath.Join(dir, ".claude")
	if err := os.MkdirAll(claudeDir, 0o755); err != nil {
		t.Fatal(err)
	}
	jsonContent := `{"context": {"budgets": {"autonomous": 1000}}}`
	if err := os.WriteFile(filepath.Join(claudeDir, "autoeng.json"), []byte(jsonContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Context.Budgets.Autonomous != 1000 {
		t.Errorf("Budgets.Autonomous = %d, want 1000", cfg.Context.Budgets.Autonomous)
	}
}
