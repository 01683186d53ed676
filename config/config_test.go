package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `annealer:
  delta: 15m
  alpha: 0.99
  t0_multiplier: 3
  stall_limit: 500
  iteration_cap: 20000
  seed: 7
  move_weights:
    shift_constant: 1
    reallocate_variable: 2
logging:
  level: debug
  format: console
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Annealer.Delta != 15*time.Minute {
		t.Errorf("delta = %v, want 15m", cfg.Annealer.Delta)
	}
	if cfg.Annealer.Alpha != 0.99 {
		t.Errorf("alpha = %v, want 0.99", cfg.Annealer.Alpha)
	}
	if cfg.Annealer.T0Multiplier != 3 {
		t.Errorf("t0_multiplier = %v, want 3", cfg.Annealer.T0Multiplier)
	}
	if cfg.Annealer.StallLimit != 500 {
		t.Errorf("stall_limit = %v, want 500", cfg.Annealer.StallLimit)
	}
	if cfg.Annealer.Seed != 7 {
		t.Errorf("seed = %v, want 7", cfg.Annealer.Seed)
	}
	if got := cfg.Annealer.MoveWeights["reallocate_variable"]; got != 2 {
		t.Errorf("move_weights.reallocate_variable = %v, want 2", got)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %v, want debug", cfg.Logging.Level)
	}
	// AuditEvery was not set in the file; SetDefaults should have filled it.
	if cfg.Annealer.AuditEvery != 500 {
		t.Errorf("audit_every default = %v, want 500", cfg.Annealer.AuditEvery)
	}
}

func TestLoadRejectsUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestLoadRejectsInvalidAlpha(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "annealer:\n  alpha: 1.5\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for alpha outside (0,1)")
	}
}
