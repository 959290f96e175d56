package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.ini"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultCNConfig() {
		t.Fatalf("expected defaults for a missing file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := DefaultCNConfig()
	cfg.MaterialWidthMM = 400
	cfg.DefaultStepdownMM = 1.5

	path := filepath.Join(t.TempDir(), "cnc.ini")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != cfg {
		t.Fatalf("round trip mismatch: got %+v want %+v", loaded, cfg)
	}
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cnc.ini")
	content := "[machine]\nwidth_mm = 123\nunknown_key = 99\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MachineWidthMM != 123 {
		t.Fatalf("expected width_mm to load, got %v", cfg.MachineWidthMM)
	}
}

func TestCutoutParamsPasses(t *testing.T) {
	p := CutoutParams{TotalDepthMM: 10, StepdownMM: 3}
	passes := p.Passes()
	if len(passes) == 0 {
		t.Fatalf("expected at least one pass")
	}
	if passes[len(passes)-1] != -10 {
		t.Fatalf("expected final pass to reach total depth, got %v", passes[len(passes)-1])
	}
	for _, z := range passes {
		if z > 0 {
			t.Fatalf("expected all Z passes to be at or below 0, got %v", z)
		}
	}
}
