package tool

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	reg := NewRegistry()
	id := reg.Add(Tool{
		Name: "1/8in upcut", DiameterMM: 3.175, FluteLengthMM: 12,
		FeedRateMMMin: 1200, PlungeRateMMMin: 300, SpindleRPM: 18000,
		MaxStepdownMM: 2, StepoverFraction: 0.4,
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "tools.ini")
	if err := Save(path, reg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := loaded.Get(id)
	if !ok {
		t.Fatalf("expected tool %d to round-trip", id)
	}
	if got.Name != "1/8in upcut" || got.DiameterMM != 3.175 {
		t.Fatalf("unexpected round-tripped tool: %+v", got)
	}
}

func TestLoadMissingFileReturnsEmptyRegistry(t *testing.T) {
	reg, err := Load(filepath.Join(t.TempDir(), "missing.ini"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reg.Tools) != 0 {
		t.Fatalf("expected an empty registry")
	}
}

func TestAddAssignsMonotonicIDs(t *testing.T) {
	reg := NewRegistry()
	id1 := reg.Add(Tool{Name: "a"})
	id2 := reg.Add(Tool{Name: "b"})
	if id2 != id1+1 {
		t.Fatalf("expected monotonic IDs, got %d then %d", id1, id2)
	}
}
