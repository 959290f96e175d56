package profile

import (
	"path/filepath"
	"testing"

	"github.com/piwi3910/camcore/internal/config"
	"github.com/piwi3910/camcore/internal/tool"
)

func sampleProfiles() []Profile {
	return []Profile{
		{
			Name:        "shop-router",
			Description: "Main shop gantry router",
			Machine:     config.DefaultCNConfig(),
			GCode:       config.DefaultGCodeOptions(),
			DefaultTool: tool.Tool{ID: 1, Name: "1/4in upcut", DiameterMM: 6.35},
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.json")

	if err := Save(path, sampleProfiles()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "shop-router" {
		t.Fatalf("unexpected loaded profiles: %+v", loaded)
	}
	if loaded[0].DefaultTool.DiameterMM != 6.35 {
		t.Fatalf("expected tool diameter to round-trip, got %+v", loaded[0].DefaultTool)
	}
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("expected no error for a missing file, got %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected an empty slice, got %+v", loaded)
	}
}

func TestImportRejectsUnnamedProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := Export(path, Profile{}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if _, err := Import(path); err == nil {
		t.Fatalf("expected an error importing a profile with no name")
	}
}

func TestExportClearsBuiltInFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.json")
	p := Profile{Name: "builtin-copy", IsBuiltIn: true}
	if err := Export(path, p); err != nil {
		t.Fatalf("Export: %v", err)
	}
	imported, err := Import(path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if imported.IsBuiltIn {
		t.Fatalf("expected IsBuiltIn to be cleared on import")
	}
}

func TestFind(t *testing.T) {
	profiles := BuiltIns()
	if _, ok := Find(profiles, "hobby-3018"); !ok {
		t.Fatalf("expected to find built-in hobby-3018 profile")
	}
	if _, ok := Find(profiles, "nonexistent"); ok {
		t.Fatalf("expected not to find a nonexistent profile")
	}
}
