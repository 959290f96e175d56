// Package profile persists named machine/tool presets as JSON, so a shop
// can save "router table", "trim router", or "plasma table" setups once and
// reuse them across jobs instead of re-entering config.CNConfig and
// config.GCodeOptions values by hand every run.
//
// Adapted from the teacher's internal/project/profiles.go, which did the
// same for named GCodeProfile post-processor presets; the JSON
// load/save/import/export functions carry over unchanged, generalized from
// a single profile struct to one that also bundles a default tool.
package profile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/piwi3910/camcore/internal/config"
	"github.com/piwi3910/camcore/internal/tool"
)

// Profile bundles a named machine/material/g-code configuration with a
// default tool, so an operator can switch setups with one name instead of
// re-entering every field.
type Profile struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	IsBuiltIn   bool               `json:"is_built_in"`
	Machine     config.CNConfig    `json:"machine"`
	GCode       config.GCodeOptions `json:"gcode"`
	DefaultTool tool.Tool          `json:"default_tool"`
}

// BuiltIns returns the profiles shipped with camcore: a generic 3018-class
// hobby router and a heavier ShopBot-class gantry router, both using their
// respective machine defaults with a 1/8in upcut endmill.
func BuiltIns() []Profile {
	defaultTool := tool.Tool{
		ID: 1, Name: "1/8in upcut", DiameterMM: 3.175,
		FluteLengthMM: 12, FeedRateMMMin: 800, PlungeRateMMMin: 300,
		SpindleRPM: 12000, MaxStepdownMM: 2, StepoverFraction: 0.4,
	}

	hobby := config.DefaultCNConfig()
	hobby.MachineWidthMM, hobby.MachineHeightMM = 300, 180

	gantry := config.DefaultCNConfig()
	gantry.MachineWidthMM, gantry.MachineHeightMM = 1220, 2440
	gantry.MaxFeedRate = 5000

	return []Profile{
		{Name: "hobby-3018", Description: "Generic 3018-class hobby router", IsBuiltIn: true,
			Machine: hobby, GCode: config.DefaultGCodeOptions(), DefaultTool: defaultTool},
		{Name: "gantry-4x8", Description: "ShopBot-class 4x8ft gantry router", IsBuiltIn: true,
			Machine: gantry, GCode: config.DefaultGCodeOptions(), DefaultTool: defaultTool},
	}
}

// DefaultDir returns the default directory for storing custom profiles.
func DefaultDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "camcore"), nil
}

// DefaultPath returns the default file path for custom profiles.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profiles.json"), nil
}

// Save writes profiles to a JSON file, creating its directory if needed.
func Save(path string, profiles []Profile) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads profiles from a JSON file. A missing file yields an empty
// slice rather than an error.
func Load(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Profile{}, nil
		}
		return nil, err
	}

	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].IsBuiltIn = false
	}
	return profiles, nil
}

// SaveToDefault saves profiles to the default path.
func SaveToDefault(profiles []Profile) error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return Save(path, profiles)
}

// LoadFromDefault loads profiles from the default path.
func LoadFromDefault() ([]Profile, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Export writes a single profile to path for sharing between shops.
func Export(path string, p Profile) error {
	p.IsBuiltIn = false
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Import reads a single profile from path.
func Import(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, err
	}
	p.IsBuiltIn = false
	if p.Name == "" {
		return Profile{}, errors.New("imported profile has no name")
	}
	return p, nil
}

// Find returns the profile named name, or false if not present.
func Find(profiles []Profile, name string) (Profile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
