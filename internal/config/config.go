// Package config loads/saves the machine/material/cutting configuration
// (spec.md §3), grounded on nwss-cnc's CNConfig section layout
// ([machine]/[material]/[cutting], snake_case keys, # and ; comments).
//
// No ecosystem INI library appeared anywhere in the retrieved example
// pack (the teacher's own config persistence, internal/project/appconfig.go,
// is JSON via encoding/json) and nwss-cnc's own format is a small bespoke
// grammar with no canonical Go equivalent worth pulling in a dependency
// for, so this is one of the few stdlib-only corners of the module;
// see DESIGN.md for that justification.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CNConfig is the machine/material/cutting configuration, mirroring
// nwss-cnc's CNConfig fields.
type CNConfig struct {
	// [machine]
	MachineWidthMM  float64
	MachineHeightMM float64
	MaxFeedRate     float64
	MaxPlungeRate   float64
	RapidFeedRate   float64
	SafeHeightMM    float64

	// [material]
	MaterialWidthMM     float64
	MaterialHeightMM    float64
	MaterialThicknessMM float64
	MaterialMarginMM    float64

	// [cutting]
	DefaultToolDiameterMM float64
	DefaultStepdownMM     float64
	DefaultFeedRate       float64
	LinearizeToleranceMM  float64
}

// DefaultCNConfig returns conservative desktop-CNC defaults.
func DefaultCNConfig() CNConfig {
	return CNConfig{
		MachineWidthMM: 300, MachineHeightMM: 300,
		MaxFeedRate: 3000, MaxPlungeRate: 500, RapidFeedRate: 5000,
		SafeHeightMM: 5,
		MaterialWidthMM: 280, MaterialHeightMM: 280, MaterialThicknessMM: 12,
		MaterialMarginMM: 2,
		DefaultToolDiameterMM: 3.175, DefaultStepdownMM: 2,
		DefaultFeedRate: 1200, LinearizeToleranceMM: 0.01,
	}
}

// configField binds one "section.key" path to a getter/setter pair.
type configField struct {
	section, key string
	get          func(*CNConfig) float64
	set          func(*CNConfig, float64)
}

func fields() []configField {
	return []configField{
		{"machine", "width_mm", func(c *CNConfig) float64 { return c.MachineWidthMM }, func(c *CNConfig, v float64) { c.MachineWidthMM = v }},
		{"machine", "height_mm", func(c *CNConfig) float64 { return c.MachineHeightMM }, func(c *CNConfig, v float64) { c.MachineHeightMM = v }},
		{"machine", "max_feed_rate", func(c *CNConfig) float64 { return c.MaxFeedRate }, func(c *CNConfig, v float64) { c.MaxFeedRate = v }},
		{"machine", "max_plunge_rate", func(c *CNConfig) float64 { return c.MaxPlungeRate }, func(c *CNConfig, v float64) { c.MaxPlungeRate = v }},
		{"machine", "rapid_feed_rate", func(c *CNConfig) float64 { return c.RapidFeedRate }, func(c *CNConfig, v float64) { c.RapidFeedRate = v }},
		{"machine", "safe_height_mm", func(c *CNConfig) float64 { return c.SafeHeightMM }, func(c *CNConfig, v float64) { c.SafeHeightMM = v }},
		{"material", "width_mm", func(c *CNConfig) float64 { return c.MaterialWidthMM }, func(c *CNConfig, v float64) { c.MaterialWidthMM = v }},
		{"material", "height_mm", func(c *CNConfig) float64 { return c.MaterialHeightMM }, func(c *CNConfig, v float64) { c.MaterialHeightMM = v }},
		{"material", "thickness_mm", func(c *CNConfig) float64 { return c.MaterialThicknessMM }, func(c *CNConfig, v float64) { c.MaterialThicknessMM = v }},
		{"material", "margin_mm", func(c *CNConfig) float64 { return c.MaterialMarginMM }, func(c *CNConfig, v float64) { c.MaterialMarginMM = v }},
		{"cutting", "default_tool_diameter_mm", func(c *CNConfig) float64 { return c.DefaultToolDiameterMM }, func(c *CNConfig, v float64) { c.DefaultToolDiameterMM = v }},
		{"cutting", "default_stepdown_mm", func(c *CNConfig) float64 { return c.DefaultStepdownMM }, func(c *CNConfig, v float64) { c.DefaultStepdownMM = v }},
		{"cutting", "default_feed_rate", func(c *CNConfig) float64 { return c.DefaultFeedRate }, func(c *CNConfig, v float64) { c.DefaultFeedRate = v }},
		{"cutting", "linearize_tolerance_mm", func(c *CNConfig) float64 { return c.LinearizeToleranceMM }, func(c *CNConfig, v float64) { c.LinearizeToleranceMM = v }},
	}
}

// Load reads an INI-like CNConfig file. A missing file returns
// DefaultCNConfig(), not an error.
func Load(path string) (CNConfig, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return DefaultCNConfig(), nil
	}
	if err != nil {
		return CNConfig{}, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	cfg := DefaultCNConfig()
	byPath := make(map[string]*configField)
	flds := fields()
	for i := range flds {
		byPath[flds[i].section+"."+flds[i].key] = &flds[i]
	}

	section := ""
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return CNConfig{}, fmt.Errorf("config %s line %d: expected key = value", path, lineNo)
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		field, ok := byPath[section+"."+key]
		if !ok {
			continue // forward-compatible: unknown keys ignored
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return CNConfig{}, fmt.Errorf("config %s line %d: %q is not a number: %w", path, lineNo, val, err)
		}
		field.set(&cfg, v)
	}
	if err := scanner.Err(); err != nil {
		return CNConfig{}, fmt.Errorf("scan config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg back out in the same section/key grammar Load reads.
func Save(path string, cfg CNConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	lastSection := ""
	for _, fld := range fields() {
		if fld.section != lastSection {
			if lastSection != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "[%s]\n", fld.section)
			lastSection = fld.section
		}
		fmt.Fprintf(w, "%s = %g\n", fld.key, fld.get(&cfg))
	}
	return w.Flush()
}

// GCodeOptions controls how the emitted program is shaped: header/footer
// boilerplate, precision, and the optional supplemental behaviors
// (lead-in/out, ramp/helix plunge, tabs, corner overcut). OnionSkinDepthMM
// is carried in the options, but the generator does not read it.
type GCodeOptions struct {
	Units            string // "mm" or "in"
	DecimalPlaces    int
	SafeHeightMM     float64
	FeedRate         float64
	PlungeRate       float64
	SpindleRPM       float64
	UseRampPlunge    bool
	RampAngleDeg     float64
	UseHelixPlunge   bool
	HelixRadiusMM    float64
	LeadInLengthMM   float64
	LeadOutLengthMM  float64
	CornerOvercutMM  float64
	OnionSkinDepthMM float64
	TabsEnabled      bool
	TabWidthMM       float64
	TabHeightMM      float64
	TabCount         int

	// Program-shape toggles, spec.md §3 "[gcode]" options.
	IncludeHeader        bool
	IncludeComments      bool
	ReturnToOrigin       bool
	OptimizePaths        bool
	CloseLoops           bool
	SeparateRetract      bool
	LinearizePaths       bool
	LinearizeTolerance   float64
	SelectedToolID       string
	OffsetDirection      string // "inside"|"outside"|"on_path"|"auto"; see internal/offset.ParseDirection
	EnableToolOffsets    bool
	ValidateFeatureSizes bool
	MaterialType         string
}

// DefaultGCodeOptions returns a plain 4-decimal mm program with no
// supplemental behaviors enabled.
func DefaultGCodeOptions() GCodeOptions {
	return GCodeOptions{
		Units: "mm", DecimalPlaces: 4, SafeHeightMM: 5,
		FeedRate: 1200, PlungeRate: 300, SpindleRPM: 18000,
		IncludeHeader: true, IncludeComments: true, ReturnToOrigin: true,
		OptimizePaths: true, CloseLoops: true, LinearizePaths: true,
		LinearizeTolerance: 0.01, OffsetDirection: "auto",
		EnableToolOffsets: true, ValidateFeatureSizes: true,
		MaterialType: "wood",
	}
}

// CutoutParams bundles the per-job stepdown program: total depth and the
// per-pass Z stepdown. StepdownMM is not checked against the tool's
// MaxStepdownMM.
type CutoutParams struct {
	TotalDepthMM float64
	StepdownMM   float64
}

// Passes returns the list of absolute Z depths to cut at, from the first
// stepdown down to -TotalDepthMM inclusive.
func (c CutoutParams) Passes() []float64 {
	if c.StepdownMM <= 0 || c.TotalDepthMM <= 0 {
		return []float64{-c.TotalDepthMM}
	}
	var passes []float64
	for z := c.StepdownMM; z < c.TotalDepthMM; z += c.StepdownMM {
		passes = append(passes, -z)
	}
	passes = append(passes, -c.TotalDepthMM)
	return passes
}
