// Package tool defines the cutting tool catalog (spec.md §3/§6): a Tool's
// geometry/feed parameters and a ToolRegistry persisted as a simple
// key-value text file, in the spirit of the teacher's appconfig.go pure
// load/save functions but text-based rather than JSON since a tool
// registry is hand-edited far more often than an app config file.
package tool

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Tool describes one cutting tool's geometry and recommended feeds.
type Tool struct {
	ID              int
	Name            string
	DiameterMM      float64
	FluteLengthMM   float64
	FeedRateMMMin   float64
	PlungeRateMMMin float64
	SpindleRPM      float64
	MaxStepdownMM   float64
	StepoverFraction float64
}

// ToolRegistry holds every known tool, keyed by ID.
type ToolRegistry struct {
	Tools  map[int]Tool
	nextID int
}

// NewRegistry returns an empty registry with ID allocation starting at 1.
func NewRegistry() *ToolRegistry {
	return &ToolRegistry{Tools: make(map[int]Tool), nextID: 1}
}

// Add assigns the next monotonic ID to t and stores it, returning the
// assigned ID.
func (r *ToolRegistry) Add(t Tool) int {
	id := r.nextID
	r.nextID++
	t.ID = id
	r.Tools[id] = t
	return id
}

// Get returns the tool for id, or false if it doesn't exist.
func (r *ToolRegistry) Get(id int) (Tool, bool) {
	t, ok := r.Tools[id]
	return t, ok
}

// Sorted returns every tool ordered by ID.
func (r *ToolRegistry) Sorted() []Tool {
	ids := make([]int, 0, len(r.Tools))
	for id := range r.Tools {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Tool, len(ids))
	for i, id := range ids {
		out[i] = r.Tools[id]
	}
	return out
}

// toolFields lists the KV keys written/read per tool record, in order.
var toolFields = []string{
	"name", "diameter_mm", "flute_length_mm", "feed_rate_mm_min",
	"plunge_rate_mm_min", "spindle_rpm", "max_stepdown_mm", "stepover_fraction",
}

// Save writes the registry as a flat text file: one blank-line-separated
// record per tool, each a sequence of "key = value" lines, similar in
// texture to the hand-written INI the teacher's simpler configs use
// elsewhere in the codebase (see internal/config for the full grammar).
func Save(path string, reg *ToolRegistry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tool registry %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, t := range reg.Sorted() {
		fmt.Fprintf(w, "[tool %d]\n", t.ID)
		fmt.Fprintf(w, "name = %s\n", t.Name)
		fmt.Fprintf(w, "diameter_mm = %g\n", t.DiameterMM)
		fmt.Fprintf(w, "flute_length_mm = %g\n", t.FluteLengthMM)
		fmt.Fprintf(w, "feed_rate_mm_min = %g\n", t.FeedRateMMMin)
		fmt.Fprintf(w, "plunge_rate_mm_min = %g\n", t.PlungeRateMMMin)
		fmt.Fprintf(w, "spindle_rpm = %g\n", t.SpindleRPM)
		fmt.Fprintf(w, "max_stepdown_mm = %g\n", t.MaxStepdownMM)
		fmt.Fprintf(w, "stepover_fraction = %g\n", t.StepoverFraction)
		fmt.Fprintln(w)
	}
	return w.Flush()
}

// Load reads a registry file written by Save. A missing file is not an
// error: it returns a fresh empty registry, matching the teacher's
// "default on IsNotExist" appconfig convention.
func Load(path string) (*ToolRegistry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open tool registry %s: %w", path, err)
	}
	defer f.Close()

	reg := NewRegistry()
	var cur *Tool
	var curID int

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[tool ") && strings.HasSuffix(line, "]") {
			if cur != nil {
				reg.Tools[curID] = *cur
				if curID >= reg.nextID {
					reg.nextID = curID + 1
				}
			}
			idStr := strings.TrimSuffix(strings.TrimPrefix(line, "[tool "), "]")
			id, err := strconv.Atoi(idStr)
			if err != nil {
				return nil, fmt.Errorf("parse tool id %q: %w", idStr, err)
			}
			curID = id
			t := Tool{ID: id}
			cur = &t
			continue
		}
		if cur == nil {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if err := assignToolField(cur, key, val); err != nil {
			return nil, fmt.Errorf("tool %d: %w", curID, err)
		}
	}
	if cur != nil {
		reg.Tools[curID] = *cur
		if curID >= reg.nextID {
			reg.nextID = curID + 1
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan tool registry %s: %w", path, err)
	}
	return reg, nil
}

func assignToolField(t *Tool, key, val string) error {
	switch key {
	case "name":
		t.Name = val
		return nil
	case "diameter_mm":
		v, err := strconv.ParseFloat(val, 64)
		t.DiameterMM = v
		return err
	case "flute_length_mm":
		v, err := strconv.ParseFloat(val, 64)
		t.FluteLengthMM = v
		return err
	case "feed_rate_mm_min":
		v, err := strconv.ParseFloat(val, 64)
		t.FeedRateMMMin = v
		return err
	case "plunge_rate_mm_min":
		v, err := strconv.ParseFloat(val, 64)
		t.PlungeRateMMMin = v
		return err
	case "spindle_rpm":
		v, err := strconv.ParseFloat(val, 64)
		t.SpindleRPM = v
		return err
	case "max_stepdown_mm":
		v, err := strconv.ParseFloat(val, 64)
		t.MaxStepdownMM = v
		return err
	case "stepover_fraction":
		v, err := strconv.ParseFloat(val, 64)
		t.StepoverFraction = v
		return err
	default:
		return nil // forward-compatible: unknown keys are ignored, not fatal
	}
}
