// Package validate aggregates the pre-flight feasibility checks C10 runs
// before G-code is emitted: tool-vs-feature sizing, self-intersection,
// material fit, mesh analysis, and dust-shoe/clamp-zone collision
// advisories.
//
// The collision check is adapted from the teacher's
// internal/gcode/collision.go (CheckDustShoeCollisions/partCutPositions/
// distanceToClampZone), generalized from rectangular sheet Placements to
// arbitrary cut paths.
package validate

import (
	"fmt"
	"math"

	"github.com/piwi3910/camcore/internal/cam"
	"github.com/piwi3910/camcore/internal/geometry"
	"github.com/piwi3910/camcore/internal/offset"
	"github.com/piwi3910/camcore/internal/stl"
)

// selfIntersectionSuppressThreshold mirrors the teacher's flood-control:
// complex paths over this many points skip the O(n^2) self-intersection
// scan and instead only get a coarse warning.
const selfIntersectionSuppressThreshold = 100

// Report aggregates every warning/error C10 produces for one job.
type Report struct {
	Valid    bool
	Warnings []string
	Errors   []string
}

func (r *Report) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

// CheckFeatureSize flags polygons whose minimum local feature width is
// narrower than the tool diameter, meaning the tool cannot clear them. In
// pocket/punchout mode, a feature the tool plainly cannot clear at all —
// its smallest bounding dimension under 1.5x the tool diameter, or its area
// under twice the area of the tool's circle (2*pi*r^2) — escalates to an error rather
// than a warning, since those modes commit to actually cutting the area.
func (r *Report) CheckFeatureSize(label string, poly geometry.Polygon2D, toolDiameter float64, mode cam.Mode) {
	if offset.IsFeatureTooSmall(poly, toolDiameter) {
		size := offset.MinimumFeatureSize(poly)
		r.warn("%s: minimum feature width %.3fmm is narrower than the %.3fmm tool", label, size, toolDiameter)
	}

	if mode != cam.ModePocket && mode != cam.ModePunchout {
		return
	}

	bb := poly.Bounds()
	size := bb.Size()
	minDim := math.Min(size.X, size.Y)
	if minDim < 1.5*toolDiameter {
		r.fail("%s: smallest dimension %.3fmm is under 1.5x the %.3fmm tool diameter, the tool cannot clear this %s feature", label, minDim, toolDiameter, mode)
	}

	radius := toolDiameter / 2
	minArea := 2 * math.Pi * radius * radius
	if poly.Area() < minArea {
		r.fail("%s: area %.3fmm^2 is under the %.3fmm^2 minimum for a %.3fmm tool, the tool cannot clear this %s feature", label, poly.Area(), minArea, toolDiameter, mode)
	}
}

// CheckSelfIntersection scans a path for self-intersecting segments. Paths
// above selfIntersectionSuppressThreshold points skip the full scan (too
// expensive, and dense discretized curves produce many false positives
// from near-parallel adjacent segments) and get an advisory instead.
func (r *Report) CheckSelfIntersection(label string, path geometry.Path2D) {
	if len(path) > selfIntersectionSuppressThreshold {
		r.warn("%s: path has %d points, skipping full self-intersection scan", label, len(path))
		return
	}
	if hasSelfIntersection(path) {
		r.warn("%s: path self-intersects", label)
	}
}

func hasSelfIntersection(path geometry.Path2D) bool {
	n := len(path)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := path[i], path[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i || (j+1)%n == i || i == (j+1)%n || j == (i+1)%n {
				continue
			}
			b1, b2 := path[j], path[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 geometry.Point2D) bool {
	d1 := cross(p3, p4, p1)
	d2 := cross(p3, p4, p2)
	d3 := cross(p1, p2, p3)
	d4 := cross(p1, p2, p4)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func cross(a, b, p geometry.Point2D) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// CheckMaterialFit confirms a job's required cut depth does not exceed the
// configured stock thickness.
func (r *Report) CheckMaterialFit(requiredDepth, stockThickness float64) {
	if requiredDepth > stockThickness+geometry.Epsilon {
		r.fail("required cut depth %.3fmm exceeds stock thickness %.3fmm", requiredDepth, stockThickness)
	}
}

// AbsorbMesh folds an STL mesh's ValidationResult into this report.
func (r *Report) AbsorbMesh(label string, mv stl.ValidationResult) {
	for _, w := range mv.Warnings {
		r.warn("%s: %s", label, w)
	}
	for _, e := range mv.Errors {
		r.fail("%s: %s", label, e)
	}
}

// ClampZone is a rectangular fixture/clamp exclusion area on the stock.
type ClampZone struct {
	Label                string
	X, Y, Width, Height  float64
}

// DustShoeOptions configures the collision advisory.
type DustShoeOptions struct {
	Enabled        bool
	ShoeWidth      float64
	Clearance      float64
	ToolDiameter   float64
	ClampZones     []ClampZone
}

// ToolPosition is one position the tool center visits: either during a cut
// or during a rapid move.
type ToolPosition struct {
	X, Y  float64
	IsCut bool
}

// Collision reports a dust-shoe/clamp-zone proximity violation.
type Collision struct {
	PathLabel   string
	ClampLabel  string
	ToolX, ToolY float64
	Distance    float64
	IsDuringCut bool
}

// CheckDustShoeCollisions walks each path's cut/approach positions and
// flags any that bring the dust shoe within clearance of a clamp zone, one
// collision per (path, clamp) pair at most.
func CheckDustShoeCollisions(paths map[string][]ToolPosition, opt DustShoeOptions) []Collision {
	if !opt.Enabled || len(opt.ClampZones) == 0 {
		return nil
	}
	shoeRadius := opt.ShoeWidth / 2.0
	effectiveRadius := shoeRadius + opt.Clearance

	seen := make(map[string]bool)
	var collisions []Collision
	for label, positions := range paths {
		for _, pos := range positions {
			for _, cz := range opt.ClampZones {
				dist := distanceToClampZone(pos.X, pos.Y, cz)
				if dist < effectiveRadius {
					key := label + "|" + cz.Label
					if seen[key] {
						continue
					}
					seen[key] = true
					collisions = append(collisions, Collision{
						PathLabel:   label,
						ClampLabel:  cz.Label,
						ToolX:       pos.X,
						ToolY:       pos.Y,
						Distance:    dist - shoeRadius,
						IsDuringCut: pos.IsCut,
					})
					break
				}
			}
		}
	}
	return collisions
}

// PathCutPositions samples every vertex of a closed cut path plus the
// centre of its bounding box (the rapid approach position), adapting the
// teacher's partCutPositions sampling strategy from a rectangle to an
// arbitrary polygon.
func PathCutPositions(poly geometry.Polygon2D) []ToolPosition {
	bb := poly.Bounds()
	cx := (bb.Min.X + bb.Max.X) / 2
	cy := (bb.Min.Y + bb.Max.Y) / 2
	positions := make([]ToolPosition, 0, len(poly)+1)
	for _, p := range poly {
		positions = append(positions, ToolPosition{X: p.X, Y: p.Y, IsCut: true})
	}
	positions = append(positions, ToolPosition{X: cx, Y: cy, IsCut: false})
	return positions
}

func distanceToClampZone(px, py float64, cz ClampZone) float64 {
	nearestX := math.Max(cz.X, math.Min(px, cz.X+cz.Width))
	nearestY := math.Max(cz.Y, math.Min(py, cz.Y+cz.Height))
	dx := px - nearestX
	dy := py - nearestY
	return math.Hypot(dx, dy)
}

// FormatCollisionWarnings renders collisions as human-readable messages.
func FormatCollisionWarnings(collisions []Collision) []string {
	var out []string
	for _, c := range collisions {
		moveType := "cutting"
		if !c.IsDuringCut {
			moveType = "rapid"
		}
		out = append(out, fmt.Sprintf(
			"%s: dust shoe may collide with clamp %q while %s at (%.1f, %.1f), clearance %.2fmm",
			c.PathLabel, c.ClampLabel, moveType, c.ToolX, c.ToolY, c.Distance))
	}
	return out
}
