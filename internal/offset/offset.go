// Package offset implements tool-radius compensation (C7): growing or
// shrinking a PrecisionPath by the cutter radius, with a validation pass
// describing how faithfully the result followed the requested delta.
//
// It is grounded on nwss-cnc's PrecisionToolOffset/OffsetOptions interface
// (include/core/tool_offset.h) for its option surface and validation
// report shape, and on the teacher's simpler internal/gcode/generator.go
// offsetOutline for the "simple" polyline fallback path. The original's
// tool_offset.cpp implementation was an empty translation unit (its header
// documents an API never filled in), so the robust-offset algorithm itself
// is delegated to internal/boolean's Clipper2-backed Offset, the "external,
// opaque" polygon-offset service spec.md §4.4 describes.
package offset

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/camcore/internal/boolean"
	"github.com/piwi3910/camcore/internal/geometry"
)

// Direction selects which side of a path the tool offset compensates
// toward, per spec.md's offset_direction option.
type Direction int

const (
	// DirectionAuto defers to the caller's own convention: for a closed
	// boundary, solids grow outward and holes shrink inward; for an open
	// path, auto has no interior to prefer and behaves as DirectionOnPath.
	DirectionAuto Direction = iota
	// DirectionInside shrinks the path (cuts material away from its own
	// interior). For a closed path this is the side a CW traversal keeps to
	// its right and a CCW traversal keeps to its left.
	DirectionInside
	// DirectionOutside grows the path (cuts material away from its exterior).
	DirectionOutside
	// DirectionOnPath runs the tool centerline directly on the path, with no
	// compensation (V-bit/line engraving).
	DirectionOnPath
)

func (d Direction) String() string {
	switch d {
	case DirectionInside:
		return "inside"
	case DirectionOutside:
		return "outside"
	case DirectionOnPath:
		return "on_path"
	default:
		return "auto"
	}
}

// ParseDirection parses the offset_direction config/INI value.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DirectionAuto, nil
	case "inside":
		return DirectionInside, nil
	case "outside":
		return DirectionOutside, nil
	case "on_path", "onpath", "on-path":
		return DirectionOnPath, nil
	default:
		return DirectionAuto, fmt.Errorf("offset: unknown direction %q", s)
	}
}

// ResolveDelta picks the signed offset distance for a closed boundary given
// an explicit direction request, falling back to the solid/hole convention
// that a solid grows outward and a hole shrinks inward when dir is auto.
func ResolveDelta(dir Direction, toolRadius float64, isHole bool) float64 {
	switch dir {
	case DirectionInside:
		return -toolRadius
	case DirectionOutside:
		return toolRadius
	case DirectionOnPath:
		return 0
	default:
		if isHole {
			return -toolRadius
		}
		return toolRadius
	}
}

// ResolveOpenDelta picks the signed offset for an open path. An open path
// has no enclosed interior to prefer, so auto behaves as on_path (zero
// offset, centerline follows the path).
func ResolveOpenDelta(dir Direction, toolRadius float64) float64 {
	switch dir {
	case DirectionInside:
		return -toolRadius
	case DirectionOutside:
		return toolRadius
	default:
		return 0
	}
}

// Options mirrors nwss-cnc's OffsetOptions defaults.
type Options struct {
	Tolerance            float64 // max(0.001)
	MinSegmentLength     float64 // 0.01
	MaxSegmentLength     float64 // 1.0
	PreserveSharpCorners bool
	AdaptiveRefinement   bool
	CornerThreshold      float64 // radians; below this, treat as sharp
	MaxCurvatureError    float64 // 0.001
}

// DefaultOptions returns nwss-cnc's documented defaults.
func DefaultOptions() Options {
	return Options{
		Tolerance:            0.001,
		MinSegmentLength:     0.01,
		MaxSegmentLength:     1.0,
		PreserveSharpCorners: true,
		AdaptiveRefinement:   true,
		CornerThreshold:      0.1,
		MaxCurvatureError:    0.001,
	}
}

// Result is an offset polygon plus its validation report.
type Result struct {
	Polygon geometry.Polygon2D
	Report  ValidationResult
}

// ValidationResult mirrors nwss-cnc's offset ValidationResult: whether the
// produced path's distance from the source stayed within tolerance of the
// requested delta, and the observed error statistics.
type ValidationResult struct {
	Valid        bool
	AverageError float64
	MaxError     float64
	MinError     float64
	Warnings     []string
	Errors       []string
}

// Path offsets a single closed polygon outward (delta > 0) or inward
// (delta < 0) by |delta|, using the Clipper2-backed boolean offset engine,
// then validates the result's distance-from-source against delta.
func Path(poly geometry.Polygon2D, delta float64, opt Options) (Result, error) {
	if len(poly) < 3 {
		return Result{}, fmt.Errorf("offset: polygon needs at least 3 points, got %d", len(poly))
	}

	offsetPolys, err := boolean.Offset([]geometry.Polygon2D{poly}, delta)
	if err != nil {
		return Result{}, fmt.Errorf("offset path: %w", err)
	}
	if len(offsetPolys) == 0 {
		return Result{}, fmt.Errorf("offset path: delta %.4f fully collapsed the polygon", delta)
	}

	// Multiple loops can result from a self-intersecting or highly concave
	// input; keep the largest by absolute area as the primary result.
	best := offsetPolys[0]
	bestArea := best.Area()
	for _, p := range offsetPolys[1:] {
		if a := p.Area(); a > bestArea {
			best, bestArea = p, a
		}
	}

	report := validateOffset(poly, best, delta, opt)
	return Result{Polygon: best, Report: report}, nil
}

// OpenPath offsets an open polyline (used for engrave/on-line toolpaths
// where the path itself, not an enclosed area, is the cut geometry) by
// delta on both sides using round joins and caps, returning the closed
// ribbon outline Clipper2 produces around the path.
func OpenPath(path geometry.Path2D, delta float64) (geometry.Polygon2D, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("offset: open path needs at least 2 points, got %d", len(path))
	}
	result, err := boolean.OffsetOpenPath(path, delta)
	if err != nil {
		return nil, fmt.Errorf("offset open path: %w", err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("offset open path: delta %.4f produced no geometry", delta)
	}
	return result[0], nil
}

// CurveResult is a curve-aware offset result: the re-fit PrecisionPath plus
// its validation report (computed against the flattened polylines, the same
// statistics Path reports for plain polygons).
type CurveResult struct {
	Path   geometry.PrecisionPath
	Report ValidationResult
}

// PrecisionOffset shifts every segment of a PrecisionPath by delta, the
// curve-aware counterpart to Path: lines shift perpendicular to themselves,
// arcs shift their radius (growing or shrinking depending on winding and
// delta's sign), and Bezier segments are flattened to chords and offset as
// a sequence of lines, since re-fitting an offset Bezier to a Bezier is not
// a closed-form operation. Consecutive offset segments are then rejoined
// with connectSegments, inserting a fillet arc at corners that open up
// (delta >= 0) or a trim line at corners that close up (delta < 0).
func PrecisionOffset(pp geometry.PrecisionPath, delta float64, opt Options) (CurveResult, error) {
	if len(pp.Segments) == 0 {
		return CurveResult{}, fmt.Errorf("offset: precision path has no segments")
	}

	flatTol := opt.MaxCurvatureError
	if flatTol <= 0 {
		flatTol = 0.001
	}

	chains := make([]offsetChain, 0, len(pp.Segments))
	for _, seg := range pp.Segments {
		subsegs, err := offsetCurveSegment(seg, delta, flatTol)
		if err != nil {
			return CurveResult{}, err
		}
		chains = append(chains, offsetChain{segs: subsegs, corner: seg.Evaluate(1)})
	}

	closed := pp.IsClosed(1e-6)
	result := connectChains(chains, delta, closed)

	tol := opt.Tolerance
	if tol <= 0 {
		tol = 0.001
	}
	srcPoly := geometry.Polygon2D(pp.ToPolyline(tol))
	outPoly := geometry.Polygon2D(result.ToPolyline(tol))
	report := validateOffset(srcPoly, outPoly, delta, opt)

	return CurveResult{Path: result, Report: report}, nil
}

// offsetChain is the offset (possibly split) form of one original segment,
// plus the original, unoffset corner point at its end — shared with the
// next segment's start — used to bridge the gap the offset introduces.
type offsetChain struct {
	segs   []geometry.CurveSegment
	corner geometry.Point2D
}

func offsetCurveSegment(seg geometry.CurveSegment, delta, flatTol float64) ([]geometry.CurveSegment, error) {
	switch seg.Kind {
	case geometry.KindLine:
		n := seg.Normal(0)
		a := geometry.Point2D{X: seg.A.X + delta*n.X, Y: seg.A.Y + delta*n.Y}
		b := geometry.Point2D{X: seg.B.X + delta*n.X, Y: seg.B.Y + delta*n.Y}
		return []geometry.CurveSegment{geometry.NewLine(a, b)}, nil

	case geometry.KindArc:
		sign := 1.0
		if !seg.CCW {
			sign = -1.0
		}
		// Normal() points toward the arc's center for a CCW arc and away
		// from it for a CW one, so shifting every point by delta*Normal
		// shrinks a CCW arc's radius and grows a CW one's by the same
		// delta>0; expressed as a radius update that's R -= delta*sign.
		newRadius := seg.Radius - delta*sign
		if newRadius <= geometry.Epsilon {
			return nil, fmt.Errorf("offset: arc collapsed by delta %.4f (radius %.4f)", delta, seg.Radius)
		}
		return []geometry.CurveSegment{geometry.NewArc(seg.Center, newRadius, seg.StartAngle, seg.EndAngle, seg.CCW)}, nil

	default: // Bezier: flatten to chords, offset each chord as a line.
		poly := seg.ToPolyline(flatTol)
		if len(poly) < 2 {
			return nil, nil
		}
		out := make([]geometry.CurveSegment, 0, len(poly)-1)
		for i := 0; i+1 < len(poly); i++ {
			line := geometry.NewLine(poly[i], poly[i+1])
			n := line.Normal(0)
			a := geometry.Point2D{X: poly[i].X + delta*n.X, Y: poly[i].Y + delta*n.Y}
			b := geometry.Point2D{X: poly[i+1].X + delta*n.X, Y: poly[i+1].Y + delta*n.Y}
			out = append(out, geometry.NewLine(a, b))
		}
		return out, nil
	}
}

// connectChains concatenates every chain's offset segments, bridging the
// gap between one chain's end and the next chain's start at each original
// corner.
func connectChains(chains []offsetChain, delta float64, closed bool) geometry.PrecisionPath {
	var out []geometry.CurveSegment
	n := len(chains)
	for i, ch := range chains {
		out = append(out, ch.segs...)
		if len(ch.segs) == 0 {
			continue
		}
		nextIdx := i + 1
		if nextIdx >= n {
			if !closed {
				continue
			}
			nextIdx = 0
		}
		next := chains[nextIdx]
		if len(next.segs) == 0 {
			continue
		}
		endPt := segmentEnd(ch.segs[len(ch.segs)-1])
		startPt := segmentStart(next.segs[0])
		if bridge := connectSegments(ch.corner, endPt, startPt, delta); bridge != nil {
			out = append(out, *bridge)
		}
	}
	return geometry.PrecisionPath{Segments: out}
}

// connectSegments bridges the gap an offset opens up at a corner: a
// growing offset (delta >= 0) opens a convex gap at an outer corner, filled
// with a fillet arc of radius |delta| around the original corner vertex; a
// shrinking offset (delta < 0) closes corners up, so the two offset edges
// are simply trimmed together with a direct line. Returns nil if the
// segments already meet (no bridge needed).
func connectSegments(corner, endPt, startPt geometry.Point2D, delta float64) *geometry.CurveSegment {
	if endPt.Dist(startPt) < 1e-9 {
		return nil
	}
	if delta >= 0 {
		radius := math.Abs(delta)
		a1 := math.Atan2(endPt.Y-corner.Y, endPt.X-corner.X)
		a2 := math.Atan2(startPt.Y-corner.Y, startPt.X-corner.X)
		arc := geometry.NewArc(corner, radius, a1, a2, true)
		return &arc
	}
	line := geometry.NewLine(endPt, startPt)
	return &line
}

func segmentStart(c geometry.CurveSegment) geometry.Point2D { return c.Evaluate(0) }
func segmentEnd(c geometry.CurveSegment) geometry.Point2D   { return c.Evaluate(1) }

// QualityGate is a cheap single-point check of an offset result: the
// distance from the first offset vertex to the first source vertex must sit
// within 0.2x-5x of the requested delta, mirroring validateOffset's ratio
// band but sampling only one point. Nothing in this module calls it; the
// cam and gcode packages use offset results as returned.
func QualityGate(src, offsetPoly geometry.Polygon2D, delta float64) bool {
	if len(src) == 0 || len(offsetPoly) == 0 {
		return false
	}
	wantDist := math.Abs(delta)
	if wantDist < geometry.Epsilon {
		return true
	}
	ratio := offsetPoly[0].Dist(src[0]) / wantDist
	return ratio >= 0.2 && ratio <= 5
}

// validateOffset samples the offset polygon's vertices and measures their
// distance to the source polygon's boundary — the Go equivalent of
// nwss-cnc's PrecisionToolOffset::validateOffset. The reported Average/Max/
// MinError are the measured distances themselves (not a deviation from the
// requested delta): the result is invalid if the largest measured distance
// is more than 5x or less than 0.2x the requested delta, since either
// extreme means the offset engine did something other than what was asked.
func validateOffset(src, offsetPoly geometry.Polygon2D, delta float64, opt Options) ValidationResult {
	wantDist := math.Abs(delta)

	var sum, maxErr float64
	minErr := math.Inf(1)
	n := 0
	for _, pt := range offsetPoly {
		d := distanceToPolygonBoundary(pt, src)
		sum += d
		if d > maxErr {
			maxErr = d
		}
		if d < minErr {
			minErr = d
		}
		n++
	}
	if n == 0 {
		minErr = 0
	}

	result := ValidationResult{
		AverageError: sum / float64(max(n, 1)),
		MaxError:     maxErr,
		MinError:     minErr,
		Valid:        true,
	}

	if wantDist < geometry.Epsilon {
		// on_path/zero-delta offsets have no nonzero expected distance to
		// form a ratio against; any measured drift is reported but not
		// itself a validity failure.
		return result
	}

	ratio := maxErr / wantDist
	if ratio > 5 || ratio < 0.2 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(
			"offset distance %.4f is %.2fx the requested delta %.4f, outside the 0.2x-5x validity band", maxErr, ratio, wantDist))
	} else if ratio > 2 || ratio < 0.5 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"offset distance %.4f is %.2fx the requested delta %.4f", maxErr, ratio, wantDist))
	}
	return result
}

func distanceToPolygonBoundary(pt geometry.Point2D, poly geometry.Polygon2D) float64 {
	best := math.Inf(1)
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		d := distancePointSegment(pt, a, b)
		if d < best {
			best = d
		}
	}
	return best
}

func distancePointSegment(p, a, b geometry.Point2D) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	apx, apy := p.X-a.X, p.Y-a.Y
	lenSq := abx*abx + aby*aby
	if lenSq < geometry.Epsilon {
		return p.Dist(a)
	}
	t := (apx*abx + apy*aby) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := geometry.Point2D{X: a.X + t*abx, Y: a.Y + t*aby}
	return p.Dist(proj)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// MinimumFeatureSize returns the narrowest local width found anywhere on
// the polygon, approximated by the smallest distance between each vertex
// and the nearest non-adjacent edge — nwss-cnc's ToolOffset::
// calculateMinimumFeatureSize used the same "nearest opposite boundary"
// approximation rather than a true medial-axis computation.
func MinimumFeatureSize(poly geometry.Polygon2D) float64 {
	n := len(poly)
	if n < 3 {
		return math.Inf(1)
	}
	min := math.Inf(1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j == i || i == (j+1)%n {
				continue
			}
			d := distancePointSegment(poly[i], poly[j], poly[(j+1)%n])
			if d < min {
				min = d
			}
		}
	}
	return min
}

// IsFeatureTooSmall reports whether the polygon has any local feature
// narrower than the tool diameter, meaning the tool cannot fully clear it.
func IsFeatureTooSmall(poly geometry.Polygon2D, toolDiameter float64) bool {
	return MinimumFeatureSize(poly) < toolDiameter
}
