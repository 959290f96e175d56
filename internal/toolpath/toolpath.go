// Package toolpath orders a set of closed/open loops for cutting (C9),
// minimizing rapid travel with a nearest-neighbor heuristic, and removes
// redundant points that add no geometric information.
//
// The ordering heuristic is adapted from the teacher's
// internal/gcode/generator.go orderPlacements: generalized here from
// rectangular Placement centers to the entry/exit endpoints of an
// arbitrary Path2D, so both open and closed loops order correctly.
package toolpath

import (
	"math"

	"github.com/piwi3910/camcore/internal/geometry"
)

// minPointSpacing is the distance below which two consecutive points are
// considered duplicates and the later one is dropped.
const minPointSpacing = 1e-6

// defaultLinearizeTolerance is the default collinearity tolerance (mm) used
// by RemoveRedundant when the caller passes 0.
const defaultLinearizeTolerance = 0.01

// Item is one path to be cut, carrying whatever identity the caller needs
// to correlate ordering output back to source geometry.
type Item struct {
	Path Path
	Tag  string
}

// Path is the minimal shape toolpath ordering needs: its points, in cut
// order, plus whether it's a closed loop (Order and TotalRapidDistance do
// not read Closed).
type Path struct {
	Points []geometry.Point2D
	Closed bool
}

// Order reorders items using nearest-neighbor-from-previous-endpoint
// starting at startX, startY (the machine's rapid-start position,
// conventionally the origin), minimizing total rapid travel distance.
func Order(items []Item, startX, startY float64) []Item {
	n := len(items)
	if n <= 1 {
		return items
	}

	remaining := make([]Item, n)
	copy(remaining, items)
	ordered := make([]Item, 0, n)

	curX, curY := startX, startY
	for len(remaining) > 0 {
		bestIdx := 0
		bestDist := math.MaxFloat64
		for i, it := range remaining {
			ex, ey := entryPoint(it.Path)
			dx, dy := ex-curX, ey-curY
			d := math.Hypot(dx, dy)
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		chosen := remaining[bestIdx]
		ordered = append(ordered, chosen)
		curX, curY = exitPoint(chosen.Path)

		remaining[bestIdx] = remaining[len(remaining)-1]
		remaining = remaining[:len(remaining)-1]
	}
	return ordered
}

// TotalRapidDistance sums the travel distance between the last point of
// each item and the first point of the next, plus the initial rapid from
// (startX, startY) to the first item.
func TotalRapidDistance(items []Item, startX, startY float64) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0.0
	curX, curY := startX, startY
	for _, it := range items {
		ex, ey := entryPoint(it.Path)
		total += math.Hypot(ex-curX, ey-curY)
		lx, ly := exitPoint(it.Path)
		curX, curY = lx, ly
	}
	return total
}

func entryPoint(p Path) (float64, float64) {
	if len(p.Points) == 0 {
		return 0, 0
	}
	return p.Points[0].X, p.Points[0].Y
}

func exitPoint(p Path) (float64, float64) {
	if len(p.Points) == 0 {
		return 0, 0
	}
	last := p.Points[len(p.Points)-1]
	return last.X, last.Y
}

// RemoveRedundant drops consecutive duplicate points (within
// minPointSpacing) and collinear interior points (within tolerance of the
// line through their neighbors, measured as triangle-area-derived
// perpendicular distance). A tolerance of 0 uses defaultLinearizeTolerance.
func RemoveRedundant(points []geometry.Point2D, tolerance float64) []geometry.Point2D {
	if tolerance <= 0 {
		tolerance = defaultLinearizeTolerance
	}
	if len(points) < 3 {
		return dedupeAdjacent(points)
	}

	deduped := dedupeAdjacent(points)
	if len(deduped) < 3 {
		return deduped
	}

	out := make([]geometry.Point2D, 0, len(deduped))
	out = append(out, deduped[0])
	for i := 1; i < len(deduped)-1; i++ {
		prev := out[len(out)-1]
		cur := deduped[i]
		next := deduped[i+1]
		if !isCollinear(prev, cur, next, tolerance) {
			out = append(out, cur)
		}
	}
	out = append(out, deduped[len(deduped)-1])
	return out
}

func dedupeAdjacent(points []geometry.Point2D) []geometry.Point2D {
	if len(points) == 0 {
		return points
	}
	out := make([]geometry.Point2D, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1:] {
		if p.Dist(out[len(out)-1]) > minPointSpacing {
			out = append(out, p)
		}
	}
	return out
}

// isCollinear measures perpendicular distance from b to the line a-c via
// the triangle-area method: area = 0.5*|cross(ab, ac)|, distance =
// 2*area/|ac|.
func isCollinear(a, b, c geometry.Point2D, tolerance float64) bool {
	abx, aby := b.X-a.X, b.Y-a.Y
	acx, acy := c.X-a.X, c.Y-a.Y
	cross := abx*acy - aby*acx
	lenAC := math.Hypot(acx, acy)
	if lenAC < geometry.Epsilon {
		return b.Dist(a) < tolerance
	}
	dist := math.Abs(cross) / lenAC
	return dist <= tolerance
}
