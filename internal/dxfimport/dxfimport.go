// Package dxfimport parses DXF drawings into the Polygon2D loops the fit
// transform (C4) and onward pipeline consume, as a supplement to the SVG
// import path (C2) for CAD-native artwork.
//
// Adapted from the teacher's internal/importer/dxf.go: LWPOLYLINE bulge
// arcs, CIRCLE, and chains of connected LINE/ARC entities all convert the
// same way, generalized from producing model.Part sheet-nesting records to
// producing plain geometry.Polygon2D loops.
package dxfimport

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/camcore/internal/geometry"
)

// Result holds every closed loop found in a DXF file, plus diagnostics.
type Result struct {
	Polygons []geometry.Polygon2D
	Errors   []string
	Warnings []string
}

// segment is a line segment between two points, used to chain
// disconnected LINE/ARC entities into closed loops.
type segment struct {
	start, end geometry.Point2D
}

// Load parses path and returns every closed shape (LWPOLYLINE, CIRCLE, or
// chained LINE/ARC run) it contains as a normalized Polygon2D.
func Load(path string) Result {
	result := Result{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open dxf file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "dxf file contains no entities")
		return result
	}

	var polys []geometry.Polygon2D
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			poly := lwPolylineToPolygon(e)
			if len(poly) >= 3 {
				polys = append(polys, poly)
			} else {
				result.Warnings = append(result.Warnings, "skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			polys = append(polys, circleToPolygon(e, 64))

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				segments = append(segments, pointsToSegments(pts)...)
			}

		case *entity.Line:
			segments = append(segments, segment{
				start: geometry.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   geometry.Point2D{X: e.End[0], Y: e.End[1]},
			})

		default:
			// Unsupported entity types are silently skipped.
		}
	}

	chained := chainSegments(segments, 0.01)
	for _, c := range chained {
		if len(c) >= 3 {
			polys = append(polys, c)
		}
	}

	if len(polys) == 0 {
		result.Errors = append(result.Errors, "no closed shapes found in dxf file")
		return result
	}

	for _, poly := range polys {
		normalized := normalizePolygon(poly)
		bb := normalized.Bounds()
		width := bb.Max.X - bb.Min.X
		height := bb.Max.Y - bb.Min.Y
		if width < 0.01 || height < 0.01 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipped degenerate shape (%.2f x %.2f mm)", width, height))
			continue
		}
		result.Polygons = append(result.Polygons, normalized)
	}

	return result
}

// lwPolylineToPolygon converts a DXF LWPOLYLINE entity to a Polygon2D,
// interpolating arc segments wherever a vertex carries a bulge value.
func lwPolylineToPolygon(lw *entity.LwPolyline) geometry.Polygon2D {
	var poly geometry.Polygon2D

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := geometry.Point2D{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			nextIdx := (i + 1) % len(lw.Vertices)
			next := geometry.Point2D{X: lw.Vertices[nextIdx][0], Y: lw.Vertices[nextIdx][1]}
			arcPts := bulgeArcPoints(current, next, bulge, 32)
			poly = append(poly, arcPts[:len(arcPts)-1]...)
		} else {
			poly = append(poly, current)
		}
	}

	return poly
}

// bulgeArcPoints generates points along an arc defined by two endpoints and
// a DXF bulge factor (the tangent of 1/4 the included angle).
func bulgeArcPoints(p1, p2 geometry.Point2D, bulge float64, numSegments int) []geometry.Point2D {
	mx := (p1.X + p2.X) / 2
	my := (p1.Y + p2.Y) / 2
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	chordLen := math.Sqrt(dx*dx + dy*dy)
	if chordLen < 1e-9 {
		return []geometry.Point2D{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge < 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	endAngle := math.Atan2(p2.Y-cy, p2.X-cx)

	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else {
		if endAngle < startAngle {
			endAngle += 2 * math.Pi
		}
	}

	pts := make([]geometry.Point2D, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts[i] = geometry.Point2D{X: cx + radius*math.Cos(angle), Y: cy + radius*math.Sin(angle)}
	}
	return pts
}

func circleToPolygon(c *entity.Circle, numSegments int) geometry.Polygon2D {
	poly := make(geometry.Polygon2D, numSegments)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		poly[i] = geometry.Point2D{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)}
	}
	return poly
}

func arcToPoints(a *entity.Arc, numSegments int) []geometry.Point2D {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius
	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]geometry.Point2D, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = geometry.Point2D{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)}
	}
	return pts
}

func pointsToSegments(pts []geometry.Point2D) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual LINE/ARC segments into closed loops,
// joining endpoints within tolerance of each other.
func chainSegments(segs []segment, tolerance float64) []geometry.Polygon2D {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var polys []geometry.Polygon2D

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []geometry.Point2D{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		if len(chain) >= 3 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			chain = chain[:len(chain)-1]
			if len(chain) >= 3 {
				polys = append(polys, geometry.Polygon2D(chain))
			}
		}
	}

	sort.Slice(polys, func(i, j int) bool {
		return polys[i].Area() > polys[j].Area()
	})

	return polys
}

func pointsClose(a, b geometry.Point2D, tolerance float64) bool {
	return a.Dist(b) <= tolerance
}

// normalizePolygon translates poly so its bounding box starts at (0, 0).
func normalizePolygon(poly geometry.Polygon2D) geometry.Polygon2D {
	if len(poly) == 0 {
		return poly
	}
	bb := poly.Bounds()
	return poly.Translate(-bb.Min.X, -bb.Min.Y)
}
