package geometry

import (
	"math"
	"testing"
)

func TestPolygonAreaSignFlipsOnReverse(t *testing.T) {
	square := Polygon2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if square.IsClockwise() == square.Reverse().IsClockwise() {
		t.Fatalf("expected winding to flip on reverse")
	}
}

func TestPolygonAreaShoelace(t *testing.T) {
	square := Polygon2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if got := square.Area(); math.Abs(got-100) > 1e-9 {
		t.Fatalf("expected area 100, got %v", got)
	}
}

func TestContainsPoint(t *testing.T) {
	square := Polygon2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if !square.ContainsPoint(Point2D{5, 5}) {
		t.Fatalf("expected (5,5) inside square")
	}
	if square.ContainsPoint(Point2D{15, 5}) {
		t.Fatalf("expected (15,5) outside square")
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	path := Path2D{{0, 0}, {1, 0.01}, {2, -0.01}, {3, 0}, {10, 0}}
	once := path.Simplify(0.1)
	twice := once.Simplify(0.1)
	if len(once) != len(twice) {
		t.Fatalf("simplify not idempotent: %d vs %d points", len(once), len(twice))
	}
	for i := range once {
		if !once[i].Equal(twice[i], Epsilon) {
			t.Fatalf("simplify not idempotent at point %d", i)
		}
	}
}

func TestSimplifyKeepsEndpoints(t *testing.T) {
	path := Path2D{{0, 0}, {1, 5}, {2, 0}}
	out := path.Simplify(0.01)
	if !out[0].Equal(path[0], Epsilon) || !out[len(out)-1].Equal(path[len(path)-1], Epsilon) {
		t.Fatalf("endpoints must survive simplification")
	}
}

func TestIsClosed(t *testing.T) {
	closed := Path2D{{0, 0}, {1, 0}, {1, 1}, {0, 0}}
	open := Path2D{{0, 0}, {1, 0}, {1, 1}}
	if !closed.IsClosed(Epsilon) {
		t.Fatalf("expected closed path to report closed")
	}
	if open.IsClosed(Epsilon) {
		t.Fatalf("expected open path to report open")
	}
}

func TestCubicBezierFlattenFlatness(t *testing.T) {
	seg := NewCubicBezier(
		Point2D{0, 0}, Point2D{33, 100}, Point2D{66, 100}, Point2D{100, 0},
	)
	tolerance := 0.5
	poly := seg.ToPolyline(tolerance)
	if len(poly) < 3 {
		t.Fatalf("expected adaptive subdivision to produce multiple points, got %d", len(poly))
	}
	// Sample many true points on the curve and check max deviation from the
	// flattened polyline stays within a small multiple of tolerance.
	var maxDev float64
	for i := 0; i <= 200; i++ {
		tt := float64(i) / 200
		truth := seg.Evaluate(tt)
		maxDev = math.Max(maxDev, nearestPolylineDistance(truth, poly))
	}
	if maxDev > tolerance*3 {
		t.Fatalf("flattened polyline deviates too much: %v > %v", maxDev, tolerance*3)
	}
}

func nearestPolylineDistance(p Point2D, poly Path2D) float64 {
	best := math.MaxFloat64
	for i := 1; i < len(poly); i++ {
		d := perpendicularDistanceClamped(p, poly[i-1], poly[i])
		if d < best {
			best = d
		}
	}
	return best
}

func perpendicularDistanceClamped(p, a, b Point2D) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-12 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	proj := Point2D{a.X + t*dx, a.Y + t*dy}
	return p.Dist(proj)
}

func TestArcEvaluateEndpoints(t *testing.T) {
	arc := NewArc(Point2D{0, 0}, 10, 0, math.Pi/2, true)
	start := arc.Evaluate(0)
	end := arc.Evaluate(1)
	if !start.Equal(Point2D{10, 0}, 1e-9) {
		t.Fatalf("unexpected arc start: %+v", start)
	}
	if !end.Equal(Point2D{0, 10}, 1e-6) {
		t.Fatalf("unexpected arc end: %+v", end)
	}
}

func TestPrecisionPathClosed(t *testing.T) {
	p := PrecisionPath{Segments: []CurveSegment{
		NewLine(Point2D{0, 0}, Point2D{10, 0}),
		NewLine(Point2D{10, 0}, Point2D{10, 10}),
		NewLine(Point2D{10, 10}, Point2D{0, 0}),
	}}
	if !p.IsClosed(Epsilon) {
		t.Fatalf("expected precision path to be closed")
	}
}
