package dxfimport

import (
	"testing"

	"github.com/piwi3910/camcore/internal/geometry"
)

func TestChainSegmentsClosesSquare(t *testing.T) {
	segs := []segment{
		{start: geometry.Point2D{X: 0, Y: 0}, end: geometry.Point2D{X: 10, Y: 0}},
		{start: geometry.Point2D{X: 10, Y: 0}, end: geometry.Point2D{X: 10, Y: 10}},
		{start: geometry.Point2D{X: 10, Y: 10}, end: geometry.Point2D{X: 0, Y: 10}},
		{start: geometry.Point2D{X: 0, Y: 10}, end: geometry.Point2D{X: 0, Y: 0}},
	}
	polys := chainSegments(segs, 0.01)
	if len(polys) != 1 {
		t.Fatalf("expected 1 closed loop, got %d", len(polys))
	}
	if len(polys[0]) != 4 {
		t.Fatalf("expected 4 points (closing duplicate dropped), got %d", len(polys[0]))
	}
}

func TestChainSegmentsLeavesOpenChainUnclosed(t *testing.T) {
	segs := []segment{
		{start: geometry.Point2D{X: 0, Y: 0}, end: geometry.Point2D{X: 10, Y: 0}},
		{start: geometry.Point2D{X: 10, Y: 0}, end: geometry.Point2D{X: 10, Y: 10}},
	}
	polys := chainSegments(segs, 0.01)
	if len(polys) != 0 {
		t.Fatalf("expected an open 2-segment chain to produce no closed loop, got %d", len(polys))
	}
}

func TestBulgeArcPointsStartsAndEndsAtEndpoints(t *testing.T) {
	p1 := geometry.Point2D{X: 0, Y: 0}
	p2 := geometry.Point2D{X: 10, Y: 0}
	pts := bulgeArcPoints(p1, p2, 0.5, 16)
	if !pts[0].Equal(p1, 0.01) {
		t.Fatalf("expected arc to start at p1, got %v", pts[0])
	}
	if !pts[len(pts)-1].Equal(p2, 0.01) {
		t.Fatalf("expected arc to end at p2, got %v", pts[len(pts)-1])
	}
}

func TestNormalizePolygonTranslatesToOrigin(t *testing.T) {
	poly := geometry.Polygon2D{{X: 5, Y: 5}, {X: 15, Y: 5}, {X: 15, Y: 15}, {X: 5, Y: 15}}
	normalized := normalizePolygon(poly)
	bb := normalized.Bounds()
	if bb.Min.X != 0 || bb.Min.Y != 0 {
		t.Fatalf("expected normalized bounds to start at origin, got %+v", bb.Min)
	}
}
