package boolean

import (
	"testing"

	"github.com/piwi3910/camcore/internal/geometry"
)

func square(minX, minY, size float64) geometry.Polygon2D {
	return geometry.Polygon2D{
		{X: minX, Y: minY}, {X: minX + size, Y: minY},
		{X: minX + size, Y: minY + size}, {X: minX, Y: minY + size},
	}
}

func TestToIntFromIntRoundTrip(t *testing.T) {
	p := square(1.25, 2.5, 10)
	back := FromInt(ToInt(p))
	for i, pt := range p {
		if !pt.Equal(back[i], 1.0/Scale) {
			t.Fatalf("round trip mismatch at %d: got %v, want %v", i, back[i], pt)
		}
	}
}

func TestUnionMergesOverlappingSquares(t *testing.T) {
	a := square(0, 0, 10)
	b := square(5, 5, 10)
	out, err := Union([]geometry.Polygon2D{a, b})
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected a single merged outline, got %d", len(out))
	}
	area := out[0].Area()
	// Two 10x10 squares overlapping in a 5x5 region: area = 100+100-25 = 175.
	if area < 170 || area > 180 {
		t.Fatalf("unexpected merged area %v", area)
	}
}

func TestIntersectReturnsOverlapOnly(t *testing.T) {
	a := square(0, 0, 10)
	b := square(5, 5, 10)
	out, err := Intersect([]geometry.Polygon2D{a}, []geometry.Polygon2D{b})
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one intersection region, got %d", len(out))
	}
	area := out[0].Area()
	if area < 20 || area > 30 {
		t.Fatalf("expected ~25 area overlap, got %v", area)
	}
}

func TestDifferenceRemovesClipRegion(t *testing.T) {
	a := square(0, 0, 10)
	b := square(5, 5, 10)
	out, err := Difference([]geometry.Polygon2D{a}, []geometry.Polygon2D{b})
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	var total float64
	for _, p := range out {
		total += p.Area()
	}
	// 100 - 25 overlap = 75
	if total < 70 || total > 80 {
		t.Fatalf("unexpected difference area %v", total)
	}
}

func TestOffsetGrowsPolygon(t *testing.T) {
	a := square(0, 0, 10)
	out, err := Offset([]geometry.Polygon2D{a}, 2)
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one offset polygon, got %d", len(out))
	}
	if out[0].Area() <= a.Area() {
		t.Fatalf("expected a positive offset to grow the polygon, got area %v from %v", out[0].Area(), a.Area())
	}
}

func TestOffsetShrinksPolygon(t *testing.T) {
	a := square(0, 0, 10)
	out, err := Offset([]geometry.Polygon2D{a}, -2)
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one offset polygon, got %d", len(out))
	}
	if out[0].Area() >= a.Area() {
		t.Fatalf("expected a negative offset to shrink the polygon, got area %v from %v", out[0].Area(), a.Area())
	}
}

func TestOffsetOpenPathProducesClosedOutline(t *testing.T) {
	path := geometry.Path2D{{X: 0, Y: 0}, {X: 10, Y: 0}}
	out, err := OffsetOpenPath(path, 1)
	if err != nil {
		t.Fatalf("OffsetOpenPath: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected a non-empty offset outline for an open path")
	}
}

func TestBuildTreeMarksHolesAtOddDepth(t *testing.T) {
	outer := square(0, 0, 20)
	// Reversed winding relative to outer is what makes NonZero-fill Clipper2
	// treat the inner square as a hole rather than absorbing it as solid.
	inner := square(5, 5, 5).Reverse()
	tree, err := BuildTree([]geometry.Polygon2D{outer, inner})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected one top-level solid, got %d", len(tree.Children))
	}
	solid := tree.Children[0]
	if solid.IsHole {
		t.Fatalf("expected the outer boundary to not be a hole")
	}
	if len(solid.Children) != 1 || !solid.Children[0].IsHole {
		t.Fatalf("expected the inner square to appear as a hole child")
	}
}
