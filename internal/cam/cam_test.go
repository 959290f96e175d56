package cam

import (
	"testing"

	"github.com/piwi3910/camcore/internal/geometry"
	"github.com/piwi3910/camcore/internal/hierarchy"
)

func squarePoly(side float64) geometry.Polygon2D {
	return geometry.Polygon2D{
		{X: 0, Y: 0}, {X: side, Y: 0}, {X: side, Y: side}, {X: 0, Y: side},
	}
}

func buildSquareTree(t *testing.T, side float64) (*hierarchy.Tree, hierarchy.NodeID) {
	t.Helper()
	tree, err := hierarchy.Build([]geometry.Polygon2D{squarePoly(side)})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(tree.Roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(tree.Roots))
	}
	return tree, tree.Roots[0]
}

func TestClearNodePerimeter(t *testing.T) {
	tree, id := buildSquareTree(t, 50)
	opt := DefaultOptions(3.175)
	opt.Mode = ModePerimeter
	loops, _, err := ClearNode(tree, id, opt)
	if err != nil {
		t.Fatalf("ClearNode: %v", err)
	}
	if len(loops) != 1 {
		t.Fatalf("expected 1 perimeter loop, got %d", len(loops))
	}
	if loops[0].Polygon.Area() <= squarePoly(50).Area() {
		t.Fatalf("expected perimeter offset to grow the boundary outward")
	}
}

func TestClearNodePocketProducesMultiplePasses(t *testing.T) {
	tree, id := buildSquareTree(t, 50)
	opt := DefaultOptions(3.175)
	opt.Mode = ModePocket
	opt.Strategy = StrategySpiralInward
	loops, _, err := ClearNode(tree, id, opt)
	if err != nil {
		t.Fatalf("ClearNode: %v", err)
	}
	if len(loops) < 2 {
		t.Fatalf("expected multiple spiral passes clearing a 50mm square, got %d", len(loops))
	}
	for i := 1; i < len(loops); i++ {
		if loops[i].Polygon.Area() >= loops[i-1].Polygon.Area() {
			t.Fatalf("expected successive spiral passes to shrink: pass %d area %v >= pass %d area %v",
				i, loops[i].Polygon.Area(), i-1, loops[i-1].Polygon.Area())
		}
	}
}

func TestClearNodeEngraveReturnsPathUnmodified(t *testing.T) {
	tree, id := buildSquareTree(t, 50)
	opt := DefaultOptions(3.175)
	opt.Mode = ModeEngrave
	loops, _, err := ClearNode(tree, id, opt)
	if err != nil {
		t.Fatalf("ClearNode: %v", err)
	}
	if len(loops) != 1 || loops[0].Polygon.Area() != squarePoly(50).Area() {
		t.Fatalf("expected engrave mode to leave geometry untouched")
	}
}

func TestSpiralStopsWithinMaxPasses(t *testing.T) {
	// A very small square relative to tool radius should collapse quickly.
	poly := squarePoly(8)
	loops, err := spiralInward(poly, 2.0, Options{OffsetOptions: DefaultOptions(3.175).OffsetOptions})
	if err != nil {
		t.Fatalf("spiralInward: %v", err)
	}
	if len(loops) >= maxSpiralPasses {
		t.Fatalf("expected spiral to converge well under the pass cap, got %d", len(loops))
	}
}
