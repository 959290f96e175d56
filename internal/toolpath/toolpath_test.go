package toolpath

import (
	"testing"

	"github.com/piwi3910/camcore/internal/geometry"
)

func itemAt(x, y float64, tag string) Item {
	return Item{Path: Path{Points: []geometry.Point2D{{X: x, Y: y}}}, Tag: tag}
}

func TestOrderNearestNeighborWeakOptimality(t *testing.T) {
	items := []Item{
		itemAt(100, 100, "far"),
		itemAt(1, 0, "near"),
		itemAt(50, 50, "mid"),
	}
	ordered := Order(items, 0, 0)
	if ordered[0].Tag != "near" {
		t.Fatalf("expected nearest item first, got %q", ordered[0].Tag)
	}
	naive := TotalRapidDistance(items, 0, 0)
	optimized := TotalRapidDistance(ordered, 0, 0)
	if optimized > naive {
		t.Fatalf("expected ordering not to increase rapid distance: optimized=%v naive=%v", optimized, naive)
	}
}

func TestOrderSingleAndEmpty(t *testing.T) {
	if out := Order(nil, 0, 0); len(out) != 0 {
		t.Fatalf("expected empty in/out")
	}
	one := []Item{itemAt(5, 5, "only")}
	if out := Order(one, 0, 0); len(out) != 1 {
		t.Fatalf("expected single item passthrough")
	}
}

func TestRemoveRedundantDropsDuplicates(t *testing.T) {
	points := []geometry.Point2D{
		{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1e-8, Y: 0}, {X: 10, Y: 0},
	}
	out := RemoveRedundant(points, 0.01)
	if len(out) != 2 {
		t.Fatalf("expected duplicates collapsed to 2 points, got %d: %v", len(out), out)
	}
}

func TestRemoveRedundantDropsCollinearPoints(t *testing.T) {
	points := []geometry.Point2D{
		{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10},
	}
	out := RemoveRedundant(points, 0.01)
	if len(out) != 3 {
		t.Fatalf("expected the collinear midpoint dropped, got %d points: %v", len(out), out)
	}
}

func TestRemoveRedundantKeepsCorners(t *testing.T) {
	points := []geometry.Point2D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}
	out := RemoveRedundant(points, 0.01)
	if len(out) != 4 {
		t.Fatalf("expected all 4 square corners kept, got %d", len(out))
	}
}
