package offset

import (
	"math"
	"testing"

	"github.com/piwi3910/camcore/internal/geometry"
)

func square(side float64) geometry.Polygon2D {
	return geometry.Polygon2D{
		{X: 0, Y: 0},
		{X: side, Y: 0},
		{X: side, Y: side},
		{X: 0, Y: side},
	}
}

func TestPathOffsetOutwardGrowsArea(t *testing.T) {
	src := square(10)
	result, err := Path(src, 1.0, DefaultOptions())
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if result.Polygon.Area() <= src.Area() {
		t.Fatalf("expected outward offset to grow area: got %v vs source %v", result.Polygon.Area(), src.Area())
	}
}

func TestPathOffsetInwardShrinksArea(t *testing.T) {
	src := square(10)
	result, err := Path(src, -1.0, DefaultOptions())
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if result.Polygon.Area() >= src.Area() {
		t.Fatalf("expected inward offset to shrink area: got %v vs source %v", result.Polygon.Area(), src.Area())
	}
}

func TestPathOffsetMonotonicWithDelta(t *testing.T) {
	src := square(20)
	r1, err := Path(src, 1.0, DefaultOptions())
	if err != nil {
		t.Fatalf("Path(1.0): %v", err)
	}
	r2, err := Path(src, 2.0, DefaultOptions())
	if err != nil {
		t.Fatalf("Path(2.0): %v", err)
	}
	if r2.Polygon.Area() <= r1.Polygon.Area() {
		t.Fatalf("expected larger delta to produce larger area: %v vs %v", r2.Polygon.Area(), r1.Polygon.Area())
	}
}

func TestPathRejectsDegenerateInput(t *testing.T) {
	if _, err := Path(geometry.Polygon2D{{X: 0, Y: 0}, {X: 1, Y: 0}}, 1.0, DefaultOptions()); err == nil {
		t.Fatalf("expected error for a 2-point polygon")
	}
}

func TestMinimumFeatureSizeOnWideSquare(t *testing.T) {
	size := MinimumFeatureSize(square(100))
	if math.IsInf(size, 1) || size <= 0 {
		t.Fatalf("expected a finite positive minimum feature size, got %v", size)
	}
}

func TestIsFeatureTooSmall(t *testing.T) {
	thin := geometry.Polygon2D{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 0.5}, {X: 0, Y: 0.5},
	}
	if !IsFeatureTooSmall(thin, 3.175) {
		t.Fatalf("expected a 0.5mm-wide slot to be too small for a 3.175mm tool")
	}
	if IsFeatureTooSmall(square(100), 3.175) {
		t.Fatalf("expected a 100mm square not to be flagged as too small")
	}
}
