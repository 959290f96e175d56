package fit

import (
	"testing"

	"github.com/piwi3910/camcore/internal/geometry"
)

func square(size float64) geometry.Path2D {
	return geometry.Path2D{
		{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size},
	}
}

func TestFitRejectsEmptyInput(t *testing.T) {
	if _, err := Fit(nil, Options{MaterialWidth: 100, MaterialHeight: 100}); err == nil {
		t.Fatalf("expected an error for no input points")
	}
}

func TestFitRejectsNonPositiveMaterial(t *testing.T) {
	paths := []geometry.Path2D{square(10)}
	if _, err := Fit(paths, Options{MaterialWidth: 0, MaterialHeight: 100}); err == nil {
		t.Fatalf("expected an error for non-positive material width")
	}
}

func TestFitDoesNotScaleWhenDesignFitsMaterial(t *testing.T) {
	paths := []geometry.Path2D{square(10)}
	info, err := Fit(paths, Options{MaterialWidth: 100, MaterialHeight: 100})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if info.WasScaled {
		t.Fatalf("expected no scaling for a design already smaller than the material")
	}
	if info.ScaleX != 1 || info.ScaleY != 1 {
		t.Fatalf("expected identity scale, got %v/%v", info.ScaleX, info.ScaleY)
	}
}

func TestFitScalesWhenDesignExceedsMaterial(t *testing.T) {
	paths := []geometry.Path2D{square(200)}
	info, err := Fit(paths, Options{MaterialWidth: 100, MaterialHeight: 100})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if !info.WasScaled {
		t.Fatalf("expected scaling for a design larger than the material")
	}
	bb, _ := Bounds(paths)
	size := bb.Size()
	if size.X > 100+geometry.Epsilon || size.Y > 100+geometry.Epsilon {
		t.Fatalf("expected fitted design to be within material bounds, got %v", size)
	}
}

func TestFitTranslatesOnlyWithoutRescalingNonExceedingAxis(t *testing.T) {
	// 50x10 fits within 100x100 on both axes: must not be rescaled, only
	// translated/centered, even though it doesn't exactly match the
	// material size on either axis.
	paths := []geometry.Path2D{
		{{X: 5, Y: 5}, {X: 55, Y: 5}, {X: 55, Y: 15}, {X: 5, Y: 15}},
	}
	info, err := Fit(paths, Options{MaterialWidth: 100, MaterialHeight: 100})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if info.WasScaled {
		t.Fatalf("expected no scaling when both axes are within material bounds")
	}
}

func TestFitFlipsYWhenConfigured(t *testing.T) {
	// A point at the shape's minimum Y (0,0) should end up at the fitted
	// shape's maximum Y once flipped.
	paths := []geometry.Path2D{
		{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
	}
	info, err := Fit(paths, Options{MaterialWidth: 100, MaterialHeight: 100, FlipY: true})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if paths[0][0].Y != info.NewHeight {
		t.Fatalf("expected the min-Y corner to land at the flipped max Y %v, got %v", info.NewHeight, paths[0][0].Y)
	}
}

func TestFitRejectsMarginsThatConsumeAllMaterial(t *testing.T) {
	paths := []geometry.Path2D{square(10)}
	if _, err := Fit(paths, Options{MaterialWidth: 10, MaterialHeight: 10, MarginX: 6, MarginY: 1}); err == nil {
		t.Fatalf("expected an error when margins leave no usable area")
	}
}
