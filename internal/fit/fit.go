// Package fit scales and translates imported paths to fit the configured
// material bounds, mirroring nwss-cnc's Transform::fitToMaterial.
package fit

import (
	"fmt"
	"math"

	"github.com/piwi3910/camcore/internal/geometry"
)

// Info reports what a Fit call did, for diagnostics/logging.
type Info struct {
	OrigWidth, OrigHeight   float64
	OrigMinX, OrigMinY      float64
	NewWidth, NewHeight     float64
	NewMinX, NewMinY        float64
	ScaleX, ScaleY          float64
	OffsetX, OffsetY        float64
	WasScaled, WasCropped   bool
	FlippedY                bool
}

// Options controls how paths are fit to the material envelope.
type Options struct {
	MaterialWidth      float64
	MaterialHeight     float64
	PreserveAspect     bool
	CenterX            bool
	CenterY            bool
	FlipY              bool // SVG/image Y-down to CNC Y-up
	MarginX, MarginY   float64
}

// Bounds computes the combined bounding box of paths. Returns false if
// paths is empty or every path has zero points.
func Bounds(paths []geometry.Path2D) (geometry.BoundingBox2D, bool) {
	bb := geometry.NewBoundingBox2D()
	any := false
	for _, p := range paths {
		for _, pt := range p {
			bb.Update(pt)
			any = true
		}
	}
	return bb, any
}

// Fit scales and translates paths in place to land within the configured
// material envelope, returning an Info describing what happened. An empty
// input returns an error.
func Fit(paths []geometry.Path2D, opt Options) (Info, error) {
	bb, ok := Bounds(paths)
	if !ok {
		return Info{}, fmt.Errorf("fit: no points to transform")
	}
	if opt.MaterialWidth <= 0 || opt.MaterialHeight <= 0 {
		return Info{}, fmt.Errorf("fit: material bounds must be positive, got %gx%g", opt.MaterialWidth, opt.MaterialHeight)
	}

	size := bb.Size()
	info := Info{
		OrigWidth: size.X, OrigHeight: size.Y,
		OrigMinX: bb.Min.X, OrigMinY: bb.Min.Y,
		FlippedY: opt.FlipY,
	}

	usableW := opt.MaterialWidth - 2*opt.MarginX
	usableH := opt.MaterialHeight - 2*opt.MarginY
	if usableW <= 0 || usableH <= 0 {
		return Info{}, fmt.Errorf("fit: margins leave no usable area (%gx%g)", usableW, usableH)
	}

	scaleX, scaleY := 1.0, 1.0
	if size.X > usableW || size.Y > usableH {
		scaleX = safeDiv(usableW, size.X)
		scaleY = safeDiv(usableH, size.Y)
		if opt.PreserveAspect {
			s := math.Min(scaleX, scaleY)
			scaleX, scaleY = s, s
		}
		info.WasScaled = scaleX != 1 || scaleY != 1
	}

	newW := size.X * scaleX
	newH := size.Y * scaleY
	info.WasCropped = newW > usableW+geometry.Epsilon || newH > usableH+geometry.Epsilon

	offsetX := opt.MarginX
	offsetY := opt.MarginY
	if opt.CenterX {
		offsetX += (usableW - newW) / 2
	}
	if opt.CenterY {
		offsetY += (usableH - newH) / 2
	}

	for pi, p := range paths {
		for i, pt := range p {
			x := (pt.X - bb.Min.X) * scaleX
			y := (pt.Y - bb.Min.Y) * scaleY
			if opt.FlipY {
				y = newH - y
			}
			paths[pi][i] = geometry.Point2D{X: x + offsetX, Y: y + offsetY}
		}
	}

	info.ScaleX, info.ScaleY = scaleX, scaleY
	info.OffsetX, info.OffsetY = offsetX, offsetY
	info.NewWidth, info.NewHeight = newW, newH
	info.NewMinX, info.NewMinY = offsetX, offsetY
	return info, nil
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	return a / b
}

// Format renders Info as a human-readable summary line, in the spirit of
// nwss-cnc's Transform::formatTransformInfo.
func (i Info) Format() string {
	scaled := "no scaling applied"
	if i.WasScaled {
		scaled = fmt.Sprintf("scaled %.4fx / %.4fy", i.ScaleX, i.ScaleY)
	}
	return fmt.Sprintf("fit %.3fx%.3f -> %.3fx%.3f (%s, offset %.3f,%.3f)",
		i.OrigWidth, i.OrigHeight, i.NewWidth, i.NewHeight, scaled, i.OffsetX, i.OffsetY)
}
