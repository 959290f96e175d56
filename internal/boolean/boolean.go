// Package boolean wraps the Go-Clipper2 polygon-clipping library with the
// integer-scaled (x1000) conversion and NonZero-fill operations the CAM
// pipeline's geometry stages (polygon union/difference, tool-radius offset,
// and solid/hole tree extraction) are built on top of. Everything upstream
// and downstream of this package works in float64 millimeters; this is the
// only place that crosses into Clipper2's Path64 integer representation.
package boolean

import (
	"fmt"

	clipper "github.com/CWBudde/Go-Clipper2"

	"github.com/piwi3910/camcore/internal/geometry"
)

// Scale is the fixed-point multiplier mapping millimeters to the integer
// coordinates Clipper2 operates on: 1000 gives 0.001mm precision.
const Scale = 1000.0

// ToInt converts a millimeter polygon to Clipper2's integer Path64.
func ToInt(p geometry.Polygon2D) clipper.Path64 {
	out := make(clipper.Path64, len(p))
	for i, pt := range p {
		out[i] = clipper.Point64{X: int64(round(pt.X * Scale)), Y: int64(round(pt.Y * Scale))}
	}
	return out
}

// ToIntAll converts a slice of polygons to Clipper2's Paths64.
func ToIntAll(ps []geometry.Polygon2D) clipper.Paths64 {
	out := make(clipper.Paths64, len(ps))
	for i, p := range ps {
		out[i] = ToInt(p)
	}
	return out
}

// FromInt converts a Clipper2 Path64 back to a millimeter polygon.
func FromInt(p clipper.Path64) geometry.Polygon2D {
	out := make(geometry.Polygon2D, len(p))
	for i, pt := range p {
		out[i] = geometry.Point2D{X: float64(pt.X) / Scale, Y: float64(pt.Y) / Scale}
	}
	return out
}

// FromIntAll converts Clipper2's Paths64 back to millimeter polygons.
func FromIntAll(ps clipper.Paths64) []geometry.Polygon2D {
	out := make([]geometry.Polygon2D, len(ps))
	for i, p := range ps {
		out[i] = FromInt(p)
	}
	return out
}

func round(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return float64(int64(v - 0.5))
}

// Union merges a set of polygons (NonZero fill) into their combined outline(s).
func Union(subjects []geometry.Polygon2D) ([]geometry.Polygon2D, error) {
	return booleanOp(clipper.Union, subjects, nil)
}

// Intersect returns the overlap of subject and clip polygons (NonZero fill).
func Intersect(subjects, clips []geometry.Polygon2D) ([]geometry.Polygon2D, error) {
	return booleanOp(clipper.Intersection, subjects, clips)
}

// Difference subtracts clip polygons from subject polygons (NonZero fill).
func Difference(subjects, clips []geometry.Polygon2D) ([]geometry.Polygon2D, error) {
	return booleanOp(clipper.Difference, subjects, clips)
}

func booleanOp(op clipper.ClipType, subjects, clips []geometry.Polygon2D) ([]geometry.Polygon2D, error) {
	c := clipper.NewClipper64()
	c.AddSubject(ToIntAll(subjects))
	if len(clips) > 0 {
		c.AddClip(ToIntAll(clips))
	}
	result, err := c.Execute(op, clipper.NonZero)
	if err != nil {
		return nil, fmt.Errorf("boolean op failed: %w", err)
	}
	return FromIntAll(result), nil
}

// Offset grows (delta>0) or shrinks (delta<0) a set of closed polygons by
// delta millimeters using a round join, matching spec.md's
// Offset(paths, delta, join=round, end=polygon).
func Offset(paths []geometry.Polygon2D, delta float64) ([]geometry.Polygon2D, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	co := clipper.NewClipperOffset(2.0, 0.25)
	co.AddPaths(ToIntAll(paths), clipper.Round, clipper.ClosedPolygon)
	result, err := co.Execute(delta * Scale)
	if err != nil {
		return nil, fmt.Errorf("offset failed: %w", err)
	}
	return FromIntAll(result), nil
}

// OffsetOpenPath offsets a single open polyline by delta on both sides with
// round joins and round end caps, returning the closed outline(s) around
// it; offset.OpenPath is its caller.
func OffsetOpenPath(path geometry.Path2D, delta float64) ([]geometry.Polygon2D, error) {
	if len(path) < 2 {
		return nil, nil
	}
	poly := make(geometry.Polygon2D, len(path))
	copy(poly, path)
	co := clipper.NewClipperOffset(2.0, 0.25)
	co.AddPath(ToInt(poly), clipper.Round, clipper.OpenRound)
	result, err := co.Execute(delta * Scale)
	if err != nil {
		return nil, fmt.Errorf("open offset failed: %w", err)
	}
	return FromIntAll(result), nil
}

// TreeNode mirrors Clipper2's PolyTree64 but converted to millimeter
// polygons, with the node's own polygon, its children, and whether it is a
// hole (odd tree depth). Built with an arena-free recursive walk; the slice
// of children owns its nodes so there is no parent back-reference cycle —
// callers needing a parent pointer should use hierarchy.Node instead, which
// assigns stable integer indices.
type TreeNode struct {
	Polygon  geometry.Polygon2D
	Children []*TreeNode
	IsHole   bool
}

// BuildTree runs Union over subjects and returns the resulting polygon
// nesting tree, solids at even depth and holes at odd depth.
func BuildTree(subjects []geometry.Polygon2D) (*TreeNode, error) {
	c := clipper.NewClipper64()
	c.AddSubject(ToIntAll(subjects))
	tree, err := c.ExecuteTree(clipper.Union, clipper.NonZero)
	if err != nil {
		return nil, fmt.Errorf("build tree failed: %w", err)
	}
	return convertTree(tree), nil
}

func convertTree(t *clipper.PolyTree64) *TreeNode {
	if t == nil {
		return nil
	}
	node := &TreeNode{
		Polygon: FromInt(t.Polygon),
		IsHole:  t.IsHole,
	}
	for _, child := range t.Childs {
		node.Children = append(node.Children, convertTree(child))
	}
	return node
}
