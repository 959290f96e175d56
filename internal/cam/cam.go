// Package cam implements the area-clearing strategies (C8): turning a
// solid/hole hierarchy node into one or more closed toolpath loops using
// repeated tool-radius offsetting via internal/offset and internal/boolean.
package cam

import (
	"fmt"
	"math"

	"github.com/piwi3910/camcore/internal/boolean"
	"github.com/piwi3910/camcore/internal/geometry"
	"github.com/piwi3910/camcore/internal/hierarchy"
	"github.com/piwi3910/camcore/internal/offset"
)

// Mode selects which area-clearing strategy to run.
type Mode int

const (
	// ModePerimeter cuts only the node's own boundary, offset outward by
	// the tool radius (the classic "cut around the outline" mode).
	ModePerimeter Mode = iota
	// ModePunchout clears the full interior of the shape down to nothing,
	// used for through-cutting a part out of stock. Holes are also
	// spiralled clear unless SkipHoleClearing is set.
	ModePunchout
	// ModePocket clears the interior but stops short of holes, leaving
	// islands and hole boundaries uncut except for their own perimeter.
	ModePocket
	// ModeEngrave follows the path itself (no offset), for V-bit or line
	// engraving where the geometry IS the toolpath.
	ModeEngrave
)

func (m Mode) String() string {
	switch m {
	case ModePerimeter:
		return "perimeter"
	case ModePunchout:
		return "punchout"
	case ModePocket:
		return "pocket"
	case ModeEngrave:
		return "engrave"
	default:
		return "unknown"
	}
}

// Strategy selects the interior-clearing pattern once a mode decides an
// area needs clearing.
type Strategy int

const (
	StrategySpiralInward Strategy = iota
	StrategySpiralOutward
	StrategyContour
	StrategyRaster
	StrategyParallel
)

// maxSpiralPasses bounds runaway offset loops against malformed or
// self-intersecting geometry that never converges to empty.
const maxSpiralPasses = 1000

// maxContourPasses is the hard cap for the contour strategy, a backstop in
// case the area-reduction convergence test never trips.
const maxContourPasses = 10

// defaultContourConvergence is the minimum fractional area reduction a
// contour pass must achieve over the previous one to continue, matching
// cam_processor.cpp's previousTotalArea convergence check: once a ring
// reduces the remaining area by less than 10%, further passes add
// negligible machining value.
const defaultContourConvergence = 0.10

// Options configures one area-clearing run.
type Options struct {
	Mode             Mode
	Strategy         Strategy
	ToolRadius       float64
	StepoverFraction float64 // fraction of tool diameter between passes, e.g. 0.4
	RasterAngleDeg   float64
	SkipHoleClearing bool
	Direction        offset.Direction
	OffsetOptions    offset.Options
	// ContourConvergence is the minimum fractional area reduction a contour
	// pass must achieve to continue; below this the strategy stops even if
	// maxContourPasses hasn't been reached. 0 uses defaultContourConvergence.
	ContourConvergence float64
}

// DefaultOptions returns a conservative 40% stepover spiral-inward pocket.
func DefaultOptions(toolRadius float64) Options {
	return Options{
		Mode:             ModePocket,
		Strategy:         StrategySpiralInward,
		ToolRadius:       toolRadius,
		StepoverFraction: 0.4,
		Direction:        offset.DirectionAuto,
		OffsetOptions:    offset.DefaultOptions(),
	}
}

// Loop is one closed toolpath ring with its nominal cut depth left to the
// caller (C8 only produces 2D geometry; Z handling is C11's job).
type Loop struct {
	Polygon  geometry.Polygon2D
	IsHole   bool
	PassNum  int // 0 = outermost/perimeter pass
}

// Warning records an advisory the caller should surface (e.g. holes
// spiralled during a punchout).
type Warning struct {
	Message string
}

// ClearNode runs the configured mode/strategy against one hierarchy node,
// producing the ordered set of loops a machine would cut.
func ClearNode(tree *hierarchy.Tree, id hierarchy.NodeID, opt Options) ([]Loop, []Warning, error) {
	node := tree.Node(id)
	if len(node.Polygon) < 3 {
		return nil, nil, fmt.Errorf("cam: node has degenerate polygon (%d points)", len(node.Polygon))
	}

	switch opt.Mode {
	case ModeEngrave:
		return []Loop{{Polygon: node.Polygon, IsHole: node.IsHole}}, nil, nil

	case ModePerimeter:
		delta := offset.ResolveDelta(opt.Direction, opt.ToolRadius, node.IsHole)
		res, err := offset.Path(node.Polygon, delta, opt.OffsetOptions)
		if err != nil {
			return nil, nil, fmt.Errorf("cam perimeter: %w", err)
		}
		return []Loop{{Polygon: res.Polygon, IsHole: node.IsHole}}, nil, nil

	case ModePocket, ModePunchout:
		return clearInterior(tree, id, opt)
	}
	return nil, nil, fmt.Errorf("cam: unknown mode %d", opt.Mode)
}

func clearInterior(tree *hierarchy.Tree, id hierarchy.NodeID, opt Options) ([]Loop, []Warning, error) {
	node := tree.Node(id)

	// Per spec.md §4.7's mode mapping: pocket leaves a finished wall, so it
	// pre-offsets inward by the full tool radius before clearing, and skips
	// hole nodes entirely (no loops at all are produced for a hole node in
	// pocket mode). Punchout cuts
	// all the way through, so it spirals directly from the boundary itself
	// with no pre-offset, holes included.
	if opt.Mode == ModePocket && node.IsHole {
		return nil, nil, nil
	}

	var warnings []Warning
	var loops []Loop
	boundary := node.Polygon

	if opt.Mode == ModePocket {
		pre, err := offset.Path(boundary, -opt.ToolRadius, opt.OffsetOptions)
		if err != nil {
			return nil, nil, fmt.Errorf("cam pocket pre-offset: %w", err)
		}
		boundary = pre.Polygon
		loops = append(loops, Loop{Polygon: boundary, IsHole: node.IsHole, PassNum: 0})
	}

	step := opt.ToolRadius * 2 * opt.StepoverFraction
	if step <= 0 {
		step = opt.ToolRadius * 0.8
	}

	switch opt.Strategy {
	case StrategySpiralInward, StrategyContour:
		inner, err := spiralInward(boundary, step, opt)
		if err != nil {
			return nil, nil, err
		}
		loops = append(loops, inner...)
	case StrategySpiralOutward:
		outer, err := spiralOutward(boundary, opt.ToolRadius, step, opt)
		if err != nil {
			return nil, nil, err
		}
		loops = append(loops, outer...)
	case StrategyRaster, StrategyParallel:
		lines, err := rasterFill(boundary, step, opt.RasterAngleDeg)
		if err != nil {
			return nil, nil, err
		}
		for i, l := range lines {
			loops = append(loops, Loop{Polygon: l, PassNum: i + 1})
		}
	}

	if opt.Mode == ModePunchout && !opt.SkipHoleClearing {
		for _, childID := range node.Children {
			child := tree.Node(childID)
			if !child.IsHole {
				continue
			}
			childLoops, _, err := clearInterior(tree, childID, opt)
			if err != nil {
				return nil, nil, fmt.Errorf("cam punchout hole: %w", err)
			}
			loops = append(loops, childLoops...)
		}
		warnings = append(warnings, Warning{Message: "punchout mode spirals interior holes clear; set SkipHoleClearing to leave holes uncleared"})
	}

	return loops, warnings, nil
}

// spiralInward repeatedly offsets a polygon inward by step until the
// offset collapses to nothing or maxSpiralPasses is hit — the "spiral
// inward" area-clearing strategy of spec.md §4.7. For StrategyContour it
// additionally stops once a pass reduces the remaining area by less than
// ContourConvergence (default 10%), the cam_processor.cpp convergence test,
// with maxContourPasses as a hard backstop.
func spiralInward(poly geometry.Polygon2D, step float64, opt Options) ([]Loop, error) {
	var loops []Loop
	current := poly
	prevArea := current.Area()
	convergence := opt.ContourConvergence
	if convergence <= 0 {
		convergence = defaultContourConvergence
	}
	for pass := 1; pass <= maxSpiralPasses; pass++ {
		res, err := offset.Path(current, -step, opt.OffsetOptions)
		if err != nil {
			// Offset collapse (no remaining interior) ends the spiral
			// cleanly rather than being treated as a hard failure.
			break
		}
		if len(res.Polygon) < 3 || res.Polygon.Area() < geometry.Epsilon {
			break
		}
		newArea := res.Polygon.Area()
		if opt.Strategy == StrategyContour && prevArea > geometry.Epsilon {
			reduction := (prevArea - newArea) / prevArea
			if reduction < convergence {
				break
			}
		}
		loops = append(loops, Loop{Polygon: res.Polygon, PassNum: pass})
		current = res.Polygon
		prevArea = newArea
		if opt.Strategy == StrategyContour && pass >= maxContourPasses {
			break
		}
	}
	return loops, nil
}

// spiralOutward clears an area by seeding at the innermost ring
// (offset(boundary, -toolRadius)) and growing outward by step, clipping
// each grown ring to the original boundary so it never escapes past the
// finished perimeter, per cam_processor.cpp's generateSpiralToolpath. It
// stops once a growth step adds no further net area once clipped.
func spiralOutward(boundary geometry.Polygon2D, toolRadius, step float64, opt Options) ([]Loop, error) {
	seed, err := offset.Path(boundary, -toolRadius, opt.OffsetOptions)
	if err != nil {
		return nil, fmt.Errorf("cam spiral outward seed: %w", err)
	}
	if len(seed.Polygon) < 3 || seed.Polygon.Area() < geometry.Epsilon {
		return nil, nil
	}

	rings := []geometry.Polygon2D{seed.Polygon}
	current := seed.Polygon
	prevArea := current.Area()
	for pass := 1; pass < maxSpiralPasses; pass++ {
		grown, err := offset.Path(current, step, opt.OffsetOptions)
		if err != nil {
			break
		}
		clipped, err := boolean.Intersect([]geometry.Polygon2D{grown.Polygon}, []geometry.Polygon2D{boundary})
		if err != nil {
			return nil, fmt.Errorf("cam spiral outward clip: %w", err)
		}
		next := largestByArea(clipped)
		if next == nil || next.Area() <= prevArea+geometry.Epsilon {
			break
		}
		rings = append(rings, *next)
		current = *next
		prevArea = next.Area()
	}

	loops := make([]Loop, len(rings))
	for i, r := range rings {
		loops[i] = Loop{Polygon: r, PassNum: i + 1}
	}
	return loops, nil
}

func largestByArea(polys []geometry.Polygon2D) *geometry.Polygon2D {
	if len(polys) == 0 {
		return nil
	}
	best := polys[0]
	bestArea := best.Area()
	for _, p := range polys[1:] {
		if a := p.Area(); a > bestArea {
			best, bestArea = p, a
		}
	}
	return &best
}

// rasterFill sweeps horizontal (or rotated by angleDeg) scanlines across
// the polygon's bounding box at step spacing, clipping each line to the
// polygon interior via a simple even-odd scanline test.
func rasterFill(poly geometry.Polygon2D, step, angleDeg float64) ([]geometry.Polygon2D, error) {
	if step <= 0 {
		return nil, fmt.Errorf("cam raster: step must be positive")
	}
	rotated, unrotate := rotatePolygon(poly, -angleDeg)
	bb := rotated.Bounds()

	var lines []geometry.Polygon2D
	for y := bb.Min.Y + step/2; y < bb.Max.Y; y += step {
		xs := scanlineIntersections(rotated, y)
		for i := 0; i+1 < len(xs); i += 2 {
			seg := geometry.Polygon2D{
				{X: xs[i], Y: y},
				{X: xs[i+1], Y: y},
			}
			lines = append(lines, unrotate(seg))
		}
	}
	return lines, nil
}

func scanlineIntersections(poly geometry.Polygon2D, y float64) []float64 {
	var xs []float64
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		if (a.Y <= y && b.Y > y) || (b.Y <= y && a.Y > y) {
			t := (y - a.Y) / (b.Y - a.Y)
			xs = append(xs, a.X+t*(b.X-a.X))
		}
	}
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
	return xs
}

func rotatePolygon(poly geometry.Polygon2D, angleDeg float64) (geometry.Polygon2D, func(geometry.Polygon2D) geometry.Polygon2D) {
	if angleDeg == 0 {
		return poly, func(p geometry.Polygon2D) geometry.Polygon2D { return p }
	}
	rad := angleDeg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	out := make(geometry.Polygon2D, len(poly))
	for i, p := range poly {
		out[i] = geometry.Point2D{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
	}
	unrotate := func(p geometry.Polygon2D) geometry.Polygon2D {
		res := make(geometry.Polygon2D, len(p))
		for i, pt := range p {
			res[i] = geometry.Point2D{X: pt.X*cos + pt.Y*sin, Y: -pt.X*sin + pt.Y*cos}
		}
		return res
	}
	return out, unrotate
}
