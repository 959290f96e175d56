// Package svgimport parses SVG artwork into the cubic-Bézier subpath forest
// the discretizer (C2, discretize.go) consumes, and performs that
// discretization into machine-ready polylines.
//
// Parsing itself is delegated to github.com/srwiley/oksvg (the
// "nano-SVG-equivalent library" spec.md §6 calls for as an external,
// opaque input source) plus github.com/srwiley/rasterx for the path
// operator stream oksvg produces; everything downstream of LoadFile works
// only with the Shape/Subpath/CubicSegment types defined here, never with
// oksvg/rasterx types directly.
package svgimport

import (
	"fmt"
	"io"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/piwi3910/camcore/internal/geometry"
)

// CubicSegment is one cubic Bézier piece of a Subpath.
type CubicSegment struct {
	P0, P1, P2, P3 geometry.Point2D
}

// Subpath is a single contiguous run of cubic segments (one MoveTo until
// the next MoveTo or path close).
type Subpath struct {
	Segments []CubicSegment
	Closed   bool
}

// Shape is one parsed SVG path/primitive, carrying the per-shape metadata
// spec.md §6 lists: id, fill, stroke, stroke width, and bounds.
type Shape struct {
	ID          string
	Fill        string
	Stroke      string
	StrokeWidth float64
	Bounds      geometry.BoundingBox2D
	Subpaths    []Subpath
}

// LoadFile reads and parses an SVG document into a forest of shapes. It
// never errors on recoverable content: shapes oksvg cannot rasterize are
// skipped, matching C2's "never errors" contract — only I/O failures and
// a fully unparsable document return an error.
func LoadFile(path string) ([]Shape, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open svg: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses SVG content from r.
func Load(r io.Reader) ([]Shape, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	shapes := make([]Shape, 0, len(icon.SVGPaths))
	for i, sp := range icon.SVGPaths {
		subpaths := decodeRasterxPath(sp.Path)
		if len(subpaths) == 0 {
			continue
		}
		shape := Shape{
			ID:       fmt.Sprintf("shape-%d", i),
			Subpaths: subpaths,
		}
		for _, sub := range subpaths {
			for _, seg := range sub.Segments {
				shape.Bounds.Update(seg.P0)
				shape.Bounds.Update(seg.P1)
				shape.Bounds.Update(seg.P2)
				shape.Bounds.Update(seg.P3)
			}
		}
		shapes = append(shapes, shape)
	}
	return shapes, nil
}

// decodeRasterxPath replays a rasterx.Path operator stream (the encoding
// oksvg builds via the rasterx.Adder interface: MToCmd/LToCmd/QToCmd/
// CToCmd/CloseCmd tags each followed by their coordinate floats) into our
// own cubic-only Subpath representation. Lines and quadratics are elevated
// to cubics so the rest of the pipeline only ever deals with one curve
// representation at the import boundary, exactly as spec.md §3 describes
// PrecisionPath modeling curve kinds as a tagged variant rather than many
// representations colliding downstream.
func decodeRasterxPath(p rasterx.Path) []Subpath {
	var subpaths []Subpath
	var cur *Subpath
	var start, last geometry.Point2D
	have := false

	flush := func() {
		if cur != nil && len(cur.Segments) > 0 {
			subpaths = append(subpaths, *cur)
		}
		cur = nil
	}

	i := 0
	for i < len(p) {
		switch int(p[i]) {
		case rasterx.MToCmd:
			flush()
			x, y := p[i+1], p[i+2]
			start = geometry.Point2D{X: x, Y: y}
			last = start
			have = true
			cur = &Subpath{}
			i += 3
		case rasterx.LToCmd:
			x, y := p[i+1], p[i+2]
			to := geometry.Point2D{X: x, Y: y}
			if have && cur != nil {
				cur.Segments = append(cur.Segments, lineToCubic(last, to))
				last = to
			}
			i += 3
		case rasterx.QToCmd:
			cx, cy, x, y := p[i+1], p[i+2], p[i+3], p[i+4]
			ctrl := geometry.Point2D{X: cx, Y: cy}
			to := geometry.Point2D{X: x, Y: y}
			if have && cur != nil {
				cur.Segments = append(cur.Segments, quadToCubic(last, ctrl, to))
				last = to
			}
			i += 5
		case rasterx.CToCmd:
			c1x, c1y, c2x, c2y, x, y := p[i+1], p[i+2], p[i+3], p[i+4], p[i+5], p[i+6]
			c1 := geometry.Point2D{X: c1x, Y: c1y}
			c2 := geometry.Point2D{X: c2x, Y: c2y}
			to := geometry.Point2D{X: x, Y: y}
			if have && cur != nil {
				cur.Segments = append(cur.Segments, CubicSegment{last, c1, c2, to})
				last = to
			}
			i += 7
		case rasterx.CloseCmd:
			if have && cur != nil && !last.Equal(start, geometry.Epsilon) {
				cur.Segments = append(cur.Segments, lineToCubic(last, start))
			}
			if cur != nil {
				cur.Closed = true
			}
			last = start
			i++
		default:
			// Unknown/unsupported op: stop decoding this path defensively
			// rather than misinterpreting the remaining float stream.
			i = len(p)
		}
	}
	flush()
	return subpaths
}

func lineToCubic(a, b geometry.Point2D) CubicSegment {
	return CubicSegment{
		P0: a,
		P1: a.Lerp(b, 1.0/3.0),
		P2: a.Lerp(b, 2.0/3.0),
		P3: b,
	}
}

func quadToCubic(p0, p1, p2 geometry.Point2D) CubicSegment {
	c1 := geometry.Point2D{X: p0.X + 2.0/3.0*(p1.X-p0.X), Y: p0.Y + 2.0/3.0*(p1.Y-p0.Y)}
	c2 := geometry.Point2D{X: p2.X + 2.0/3.0*(p1.X-p2.X), Y: p2.Y + 2.0/3.0*(p1.Y-p2.Y)}
	return CubicSegment{p0, c1, c2, p2}
}
