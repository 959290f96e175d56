package svgimport

import "github.com/piwi3910/camcore/internal/geometry"

// DiscretizerConfig controls how cubic-Bézier subpaths are turned into
// polylines, per spec.md §4.1.
type DiscretizerConfig struct {
	BezierSamples     int     // fixed sampling count per segment (>=2); ignored if AdaptiveSampling > 0
	SimplifyTolerance float64 // Douglas-Peucker tolerance; 0 disables
	AdaptiveSampling  float64 // flatness tolerance; 0 disables, falls back to fixed sampling
	MaxPointDistance  float64 // advisory cap used by callers resampling dense output; 0 = unused
}

// DefaultDiscretizerConfig mirrors sane defaults for mm-scale artwork.
func DefaultDiscretizerConfig() DiscretizerConfig {
	return DiscretizerConfig{
		BezierSamples:     16,
		SimplifyTolerance: 0.01,
		AdaptiveSampling:  0.01,
	}
}

// Discretize turns every shape's subpaths into Path2D polylines. Empty
// input yields an empty, non-nil-free result and this function never
// returns an error: a malformed subpath is simply skipped.
func Discretize(shapes []Shape, cfg DiscretizerConfig) []geometry.Path2D {
	var out []geometry.Path2D
	for _, shape := range shapes {
		for _, sub := range shape.Subpaths {
			path := discretizeSubpath(sub, cfg)
			if len(path) == 0 {
				continue
			}
			if cfg.SimplifyTolerance > 0 {
				path = path.Simplify(cfg.SimplifyTolerance)
			}
			out = append(out, path)
		}
	}
	return out
}

func discretizeSubpath(sub Subpath, cfg DiscretizerConfig) geometry.Path2D {
	var path geometry.Path2D
	for i, seg := range sub.Segments {
		pts := discretizeCubic(seg, cfg)
		if i == 0 {
			path = append(path, pts...)
		} else if len(pts) > 0 {
			// The first point of each segment after the first duplicates
			// the previous segment's endpoint.
			path = append(path, pts[1:]...)
		}
	}
	return path
}

// discretizeCubic returns the segment's sampled points, P0 included, for
// the first segment of a subpath (spec.md: "For the first segment of a
// subpath, emit p0 before sampling").
func discretizeCubic(seg CubicSegment, cfg DiscretizerConfig) geometry.Path2D {
	if cfg.AdaptiveSampling > 0 {
		pts := []geometry.Point2D{seg.P0}
		subdivideAdaptive(seg.P0, seg.P1, seg.P2, seg.P3, cfg.AdaptiveSampling, &pts, 0)
		pts = append(pts, seg.P3)
		return pts
	}
	n := cfg.BezierSamples
	if n < 2 {
		n = 2
	}
	pts := make(geometry.Path2D, 0, n+1)
	pts = append(pts, seg.P0)
	for k := 1; k <= n; k++ {
		t := float64(k) / float64(n)
		pts = append(pts, evalCubicAt(seg, t))
	}
	return pts
}

func evalCubicAt(seg CubicSegment, t float64) geometry.Point2D {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return geometry.Point2D{
		X: a*seg.P0.X + b*seg.P1.X + c*seg.P2.X + d*seg.P3.X,
		Y: a*seg.P0.Y + b*seg.P1.Y + c*seg.P2.Y + d*seg.P3.Y,
	}
}

// subdivideAdaptive implements the source discretizer's flatness metric —
// max(d1x^2,d2x^2) + max(d1y^2,d2y^2), the per-axis maxes of the two
// deviation vectors summed, not a single max over all four — stopping when
// it is <= tolerance and otherwise splitting at t=0.5 via de Casteljau and
// recursing both halves.
func subdivideAdaptive(p0, p1, p2, p3 geometry.Point2D, tolerance float64, pts *[]geometry.Point2D, depth int) {
	const maxDepth = 24
	if depth >= maxDepth || isFlat(p0, p1, p2, p3, tolerance) {
		return
	}

	p01 := p0.Lerp(p1, 0.5)
	p12 := p1.Lerp(p2, 0.5)
	p23 := p2.Lerp(p3, 0.5)
	p012 := p01.Lerp(p12, 0.5)
	p123 := p12.Lerp(p23, 0.5)
	p0123 := p012.Lerp(p123, 0.5)

	subdivideAdaptive(p0, p01, p012, p0123, tolerance, pts, depth+1)
	*pts = append(*pts, p0123)
	subdivideAdaptive(p0123, p123, p23, p3, tolerance, pts, depth+1)
}

func isFlat(p0, p1, p2, p3 geometry.Point2D, tolerance float64) bool {
	d1x := 3*p1.X - 2*p0.X - p3.X
	d1y := 3*p1.Y - 2*p0.Y - p3.Y
	d2x := 3*p2.X - 2*p3.X - p0.X
	d2y := 3*p2.Y - 2*p3.Y - p0.Y

	flatness := maxf(d1x*d1x, d2x*d2x) + maxf(d1y*d1y, d2y*d2y)
	return flatness <= tolerance
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
