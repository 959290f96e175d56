package geometry

import "math"

// CurveKind tags the variant stored in a CurveSegment. Modeled as a tagged
// union rather than an interface with a vtable, per the "curve-type
// polymorphism" design note: evaluation dispatches on Kind instead of a
// method table.
type CurveKind int

const (
	KindLine CurveKind = iota
	KindArc
	KindCubicBezier
	KindQuadraticBezier
)

// CurveSegment is one piece of a PrecisionPath. Only the fields relevant to
// Kind are populated; the rest are zero.
type CurveSegment struct {
	Kind CurveKind

	// Line
	A, B Point2D

	// Arc
	Center       Point2D
	Radius       float64
	StartAngle   float64 // radians
	EndAngle     float64 // radians
	CCW          bool

	// CubicBezier: P0..P3; QuadraticBezier: P0..P2 (P3 unused)
	P0, P1, P2, P3 Point2D
}

// NewLine builds a line segment from a to b.
func NewLine(a, b Point2D) CurveSegment {
	return CurveSegment{Kind: KindLine, A: a, B: b}
}

// NewArc builds a circular arc segment.
func NewArc(center Point2D, radius, startAngle, endAngle float64, ccw bool) CurveSegment {
	return CurveSegment{Kind: KindArc, Center: center, Radius: radius, StartAngle: startAngle, EndAngle: endAngle, CCW: ccw}
}

// NewCubicBezier builds a cubic Bezier segment from its four control points.
func NewCubicBezier(p0, p1, p2, p3 Point2D) CurveSegment {
	return CurveSegment{Kind: KindCubicBezier, P0: p0, P1: p1, P2: p2, P3: p3}
}

// NewQuadraticBezier builds a quadratic Bezier segment from its three control points.
func NewQuadraticBezier(p0, p1, p2 Point2D) CurveSegment {
	return CurveSegment{Kind: KindQuadraticBezier, P0: p0, P1: p1, P2: p2}
}

// Evaluate returns the point on the segment at parameter t in [0,1].
func (c CurveSegment) Evaluate(t float64) Point2D {
	switch c.Kind {
	case KindLine:
		return c.A.Lerp(c.B, t)
	case KindArc:
		angle := c.arcAngleAt(t)
		return Point2D{c.Center.X + c.Radius*math.Cos(angle), c.Center.Y + c.Radius*math.Sin(angle)}
	case KindCubicBezier:
		return evalCubic(c.P0, c.P1, c.P2, c.P3, t)
	case KindQuadraticBezier:
		return evalQuadratic(c.P0, c.P1, c.P2, t)
	}
	return Point2D{}
}

func (c CurveSegment) arcAngleAt(t float64) float64 {
	span := c.EndAngle - c.StartAngle
	if c.CCW {
		for span < 0 {
			span += 2 * math.Pi
		}
	} else {
		for span > 0 {
			span -= 2 * math.Pi
		}
	}
	return c.StartAngle + span*t
}

// Tangent returns the (unnormalized) derivative direction at t.
func (c CurveSegment) Tangent(t float64) Point2D {
	switch c.Kind {
	case KindLine:
		return c.B.Sub(c.A)
	case KindArc:
		angle := c.arcAngleAt(t)
		dir := 1.0
		if !c.CCW {
			dir = -1.0
		}
		return Point2D{-math.Sin(angle) * dir, math.Cos(angle) * dir}
	case KindCubicBezier:
		return derivCubic(c.P0, c.P1, c.P2, c.P3, t)
	case KindQuadraticBezier:
		return derivQuadratic(c.P0, c.P1, c.P2, t)
	}
	return Point2D{}
}

// Normal returns the left-hand perpendicular of the tangent at t (not
// normalized by the caller's responsibility beyond unit length here).
func (c CurveSegment) Normal(t float64) Point2D {
	tan := c.Tangent(t)
	length := math.Sqrt(tan.X*tan.X + tan.Y*tan.Y)
	if length < 1e-12 {
		return Point2D{}
	}
	return Point2D{-tan.Y / length, tan.X / length}
}

// Curvature returns the signed curvature at t (1/radius for an arc, 0 for a
// line, numerically estimated for Beziers).
func (c CurveSegment) Curvature(t float64) float64 {
	switch c.Kind {
	case KindLine:
		return 0
	case KindArc:
		if c.Radius < 1e-12 {
			return 0
		}
		if c.CCW {
			return 1 / c.Radius
		}
		return -1 / c.Radius
	default:
		return curvatureFiniteDiff(c, t)
	}
}

func curvatureFiniteDiff(c CurveSegment, t float64) float64 {
	const h = 1e-3
	t0, t1 := t-h, t+h
	if t0 < 0 {
		t0 = 0
	}
	if t1 > 1 {
		t1 = 1
	}
	d1 := c.Tangent(t)
	dt := t1 - t0
	if dt <= 0 {
		return 0
	}
	q0 := c.Tangent(t0)
	q1 := c.Tangent(t1)
	ddx := (q1.X - q0.X) / dt
	ddy := (q1.Y - q0.Y) / dt
	speed := math.Sqrt(d1.X*d1.X + d1.Y*d1.Y)
	if speed < 1e-9 {
		return 0
	}
	// cross of the first derivative with the finite-difference second
	// derivative, normalized by speed^3
	cross := d1.X*ddy - d1.Y*ddx
	return cross / (speed * speed * speed)
}

// ToPolyline flattens the segment to a Path2D within the given tolerance.
func (c CurveSegment) ToPolyline(tolerance float64) Path2D {
	switch c.Kind {
	case KindLine:
		return Path2D{c.A, c.B}
	case KindArc:
		return flattenArc(c, tolerance)
	case KindCubicBezier:
		pts := []Point2D{c.P0}
		flattenCubicAdaptive(c.P0, c.P1, c.P2, c.P3, tolerance*tolerance, &pts, 0)
		pts = append(pts, c.P3)
		return Path2D(pts)
	case KindQuadraticBezier:
		// Elevate to cubic and reuse the cubic flattener.
		p0, p1, p2, p3 := quadraticToCubic(c.P0, c.P1, c.P2)
		pts := []Point2D{p0}
		flattenCubicAdaptive(p0, p1, p2, p3, tolerance*tolerance, &pts, 0)
		pts = append(pts, p3)
		return Path2D(pts)
	}
	return nil
}

// Bounds returns a coarse bounding box for the segment, sampling the curve
// at a fixed resolution for Beziers/arcs (exact for lines).
func (c CurveSegment) Bounds() BoundingBox2D {
	b := NewBoundingBox2D()
	switch c.Kind {
	case KindLine:
		b.Update(c.A)
		b.Update(c.B)
	default:
		const samples = 32
		for i := 0; i <= samples; i++ {
			b.Update(c.Evaluate(float64(i) / samples))
		}
	}
	return b
}

func evalCubic(p0, p1, p2, p3 Point2D, t float64) Point2D {
	mt := 1 - t
	a := mt * mt * mt
	bcoef := 3 * mt * mt * t
	cc := 3 * mt * t * t
	d := t * t * t
	return Point2D{
		X: a*p0.X + bcoef*p1.X + cc*p2.X + d*p3.X,
		Y: a*p0.Y + bcoef*p1.Y + cc*p2.Y + d*p3.Y,
	}
}

func derivCubic(p0, p1, p2, p3 Point2D, t float64) Point2D {
	mt := 1 - t
	return Point2D{
		X: 3 * mt * mt * (p1.X - p0.X) + 6*mt*t*(p2.X-p1.X) + 3*t*t*(p3.X-p2.X),
		Y: 3 * mt * mt * (p1.Y - p0.Y) + 6*mt*t*(p2.Y-p1.Y) + 3*t*t*(p3.Y-p2.Y),
	}
}

func evalQuadratic(p0, p1, p2 Point2D, t float64) Point2D {
	mt := 1 - t
	return Point2D{
		X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
		Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
	}
}

func derivQuadratic(p0, p1, p2 Point2D, t float64) Point2D {
	mt := 1 - t
	return Point2D{
		X: 2*mt*(p1.X-p0.X) + 2*t*(p2.X-p1.X),
		Y: 2*mt*(p1.Y-p0.Y) + 2*t*(p2.Y-p1.Y),
	}
}

func quadraticToCubic(p0, p1, p2 Point2D) (Point2D, Point2D, Point2D, Point2D) {
	c1 := Point2D{p0.X + 2.0/3.0*(p1.X-p0.X), p0.Y + 2.0/3.0*(p1.Y-p0.Y)}
	c2 := Point2D{p2.X + 2.0/3.0*(p1.X-p2.X), p2.Y + 2.0/3.0*(p1.Y-p2.Y)}
	return p0, c1, c2, p2
}

func flattenArc(c CurveSegment, tolerance float64) Path2D {
	if tolerance <= 0 {
		tolerance = 0.01
	}
	span := c.EndAngle - c.StartAngle
	if c.CCW {
		for span < 0 {
			span += 2 * math.Pi
		}
	} else {
		for span > 0 {
			span -= 2 * math.Pi
		}
	}
	absSpan := math.Abs(span)
	// Choose a segment count so the chord sagitta stays under tolerance:
	// sagitta ~= r*(1-cos(theta/2)); solve for steps.
	r := c.Radius
	if r < 1e-9 {
		return Path2D{c.Evaluate(0), c.Evaluate(1)}
	}
	maxStepAngle := 2 * math.Acos(1-math.Min(tolerance/r, 1))
	if maxStepAngle <= 0 {
		maxStepAngle = absSpan
	}
	steps := int(math.Ceil(absSpan / maxStepAngle))
	if steps < 1 {
		steps = 1
	}
	pts := make(Path2D, 0, steps+1)
	for i := 0; i <= steps; i++ {
		pts = append(pts, c.Evaluate(float64(i)/float64(steps)))
	}
	return pts
}

// flattenCubicAdaptive implements the source discretizer's flatness metric
// and de Casteljau subdivision: it recurses until
// max(d1x^2,d2x^2) + max(d1y^2,d2y^2) <= tolSq, where d1/d2 are the two
// deviation vectors 3p1-2p0-p3 and 3p2-2p3-p0, appending interior points to
// pts (the caller supplies p0 and appends p3).
func flattenCubicAdaptive(p0, p1, p2, p3 Point2D, tolSq float64, pts *[]Point2D, depth int) {
	const maxDepth = 24
	if depth >= maxDepth || isFlatEnough(p0, p1, p2, p3, tolSq) {
		return
	}
	// de Casteljau split at t=0.5
	p01 := p0.Lerp(p1, 0.5)
	p12 := p1.Lerp(p2, 0.5)
	p23 := p2.Lerp(p3, 0.5)
	p012 := p01.Lerp(p12, 0.5)
	p123 := p12.Lerp(p23, 0.5)
	p0123 := p012.Lerp(p123, 0.5)

	flattenCubicAdaptive(p0, p01, p012, p0123, tolSq, pts, depth+1)
	*pts = append(*pts, p0123)
	flattenCubicAdaptive(p0123, p123, p23, p3, tolSq, pts, depth+1)
}

func isFlatEnough(p0, p1, p2, p3 Point2D, tolSq float64) bool {
	d1x := 3*p1.X - 2*p0.X - p3.X
	d1y := 3*p1.Y - 2*p0.Y - p3.Y
	d2x := 3*p2.X - 2*p3.X - p0.X
	d2y := 3*p2.Y - 2*p3.Y - p0.Y
	flatness := math.Max(d1x*d1x, d2x*d2x) + math.Max(d1y*d1y, d2y*d2y)
	return flatness <= tolSq
}

// PrecisionPath is an ordered list of curve segments describing a toolpath
// at full geometric fidelity (no premature polyline flattening).
type PrecisionPath struct {
	Segments []CurveSegment
}

// IsClosed reports whether the path's last endpoint meets its first
// endpoint within eps.
func (p PrecisionPath) IsClosed(eps float64) bool {
	if len(p.Segments) == 0 {
		return false
	}
	first := p.Segments[0].Evaluate(0)
	last := p.Segments[len(p.Segments)-1].Evaluate(1)
	return first.Equal(last, eps)
}

// ToPolyline flattens every segment and concatenates them, sharing
// endpoints between consecutive segments.
func (p PrecisionPath) ToPolyline(tolerance float64) Path2D {
	var out Path2D
	for i, seg := range p.Segments {
		poly := seg.ToPolyline(tolerance)
		if i > 0 && len(poly) > 0 {
			poly = poly[1:]
		}
		out = append(out, poly...)
	}
	return out
}

// Bounds returns the union of all segment bounding boxes.
func (p PrecisionPath) Bounds() BoundingBox2D {
	b := NewBoundingBox2D()
	for _, seg := range p.Segments {
		sb := seg.Bounds()
		if !sb.Empty() {
			b.Update(sb.Min)
			b.Update(sb.Max)
		}
	}
	return b
}

// Length sums the flattened length of every segment at a fixed working tolerance.
func (p PrecisionPath) Length() float64 {
	return p.ToPolyline(0.01).Length()
}

// PathFromPolyline builds a PrecisionPath of Line segments from a Path2D,
// the inverse of flattening — used when a path enters the pipeline as a
// plain polyline (SVG/DXF import) but later needs curve-aware offsetting.
func PathFromPolyline(p Path2D) PrecisionPath {
	if len(p) < 2 {
		return PrecisionPath{}
	}
	segs := make([]CurveSegment, 0, len(p)-1)
	for i := 1; i < len(p); i++ {
		segs = append(segs, NewLine(p[i-1], p[i]))
	}
	return PrecisionPath{Segments: segs}
}
