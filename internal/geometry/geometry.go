// Package geometry provides the 2D/3D primitives shared by every stage of
// the CAM pipeline: points, polylines, polygons, bounding boxes and the
// curve-segment model used for high precision tool offsetting.
package geometry

import "math"

// Epsilon is the default tolerance for point equality comparisons.
const Epsilon = 1e-6

// Point2D is a coordinate in the design/machine XY plane, in millimeters.
type Point2D struct {
	X, Y float64
}

// Equal reports whether p and o are within eps of each other.
func (p Point2D) Equal(o Point2D, eps float64) bool {
	return math.Abs(p.X-o.X) <= eps && math.Abs(p.Y-o.Y) <= eps
}

// Sub returns p-o.
func (p Point2D) Sub(o Point2D) Point2D { return Point2D{p.X - o.X, p.Y - o.Y} }

// Add returns p+o.
func (p Point2D) Add(o Point2D) Point2D { return Point2D{p.X + o.X, p.Y + o.Y} }

// Scale returns p scaled by s.
func (p Point2D) Scale(s float64) Point2D { return Point2D{p.X * s, p.Y * s} }

// Dist returns the Euclidean distance between p and o.
func (p Point2D) Dist(o Point2D) float64 {
	dx, dy := p.X-o.X, p.Y-o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Lerp returns the point t of the way from p to o, t in [0,1].
func (p Point2D) Lerp(o Point2D, t float64) Point2D {
	return Point2D{p.X + (o.X-p.X)*t, p.Y + (o.Y-p.Y)*t}
}

// Point3D adds a Z axis and the vector operations needed by the mesh analyzer.
type Point3D struct {
	X, Y, Z float64
}

func (p Point3D) Sub(o Point3D) Point3D { return Point3D{p.X - o.X, p.Y - o.Y, p.Z - o.Z} }
func (p Point3D) Add(o Point3D) Point3D { return Point3D{p.X + o.X, p.Y + o.Y, p.Z + o.Z} }

func (p Point3D) Dot(o Point3D) float64 { return p.X*o.X + p.Y*o.Y + p.Z*o.Z }

func (p Point3D) Cross(o Point3D) Point3D {
	return Point3D{
		X: p.Y*o.Z - p.Z*o.Y,
		Y: p.Z*o.X - p.X*o.Z,
		Z: p.X*o.Y - p.Y*o.X,
	}
}

func (p Point3D) Magnitude() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Normalize returns a unit-length copy of p. The zero vector normalizes to itself.
func (p Point3D) Normalize() Point3D {
	m := p.Magnitude()
	if m < 1e-12 {
		return Point3D{}
	}
	return Point3D{p.X / m, p.Y / m, p.Z / m}
}

// BoundingBox2D tracks the min/max extent of a set of 2D points.
type BoundingBox2D struct {
	Min, Max Point2D
	empty    bool
}

// NewBoundingBox2D returns an empty bounding box ready for Update calls.
func NewBoundingBox2D() BoundingBox2D {
	return BoundingBox2D{empty: true}
}

// Update expands the box to include p.
func (b *BoundingBox2D) Update(p Point2D) {
	if b.empty {
		b.Min, b.Max = p, p
		b.empty = false
		return
	}
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
}

// Empty reports whether no point has been added yet.
func (b BoundingBox2D) Empty() bool { return b.empty }

// Size returns the width/height of the box as a point.
func (b BoundingBox2D) Size() Point2D {
	return Point2D{b.Max.X - b.Min.X, b.Max.Y - b.Min.Y}
}

// Center returns the midpoint of the box.
func (b BoundingBox2D) Center() Point2D {
	return Point2D{(b.Min.X + b.Max.X) / 2, (b.Min.Y + b.Max.Y) / 2}
}

// BoundingBox3D is the 3D analog of BoundingBox2D, used by the mesh analyzer.
type BoundingBox3D struct {
	Min, Max Point3D
	empty    bool
}

func NewBoundingBox3D() BoundingBox3D { return BoundingBox3D{empty: true} }

func (b *BoundingBox3D) Update(p Point3D) {
	if b.empty {
		b.Min, b.Max = p, p
		b.empty = false
		return
	}
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}

func (b BoundingBox3D) Empty() bool { return b.empty }

func (b BoundingBox3D) Size() Point3D {
	return Point3D{b.Max.X - b.Min.X, b.Max.Y - b.Min.Y, b.Max.Z - b.Min.Z}
}

func (b BoundingBox3D) Center() Point3D {
	return Point3D{(b.Min.X + b.Max.X) / 2, (b.Min.Y + b.Max.Y) / 2, (b.Min.Z + b.Max.Z) / 2}
}

// Triangle is a single mesh facet: three vertices plus the normal computed
// from them. NewTriangle reports degenerate input (|cross(e1,e2)| <= 1e-9)
// and leaves Normal zero for it; the STL loader drops such triangles.
type Triangle struct {
	A, B, C Point3D
	Normal  Point3D
}

// NewTriangle computes the unit normal from the vertex winding and returns
// the triangle together with whether it is non-degenerate.
func NewTriangle(a, b, c Point3D) (Triangle, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	cross := e1.Cross(e2)
	if cross.Magnitude() <= 1e-9 {
		return Triangle{A: a, B: b, C: c}, false
	}
	return Triangle{A: a, B: b, C: c, Normal: cross.Normalize()}, true
}

// Centroid returns the triangle's center point.
func (t Triangle) Centroid() Point3D {
	return Point3D{
		X: (t.A.X + t.B.X + t.C.X) / 3,
		Y: (t.A.Y + t.B.Y + t.C.Y) / 3,
		Z: (t.A.Z + t.B.Z + t.C.Z) / 3,
	}
}

// Vertices returns the three corners as a slice for iteration.
func (t Triangle) Vertices() [3]Point3D { return [3]Point3D{t.A, t.B, t.C} }

// Path2D is an ordered polyline. It is not implicitly closed; callers use
// IsClosed to test whether the last point coincides with the first.
type Path2D []Point2D

// Length returns the sum of segment lengths.
func (p Path2D) Length() float64 {
	if len(p) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(p); i++ {
		total += p[i].Dist(p[i-1])
	}
	return total
}

// IsClosed reports whether the first and last points coincide within eps.
func (p Path2D) IsClosed(eps float64) bool {
	if len(p) < 2 {
		return false
	}
	return p[0].Equal(p[len(p)-1], eps)
}

// Bounds returns the bounding box of the path's points.
func (p Path2D) Bounds() BoundingBox2D {
	b := NewBoundingBox2D()
	for _, pt := range p {
		b.Update(pt)
	}
	return b
}

// Simplify runs Douglas-Peucker simplification with the given perpendicular
// distance tolerance. tolerance <= 0 returns the path unchanged.
func (p Path2D) Simplify(tolerance float64) Path2D {
	if tolerance <= 0 || len(p) < 3 {
		return append(Path2D(nil), p...)
	}
	keep := make([]bool, len(p))
	keep[0] = true
	keep[len(p)-1] = true
	douglasPeucker(p, 0, len(p)-1, tolerance, keep)

	out := make(Path2D, 0, len(p))
	for i, k := range keep {
		if k {
			out = append(out, p[i])
		}
	}
	return out
}

func douglasPeucker(p Path2D, start, end int, tolerance float64, keep []bool) {
	if end <= start+1 {
		return
	}
	maxDist := -1.0
	maxIdx := -1
	for i := start + 1; i < end; i++ {
		d := perpendicularDistance(p[i], p[start], p[end])
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxDist > tolerance {
		keep[maxIdx] = true
		douglasPeucker(p, start, maxIdx, tolerance, keep)
		douglasPeucker(p, maxIdx, end, tolerance, keep)
	}
}

// perpendicularDistance returns the distance from p to the infinite line
// through a and b (or to the point a if a==b).
func perpendicularDistance(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	segLen := math.Sqrt(dx*dx + dy*dy)
	if segLen < 1e-12 {
		return p.Dist(a)
	}
	// |cross(b-a, p-a)| / |b-a|
	return math.Abs(dx*(a.Y-p.Y)-dy*(a.X-p.X)) / segLen
}

// Polygon2D is a Path2D understood to be implicitly closed: the edge from
// the last point back to the first is part of the boundary.
type Polygon2D Path2D

// Area returns the unsigned polygon area via the shoelace formula.
func (p Polygon2D) Area() float64 {
	return math.Abs(p.signedArea())
}

func (p Polygon2D) signedArea() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// IsClockwise reports polygon winding under the screen convention (Y grows
// downward): a positive shoelace sum, counter-clockwise in Y-up axes,
// appears clockwise on screen.
func (p Polygon2D) IsClockwise() bool {
	return p.signedArea() > 0
}

// Reverse returns a copy of p with vertex order reversed.
func (p Polygon2D) Reverse() Polygon2D {
	out := make(Polygon2D, len(p))
	for i, pt := range p {
		out[len(p)-1-i] = pt
	}
	return out
}

// ContainsPoint performs a ray-crossing point-in-polygon test.
func (p Polygon2D) ContainsPoint(pt Point2D) bool {
	n := len(p)
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := p[i], p[j]
		if ((pi.Y > pt.Y) != (pj.Y > pt.Y)) &&
			(pt.X < (pj.X-pi.X)*(pt.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}
	return inside
}

// Bounds returns the bounding box of the polygon's vertices.
func (p Polygon2D) Bounds() BoundingBox2D {
	return Path2D(p).Bounds()
}

// Translate returns a copy of p shifted by (dx, dy).
func (p Polygon2D) Translate(dx, dy float64) Polygon2D {
	out := make(Polygon2D, len(p))
	for i, pt := range p {
		out[i] = Point2D{pt.X + dx, pt.Y + dy}
	}
	return out
}
