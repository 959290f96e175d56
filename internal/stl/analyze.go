package stl

import (
	"fmt"
	"math"

	"github.com/piwi3910/camcore/internal/geometry"
)

// MachiningParams mirrors the original GeometryAnalyzer's feasibility
// inputs: tool geometry, minimum allowable draft angle, material thickness
// and the Z stepdown per machining pass.
type MachiningParams struct {
	ToolDiameter   float64
	ToolLength     float64
	MinDraftAngleD float64 // degrees; 0 disables the check
	MaterialDepth  float64
	Stepdown       float64
}

// ValidationResult aggregates every feasibility check performed on a mesh.
type ValidationResult struct {
	Valid               bool
	UndercutTriangles   int
	InaccessibleCount   int
	InvalidDraftCount   int
	MaxDepthRequired    float64
	DepthFits           bool
	InvalidStepCount    int
	MachiningLayers     []float64
	Warnings            []string
	Errors              []string
}

// undercutNormalZ is the original's "overhanging if normal.z < -0.1" test.
const undercutNormalZ = -0.1

// AnalyzeMesh runs the full feasibility suite against a loaded mesh.
func AnalyzeMesh(mesh Mesh, params MachiningParams) ValidationResult {
	result := ValidationResult{Valid: true}

	undercuts := countUndercuts(mesh.Triangles)
	result.UndercutTriangles = undercuts
	if undercuts > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d triangle(s) have undercut/overhanging geometry", undercuts))
	}

	if params.ToolDiameter > 0 {
		inaccessible := countInaccessible(mesh.Triangles, params.ToolDiameter, params.ToolLength)
		result.InaccessibleCount = inaccessible
		if inaccessible > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%d triangle(s) are not reachable by a %.3fmm tool", inaccessible, params.ToolDiameter))
			result.Valid = false
		}
	}

	if params.MinDraftAngleD > 0 {
		invalid := countInvalidDraft(mesh.Triangles, params.MinDraftAngleD)
		result.InvalidDraftCount = invalid
		if invalid > 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%d triangle(s) violate the minimum draft angle of %.1f deg", invalid, params.MinDraftAngleD))
		}
	}

	maxDepth := meshDepth(mesh.Triangles)
	result.MaxDepthRequired = maxDepth
	if params.MaterialDepth > 0 {
		result.DepthFits = maxDepth <= params.MaterialDepth+geometry.Epsilon
		if !result.DepthFits {
			result.Errors = append(result.Errors, fmt.Sprintf("mesh depth %.3fmm exceeds material depth %.3fmm", maxDepth, params.MaterialDepth))
			result.Valid = false
		}
	} else {
		result.DepthFits = true
	}

	if params.Stepdown > 0 {
		layers := MachiningLayers(mesh.Triangles, params.Stepdown)
		result.MachiningLayers = layers
		invalidSteps := countInvalidSteps(layers, params.Stepdown)
		result.InvalidStepCount = invalidSteps
		if invalidSteps > 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%d machining layer(s) exceed the configured stepdown", invalidSteps))
		}
	}

	return result
}

func countUndercuts(tris []geometry.Triangle) int {
	n := 0
	for _, t := range tris {
		if t.Normal.Z < undercutNormalZ {
			n++
		}
	}
	return n
}

// countInaccessible tests each triangle against the vertical tool cylinder
// (radius toolDiameter/2, extending toolLength above the cutting point) that
// the original GeometryAnalyzer sweeps down from +Z: a triangle is
// inaccessible if any other triangle has a vertex inside that cylinder,
// i.e. above one of the target's vertices and within the tool's radius,
// blocking the vertical plunge before it reaches the surface. No 5-axis
// tilting is modeled — access is straight down only.
func countInaccessible(tris []geometry.Triangle, toolDiameter, toolLength float64) int {
	radius := toolDiameter / 2
	n := 0
	for _, t := range tris {
		if triangleBlocked(t, tris, radius, toolLength) {
			n++
		}
	}
	return n
}

// triangleBlocked reports whether any vertex of t has an obstruction above
// it within the tool's swept cylinder.
func triangleBlocked(t geometry.Triangle, tris []geometry.Triangle, radius, toolLength float64) bool {
	for _, v := range t.Vertices() {
		if vertexBlocked(v, t, tris, radius, toolLength) {
			return true
		}
	}
	return false
}

// vertexBlocked reports whether some other triangle's vertex sits directly
// above v, within the tool radius horizontally and within toolLength
// vertically (toolLength <= 0 means unbounded reach, so any height above
// blocks).
func vertexBlocked(v geometry.Point3D, self geometry.Triangle, tris []geometry.Triangle, radius, toolLength float64) bool {
	for _, other := range tris {
		if other == self {
			continue
		}
		for _, w := range other.Vertices() {
			dz := w.Z - v.Z
			if dz <= geometry.Epsilon {
				continue
			}
			if toolLength > 0 && dz > toolLength {
				continue
			}
			horiz := math.Hypot(w.X-v.X, w.Y-v.Y)
			if horiz < radius && horiz > geometry.Epsilon {
				return true
			}
		}
	}
	return false
}

// calculateDraftAngle returns the angle, in degrees, between the triangle's
// normal and the vertical (+Z) axis — 0 deg is a horizontal face, 90 deg is
// a vertical wall.
func calculateDraftAngle(t geometry.Triangle) float64 {
	horiz := math.Hypot(t.Normal.X, t.Normal.Y)
	return math.Atan2(horiz, math.Abs(t.Normal.Z)) * 180 / math.Pi
}

func countInvalidDraft(tris []geometry.Triangle, minDraftDeg float64) int {
	n := 0
	for _, t := range tris {
		// Near-horizontal faces (floors/ceilings) are exempt from draft checks.
		if math.Abs(t.Normal.Z) > 0.99 {
			continue
		}
		angle := 90 - calculateDraftAngle(t)
		if angle < minDraftDeg {
			n++
		}
	}
	return n
}

func meshDepth(tris []geometry.Triangle) float64 {
	if len(tris) == 0 {
		return 0
	}
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, t := range tris {
		for _, v := range t.Vertices() {
			if v.Z < minZ {
				minZ = v.Z
			}
			if v.Z > maxZ {
				maxZ = v.Z
			}
		}
	}
	return maxZ - minZ
}

// MachiningLayers buckets the mesh's Z range into stepdown-sized passes,
// from the top surface down to the lowest vertex.
func MachiningLayers(tris []geometry.Triangle, stepdown float64) []float64 {
	if stepdown <= 0 || len(tris) == 0 {
		return nil
	}
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, t := range tris {
		for _, v := range t.Vertices() {
			if v.Z < minZ {
				minZ = v.Z
			}
			if v.Z > maxZ {
				maxZ = v.Z
			}
		}
	}
	var layers []float64
	for z := maxZ - stepdown; z > minZ; z -= stepdown {
		layers = append(layers, z)
	}
	layers = append(layers, minZ)
	return layers
}

func countInvalidSteps(layers []float64, stepdown float64) int {
	n := 0
	for i := 1; i < len(layers); i++ {
		if layers[i-1]-layers[i] > stepdown+geometry.Epsilon {
			n++
		}
	}
	return n
}
