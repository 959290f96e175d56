package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/camcore/internal/cam"
	"github.com/piwi3910/camcore/internal/geometry"
)

func TestCheckFeatureSizeWarnsOnThinSlot(t *testing.T) {
	r := Report{Valid: true}
	thin := geometry.Polygon2D{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 0.5}, {X: 0, Y: 0.5},
	}
	r.CheckFeatureSize("slot", thin, 3.175, cam.ModePerimeter)
	assert.Len(t, r.Warnings, 1)
	assert.True(t, r.Valid)
}

func TestCheckFeatureSizeEscalatesInPocketMode(t *testing.T) {
	var r Report
	thin := geometry.Polygon2D{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 0.5}, {X: 0, Y: 0.5},
	}
	r.CheckFeatureSize("slot", thin, 3.175, cam.ModePocket)
	assert.False(t, r.Valid)
	assert.NotEmpty(t, r.Errors)
}

func TestCheckFeatureSizeAllowsClearableFeatureInPunchoutMode(t *testing.T) {
	r := Report{Valid: true}
	square := geometry.Polygon2D{
		{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 20}, {X: 0, Y: 20},
	}
	r.CheckFeatureSize("hole", square, 3.175, cam.ModePunchout)
	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
}

func TestCheckMaterialFitFailsWhenTooDeep(t *testing.T) {
	var r Report
	r.CheckMaterialFit(25, 18)
	assert.False(t, r.Valid)
	assert.Len(t, r.Errors, 1)
}

func TestCheckSelfIntersectionDetectsBowtie(t *testing.T) {
	var r Report
	bowtie := geometry.Path2D{
		{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 10},
	}
	r.CheckSelfIntersection("bowtie", bowtie)
	assert.Len(t, r.Warnings, 1)
}

func TestCheckSelfIntersectionSuppressesComplexPaths(t *testing.T) {
	var r Report
	path := make(geometry.Path2D, 150)
	for i := range path {
		path[i] = geometry.Point2D{X: float64(i), Y: 0}
	}
	r.CheckSelfIntersection("dense", path)
	assert.Len(t, r.Warnings, 1)
}

func TestCheckDustShoeCollisionsFlagsOverlap(t *testing.T) {
	poly := geometry.Polygon2D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}
	positions := PathCutPositions(poly)
	opt := DustShoeOptions{
		Enabled:   true,
		ShoeWidth: 40,
		Clearance: 5,
		ClampZones: []ClampZone{
			{Label: "clamp-a", X: -2, Y: -2, Width: 4, Height: 4},
		},
	}
	collisions := CheckDustShoeCollisions(map[string][]ToolPosition{"part-1": positions}, opt)
	assert.NotEmpty(t, collisions)
}

func TestCheckDustShoeCollisionsDisabledIsNoop(t *testing.T) {
	opt := DustShoeOptions{Enabled: false}
	collisions := CheckDustShoeCollisions(map[string][]ToolPosition{"p": {{X: 0, Y: 0}}}, opt)
	assert.Nil(t, collisions)
}
