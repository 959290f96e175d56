package gcode

import (
	"strings"
	"testing"

	"github.com/piwi3910/camcore/internal/config"
	"github.com/piwi3910/camcore/internal/geometry"
)

func squareLoop() Loop {
	return Loop{
		Label: "test square",
		Polygon: geometry.Polygon2D{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
		},
	}
}

func TestGenerateProducesHeaderAndFooter(t *testing.T) {
	g := New(config.DefaultGCodeOptions())
	out := Generate(g, "job", []Loop{squareLoop()}, config.CutoutParams{TotalDepthMM: 5, StepdownMM: 5})
	if !strings.Contains(out, "G21") {
		t.Fatalf("expected metric units directive, got:\n%s", out)
	}
	if !strings.Contains(out, "END") {
		t.Fatalf("expected program-end, got:\n%s", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "END") {
		t.Fatalf("expected program to end with END")
	}
}

func TestGenerateDeterministicExceptTimestamp(t *testing.T) {
	g := New(config.DefaultGCodeOptions())
	params := config.CutoutParams{TotalDepthMM: 5, StepdownMM: 5}
	out1 := Generate(g, "job", []Loop{squareLoop()}, params)
	out2 := Generate(g, "job", []Loop{squareLoop()}, params)
	stripTimestamp := func(s string) string {
		lines := strings.Split(s, "\n")
		var out []string
		for _, l := range lines {
			if strings.HasPrefix(l, "(Generated:") {
				continue
			}
			out = append(out, l)
		}
		return strings.Join(out, "\n")
	}
	if stripTimestamp(out1) != stripTimestamp(out2) {
		t.Fatalf("expected identical output (modulo timestamp) for identical input")
	}
}

func TestGenerateNoMidAirCuts(t *testing.T) {
	g := New(config.DefaultGCodeOptions())
	out := Generate(g, "job", []Loop{squareLoop()}, config.CutoutParams{TotalDepthMM: 6, StepdownMM: 3})
	moves := ParseGCode(out)

	retracted := true
	for _, m := range moves {
		if m.Type == MoveFeed && retracted {
			t.Fatalf("found a cutting feed move while retracted: %+v", m)
		}
		if m.Type == MovePlunge {
			retracted = false
		}
		if m.Type == MoveRetract {
			retracted = true
		}
	}
}

func TestWriteLoopMultiplePasses(t *testing.T) {
	g := New(config.DefaultGCodeOptions())
	out := Generate(g, "job", []Loop{squareLoop()}, config.CutoutParams{TotalDepthMM: 9, StepdownMM: 3})
	count := strings.Count(out, "G1 Z")
	if count < 3 {
		t.Fatalf("expected at least 3 plunge passes for a 9mm cut at 3mm stepdown, got %d", count)
	}
}
