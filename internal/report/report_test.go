package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/camcore/internal/config"
	"github.com/piwi3910/camcore/internal/gcode"
	"github.com/piwi3910/camcore/internal/geometry"
	"github.com/piwi3910/camcore/internal/tool"
)

func testJob() Job {
	return Job{
		Name: "test-job",
		Loops: []gcode.Loop{
			{
				Label:   "outline",
				Polygon: geometry.Polygon2D{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 0, Y: 10}},
			},
			{
				Label:   "pocket hole",
				IsHole:  true,
				Polygon: geometry.Polygon2D{{X: 5, Y: 3}, {X: 10, Y: 3}, {X: 10, Y: 7}, {X: 5, Y: 7}},
			},
		},
		Tool: tool.Tool{Name: "1/8in upcut", DiameterMM: 3.175, FeedRateMMMin: 1200, PlungeRateMMMin: 400, SpindleRPM: 18000},
		Cutout: config.CutoutParams{TotalDepthMM: 9, StepdownMM: 3},
		Machine: config.DefaultCNConfig(),
		GCode:   config.DefaultGCodeOptions(),
	}
}

func TestGeneratePDFWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	if err := GeneratePDF(path, testJob()); err != nil {
		t.Fatalf("GeneratePDF: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected non-empty PDF output")
	}
}

func TestGeneratePDFRejectsEmptyJob(t *testing.T) {
	if err := GeneratePDF(filepath.Join(t.TempDir(), "empty.pdf"), Job{}); err == nil {
		t.Fatalf("expected an error for a job with no loops")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(testJob())
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0].LoopLabel != "outline" || labels[0].WidthMM != 20 || labels[0].HeightMM != 10 {
		t.Fatalf("unexpected first label: %+v", labels[0])
	}
	if !labels[1].IsHole {
		t.Fatalf("expected second label to be flagged as a hole")
	}
	if labels[0].PassCount != 3 {
		t.Fatalf("expected 3 passes for a 9mm cut at 3mm stepdown, got %d", labels[0].PassCount)
	}
	if labels[0].RunID == "" || labels[0].RunID != labels[1].RunID {
		t.Fatalf("expected a shared, non-empty run id across labels in the same job")
	}
}

func TestGenerateLabelsWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.pdf")
	if err := GenerateLabels(path, testJob()); err != nil {
		t.Fatalf("GenerateLabels: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected non-empty PDF output")
	}
}

func TestGenerateLabelsRejectsEmptyJob(t *testing.T) {
	if err := GenerateLabels(filepath.Join(t.TempDir(), "empty.pdf"), Job{}); err == nil {
		t.Fatalf("expected an error for a job with no loops")
	}
}
