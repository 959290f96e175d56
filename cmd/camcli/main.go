// camcli turns an SVG/DXF design into G-code: discretize, fit to material,
// union/hierarchy, tool-radius offset, area clearing, toolpath ordering,
// validation, and emission. An STL input is loaded and then rejected with a
// load error; camcli neither analyses nor slices meshes.
//
// Build:
//
//	go build -o camcli ./cmd/camcli
//
// Usage:
//
//	camcli -in design.svg -out job.gcode -tool-dia 3.175 -depth 6 -stepdown 2
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/piwi3910/camcore/internal/boolean"
	"github.com/piwi3910/camcore/internal/cam"
	"github.com/piwi3910/camcore/internal/config"
	"github.com/piwi3910/camcore/internal/dxfimport"
	"github.com/piwi3910/camcore/internal/fit"
	"github.com/piwi3910/camcore/internal/gcode"
	"github.com/piwi3910/camcore/internal/geometry"
	"github.com/piwi3910/camcore/internal/hierarchy"
	"github.com/piwi3910/camcore/internal/report"
	"github.com/piwi3910/camcore/internal/stl"
	"github.com/piwi3910/camcore/internal/svgimport"
	"github.com/piwi3910/camcore/internal/tool"
	"github.com/piwi3910/camcore/internal/toolpath"
	"github.com/piwi3910/camcore/internal/validate"
)

// Exit codes per the CLI surface contract: 0 success, 1 argument error,
// 2 load error, 3 validation failure.
const (
	exitOK        = 0
	exitArgError  = 1
	exitLoadError = 2
	exitValidFail = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("camcli", flag.ContinueOnError)

	in := fs.String("in", "", "input design file (.svg, .dxf, or .stl)")
	out := fs.String("out", "", "output G-code path")
	reportPath := fs.String("report", "", "optional PDF job report output path")
	labelsPath := fs.String("labels", "", "optional PDF QR-label sheet output path")

	mode := fs.String("mode", "pocket", "cut mode: perimeter, pocket, punchout, engrave")
	strategy := fs.String("strategy", "spiral-inward", "area strategy: spiral-inward, spiral-outward, contour, raster, parallel")
	toolDia := fs.Float64("tool-dia", 3.175, "tool diameter in mm")
	toolName := fs.String("tool-name", "endmill", "tool name recorded in the report/labels")
	stepoverFrac := fs.Float64("stepover", 0.4, "stepover as a fraction of tool diameter")
	depth := fs.Float64("depth", 6.0, "total cut depth in mm")
	stepdown := fs.Float64("stepdown", 2.0, "max stepdown per pass in mm")
	materialW := fs.Float64("material-width", 300, "material width in mm")
	materialH := fs.Float64("material-height", 200, "material height in mm")
	flipY := fs.Bool("flip-y", true, "flip Y axis to match machine coordinate convention")

	jobName := fs.String("job", "job", "job name recorded in G-code header and reports")

	if err := fs.Parse(args); err != nil {
		return exitArgError
	}
	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "camcli: -in and -out are required")
		return exitArgError
	}

	camMode, ok := parseMode(*mode)
	if !ok {
		fmt.Fprintf(os.Stderr, "camcli: unknown -mode %q\n", *mode)
		return exitArgError
	}
	camStrategy, ok := parseStrategy(*strategy)
	if !ok {
		fmt.Fprintf(os.Stderr, "camcli: unknown -strategy %q\n", *strategy)
		return exitArgError
	}

	polygons, err := loadDesign(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "camcli: %v\n", err)
		return exitLoadError
	}
	if len(polygons) == 0 {
		fmt.Fprintln(os.Stderr, "camcli: input contains no closed shapes")
		return exitLoadError
	}

	paths := make([]geometry.Path2D, len(polygons))
	for i, p := range polygons {
		paths[i] = geometry.Path2D(p)
	}
	fitInfo, err := fit.Fit(paths, fit.Options{
		MaterialWidth:  *materialW,
		MaterialHeight: *materialH,
		PreserveAspect: true,
		FlipY:          *flipY,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "camcli: fit transform: %v\n", err)
		return exitLoadError
	}
	fmt.Fprintln(os.Stderr, fitInfo.Format())

	union, err := boolean.Union(polygons)
	if err != nil {
		fmt.Fprintf(os.Stderr, "camcli: union: %v\n", err)
		return exitLoadError
	}

	tree, err := hierarchy.Build(union)
	if err != nil {
		fmt.Fprintf(os.Stderr, "camcli: hierarchy: %v\n", err)
		return exitLoadError
	}

	vr := &validate.Report{Valid: true}
	toolRadius := *toolDia / 2

	camOpt := cam.DefaultOptions(toolRadius)
	camOpt.Mode = camMode
	camOpt.Strategy = camStrategy
	camOpt.StepoverFraction = *stepoverFrac

	var items []toolpath.Item
	var loops []gcode.Loop
	for _, id := range tree.Roots {
		clearLoops, warnings, err := cam.ClearNode(tree, id, camOpt)
		if err != nil {
			vr.Errors = append(vr.Errors, err.Error())
			continue
		}
		for _, w := range warnings {
			vr.Warnings = append(vr.Warnings, w.Message)
		}
		for i, loop := range clearLoops {
			label := fmt.Sprintf("loop-%d-pass-%d", id, i+1)
			vr.CheckFeatureSize(label, loop.Polygon, *toolDia, camOpt.Mode)
			items = append(items, toolpath.Item{
				Path: toolpath.Path{Points: toolpath.RemoveRedundant(loop.Polygon, 0.01), Closed: true},
				Tag:  label,
			})
			loops = append(loops, gcode.Loop{Label: label, Polygon: loop.Polygon, IsHole: loop.IsHole})
		}
	}

	vr.CheckMaterialFit(*depth, *materialH)

	if len(loops) == 0 {
		fmt.Fprintln(os.Stderr, "camcli: no toolpaths were generated")
		return exitValidFail
	}

	ordered := toolpath.Order(items, 0, 0)
	orderedLoops := make([]gcode.Loop, 0, len(ordered))
	for _, item := range ordered {
		for _, l := range loops {
			if l.Label == item.Tag {
				orderedLoops = append(orderedLoops, l)
				break
			}
		}
	}

	cutout := config.CutoutParams{TotalDepthMM: *depth, StepdownMM: *stepdown}
	gen := gcode.New(config.DefaultGCodeOptions())
	program := gcode.Generate(gen, *jobName, orderedLoops, cutout)

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil && filepath.Dir(*out) != "." {
		fmt.Fprintf(os.Stderr, "camcli: %v\n", err)
		return exitLoadError
	}
	if err := os.WriteFile(*out, []byte(program), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "camcli: writing g-code: %v\n", err)
		return exitLoadError
	}

	job := report2Job(*jobName, orderedLoops, *toolName, *toolDia, cutout)
	if *reportPath != "" {
		if err := writeReport(*reportPath, job); err != nil {
			fmt.Fprintf(os.Stderr, "camcli: report: %v\n", err)
		}
	}
	if *labelsPath != "" {
		if err := report.GenerateLabels(*labelsPath, job); err != nil {
			fmt.Fprintf(os.Stderr, "camcli: labels: %v\n", err)
		}
	}

	if len(vr.Errors) > 0 {
		for _, e := range vr.Errors {
			fmt.Fprintln(os.Stderr, "error:", e)
		}
		return exitValidFail
	}
	for _, w := range vr.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	return exitOK
}

func parseMode(s string) (cam.Mode, bool) {
	switch strings.ToLower(s) {
	case "perimeter":
		return cam.ModePerimeter, true
	case "punchout":
		return cam.ModePunchout, true
	case "pocket":
		return cam.ModePocket, true
	case "engrave":
		return cam.ModeEngrave, true
	default:
		return 0, false
	}
}

func parseStrategy(s string) (cam.Strategy, bool) {
	switch strings.ToLower(s) {
	case "spiral-inward":
		return cam.StrategySpiralInward, true
	case "spiral-outward":
		return cam.StrategySpiralOutward, true
	case "contour":
		return cam.StrategyContour, true
	case "raster":
		return cam.StrategyRaster, true
	case "parallel":
		return cam.StrategyParallel, true
	default:
		return 0, false
	}
}

// loadDesign dispatches on the input file's extension.
func loadDesign(path string) ([]geometry.Polygon2D, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		shapes, err := svgimport.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading svg: %w", err)
		}
		paths := svgimport.Discretize(shapes, svgimport.DefaultDiscretizerConfig())
		polys := make([]geometry.Polygon2D, 0, len(paths))
		for _, p := range paths {
			if p.IsClosed(geometry.Epsilon) && len(p) >= 3 {
				polys = append(polys, geometry.Polygon2D(p))
			}
		}
		return polys, nil

	case ".dxf":
		result := dxfimport.Load(path)
		for _, e := range result.Errors {
			return nil, fmt.Errorf("%s", e)
		}
		return result.Polygons, nil

	case ".stl":
		mesh, err := stl.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading stl: %w", err)
		}
		if mesh.Dropped > 0 {
			fmt.Fprintf(os.Stderr, "camcli: dropped %d degenerate triangles\n", mesh.Dropped)
		}
		return nil, fmt.Errorf("stl input is not supported: camcli loads the mesh but does not analyse it or slice a 2D cut plan from it; see stl.AnalyzeMesh")

	default:
		return nil, fmt.Errorf("unsupported input extension %q", filepath.Ext(path))
	}
}

func report2Job(jobName string, loops []gcode.Loop, toolName string, toolDia float64, cutout config.CutoutParams) report.Job {
	return report.Job{
		Name:  jobName,
		RunID: uuid.New().String(),
		Loops: loops,
		Tool: tool.Tool{
			Name:       toolName,
			DiameterMM: toolDia,
		},
		Cutout:  cutout,
		Machine: config.DefaultCNConfig(),
		GCode:   config.DefaultGCodeOptions(),
	}
}

func writeReport(path string, job report.Job) error {
	return report.GeneratePDF(path, job)
}
