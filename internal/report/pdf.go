// Package report generates the job's paper trail: a PDF plan view of every
// loop with a settings/statistics table, and a sheet of QR-coded labels so a
// cut loop can be identified on the shop floor by scanning it.
//
// Adapted from the teacher's internal/export package (pdf.go/labels.go),
// which drew placed-part rectangles on a nested stock sheet; here there is
// no sheet nesting, so each page instead draws one cleared loop's actual
// polygon outline at a fit-to-page scale, but the layout machinery
// (fit-to-page scaling, dimension annotations, alternating table rows,
// QR-coded metadata labels) carries over unchanged in spirit.
package report

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/piwi3910/camcore/internal/config"
	"github.com/piwi3910/camcore/internal/gcode"
	"github.com/piwi3910/camcore/internal/geometry"
	"github.com/piwi3910/camcore/internal/tool"
)

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 8.0
	drawAreaH    = 110.0
)

// loopColors mirrors the pass/hole color coding used to tell solid cuts
// from hole clearing passes apart on the plan view.
var loopColors = []struct{ R, G, B int }{
	{R: 33, G: 150, B: 243},  // solid loop: blue
	{R: 244, G: 67, B: 54},   // hole loop: red
}

// Job bundles everything needed to render a job report: the ordered loops
// that make up the cut plan, the tool used, and the machine/material and
// g-code settings that were in effect when they were generated.
type Job struct {
	Name    string
	RunID   string // uniquely identifies this run; generated by GeneratePDF if empty
	Loops   []gcode.Loop
	Tool    tool.Tool
	Cutout  config.CutoutParams
	Machine config.CNConfig
	GCode   config.GCodeOptions
}

// ensureRunID assigns a random RunID if job doesn't already carry one, so
// re-running the same job twice produces distinguishable reports/labels.
func ensureRunID(job *Job) {
	if job.RunID == "" {
		job.RunID = uuid.New().String()
	}
}

// GeneratePDF writes a plan-view report for job to path: one page per loop
// showing its outline at a fit-to-page scale, followed by a summary page
// with tool and cut settings.
func GeneratePDF(path string, job Job) error {
	if len(job.Loops) == 0 {
		return fmt.Errorf("report: no loops to document")
	}
	ensureRunID(&job)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, loop := range job.Loops {
		pdf.AddPage()
		renderLoopPage(pdf, job, loop, i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, job)

	return pdf.OutputFileAndClose(path)
}

// renderLoopPage draws a single loop's outline on the current page.
func renderLoopPage(pdf *fpdf.Fpdf, job Job, loop gcode.Loop, pageNum int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Loop %d: %s", pageNum, loop.Label)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	bb := loop.Polygon.Bounds()
	size := bb.Size()

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	kind := "solid"
	if loop.IsHole {
		kind = "hole"
	}
	stats := fmt.Sprintf("%.1f x %.1f mm | %s | %d tabs | tool %s (%.3f mm)",
		size.X, size.Y, kind, loop.TabCount, job.Tool.Name, job.Tool.DiameterMM)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := drawAreaH

	scaleX := drawWidth / math.Max(size.X, 1e-6)
	scaleY := drawHeight / math.Max(size.Y, 1e-6)
	scale := math.Min(scaleX, scaleY)

	canvasW := size.X * scale
	canvasH := size.Y * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	col := loopColors[0]
	if loop.IsHole {
		col = loopColors[1]
	}
	pdf.SetDrawColor(col.R, col.G, col.B)
	pdf.SetLineWidth(0.5)

	n := len(loop.Polygon)
	for i := 0; i < n; i++ {
		a := loop.Polygon[i]
		b := loop.Polygon[(i+1)%n]
		x1 := offsetX + (a.X-bb.Min.X)*scale
		y1 := offsetY + canvasH - (a.Y-bb.Min.Y)*scale
		x2 := offsetX + (b.X-bb.Min.X)*scale
		y2 := offsetY + canvasH - (b.Y-bb.Min.Y)*scale
		pdf.Line(x1, y1, x2, y2)
	}

	drawDimensionAnnotations(pdf, size, scale, offsetX, offsetY, canvasW, canvasH)
}

// drawDimensionAnnotations adds width/height dimension labels outside the
// plan-view rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, size geometry.Point2D, scale, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.1f mm", size.X)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.1f mm", size.Y)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// renderSummaryPage draws the final page with job, tool, and cut settings.
func renderSummaryPage(pdf *fpdf.Fpdf, job Job) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Job Summary: "+job.Name, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, marginTop+9)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Run "+job.RunID, "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+14, pageWidth-marginRight, marginTop+14)

	y := marginTop + 20

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Tool", "", 0, "L", false, 0, "")
	y += 9

	toolItems := []struct{ label, value string }{
		{"Name", job.Tool.Name},
		{"Diameter", fmt.Sprintf("%.3f mm", job.Tool.DiameterMM)},
		{"Feed Rate", fmt.Sprintf("%.0f mm/min", job.Tool.FeedRateMMMin)},
		{"Plunge Rate", fmt.Sprintf("%.0f mm/min", job.Tool.PlungeRateMMMin)},
		{"Spindle Speed", fmt.Sprintf("%.0f rpm", job.Tool.SpindleRPM)},
	}
	y = writeKVTable(pdf, toolItems, y)

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Cut Settings", "", 0, "L", false, 0, "")
	y += 9

	cutItems := []struct{ label, value string }{
		{"Total Depth", fmt.Sprintf("%.2f mm", job.Cutout.TotalDepthMM)},
		{"Stepdown", fmt.Sprintf("%.2f mm", job.Cutout.StepdownMM)},
		{"Passes", fmt.Sprintf("%d", len(job.Cutout.Passes()))},
		{"Safe Height", fmt.Sprintf("%.1f mm", job.GCode.SafeHeightMM)},
		{"Units", job.GCode.Units},
	}
	y = writeKVTable(pdf, cutItems, y)

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Loops", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{15, 80, 35, 45}
	headers := []string{"#", "Label", "Kind", "Tabs"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, h := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, h, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, loop := range job.Loops {
		xPos = marginLeft
		kind := "solid"
		if loop.IsHole {
			kind = "hole"
		}
		row := []string{fmt.Sprintf("%d", i+1), loop.Label, kind, fmt.Sprintf("%d", loop.TabCount)}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by camcore", "", 0, "C", false, 0, "")
}

func writeKVTable(pdf *fpdf.Fpdf, items []struct{ label, value string }, y float64) float64 {
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}
	return y
}
