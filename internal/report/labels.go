package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each loop label's QR code, so a
// loop can be re-identified by scanning its label on the shop floor.
type LabelInfo struct {
	JobName   string  `json:"job"`
	RunID     string  `json:"run"`
	LoopLabel string  `json:"loop"`
	WidthMM   float64 `json:"width_mm"`
	HeightMM  float64 `json:"height_mm"`
	IsHole    bool    `json:"hole"`
	ToolName  string  `json:"tool"`
	ToolDiaMM float64 `json:"tool_dia_mm"`
	PassCount int     `json:"passes"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10
// rows per page), carried over unchanged from the teacher's export package.
const (
	labelPageWidth = 215.9
	labelMarginTop = 12.7
	labelMarginL   = 4.8
	labelWidth     = 66.7
	labelHeight    = 25.4
	labelCols      = 3
	labelRows      = 10
	labelsPerPage  = labelCols * labelRows
	qrSize         = 20.0
	labelPadding   = 2.0
)

// CollectLabelInfos builds one LabelInfo per loop in job.
func CollectLabelInfos(job Job) []LabelInfo {
	ensureRunID(&job)
	labels := make([]LabelInfo, 0, len(job.Loops))
	for _, loop := range job.Loops {
		bb := loop.Polygon.Bounds()
		size := bb.Size()
		labels = append(labels, LabelInfo{
			JobName:   job.Name,
			RunID:     job.RunID,
			LoopLabel: loop.Label,
			WidthMM:   size.X,
			HeightMM:  size.Y,
			IsHole:    loop.IsHole,
			ToolName:  job.Tool.Name,
			ToolDiaMM: job.Tool.DiameterMM,
			PassCount: len(job.Cutout.Passes()),
		})
	}
	return labels
}

// GenerateLabels writes a PDF of QR-coded loop labels for job to path, laid
// out on a standard Avery 5160 label sheet (3 columns x 10 rows, US Letter).
func GenerateLabels(path string, job Job) error {
	labels := CollectLabelInfos(job)
	if len(labels) == 0 {
		return fmt.Errorf("report: no loops to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}
		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginL + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.LoopLabel, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, idx int, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d", idx)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	loopLabel := info.LoopLabel
	if pdf.GetStringWidth(loopLabel) > textW {
		for len(loopLabel) > 0 && pdf.GetStringWidth(loopLabel+"...") > textW {
			loopLabel = loopLabel[:len(loopLabel)-1]
		}
		loopLabel += "..."
	}
	pdf.CellFormat(textW, 4.5, loopLabel, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.1f x %.1f mm", info.WidthMM, info.HeightMM)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	toolInfo := fmt.Sprintf("%s (%.3fmm) x%d", info.ToolName, info.ToolDiaMM, info.PassCount)
	pdf.CellFormat(textW, 3, toolInfo, "", 1, "L", false, 0, "")

	if info.IsHole {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Hole clearing", "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}
