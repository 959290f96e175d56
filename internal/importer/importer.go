// Package importer provides CSV and Excel import functionality for tool
// catalogs. It supports automatic delimiter detection, flexible column
// mapping, and case-insensitive header recognition.
//
// Adapted from the teacher's internal/importer/importer.go, which did the
// same for a sheet-nesting part list (label/width/height/quantity/grain);
// here the row shape is a Tool record instead, but the delimiter-sniffing,
// header-aliasing, and positional-fallback machinery carries over
// unchanged.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/camcore/internal/tool"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of a tool-catalog import operation.
type ImportResult struct {
	Tools    []tool.Tool
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Name           int
	DiameterMM     int
	FluteLengthMM  int
	FeedRateMMMin  int
	PlungeRateMMMin int
	SpindleRPM     int
	StepdownMM     int
	Stepover       int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"name":       {"name", "tool", "label", "description", "desc"},
	"diameter":   {"diameter", "diameter_mm", "dia", "d"},
	"flute":      {"flute", "flute_length", "flute_length_mm", "cutlength"},
	"feed":       {"feed", "feed_rate", "feedrate", "feed_mm_min"},
	"plunge":     {"plunge", "plunge_rate", "plungerate", "plunge_mm_min"},
	"rpm":        {"rpm", "spindle_rpm", "speed"},
	"stepdown":   {"stepdown", "max_stepdown", "doc", "depth_of_cut"},
	"stepover":   {"stepover", "stepover_fraction", "woc"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping. Returns
// the mapping and true if a header was detected, or a default positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Name: -1, DiameterMM: -1, FluteLengthMM: -1, FeedRateMMMin: -1,
		PlungeRateMMMin: -1, SpindleRPM: -1, StepdownMM: -1, Stepover: -1,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "name":
					setIfUnset(&mapping.Name, i)
				case "diameter":
					setIfUnset(&mapping.DiameterMM, i)
				case "flute":
					setIfUnset(&mapping.FluteLengthMM, i)
				case "feed":
					setIfUnset(&mapping.FeedRateMMMin, i)
				case "plunge":
					setIfUnset(&mapping.PlungeRateMMMin, i)
				case "rpm":
					setIfUnset(&mapping.SpindleRPM, i)
				case "stepdown":
					setIfUnset(&mapping.StepdownMM, i)
				case "stepover":
					setIfUnset(&mapping.Stepover, i)
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{
			Name: 0, DiameterMM: 1, FluteLengthMM: 2, FeedRateMMMin: 3,
			PlungeRateMMMin: 4, SpindleRPM: 5, StepdownMM: 6, Stepover: 7,
		}, false
	}
	return mapping, true
}

func setIfUnset(field *int, i int) {
	if *field == -1 {
		*field = i
	}
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func getFloat(row []string, idx int) float64 {
	v, _ := strconv.ParseFloat(getCell(row, idx), 64)
	return v
}

// parseRow extracts a Tool from a row using the given column mapping. Only
// Name and DiameterMM are mandatory; everything else defaults to zero.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, toolCount int) (tool.Tool, string) {
	name := getCell(row, mapping.Name)
	if name == "" {
		name = fmt.Sprintf("Tool %d", toolCount+1)
	}

	diaStr := getCell(row, mapping.DiameterMM)
	if diaStr == "" {
		return tool.Tool{}, fmt.Sprintf("%s: missing diameter value", rowLabel)
	}
	dia, err := strconv.ParseFloat(diaStr, 64)
	if err != nil || dia <= 0 {
		return tool.Tool{}, fmt.Sprintf("%s: invalid diameter %q", rowLabel, diaStr)
	}

	return tool.Tool{
		Name:             name,
		DiameterMM:       dia,
		FluteLengthMM:    getFloat(row, mapping.FluteLengthMM),
		FeedRateMMMin:    getFloat(row, mapping.FeedRateMMMin),
		PlungeRateMMMin:  getFloat(row, mapping.PlungeRateMMMin),
		SpindleRPM:       getFloat(row, mapping.SpindleRPM),
		MaxStepdownMM:    getFloat(row, mapping.StepdownMM),
		StepoverFraction: getFloat(row, mapping.Stepover),
	}, ""
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports a tool catalog from a CSV file, auto-detecting the
// delimiter and column layout.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read csv: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports a catalog from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read csv: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}
	return importFromRows(records, "Line", nil)
}

// ImportExcel imports a tool catalog from an Excel (.xlsx, .xls) file's
// first sheet.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read excel data: %v", err))
		return result
	}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "no data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "detected header row, skipping")
		if mapping.DiameterMM == -1 {
			result.Errors = append(result.Errors, "required column not found in header: diameter")
			return result
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		t, errMsg := parseRow(row, mapping, rowLabel, len(result.Tools))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Tools = append(result.Tools, t)
	}
	return result
}
