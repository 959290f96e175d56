package importer

import (
	"strings"
	"testing"
)

func TestDetectCSVDelimiterSemicolon(t *testing.T) {
	data := []byte("name;diameter_mm;feed\nendmill;3.175;1200\n")
	if d := DetectCSVDelimiter(data); d != ';' {
		t.Fatalf("expected semicolon delimiter, got %q", d)
	}
}

func TestDetectColumnsWithHeader(t *testing.T) {
	mapping, ok := DetectColumns([]string{"name", "diameter_mm", "feed_rate"})
	if !ok {
		t.Fatalf("expected header to be detected")
	}
	if mapping.Name != 0 || mapping.DiameterMM != 1 || mapping.FeedRateMMMin != 2 {
		t.Fatalf("unexpected mapping: %+v", mapping)
	}
}

func TestDetectColumnsPositionalFallback(t *testing.T) {
	mapping, ok := DetectColumns([]string{"1/8in upcut", "3.175", "1200"})
	if ok {
		t.Fatalf("expected no header detected for a pure data row")
	}
	if mapping.Name != 0 || mapping.DiameterMM != 1 {
		t.Fatalf("unexpected positional mapping: %+v", mapping)
	}
}

func TestImportCSVFromReader(t *testing.T) {
	csvData := "name,diameter_mm,feed_rate\n1/8in upcut,3.175,1200\n1/4in downcut,6.35,900\n"
	result := ImportCSVFromReader(strings.NewReader(csvData), ',')
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Tools) != 2 {
		t.Fatalf("expected 2 tools, got %d: %+v", len(result.Tools), result.Tools)
	}
	if result.Tools[0].Name != "1/8in upcut" || result.Tools[0].DiameterMM != 3.175 {
		t.Fatalf("unexpected first tool: %+v", result.Tools[0])
	}
}

func TestImportCSVRejectsMissingDiameter(t *testing.T) {
	csvData := "name,diameter_mm\nno-diameter,\n"
	result := ImportCSVFromReader(strings.NewReader(csvData), ',')
	if len(result.Errors) == 0 {
		t.Fatalf("expected an error for a missing diameter value")
	}
}
