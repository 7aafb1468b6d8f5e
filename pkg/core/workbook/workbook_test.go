package workbook

import (
	"math"
	"testing"
)

func TestDetectHeadersAllStrings(t *testing.T) {
	row := []Cell{StringCell("Asset ID"), StringCell("Asset Name"), StringCell("")}
	headers, isHeader := DetectHeaders(row)
	if !isHeader {
		t.Fatal("all-string first row must be detected as a header")
	}
	want := []string{"Asset ID", "Asset Name", "Column_3"}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("headers[%d] = %q, want %q", i, headers[i], want[i])
		}
	}
}

func TestDetectHeadersMixedTypes(t *testing.T) {
	row := []Cell{StringCell("Asset ID"), NumberCell(42)}
	headers, isHeader := DetectHeaders(row)
	if isHeader {
		t.Fatal("row with a numeric cell must not be a header")
	}
	if headers[0] != "Column_1" || headers[1] != "Column_2" {
		t.Errorf("headers = %v, want placeholders for every column", headers)
	}
}

func TestDataRowsExcludeHeader(t *testing.T) {
	wb := NewMemory([]Sheet{{
		Name: "Hardware",
		Rows: [][]Cell{
			{StringCell("Asset ID"), StringCell("Asset Name")},
			{StringCell("a-1"), StringCell("web01")},
			{Cell{Type: CellEmpty}, Cell{Type: CellEmpty}},
			{StringCell("a-2"), StringCell("db01")},
		},
	}})

	rows := wb.DataRows("Hardware")
	if len(rows) != 2 {
		t.Fatalf("got %d data rows, want 2 (header and blank row excluded)", len(rows))
	}
	if rows[0]["Asset ID"] != "a-1" || rows[1]["Asset Name"] != "db01" {
		t.Errorf("rows = %v", rows)
	}
}

func TestDataRowsKeepNonHeaderFirstRow(t *testing.T) {
	wb := NewMemory([]Sheet{{
		Name: "raw",
		Rows: [][]Cell{
			{StringCell("a-1"), NumberCell(8080)},
		},
	}})

	rows := wb.DataRows("raw")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1: non-header first row is data", len(rows))
	}
	if rows[0]["Column_1"] != "a-1" || rows[0]["Column_2"] != "8080" {
		t.Errorf("rows[0] = %v", rows[0])
	}
}

func TestCellRender(t *testing.T) {
	tests := []struct {
		cell Cell
		want string
	}{
		{StringCell("hello"), "hello"},
		{NumberCell(42), "42"},
		{NumberCell(3.5), "3.5"},
		{Cell{Type: CellBool, Bool: true}, "true"},
		{Cell{Type: CellEmpty}, ""},
	}
	for _, tt := range tests {
		if got := tt.cell.Render(); got != tt.want {
			t.Errorf("Render(%+v) = %q, want %q", tt.cell, got, tt.want)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	data := []byte(`{
		"sheets": [
			{"name": "Hardware Inventory", "rows": [
				["Asset ID", "Asset Name", "Asset Type"],
				["a-1", "web01", "Hardware"],
				["a-2", null, 42]
			]}
		]
	}`)

	wb, err := Decode(data, "inventory.json")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	names := wb.WorksheetNames()
	if len(names) != 1 || names[0] != "Hardware Inventory" {
		t.Fatalf("names = %v", names)
	}
	rows := wb.DataRows("Hardware Inventory")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1]["Asset Name"] != "" || rows[1]["Asset Type"] != "42" {
		t.Errorf("typed cells rendered wrong: %v", rows[1])
	}
}

func TestDecodeCSV(t *testing.T) {
	data := []byte("Asset ID,Asset Name\na-1,web01\n")
	wb, err := Decode(data, "/tmp/hardware.csv")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if names := wb.WorksheetNames(); len(names) != 1 || names[0] != "hardware" {
		t.Fatalf("names = %v, want sheet named after the file", names)
	}
	if rows := wb.DataRows("hardware"); len(rows) != 1 || rows[0]["Asset ID"] != "a-1" {
		t.Errorf("rows = %v", wb.DataRows("hardware"))
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	if _, err := Decode([]byte("x"), "inventory.xls"); err == nil {
		t.Error("unsupported extension must fail")
	}
}

func TestParseFedRampWorkbook(t *testing.T) {
	data := []byte(`{
		"sheets": [
			{"name": "Hardware Inventory", "rows": [
				["Asset ID", "Asset Name", "Asset Type"],
				["a-1", "web01", "Hardware"]
			]},
			{"name": "Software Inventory", "rows": [
				["Asset ID", "Software Name", "Version"],
				["a-2", "nginx", "1.25"]
			]}
		]
	}`)

	doc, err := Parse(data, "fedramp.json", DefaultParseConfig())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.DocumentType != "fedramp_integrated" {
		t.Errorf("DocumentType = %q, want fedramp_integrated", doc.DocumentType)
	}
	if doc.SourcePath != "fedramp.json" {
		t.Errorf("SourcePath = %q", doc.SourcePath)
	}
	if len(doc.Content) != 2 {
		t.Fatalf("got %d worksheets, want 2", len(doc.Content))
	}
	if doc.QualityScore <= 0 || doc.QualityScore > 1 {
		t.Errorf("QualityScore = %v, want within (0, 1]", doc.QualityScore)
	}

	hw := doc.Content["Hardware Inventory"]
	if len(hw.ColumnMappings) != 3 {
		t.Fatalf("got %d mappings, want 3", len(hw.ColumnMappings))
	}
	for _, mapping := range hw.ColumnMappings {
		if mapping.TargetField == "" {
			t.Errorf("mapping for %q has no target", mapping.SourceColumn)
		}
	}

	// The document score is the mean of the per-worksheet averages.
	sw := doc.Content["Software Inventory"]
	if got := (hw.AvgConfidence + sw.AvgConfidence) / 2; math.Abs(got-doc.QualityScore) > 1e-9 {
		t.Errorf("QualityScore = %v, want mean of sheet averages %v", doc.QualityScore, got)
	}
}

func TestParseSkipsHeaderlessWorksheet(t *testing.T) {
	data := []byte(`{
		"sheets": [
			{"name": "Hardware Inventory", "rows": [
				["Asset ID", "Asset Name"],
				["a-1", "web01"]
			]},
			{"name": "Empty", "rows": []}
		]
	}`)

	doc, err := Parse(data, "partial.json", DefaultParseConfig())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Content) != 1 {
		t.Errorf("got %d worksheets, want 1", len(doc.Content))
	}
	if len(doc.ValidationErrors) != 1 {
		t.Errorf("validation errors = %v, want the skipped worksheet recorded", doc.ValidationErrors)
	}
}

func TestParseRejectsBadBytes(t *testing.T) {
	if _, err := Parse([]byte("{"), "broken.json", DefaultParseConfig()); err == nil {
		t.Error("malformed JSON must fail the parse")
	}
}
