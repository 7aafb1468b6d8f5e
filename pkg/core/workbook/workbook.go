// Package workbook - In-memory spreadsheet model and parse entry point
// Models the decoded workbook boundary: typed cells, header detection, and
// the top-level Parse that runs template detection and column scoring over
// the decoded sheets.
package workbook

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// CELLS
// =============================================================================

// CellType tags a cell's decoded value
type CellType string

const (
	CellEmpty  CellType = "empty"
	CellString CellType = "string"
	CellNumber CellType = "number"
	CellBool   CellType = "bool"
	CellDate   CellType = "date"
)

// Cell is one typed spreadsheet value
type Cell struct {
	Type CellType   `json:"type"`
	Str  string     `json:"str,omitempty"`
	Num  float64    `json:"num,omitempty"`
	Bool bool       `json:"bool,omitempty"`
	Time *time.Time `json:"time,omitempty"`
}

// StringCell wraps a raw string; empty input yields an empty cell
func StringCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{Type: CellEmpty}
	}
	return Cell{Type: CellString, Str: s}
}

// NumberCell wraps a numeric value
func NumberCell(n float64) Cell {
	return Cell{Type: CellNumber, Num: n}
}

// Render converts any cell to its display string
func (c Cell) Render() string {
	switch c.Type {
	case CellString:
		return c.Str
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellBool:
		return strconv.FormatBool(c.Bool)
	case CellDate:
		if c.Time != nil {
			return c.Time.Format("2006-01-02")
		}
	}
	return ""
}

// IsEmpty reports whether a cell carries no usable value
func (c Cell) IsEmpty() bool {
	return c.Type == CellEmpty || (c.Type == CellString && strings.TrimSpace(c.Str) == "")
}

// =============================================================================
// SHEETS AND THE IN-MEMORY WORKBOOK
// =============================================================================

// Sheet is one worksheet's cell grid; Rows includes the header row when
// one exists
type Sheet struct {
	Name string   `json:"name"`
	Rows [][]Cell `json:"rows"`
}

// Memory is a fully decoded workbook. It satisfies the detector's view of
// a workbook and is never mutated after construction.
type Memory struct {
	sheets []Sheet
	byName map[string]*Sheet
}

// NewMemory builds a workbook from decoded sheets
func NewMemory(sheets []Sheet) *Memory {
	wb := &Memory{sheets: sheets, byName: make(map[string]*Sheet, len(sheets))}
	for i := range wb.sheets {
		wb.byName[wb.sheets[i].Name] = &wb.sheets[i]
	}
	return wb
}

// WorksheetNames lists sheets in document order
func (m *Memory) WorksheetNames() []string {
	names := make([]string, len(m.sheets))
	for i := range m.sheets {
		names[i] = m.sheets[i].Name
	}
	return names
}

// HeaderRow returns the detected headers for a worksheet, or nil when the
// worksheet does not exist or is empty
func (m *Memory) HeaderRow(worksheet string) []string {
	sheet, ok := m.byName[worksheet]
	if !ok || len(sheet.Rows) == 0 {
		return nil
	}
	headers, _ := DetectHeaders(sheet.Rows[0])
	return headers
}

// DataRows returns the worksheet's rows keyed by header. When the first
// row was detected as a header it is excluded from the data.
func (m *Memory) DataRows(worksheet string) []map[string]string {
	sheet, ok := m.byName[worksheet]
	if !ok || len(sheet.Rows) == 0 {
		return nil
	}
	headers, isHeader := DetectHeaders(sheet.Rows[0])
	start := 0
	if isHeader {
		start = 1
	}

	var rows []map[string]string
	for _, raw := range sheet.Rows[start:] {
		if rowEmpty(raw) {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(raw) {
				row[header] = raw[i].Render()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// =============================================================================
// HEADER DETECTION
// =============================================================================

// DetectHeaders applies the first-row heuristic: when every non-empty cell
// in the row is a string, the row is treated as a header row. Blank header
// positions get a Column_N placeholder, numbered from 1. A row containing
// any non-string value yields synthesized placeholders for every column
// and is kept as data.
func DetectHeaders(first []Cell) ([]string, bool) {
	allStrings := true
	for _, cell := range first {
		if cell.Type != CellString && cell.Type != CellEmpty {
			allStrings = false
			break
		}
	}

	headers := make([]string, len(first))
	for i, cell := range first {
		if allStrings && !cell.IsEmpty() {
			headers[i] = strings.TrimSpace(cell.Str)
		} else {
			headers[i] = fmt.Sprintf("Column_%d", i+1)
		}
	}
	return headers, allStrings
}

func rowEmpty(row []Cell) bool {
	for _, cell := range row {
		if !cell.IsEmpty() {
			return false
		}
	}
	return true
}
