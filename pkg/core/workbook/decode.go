package workbook

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// =============================================================================
// DECODERS
// =============================================================================

// jsonWorkbook is the interchange shape for pre-extracted workbooks:
// sheet rows hold raw JSON values (string, number, bool, null).
type jsonWorkbook struct {
	Sheets []struct {
		Name string  `json:"name"`
		Rows [][]any `json:"rows"`
	} `json:"sheets"`
}

// Decode builds an in-memory workbook from raw bytes, dispatching on the
// file extension. JSON carries multi-sheet workbook dumps; CSV decodes to
// a single sheet named after the file.
func Decode(data []byte, filename string) (*Memory, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return decodeJSON(data)
	case ".csv":
		return decodeCSV(data, filename)
	}
	return nil, fmt.Errorf("unsupported workbook format %q", filepath.Ext(filename))
}

func decodeJSON(data []byte) (*Memory, error) {
	var raw jsonWorkbook
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding workbook JSON: %w", err)
	}
	if len(raw.Sheets) == 0 {
		return nil, fmt.Errorf("workbook JSON contains no sheets")
	}

	sheets := make([]Sheet, 0, len(raw.Sheets))
	for _, rawSheet := range raw.Sheets {
		if rawSheet.Name == "" {
			return nil, fmt.Errorf("workbook JSON contains a sheet with no name")
		}
		sheet := Sheet{Name: rawSheet.Name}
		for _, rawRow := range rawSheet.Rows {
			row := make([]Cell, len(rawRow))
			for i, value := range rawRow {
				row[i] = cellFromJSON(value)
			}
			sheet.Rows = append(sheet.Rows, row)
		}
		sheets = append(sheets, sheet)
	}
	return NewMemory(sheets), nil
}

func cellFromJSON(value any) Cell {
	switch v := value.(type) {
	case nil:
		return Cell{Type: CellEmpty}
	case string:
		return StringCell(v)
	case float64:
		return NumberCell(v)
	case bool:
		return Cell{Type: CellBool, Bool: v}
	}
	return StringCell(fmt.Sprintf("%v", value))
}

func decodeCSV(data []byte, filename string) (*Memory, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decoding CSV: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	sheet := Sheet{Name: name}
	for _, record := range records {
		row := make([]Cell, len(record))
		for i, field := range record {
			row[i] = StringCell(field)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return NewMemory([]Sheet{sheet}), nil
}
