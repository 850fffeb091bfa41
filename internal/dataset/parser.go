package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrMalformedFile indicates the upload could not be parsed into a table at
// all. This is the well-formedness failure path, distinct from a parseable
// but empty dataset, which downstream handles as a defined zero result.
var ErrMalformedFile = errors.New("malformed input file")

// Parse reads an uploaded file into rows and columns. The format is chosen
// by file extension: .xlsx/.xls via excelize, everything else as CSV.
func Parse(filename string, r io.Reader) (*Parsed, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".xlsx" || ext == ".xls" {
		return parseXLSX(r)
	}
	return parseCSV(r)
}

func parseCSV(r io.Reader) (*Parsed, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrMalformedFile)
	}

	return assemble(records[0], records[1:])
}

func parseXLSX(r io.Reader) (*Parsed, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedFile)
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrMalformedFile)
	}

	return assemble(records[0], records[1:])
}

// assemble builds the Parsed record from a raw header and data rows.
func assemble(header []string, records [][]string) (*Parsed, error) {
	columns := normalizeHeader(header)
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: empty header row", ErrMalformedFile)
	}

	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if i >= len(record) || strings.TrimSpace(record[i]) == "" {
				row[col] = nil
				continue
			}
			row[col] = record[i]
		}
		rows = append(rows, row)
	}

	return &Parsed{
		Columns:        columns,
		NumericColumns: DetectNumericColumns(columns, rows),
		PeriodColumn:   DetectPeriodColumn(columns),
		Rows:           rows,
	}, nil
}
