package sheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const defaultSheetName = "Sheet1"

// ContentType returns the MIME type for a format
func ContentType(format Format) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Write renders headers and rows in the given format
func Write(w io.Writer, format Format, sheetName string, headers []string, rows [][]string) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, headers, rows)
	case FormatXLSX:
		return WriteXLSX(w, sheetName, headers, rows)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// WriteCSV writes a header row followed by rows
func WriteCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook. Column widths follow the longest
// value in each column.
func WriteXLSX(w io.Writer, sheetName string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheetName == "" {
		sheetName = defaultSheetName
	} else if err := f.SetSheetName(defaultSheetName, sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	widths := make([]int, len(headers))
	setRow := func(rowIdx int, values []string) error {
		for colIdx, value := range values {
			if colIdx >= len(headers) {
				break
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
			if len(value) > widths[colIdx] {
				widths[colIdx] = len(value)
			}
		}
		return nil
	}

	if err := setRow(1, headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		if err := setRow(i+2, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, col, col, float64(min(width+2, 60))); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
