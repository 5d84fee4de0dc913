package workbook

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

func loadXLSX(name string, data []byte) (*Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	doc := &Document{Name: name, Format: FormatXLSX}
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
		}

		sheet := &Sheet{Name: sheetName, Rows: make([]Row, len(rows))}
		for i, values := range rows {
			row := make(Row, len(values))
			for j, v := range values {
				cell, err := xlsxCell(f, sheetName, i, j, v)
				if err != nil {
					return nil, err
				}
				row[j] = cell
			}
			sheet.Rows[i] = row
		}
		doc.Sheets = append(doc.Sheets, sheet)
	}

	return doc, nil
}

// xlsxCell classifies a raw value using the cell's stored type. Numeric cells
// carry no type attribute, so an unset type with content is treated as a number.
func xlsxCell(f *excelize.File, sheet string, row, col int, raw string) (Cell, error) {
	if raw == "" {
		return Cell{}, nil
	}

	ref, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return Cell{}, fmt.Errorf("invalid cell coordinates (%d,%d): %w", row, col, err)
	}

	cellType, err := f.GetCellType(sheet, ref)
	if err != nil {
		return Cell{}, fmt.Errorf("failed to read cell type %s!%s: %w", sheet, ref, err)
	}

	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if isNumeric(raw) {
			return NumberCell(raw), nil
		}
		return TextCell(raw), nil
	default:
		return TextCell(raw), nil
	}
}
