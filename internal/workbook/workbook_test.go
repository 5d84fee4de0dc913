package workbook

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, sheets map[string][][]interface{}, order ...string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			if row == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestOpenBytes_XLSX(t *testing.T) {
	data := buildXLSX(t, map[string][][]interface{}{
		"Cover": {{"Weekly accomplishment report"}},
		"Data Sheet": {
			{"project_id", "project name", "client"},
			nil,
			{"2134.00", "Bridge", 44927},
			{"  ", 1234.5},
		},
	}, "Cover", "Data Sheet")

	doc, err := OpenBytes("report.xlsx", data)
	require.NoError(t, err)

	assert.Equal(t, FormatXLSX, doc.Format)
	assert.Equal(t, []string{"Cover", "Data Sheet"}, doc.SheetNames())

	sheet := doc.Sheets[1]
	require.Len(t, sheet.Rows, 4)

	assert.Equal(t, "project_id project name client", sheet.Rows[0].Text())
	assert.True(t, sheet.Rows[1].IsEmpty())

	row := sheet.Rows[2]
	assert.Equal(t, CellText, row.Cell(0).Kind, "string cells stay text even when numeric-looking")
	assert.Equal(t, "2134.00", row.Cell(0).Text)
	assert.Equal(t, CellNumber, row.Cell(2).Kind)
	assert.Equal(t, "44927", row.Cell(2).Text)

	assert.True(t, sheet.Rows[3].Cell(0).IsEmpty())
	assert.Equal(t, CellNumber, sheet.Rows[3].Cell(1).Kind)
	assert.Equal(t, "1234.5", sheet.Rows[3].Cell(1).Text)
	assert.Equal(t, CellEmpty, sheet.Rows[3].Cell(10).Kind, "cells past the row end read as empty")
}

func TestOpen_Reader(t *testing.T) {
	data := buildXLSX(t, map[string][][]interface{}{
		"datasheet": {{"a"}},
	}, "datasheet")

	doc, err := Open("report.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "report.xlsx", doc.Name)
	assert.Equal(t, []string{"datasheet"}, doc.SheetNames())
}

func TestOpenFile(t *testing.T) {
	data := buildXLSX(t, map[string][][]interface{}{
		"Sheet1": {{"a", 1}},
	}, "Sheet1")

	path := filepath.Join(t.TempDir(), "weekly.xlsx")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	doc, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "weekly.xlsx", doc.Name)

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestOpenBytes_Unsupported(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		data     []byte
	}{
		{name: "empty", fileName: "report.xlsx", data: nil},
		{name: "plain text", fileName: "report.txt", data: []byte("project_id,client\n1,ACME\n")},
		{name: "pdf", fileName: "report.pdf", data: []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := OpenBytes(tt.fileName, tt.data)
			assert.Nil(t, doc)
			assert.ErrorIs(t, err, ErrUnsupportedFormat)
		})
	}
}

func TestOpenBytes_CorruptXLS(t *testing.T) {
	ole := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 1024)...)

	assert.Equal(t, FormatXLS, DetectFormat("legacy.xls", ole))

	doc, err := OpenBytes("legacy.xls", ole)
	assert.Nil(t, doc)
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	xlsx := buildXLSX(t, map[string][][]interface{}{"Sheet1": {{"x"}}}, "Sheet1")

	assert.Equal(t, FormatXLSX, DetectFormat("upload.bin", xlsx))
	assert.Equal(t, FormatXLSX, DetectFormat("upload.xlsx", xlsx))
	assert.Equal(t, FormatUnknown, DetectFormat("notes.txt", []byte("hello")))
}

func TestNewSheet_Classifies(t *testing.T) {
	sheet := NewSheet("Data Sheet", [][]string{
		{"44927", "text", "", "1,234.50", "NaN"},
	})

	row := sheet.Rows[0]
	assert.Equal(t, CellNumber, row.Cell(0).Kind)
	assert.Equal(t, CellText, row.Cell(1).Kind)
	assert.Equal(t, CellEmpty, row.Cell(2).Kind)
	assert.Equal(t, CellText, row.Cell(3).Kind, "thousands separators are left to the number coercer")
	assert.Equal(t, CellText, row.Cell(4).Kind)

	doc := NewDocument("mem", sheet)
	assert.Equal(t, []string{"Data Sheet"}, doc.SheetNames())
	assert.Nil(t, sheet.Row(5))
}
