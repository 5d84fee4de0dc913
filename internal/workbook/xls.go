package workbook

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

func loadXLS(name string, data []byte) (doc *Document, err error) {
	// extrame/xls panics on some malformed BIFF streams
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("failed to decode xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}

	doc = &Document{Name: name, Format: FormatXLS}
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}

		sheet := &Sheet{Name: ws.Name, Rows: make([]Row, int(ws.MaxRow)+1)}
		for r := 0; r < len(sheet.Rows); r++ {
			xr := ws.Row(r)
			if xr == nil {
				continue
			}
			row := make(Row, xr.LastCol())
			for c := 0; c < xr.LastCol(); c++ {
				row[c] = classify(xr.Col(c))
			}
			sheet.Rows[r] = trimRow(row)
		}
		doc.Sheets = append(doc.Sheets, sheet)
	}

	return doc, nil
}
