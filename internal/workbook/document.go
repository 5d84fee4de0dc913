package workbook

import (
	"strings"
)

// CellKind classifies the raw content of a cell
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// String returns a readable name for the kind
func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	default:
		return "empty"
	}
}

// Cell is one decoded cell. Text holds the raw value, untrimmed.
type Cell struct {
	Kind CellKind
	Text string
}

// TextCell builds a text cell, or an empty cell when s is blank
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{Kind: CellEmpty, Text: s}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell builds a numeric cell from its raw representation
func NumberCell(raw string) Cell {
	if strings.TrimSpace(raw) == "" {
		return Cell{Kind: CellEmpty, Text: raw}
	}
	return Cell{Kind: CellNumber, Text: raw}
}

// IsEmpty reports whether the cell has no content after trimming
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty || strings.TrimSpace(c.Text) == ""
}

// Row is an ordered sequence of cells
type Row []Cell

// Cell returns the cell at index i, or an empty cell past the end of the row
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// IsEmpty reports whether every cell in the row is empty
func (r Row) IsEmpty() bool {
	for _, c := range r {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Text joins the cells with single spaces, the form used for header matching
func (r Row) Text() string {
	parts := make([]string, len(r))
	for i, c := range r {
		parts[i] = c.Text
	}
	return strings.Join(parts, " ")
}

// Sheet is a named worksheet
type Sheet struct {
	Name string
	Rows []Row
}

// Row returns row i, or nil when out of range
func (s *Sheet) Row(i int) Row {
	if i < 0 || i >= len(s.Rows) {
		return nil
	}
	return s.Rows[i]
}

// Document is a decoded workbook. It is not mutated after loading.
type Document struct {
	Name   string
	Format Format
	Sheets []*Sheet
}

// SheetNames lists the sheet names in document order
func (d *Document) SheetNames() []string {
	names := make([]string, len(d.Sheets))
	for i, s := range d.Sheets {
		names[i] = s.Name
	}
	return names
}

// NewDocument assembles a document from already decoded sheets
func NewDocument(name string, sheets ...*Sheet) *Document {
	return &Document{Name: name, Sheets: sheets}
}

// NewSheet builds a sheet from string rows; cells that parse as numbers are
// classified as numeric, everything else as text.
func NewSheet(name string, rows [][]string) *Sheet {
	sheet := &Sheet{Name: name, Rows: make([]Row, len(rows))}
	for i, cells := range rows {
		row := make(Row, len(cells))
		for j, v := range cells {
			row[j] = classify(v)
		}
		sheet.Rows[i] = row
	}
	return sheet
}
