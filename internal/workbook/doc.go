// Package workbook decodes spreadsheet files into an in-memory cell matrix.
//
// A Document holds named sheets; each sheet is an ordered list of rows and
// each row an ordered list of cells classified as empty, text or number.
// Numbers (including spreadsheet serial dates) keep their raw textual form so
// that downstream coercion decides how to read them.
//
// Supported inputs:
//
//   - Office Open XML workbooks (.xlsx, .xlsm) through excelize
//   - Legacy BIFF workbooks (.xls) through extrame/xls
//
// The format is sniffed from content with mimetype and falls back to the file
// extension when sniffing is inconclusive.
package workbook
