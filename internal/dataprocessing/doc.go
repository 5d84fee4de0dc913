// Package dataprocessing parses weekly accomplishment reports into typed records.
//
// A report workbook carries one worksheet named like "Data Sheet". That sheet has
// no versioned schema: it holds up to eight sections, each introduced by a header
// row, whose data rows follow a fixed column layout agreed with the report template.
//
// # Passes
//
// A parse is a single synchronous call over an already decoded workbook.Document:
//
//  1. LocateDataSheet picks the first sheet whose name contains "data sheet" or "datasheet".
//  2. DetectSections scans every row's lowercase joined text against ordered header
//     signatures and partitions the sheet into SectionRange values.
//  3. Each detected range is extracted with the section's ColumnMap. A row whose key
//     column is blank produces no record.
//  4. When no cost-items-secondary header is found, a whole-sheet fallback scan tries
//     to recover those rows.
//  5. Sections that produced no records are left nil in the domain.ParseResult.
//
// # Usage
//
//	doc, err := workbook.OpenFile("week-32.xlsx")
//	if err != nil {
//	    return err
//	}
//	result, err := dataprocessing.Parse(doc, dataprocessing.WithReportID(reportID))
//	if errors.Is(err, dataprocessing.ErrSheetNotFound) {
//	    // reject the upload
//	}
//
// # Error Handling
//
// *SheetNotFoundError is the only error Parse returns. Cells that cannot be coerced
// become nil fields and are logged; missing sections are simply absent.
//
// # Concurrency
//
// Parsing keeps no package state beyond read-only signature and column tables, so
// independent documents may be parsed from separate goroutines.
package dataprocessing
