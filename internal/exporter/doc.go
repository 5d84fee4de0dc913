// Package exporter writes parsed report sections as CSV.
//
// Every section becomes one table whose header row is the section's column
// names, in the same order the parser and the store use. Missing values are
// empty cells and numbers use plain decimal notation.
//
// Example usage:
//
//	w := exporter.NewCSVWriter("data/exports/rpt-32")
//	files, err := w.WriteAll(result)
//
//	// or a single section to any writer
//	err = exporter.WriteSection(resp, domain.SectionManHours, result, true)
package exporter
