package exporter

import (
	"fmt"
	"io"
	"os"
	"reflect"

	"fieldreports/internal/shared/columns"
	"fieldreports/pkg/contracts/domain"
)

// SectionTable flattens one section of result into a header row and string records.
// An absent section yields the header row and no records.
func SectionTable(kind domain.SectionKind, result *domain.ParseResult) ([]string, [][]string, error) {
	if result == nil {
		result = &domain.ParseResult{}
	}

	records := reflect.ValueOf(result.SectionRecords(kind))
	if records.Kind() != reflect.Slice {
		return nil, nil, fmt.Errorf("exporter: unknown section %s", kind)
	}

	cols := columns.Of(records.Type().Elem())
	headers := columns.Names(cols)

	rows := make([][]string, 0, records.Len())
	for i := 0; i < records.Len(); i++ {
		values := columns.Values(records.Index(i).Interface(), cols)
		row := make([]string, len(values))
		for j, v := range values {
			row[j] = formatValue(v)
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// WriteSection streams one section as CSV to out
func WriteSection(out io.Writer, kind domain.SectionKind, result *domain.ParseResult, bom bool) error {
	headers, rows, err := SectionTable(kind, result)
	if err != nil {
		return err
	}
	return writeTable(out, WriteOptions{Headers: headers, Records: rows, BOMPrefix: bom})
}

// WriteAll writes <section>.csv for every section present in result and
// returns the written paths in section order.
func (w *CSVWriter) WriteAll(result *domain.ParseResult) ([]string, error) {
	var written []string
	for _, kind := range result.Sections() {
		headers, rows, err := SectionTable(kind, result)
		if err != nil {
			return written, err
		}

		name := kind.String() + ".csv"
		if err := w.WriteCSV(name, WriteOptions{Headers: headers, Records: rows, BOMPrefix: true}); err != nil {
			return written, fmt.Errorf("export %s: %w", kind, err)
		}
		written = append(written, w.resolvePath(name))
	}
	return written, nil
}

// AppendAll appends every present section of result to <section>.csv,
// writing the header row only when the file does not exist yet. Successive
// reports accumulate into one file per section.
func (w *CSVWriter) AppendAll(result *domain.ParseResult) ([]string, error) {
	var written []string
	for _, kind := range result.Sections() {
		headers, rows, err := SectionTable(kind, result)
		if err != nil {
			return written, err
		}

		name := kind.String() + ".csv"
		_, statErr := os.Stat(w.resolvePath(name))
		opts := WriteOptions{Headers: headers, Records: rows, BOMPrefix: true, Append: statErr == nil}
		if err := w.WriteCSV(name, opts); err != nil {
			return written, fmt.Errorf("append %s: %w", kind, err)
		}
		written = append(written, w.resolvePath(name))
	}
	return written, nil
}
