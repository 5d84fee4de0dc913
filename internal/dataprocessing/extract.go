package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"fieldreports/internal/shared/columns"
	"fieldreports/internal/workbook"
	"fieldreports/pkg/contracts/domain"
)

// extractor builds typed records from rows of the located data sheet
type extractor struct {
	sheet    *workbook.Sheet
	reportID string
	logger   *slog.Logger
}

// extractSection walks the data rows of one range. Empty rows and rows with an
// empty key are skipped; everything else becomes a record in row order.
func extractSection[T any](e *extractor, rng SectionRange) []T {
	cm := ColumnMapFor(rng.Kind)
	key := cm.KeyField()

	var records []T
	for i := rng.StartRow + 1; i < rng.EndRow && i < len(e.sheet.Rows); i++ {
		row := e.sheet.Rows[i]
		if row.IsEmpty() {
			continue
		}
		if strings.TrimSpace(row.Cell(key.Index).Text) == "" {
			continue
		}
		records = append(records, buildRecord[T](e, rng.Kind, cm, i, row))
	}
	return records
}

// buildRecord coerces every mapped column of row into a new T
func buildRecord[T any](e *extractor, kind domain.SectionKind, cm ColumnMap, rowIndex int, row workbook.Row) T {
	var rec T
	v := reflect.ValueOf(&rec).Elem()
	t := v.Type()

	for _, f := range cm.Fields {
		col, ok := columns.Lookup(t, f.Name)
		if !ok {
			continue
		}

		cell := row.Cell(f.Index)
		var (
			value any
			err   error
		)
		switch f.Type {
		case FieldText:
			value = CoerceText(cell.Text)
		case FieldNumber:
			value, err = CoerceNumber(cell.Text)
		case FieldDate:
			value, err = CoerceDate(cell)
		}
		if err != nil {
			e.logCoercion(kind, f, rowIndex, err)
		}

		if err := columns.Set(v, col, value); err != nil {
			e.logger.Error("Column map does not match record type",
				slog.String("section", kind.String()),
				slog.String("field", f.Name),
				slog.String("error", err.Error()))
		}
	}

	if col, ok := columns.Lookup(t, "report_id"); ok {
		_ = columns.Set(v, col, e.reportID)
	}

	return rec
}

func (e *extractor) logCoercion(kind domain.SectionKind, f Field, rowIndex int, err error) {
	level := slog.LevelDebug
	if errors.Is(err, ErrDateOutOfRange) {
		level = slog.LevelWarn
	}
	e.logger.Log(context.Background(), level, "Cell coercion failed, field left missing",
		slog.String("section", kind.String()),
		slog.String("field", f.Name),
		slog.Int("row", rowIndex),
		slog.Int("column", f.Index),
		slog.String("error", err.Error()))
}
