package dataprocessing

import (
	"strings"

	"fieldreports/pkg/contracts/domain"
)

// extractSecondaryFallback recovers CostItemsSecondary rows when no header for
// the section was detected. It scans the whole sheet without regard to other
// sections, so rows of unrelated sections sharing the same columns are picked
// up as well.
func extractSecondaryFallback(e *extractor) []domain.CostItemSecondary {
	kind := domain.SectionCostItemsSecondary
	cm := ColumnMapFor(kind)
	key := cm.KeyField()

	probe := make([]Field, 0, len(fallbackFields))
	width := key.Index + 1
	for _, name := range fallbackFields {
		f, _ := cm.Field(name)
		probe = append(probe, f)
		if f.Index+1 > width {
			width = f.Index + 1
		}
	}

	var records []domain.CostItemSecondary
	for i, row := range e.sheet.Rows {
		if len(row) < width {
			continue
		}
		if strings.TrimSpace(row.Cell(key.Index).Text) == "" {
			continue
		}

		populated := false
		for _, f := range probe {
			if !row.Cell(f.Index).IsEmpty() {
				populated = true
				break
			}
		}
		if !populated {
			continue
		}

		records = append(records, buildRecord[domain.CostItemSecondary](e, kind, cm, i, row))
	}
	return records
}
