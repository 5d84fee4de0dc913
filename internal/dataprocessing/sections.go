package dataprocessing

import (
	"strings"

	"fieldreports/internal/workbook"
	"fieldreports/pkg/contracts/domain"
)

// SectionRange is the row span of one detected section. StartRow is the header
// row; data rows run from StartRow+1 up to EndRow, exclusive.
type SectionRange struct {
	Kind     domain.SectionKind `json:"kind"`
	StartRow int                `json:"start_row"`
	EndRow   int                `json:"end_row"`
}

// signature recognises a section header from the row's lowercase joined text
type signature struct {
	kind  domain.SectionKind
	match func(text string) bool
}

// signatures are evaluated top to bottom; the first match classifies the row.
var signatures = []signature{
	{domain.SectionProjectDetails, func(s string) bool {
		return containsAny(s, "project_id", "project id") &&
			containsAny(s, "project name", "project_name", "client")
	}},
	{domain.SectionProjectCosts, func(s string) bool {
		return containsAny(s, "target cost total", "swa cost total")
	}},
	{domain.SectionManHours, func(s string) bool {
		return containsAny(s, "actual_manhours", "projected_manhours")
	}},
	{domain.SectionCostItems, func(s string) bool {
		return containsAll(s, "item_no", "description", "cost", "wbs")
	}},
	{domain.SectionCostItemsSecondary, func(s string) bool {
		return containsAll(s, "item_no", "description", "cost") && !strings.Contains(s, "wbs")
	}},
	{domain.SectionMonthlyCosts, func(s string) bool {
		return strings.Contains(s, "month") && containsAny(s, "targetcost", "swa_cost")
	}},
	{domain.SectionMaterials, func(s string) bool {
		return containsAll(s, "material", "type", "sumqty")
	}},
	{domain.SectionPurchaseOrders, func(s string) bool {
		return containsAny(s, "po number", "date requested", "materials requested")
	}},
}

// classifyHeader returns the kind of the first signature matching text
func classifyHeader(text string) (domain.SectionKind, bool) {
	for _, sig := range signatures {
		if sig.match(text) {
			return sig.kind, true
		}
	}
	return 0, false
}

type headerHit struct {
	row  int
	kind domain.SectionKind
}

// DetectSections scans the sheet once and returns the detected section ranges
// ordered by start row. Each kind is registered at most once; a header of an
// already registered kind still closes the range before it. CostItemsSecondary
// is only registered while CostItems is not.
func DetectSections(sheet *workbook.Sheet) []SectionRange {
	if sheet == nil {
		return nil
	}

	var hits []headerHit
	for i, row := range sheet.Rows {
		if row.IsEmpty() {
			continue
		}
		if kind, ok := classifyHeader(strings.ToLower(row.Text())); ok {
			hits = append(hits, headerHit{row: i, kind: kind})
		}
	}

	registered := make(map[domain.SectionKind]bool, len(domain.AllSections))
	var ranges []SectionRange
	for i, hit := range hits {
		if registered[hit.kind] {
			continue
		}
		if hit.kind == domain.SectionCostItemsSecondary && registered[domain.SectionCostItems] {
			continue
		}

		end := len(sheet.Rows)
		if i+1 < len(hits) {
			end = hits[i+1].row
		}
		ranges = append(ranges, SectionRange{Kind: hit.kind, StartRow: hit.row, EndRow: end})
		registered[hit.kind] = true
	}

	return ranges
}

func containsAll(s string, tokens ...string) bool {
	for _, t := range tokens {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}

func containsAny(s string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
