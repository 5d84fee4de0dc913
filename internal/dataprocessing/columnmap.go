package dataprocessing

import (
	"fieldreports/pkg/contracts/domain"
)

// FieldType selects the coercer applied to a column
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumber
	FieldDate
)

// Field binds a logical field (the record's db column name) to a fixed,
// zero-based column offset in the data sheet.
type Field struct {
	Name  string
	Index int
	Type  FieldType
}

// ColumnMap is the fixed layout of one section. Offsets are part of the
// report template contract and are never derived from header text.
type ColumnMap struct {
	Key    string
	Fields []Field
}

// KeyField returns the field whose emptiness gates record creation
func (m ColumnMap) KeyField() Field {
	f, _ := m.Field(m.Key)
	return f
}

// Field looks up a field by name
func (m ColumnMap) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Width is the number of columns a row needs to reach every offset
func (m ColumnMap) Width() int {
	width := 0
	for _, f := range m.Fields {
		if f.Index+1 > width {
			width = f.Index + 1
		}
	}
	return width
}

var columnMaps = map[domain.SectionKind]ColumnMap{
	domain.SectionProjectDetails: {Key: "project_id", Fields: []Field{
		{"project_id", 0, FieldText},
		{"project_name", 1, FieldText},
		{"client", 2, FieldText},
		{"location", 3, FieldText},
		{"start_date", 4, FieldDate},
		{"end_date", 5, FieldDate},
		{"contract_amount", 6, FieldNumber},
		{"status", 7, FieldText},
		{"project_manager", 8, FieldText},
	}},
	domain.SectionProjectCosts: {Key: "project_id", Fields: []Field{
		{"project_id", 0, FieldText},
		{"target_cost_total", 1, FieldNumber},
		{"swa_cost_total", 2, FieldNumber},
		{"actual_cost_total", 3, FieldNumber},
		{"variance", 4, FieldNumber},
		{"remarks", 5, FieldText},
	}},
	domain.SectionManHours: {Key: "date", Fields: []Field{
		{"date", 0, FieldDate},
		{"project_id", 1, FieldText},
		{"actual_manhours", 2, FieldNumber},
		{"projected_manhours", 3, FieldNumber},
		{"headcount", 4, FieldNumber},
		{"remarks", 5, FieldText},
	}},
	domain.SectionCostItems: {Key: "project_id", Fields: []Field{
		{"project_id", 0, FieldText},
		{"item_no", 1, FieldText},
		{"description", 2, FieldText},
		{"wbs", 3, FieldText},
		{"cost", 4, FieldNumber},
		{"category", 5, FieldText},
		{"remarks", 6, FieldText},
	}},
	domain.SectionCostItemsSecondary: {Key: "project_id", Fields: []Field{
		{"project_id", 0, FieldText},
		{"item_no", 1, FieldText},
		{"description", 2, FieldText},
		{"cost", 3, FieldNumber},
		{"category", 4, FieldText},
		{"remarks", 5, FieldText},
	}},
	domain.SectionMonthlyCosts: {Key: "project_id", Fields: []Field{
		{"project_id", 0, FieldText},
		{"month", 1, FieldDate},
		{"target_cost", 2, FieldNumber},
		{"swa_cost", 3, FieldNumber},
		{"actual_cost", 4, FieldNumber},
		{"cumulative_cost", 5, FieldNumber},
	}},
	domain.SectionMaterials: {Key: "project_id", Fields: []Field{
		{"project_id", 0, FieldText},
		{"material", 1, FieldText},
		{"type", 2, FieldText},
		{"unit", 3, FieldText},
		{"sumqty", 4, FieldNumber},
		{"unit_cost", 5, FieldNumber},
		{"total_cost", 6, FieldNumber},
	}},
	domain.SectionPurchaseOrders: {Key: "project_id", Fields: []Field{
		{"project_id", 0, FieldText},
		{"po_number", 1, FieldText},
		{"date_requested", 2, FieldDate},
		{"materials_requested", 3, FieldText},
		{"quantity", 4, FieldNumber},
		{"amount", 5, FieldNumber},
		{"supplier", 6, FieldText},
		{"status", 7, FieldText},
	}},
}

// fallbackFields are the CostItemsSecondary columns of which at least one
// must be populated for the whole-sheet fallback to accept a row
var fallbackFields = []string{"item_no", "description", "cost"}

// ColumnMapFor returns the fixed layout of a section kind
func ColumnMapFor(kind domain.SectionKind) ColumnMap {
	return columnMaps[kind]
}
