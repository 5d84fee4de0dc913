package domain

import "fmt"

// SectionKind identifies one of the eight logical sections of an accomplishment report
type SectionKind int

const (
	SectionProjectDetails SectionKind = iota
	SectionProjectCosts
	SectionManHours
	SectionCostItems
	SectionCostItemsSecondary
	SectionMonthlyCosts
	SectionMaterials
	SectionPurchaseOrders
)

// AllSections lists every section kind in detection priority order
var AllSections = []SectionKind{
	SectionProjectDetails,
	SectionProjectCosts,
	SectionManHours,
	SectionCostItems,
	SectionCostItemsSecondary,
	SectionMonthlyCosts,
	SectionMaterials,
	SectionPurchaseOrders,
}

var sectionNames = map[SectionKind]string{
	SectionProjectDetails:     "project_details",
	SectionProjectCosts:       "project_costs",
	SectionManHours:           "man_hours",
	SectionCostItems:          "cost_items",
	SectionCostItemsSecondary: "cost_items_secondary",
	SectionMonthlyCosts:       "monthly_costs",
	SectionMaterials:          "materials",
	SectionPurchaseOrders:     "purchase_orders",
}

// String returns the output key of the section, which is also its table name
func (k SectionKind) String() string {
	if name, ok := sectionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("section(%d)", int(k))
}

// ParseSectionKind resolves an output key back to its kind
func ParseSectionKind(name string) (SectionKind, bool) {
	for kind, n := range sectionNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}
