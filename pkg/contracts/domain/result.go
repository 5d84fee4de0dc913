package domain

// ParseResult is the normalized output of parsing one report.
// A nil slice means the section was neither detected nor recovered; it is
// omitted from JSON rather than rendered as an empty array.
type ParseResult struct {
	ProjectDetails     []ProjectDetail     `json:"project_details,omitempty"`
	ProjectCosts       []ProjectCost       `json:"project_costs,omitempty"`
	ManHours           []ManHour           `json:"man_hours,omitempty"`
	CostItems          []CostItem          `json:"cost_items,omitempty"`
	CostItemsSecondary []CostItemSecondary `json:"cost_items_secondary,omitempty"`
	MonthlyCosts       []MonthlyCost       `json:"monthly_costs,omitempty"`
	Materials          []Material          `json:"materials,omitempty"`
	PurchaseOrders     []PurchaseOrder     `json:"purchase_orders,omitempty"`
}

// Count returns the number of records held for a section
func (r *ParseResult) Count(kind SectionKind) int {
	if r == nil {
		return 0
	}
	switch kind {
	case SectionProjectDetails:
		return len(r.ProjectDetails)
	case SectionProjectCosts:
		return len(r.ProjectCosts)
	case SectionManHours:
		return len(r.ManHours)
	case SectionCostItems:
		return len(r.CostItems)
	case SectionCostItemsSecondary:
		return len(r.CostItemsSecondary)
	case SectionMonthlyCosts:
		return len(r.MonthlyCosts)
	case SectionMaterials:
		return len(r.Materials)
	case SectionPurchaseOrders:
		return len(r.PurchaseOrders)
	}
	return 0
}

// Sections returns the kinds present in the result, in priority order
func (r *ParseResult) Sections() []SectionKind {
	var present []SectionKind
	for _, kind := range AllSections {
		if r.Count(kind) > 0 {
			present = append(present, kind)
		}
	}
	return present
}

// SectionCounts maps each present section's output key to its record count
func (r *ParseResult) SectionCounts() map[string]int {
	counts := make(map[string]int)
	for _, kind := range r.Sections() {
		counts[kind.String()] = r.Count(kind)
	}
	return counts
}

// TotalRecords returns the number of records across all sections
func (r *ParseResult) TotalRecords() int {
	total := 0
	for _, kind := range AllSections {
		total += r.Count(kind)
	}
	return total
}

// IsEmpty reports whether no section produced a record
func (r *ParseResult) IsEmpty() bool {
	return r.TotalRecords() == 0
}

// SetReportID backfills the report identifier on every record
func (r *ParseResult) SetReportID(id string) {
	if r == nil {
		return
	}
	for i := range r.ProjectDetails {
		r.ProjectDetails[i].ReportID = id
	}
	for i := range r.ProjectCosts {
		r.ProjectCosts[i].ReportID = id
	}
	for i := range r.ManHours {
		r.ManHours[i].ReportID = id
	}
	for i := range r.CostItems {
		r.CostItems[i].ReportID = id
	}
	for i := range r.CostItemsSecondary {
		r.CostItemsSecondary[i].ReportID = id
	}
	for i := range r.MonthlyCosts {
		r.MonthlyCosts[i].ReportID = id
	}
	for i := range r.Materials {
		r.Materials[i].ReportID = id
	}
	for i := range r.PurchaseOrders {
		r.PurchaseOrders[i].ReportID = id
	}
}

// SectionRecords returns the records of one section as an untyped value,
// for reflection-driven consumers such as the storage and CSV layers.
func (r *ParseResult) SectionRecords(kind SectionKind) any {
	switch kind {
	case SectionProjectDetails:
		return r.ProjectDetails
	case SectionProjectCosts:
		return r.ProjectCosts
	case SectionManHours:
		return r.ManHours
	case SectionCostItems:
		return r.CostItems
	case SectionCostItemsSecondary:
		return r.CostItemsSecondary
	case SectionMonthlyCosts:
		return r.MonthlyCosts
	case SectionMaterials:
		return r.Materials
	case SectionPurchaseOrders:
		return r.PurchaseOrders
	}
	return nil
}
