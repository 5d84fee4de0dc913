package domain

import (
	"github.com/shopspring/decimal"
)

// Decimal fields are written to JSON as bare numbers using their exact
// decimal text, so "1,234.50" in a cell is emitted as 1234.5.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Record types extracted from the data sheet of an accomplishment report.
// Optional fields are pointers: nil means the cell was empty or could not be coerced.
// Dates are ISO calendar strings (YYYY-MM-DD).

// ProjectDetail is one row of the project details section
type ProjectDetail struct {
	ReportID       string           `json:"report_id" db:"report_id"`
	ProjectID      *string          `json:"project_id" db:"project_id"`
	ProjectName    *string          `json:"project_name,omitempty" db:"project_name"`
	Client         *string          `json:"client,omitempty" db:"client"`
	Location       *string          `json:"location,omitempty" db:"location"`
	StartDate      *string          `json:"start_date,omitempty" db:"start_date"`
	EndDate        *string          `json:"end_date,omitempty" db:"end_date"`
	ContractAmount *decimal.Decimal `json:"contract_amount,omitempty" db:"contract_amount"`
	Status         *string          `json:"status,omitempty" db:"status"`
	ProjectManager *string          `json:"project_manager,omitempty" db:"project_manager"`
}

// ProjectCost is one row of the project cost totals section
type ProjectCost struct {
	ReportID        string           `json:"report_id" db:"report_id"`
	ProjectID       *string          `json:"project_id" db:"project_id"`
	TargetCostTotal *decimal.Decimal `json:"target_cost_total,omitempty" db:"target_cost_total"`
	SWACostTotal    *decimal.Decimal `json:"swa_cost_total,omitempty" db:"swa_cost_total"`
	ActualCostTotal *decimal.Decimal `json:"actual_cost_total,omitempty" db:"actual_cost_total"`
	Variance        *decimal.Decimal `json:"variance,omitempty" db:"variance"`
	Remarks         *string          `json:"remarks,omitempty" db:"remarks"`
}

// ManHour is one dated row of the man-hours section
type ManHour struct {
	ReportID          string           `json:"report_id" db:"report_id"`
	Date              *string          `json:"date" db:"date"`
	ProjectID         *string          `json:"project_id,omitempty" db:"project_id"`
	ActualManhours    *decimal.Decimal `json:"actual_manhours,omitempty" db:"actual_manhours"`
	ProjectedManhours *decimal.Decimal `json:"projected_manhours,omitempty" db:"projected_manhours"`
	Headcount         *decimal.Decimal `json:"headcount,omitempty" db:"headcount"`
	Remarks           *string          `json:"remarks,omitempty" db:"remarks"`
}

// CostItem is one WBS-coded cost line
type CostItem struct {
	ReportID    string           `json:"report_id" db:"report_id"`
	ProjectID   *string          `json:"project_id" db:"project_id"`
	ItemNo      *string          `json:"item_no,omitempty" db:"item_no"`
	Description *string          `json:"description,omitempty" db:"description"`
	WBS         *string          `json:"wbs,omitempty" db:"wbs"`
	Cost        *decimal.Decimal `json:"cost,omitempty" db:"cost"`
	Category    *string          `json:"category,omitempty" db:"category"`
	Remarks     *string          `json:"remarks,omitempty" db:"remarks"`
}

// CostItemSecondary is a cost line from the template variant without a WBS column
type CostItemSecondary struct {
	ReportID    string           `json:"report_id" db:"report_id"`
	ProjectID   *string          `json:"project_id" db:"project_id"`
	ItemNo      *string          `json:"item_no,omitempty" db:"item_no"`
	Description *string          `json:"description,omitempty" db:"description"`
	Cost        *decimal.Decimal `json:"cost,omitempty" db:"cost"`
	Category    *string          `json:"category,omitempty" db:"category"`
	Remarks     *string          `json:"remarks,omitempty" db:"remarks"`
}

// MonthlyCost is one month of target vs actual spend
type MonthlyCost struct {
	ReportID       string           `json:"report_id" db:"report_id"`
	ProjectID      *string          `json:"project_id" db:"project_id"`
	Month          *string          `json:"month,omitempty" db:"month"`
	TargetCost     *decimal.Decimal `json:"target_cost,omitempty" db:"target_cost"`
	SWACost        *decimal.Decimal `json:"swa_cost,omitempty" db:"swa_cost"`
	ActualCost     *decimal.Decimal `json:"actual_cost,omitempty" db:"actual_cost"`
	CumulativeCost *decimal.Decimal `json:"cumulative_cost,omitempty" db:"cumulative_cost"`
}

// Material is one material usage line
type Material struct {
	ReportID  string           `json:"report_id" db:"report_id"`
	ProjectID *string          `json:"project_id" db:"project_id"`
	Material  *string          `json:"material,omitempty" db:"material"`
	Type      *string          `json:"type,omitempty" db:"type"`
	Unit      *string          `json:"unit,omitempty" db:"unit"`
	SumQty    *decimal.Decimal `json:"sumqty,omitempty" db:"sumqty"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty" db:"unit_cost"`
	TotalCost *decimal.Decimal `json:"total_cost,omitempty" db:"total_cost"`
}

// PurchaseOrder is one purchase order line
type PurchaseOrder struct {
	ReportID           string           `json:"report_id" db:"report_id"`
	ProjectID          *string          `json:"project_id" db:"project_id"`
	PONumber           *string          `json:"po_number,omitempty" db:"po_number"`
	DateRequested      *string          `json:"date_requested,omitempty" db:"date_requested"`
	MaterialsRequested *string          `json:"materials_requested,omitempty" db:"materials_requested"`
	Quantity           *decimal.Decimal `json:"quantity,omitempty" db:"quantity"`
	Amount             *decimal.Decimal `json:"amount,omitempty" db:"amount"`
	Supplier           *string          `json:"supplier,omitempty" db:"supplier"`
	Status             *string          `json:"status,omitempty" db:"status"`
}
