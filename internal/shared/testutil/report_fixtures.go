package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// FixtureSheet is one worksheet of a generated workbook. A nil row leaves a blank line.
type FixtureSheet struct {
	Name string
	Rows [][]interface{}
}

// SampleDataSheetName is the data sheet name used by SampleReportSheets
const SampleDataSheetName = "Data Sheet (Week 32)"

// SampleReportRows is a complete weekly accomplishment data sheet with all
// eight sections. Row indices are zero-based:
//
//	 3 project details header, 4-5 data
//	 7 project costs header, 8 data
//	 9 man-hours header, 10-11 data, 12 missing date
//	13 cost items (no WBS) header, 14 data
//	15 cost items header, 16-17 data
//	18 monthly costs header, 19-20 data
//	21 materials header, 22 data
//	23 purchase orders header, 24 data, 25 blank key
func SampleReportRows() [][]interface{} {
	return [][]interface{}{
		{"Weekly Accomplishment Report"},
		{"Week", 32},
		nil,
		{"Project_ID", "Project Name", "Client", "Location", "Start Date", "End Date", "Contract Amount", "Status", "Project Manager"},
		{"2134.00", "North Bridge", "DPWH", "Cebu", 44927, "2023-12-31", "1,250,000.00", "Ongoing", "J. Cruz"},
		{"2135.00", "Harbor Road", "City of Cebu", "Mandaue", "01/15/2023", "", 980000, "Ongoing"},
		nil,
		{"Project_ID", "Target Cost Total", "SWA Cost Total", "Actual Cost Total", "Variance", "Remarks"},
		{"2134.00", "1,000,000", "950,000", "900,500.75", "99,499.25", "On track"},
		{"Date", "Project_ID", "Actual_Manhours", "Projected_Manhours", "Headcount", "Remarks"},
		{45139, "2134.00", 320, 300, 40},
		{45140, "2134.00", "310.5", 300, 38, "Rain delay"},
		{"", "2134.00", 100, 100, 10, "no date"},
		{"Project_ID", "Item_No", "Description", "Cost", "Category", "Remarks"},
		{"2134.00", "2.1", "Mobilization", "35,000", "General"},
		{"Project_ID", "Item_No", "Description", "WBS", "Cost", "Category", "Remarks"},
		{"2134.00", "1.1", "Excavation", "WBS-01", "12,500.00", "Civil"},
		{"2134.00", "1.2", "Rebar", "WBS-02", "n/a", "Civil", "pending quote"},
		{"Project_ID", "Month", "TargetCost", "SWA_Cost", "Actual Cost", "Cumulative"},
		{"2134.00", 45108, "250,000", "240,000", "235,000", "235,000"},
		{"2134.00", "2023-08-01", "250,000", "240,000", "260,000", "495,000"},
		{"Project_ID", "Material", "Type", "Unit", "SumQty", "Unit Cost", "Total Cost"},
		{"2134.00", "Cement", "Portland", "bag", 500, 255, "127,500"},
		{"Project_ID", "PO Number", "Date Requested", "Materials Requested", "Quantity", "Amount", "Supplier", "Status"},
		{"2134.00", "PO-0091", 45150, "Cement", 200, "51,000.00", "Holcim", "Approved"},
		{" ", "PO-0092", 45151, "Sand", 10, "8,000"},
	}
}

// SampleReportSheets returns a cover sheet followed by the sample data sheet
func SampleReportSheets() []FixtureSheet {
	return []FixtureSheet{
		{Name: "Cover", Rows: [][]interface{}{{"Prepared by", "Site Engineer"}}},
		{Name: SampleDataSheetName, Rows: SampleReportRows()},
	}
}

// BuildWorkbook renders sheets into xlsx bytes
func BuildWorkbook(t testing.TB, sheets ...FixtureSheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				t.Fatalf("failed to rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("failed to add sheet %q: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			if row == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("invalid row %d: %v", r, err)
			}
			values := row
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				t.Fatalf("failed to write row %d: %v", r, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to render workbook: %v", err)
	}
	return buf.Bytes()
}

// SampleReportWorkbook renders the sample report as xlsx bytes
func SampleReportWorkbook(t testing.TB) []byte {
	return BuildWorkbook(t, SampleReportSheets()...)
}

// WriteWorkbook stores data under dir and returns the file path
func WriteWorkbook(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write workbook: %v", err)
	}
	return path
}
