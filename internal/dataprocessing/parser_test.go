package dataprocessing

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldreports/internal/shared/testutil"
	"fieldreports/internal/workbook"
	"fieldreports/pkg/contracts/domain"
)

func TestParse_SheetNotFound(t *testing.T) {
	doc := workbook.NewDocument("report.xlsx",
		workbook.NewSheet("Cover", [][]string{{"Project_ID", "Client"}, {"1", "x"}}),
		workbook.NewSheet("Summary", nil),
	)

	result, err := Parse(doc)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSheetNotFound)

	var notFound *SheetNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, []string{"Cover", "Summary"}, notFound.Sheets)
	assert.Contains(t, err.Error(), "Cover, Summary")

	_, err = Parse(nil)
	assert.ErrorIs(t, err, ErrSheetNotFound)

	_, err = Parse(workbook.NewDocument("empty.xlsx"))
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestLocateDataSheet(t *testing.T) {
	tests := []struct {
		name   string
		sheets []string
		want   string
	}{
		{name: "exact", sheets: []string{"Cover", "Data Sheet"}, want: "Data Sheet"},
		{name: "upper case no space", sheets: []string{"DATASHEET"}, want: "DATASHEET"},
		{name: "embedded", sheets: []string{"Summary", "Week 32 data sheet v2"}, want: "Week 32 data sheet v2"},
		{name: "first of several", sheets: []string{"Data Sheet (old)", "Data Sheet"}, want: "Data Sheet (old)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sheets []*workbook.Sheet
			for _, name := range tt.sheets {
				sheets = append(sheets, workbook.NewSheet(name, nil))
			}
			got, err := LocateDataSheet(workbook.NewDocument("r.xlsx", sheets...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}

	_, err := LocateDataSheet(workbook.NewDocument("r.xlsx", workbook.NewSheet("Data", nil), workbook.NewSheet("Sheet 1", nil)))
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestParseBytes_SampleReport(t *testing.T) {
	data := testutil.SampleReportWorkbook(t)

	result, err := ParseBytes("week-32.xlsx", data, WithReportID("rpt-32"))
	require.NoError(t, err)

	require.Len(t, result.ProjectDetails, 2)
	pd := result.ProjectDetails[0]
	assert.Equal(t, "rpt-32", pd.ReportID)
	assertText(t, "2134.00", pd.ProjectID)
	assertText(t, "North Bridge", pd.ProjectName)
	assertText(t, "DPWH", pd.Client)
	assertText(t, "2023-01-01", pd.StartDate)
	assertText(t, "2023-12-31", pd.EndDate)
	assertDecimal(t, "1250000", pd.ContractAmount)
	assertText(t, "J. Cruz", pd.ProjectManager)

	pd = result.ProjectDetails[1]
	assertText(t, "2135.00", pd.ProjectID)
	assertText(t, "2023-01-15", pd.StartDate)
	assert.Nil(t, pd.EndDate)
	assertDecimal(t, "980000", pd.ContractAmount)
	assert.Nil(t, pd.ProjectManager)

	require.Len(t, result.ProjectCosts, 1)
	assertDecimal(t, "1000000", result.ProjectCosts[0].TargetCostTotal)
	assertDecimal(t, "950000", result.ProjectCosts[0].SWACostTotal)
	assertDecimal(t, "900500.75", result.ProjectCosts[0].ActualCostTotal)
	assertDecimal(t, "99499.25", result.ProjectCosts[0].Variance)
	assertText(t, "On track", result.ProjectCosts[0].Remarks)

	require.Len(t, result.ManHours, 2, "the row without a date is skipped")
	assertText(t, "2023-08-01", result.ManHours[0].Date)
	assertDecimal(t, "320", result.ManHours[0].ActualManhours)
	assertDecimal(t, "40", result.ManHours[0].Headcount)
	assert.Nil(t, result.ManHours[0].Remarks)
	assertText(t, "2023-08-02", result.ManHours[1].Date)
	assertDecimal(t, "310.5", result.ManHours[1].ActualManhours)
	assertText(t, "Rain delay", result.ManHours[1].Remarks)

	require.Len(t, result.CostItemsSecondary, 1)
	assertText(t, "2.1", result.CostItemsSecondary[0].ItemNo)
	assertDecimal(t, "35000", result.CostItemsSecondary[0].Cost)

	require.Len(t, result.CostItems, 2)
	assertText(t, "WBS-01", result.CostItems[0].WBS)
	assertDecimal(t, "12500", result.CostItems[0].Cost)
	assert.Nil(t, result.CostItems[1].Cost, "n/a is missing, not zero")
	assertText(t, "pending quote", result.CostItems[1].Remarks)

	require.Len(t, result.MonthlyCosts, 2)
	assertText(t, "2023-07-01", result.MonthlyCosts[0].Month)
	assertDecimal(t, "235000", result.MonthlyCosts[0].ActualCost)
	assertText(t, "2023-08-01", result.MonthlyCosts[1].Month)
	assertDecimal(t, "495000", result.MonthlyCosts[1].CumulativeCost)

	require.Len(t, result.Materials, 1)
	assertText(t, "Cement", result.Materials[0].Material)
	assertText(t, "Portland", result.Materials[0].Type)
	assertDecimal(t, "500", result.Materials[0].SumQty)
	assertDecimal(t, "127500", result.Materials[0].TotalCost)

	require.Len(t, result.PurchaseOrders, 1, "the blank-key purchase order is skipped")
	assertText(t, "PO-0091", result.PurchaseOrders[0].PONumber)
	assertText(t, "2023-08-12", result.PurchaseOrders[0].DateRequested)
	assertDecimal(t, "51000", result.PurchaseOrders[0].Amount)

	assert.Equal(t, 12, result.TotalRecords())
}

func TestAnalyze_SampleReport(t *testing.T) {
	doc, err := workbook.OpenBytes("week-32.xlsx", testutil.SampleReportWorkbook(t))
	require.NoError(t, err)

	analysis, err := Analyze(doc)
	require.NoError(t, err)

	assert.Equal(t, testutil.SampleDataSheetName, analysis.SheetName)
	assert.False(t, analysis.FallbackUsed)
	assert.Equal(t, []SectionRange{
		{Kind: domain.SectionProjectDetails, StartRow: 3, EndRow: 7},
		{Kind: domain.SectionProjectCosts, StartRow: 7, EndRow: 9},
		{Kind: domain.SectionManHours, StartRow: 9, EndRow: 13},
		{Kind: domain.SectionCostItemsSecondary, StartRow: 13, EndRow: 15},
		{Kind: domain.SectionCostItems, StartRow: 15, EndRow: 18},
		{Kind: domain.SectionMonthlyCosts, StartRow: 18, EndRow: 21},
		{Kind: domain.SectionMaterials, StartRow: 21, EndRow: 23},
		{Kind: domain.SectionPurchaseOrders, StartRow: 23, EndRow: 26},
	}, analysis.Sections)
}

func TestParse_Idempotent(t *testing.T) {
	doc, err := workbook.OpenBytes("week-32.xlsx", testutil.SampleReportWorkbook(t))
	require.NoError(t, err)

	first, err := Parse(doc, WithReportID("rpt"))
	require.NoError(t, err)
	second, err := Parse(doc, WithReportID("rpt"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParse_Concurrent(t *testing.T) {
	doc, err := workbook.OpenBytes("week-32.xlsx", testutil.SampleReportWorkbook(t))
	require.NoError(t, err)

	want, err := Parse(doc)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*domain.ParseResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Parse(doc)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestParse_AbsentSectionsAreNil(t *testing.T) {
	doc := dataSheet(
		[]string{"Project_ID", "Project Name"},
		[]string{"2134.00", "North Bridge"},
		[]string{"Date", "Actual_Manhours"},
		[]string{""},
	)

	result, err := Parse(doc)
	require.NoError(t, err)

	assert.Len(t, result.ProjectDetails, 1)
	assert.Nil(t, result.ManHours, "detected but filtered to nothing is absent")
	assert.Nil(t, result.ProjectCosts)
	assert.Nil(t, result.CostItemsSecondary)
	assert.Equal(t, []domain.SectionKind{domain.SectionProjectDetails}, result.Sections())
}

func TestParseFile(t *testing.T) {
	path := testutil.WriteWorkbook(t, t.TempDir(), "week-32.xlsx", testutil.SampleReportWorkbook(t))

	result, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, result.ProjectDetails, 2)

	_, err = ParseFile(path + ".missing")
	assert.Error(t, err)

	noData := testutil.BuildWorkbook(t, testutil.FixtureSheet{Name: "Sheet1", Rows: [][]interface{}{{"x"}}})
	_, err = ParseBytes("plain.xlsx", noData)
	assert.ErrorIs(t, err, ErrSheetNotFound)

	_, err = ParseBytes("notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, workbook.ErrUnsupportedFormat)
}
