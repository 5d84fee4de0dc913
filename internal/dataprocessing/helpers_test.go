package dataprocessing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldreports/internal/workbook"
)

// dataSheet builds a document with a single "Data Sheet" from string rows.
// A nil row is blank.
func dataSheet(rows ...[]string) *workbook.Document {
	return workbook.NewDocument("test.xlsx", workbook.NewSheet("Data Sheet", rows))
}

// padRows returns n blank rows
func padRows(n int) [][]string {
	return make([][]string, n)
}

func assertDecimal(t *testing.T, want string, got *decimal.Decimal) {
	t.Helper()
	require.NotNil(t, got, "expected %s, got missing", want)
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "expected %s, got %s", want, got.String())
}

func assertText(t *testing.T, want string, got *string) {
	t.Helper()
	require.NotNil(t, got, "expected %q, got missing", want)
	assert.Equal(t, want, *got)
}
