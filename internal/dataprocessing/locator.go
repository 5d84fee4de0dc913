package dataprocessing

import (
	"errors"
	"fmt"
	"strings"

	"fieldreports/internal/workbook"
)

// ErrSheetNotFound is matched by *SheetNotFoundError through errors.Is
var ErrSheetNotFound = errors.New("data sheet not found")

// dataSheetNames are matched case-insensitively as substrings of sheet names
var dataSheetNames = []string{"data sheet", "datasheet"}

// SheetNotFoundError is the only fatal parse error: no worksheet is named like a data sheet.
type SheetNotFoundError struct {
	Sheets []string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("data sheet not found (sheets: %s)", strings.Join(e.Sheets, ", "))
}

// Is makes errors.Is(err, ErrSheetNotFound) succeed
func (e *SheetNotFoundError) Is(target error) bool {
	return target == ErrSheetNotFound
}

// LocateDataSheet returns the first sheet, in document order, whose name
// contains "data sheet" or "datasheet" regardless of case.
func LocateDataSheet(doc *workbook.Document) (*workbook.Sheet, error) {
	if doc == nil {
		return nil, &SheetNotFoundError{}
	}

	for _, sheet := range doc.Sheets {
		name := strings.ToLower(sheet.Name)
		for _, want := range dataSheetNames {
			if strings.Contains(name, want) {
				return sheet, nil
			}
		}
	}

	return nil, &SheetNotFoundError{Sheets: doc.SheetNames()}
}
