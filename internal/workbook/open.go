package workbook

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrUnsupportedFormat is returned when the content is not a known spreadsheet format
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Open reads all of r and decodes it as a workbook
func Open(name string, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return OpenBytes(name, data)
}

// OpenFile decodes the workbook at path
func OpenFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return OpenBytes(filepath.Base(path), data)
}

// OpenBytes decodes an in-memory workbook, choosing the decoder by content
func OpenBytes(name string, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrUnsupportedFormat, name)
	}

	switch format := DetectFormat(name, data); format {
	case FormatXLSX:
		return loadXLSX(name, data)
	case FormatXLS:
		return loadXLS(name, data)
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, name, MIMEType(data))
	}
}

func isNumeric(s string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}

func classify(v string) Cell {
	if isNumeric(v) {
		return NumberCell(v)
	}
	return TextCell(v)
}

// trimRow drops trailing empty cells so row widths match what excelize reports
func trimRow(row Row) Row {
	end := len(row)
	for end > 0 && row[end-1].IsEmpty() {
		end--
	}
	return row[:end]
}
