package dataprocessing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"fieldreports/internal/workbook"
)

const (
	// serial day of 1970-01-01 in the 1899-12-30 spreadsheet epoch
	serialUnixEpoch = 25569
	secondsPerDay   = 86400

	minDateYear = 1900
	maxDateYear = 2100

	isoDateLayout = "2006-01-02"
)

// ErrDateOutOfRange marks a date that decoded to a year outside [1900, 2100]
var ErrDateOutOfRange = errors.New("date outside supported range")

var numberReplacer = strings.NewReplacer(
	",", "",
	"'", "",
	" ", "",
	"\u00a0", "",
	"\u202f", "",
)

// CoerceText trims a raw value; blank input is missing.
func CoerceText(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// CoerceNumber strips thousands separators and parses a decimal.
// Blank input yields (nil, nil); non-numeric input yields nil and a diagnostic error.
func CoerceNumber(raw string) (*decimal.Decimal, error) {
	s := numberReplacer.Replace(strings.TrimSpace(raw))
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", raw)
	}
	return &d, nil
}

// SerialToTime converts a spreadsheet serial day count to a UTC instant.
func SerialToTime(serial float64) time.Time {
	secs := (serial - serialUnixEpoch) * secondsPerDay
	return time.Unix(int64(math.Floor(secs)), 0).UTC()
}

// CoerceDate reads a cell as a calendar date and returns it as YYYY-MM-DD.
// Number cells are serial day counts; text cells go through a general date
// parser, so numeric-looking text such as "2024" is read as a year. Blank input yields (nil, nil). Dates outside [1900, 2100] are
// treated as corrupt and return ErrDateOutOfRange.
func CoerceDate(cell workbook.Cell) (*string, error) {
	raw := strings.TrimSpace(cell.Text)
	if raw == "" {
		return nil, nil
	}

	var t time.Time
	if cell.Kind == workbook.CellNumber {
		serial, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(serial) || math.IsInf(serial, 0) {
			return nil, fmt.Errorf("not a serial date: %q", raw)
		}
		if math.Abs(serial) > 1e7 {
			return nil, fmt.Errorf("%w: serial %q", ErrDateOutOfRange, raw)
		}
		t = SerialToTime(serial)
	} else {
		parsed, err := dateparse.ParseIn(raw, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("not a date: %q", raw)
		}
		t = parsed.UTC()
	}

	if y := t.Year(); y < minDateYear || y > maxDateYear {
		return nil, fmt.Errorf("%w: %q decoded to year %d", ErrDateOutOfRange, raw, y)
	}

	s := t.Format(isoDateLayout)
	return &s, nil
}
