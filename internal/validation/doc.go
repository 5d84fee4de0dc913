// Package validation checks report files before they reach the parser:
// size limits, Office lock files and content-sniffed spreadsheet format.
package validation
