// Package shared groups helpers used across the report packages.
//
//   - columns: maps record struct fields to column names through `db` tags,
//     shared by the parser row builders, the SQL store and the CSV exporter
//   - testutil: generated sample workbooks and a buffered slog handler for tests
package shared
