// Package storage persists parsed reports in a SQL database.
//
// Each report owns one row in the reports table plus one row per record in
// the table named after its section (man_hours, cost_items, ...), keyed by
// (report_id, position). Dates are ISO text, numbers are decimal strings on
// SQLite and NUMERIC on PostgreSQL. Schemas live in embedded goose migrations.
package storage
