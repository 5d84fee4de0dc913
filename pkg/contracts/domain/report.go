package domain

import (
	"time"
)

// Report represents one ingested accomplishment report
type Report struct {
	ID          string       `json:"report_id" db:"report_id" validate:"required,max=64"`
	ProjectID   string       `json:"project_id" db:"project_id" validate:"required,max=64"`
	SourceName  string       `json:"source_name" db:"source_name"`
	SheetName   string       `json:"sheet_name" db:"sheet_name"`
	Status      ReportStatus `json:"status" db:"status"`
	RecordCount int          `json:"record_count" db:"record_count"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

// ReportStatus represents the processing status of a report
type ReportStatus string

const (
	ReportStatusPending ReportStatus = "pending"
	ReportStatusParsed  ReportStatus = "parsed"
	ReportStatusStored  ReportStatus = "stored"
	ReportStatusFailed  ReportStatus = "failed"
)

// ReportSummary is the per-ingest summary returned to clients
type ReportSummary struct {
	ReportID     string         `json:"report_id"`
	ProjectID    string         `json:"project_id"`
	SheetName    string         `json:"sheet"`
	Sections     map[string]int `json:"sections"`
	RecordCount  int            `json:"record_count"`
	FallbackUsed bool           `json:"fallback_used"`
}
