package http

import (
	"context"

	"fieldreports/internal/services"
	"fieldreports/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations used by the handlers
type ReportServiceInterface interface {
	Parse(ctx context.Context, up services.Upload) (*services.ParseOutcome, error)
	ParseBatch(ctx context.Context, uploads []services.Upload) []services.BatchItem
	Ingest(ctx context.Context, req services.IngestRequest) (*domain.ReportSummary, error)
	GetResult(ctx context.Context, reportID string) (*domain.ParseResult, error)
	GetReport(ctx context.Context, reportID string) (*domain.Report, error)
	ListReports(ctx context.Context, projectID string, limit int) ([]domain.Report, error)
	DeleteReport(ctx context.Context, reportID string) error
}
