package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fieldreports/internal/config"
	"fieldreports/internal/dataprocessing"
	apperrors "fieldreports/internal/errors"
	"fieldreports/internal/infrastructure"
	"fieldreports/internal/storage"
	"fieldreports/internal/validation"
	"fieldreports/internal/workbook"
	"fieldreports/pkg/contracts/domain"
)

// ReportStore persists parsed reports
type ReportStore interface {
	SaveReport(ctx context.Context, report domain.Report, result *domain.ParseResult) error
	LoadResult(ctx context.Context, reportID string) (*domain.ParseResult, error)
	GetReport(ctx context.Context, reportID string) (*domain.Report, error)
	ListReports(ctx context.Context, projectID string, limit int) ([]domain.Report, error)
	DeleteReport(ctx context.Context, reportID string) error
	Ping(ctx context.Context) error
}

// Upload is one workbook handed to the service
type Upload struct {
	Name     string
	Data     []byte
	ReportID string
}

// IngestRequest is an upload to be parsed and stored under a project
type IngestRequest struct {
	Upload
	ProjectID string
}

// ParseOutcome is a parse result together with what the detector saw
type ParseOutcome struct {
	ReportID     string
	SheetName    string
	Sections     []dataprocessing.SectionRange
	FallbackUsed bool
	Result       *domain.ParseResult
	Duration     time.Duration
}

// BatchItem is the outcome of one file of a batch; exactly one of Outcome and Err is set
type BatchItem struct {
	Name    string
	Outcome *ParseOutcome
	Err     error
}

// ReportService parses accomplishment reports and manages stored results
type ReportService struct {
	store     ReportStore
	validator *validation.FileValidator
	metrics   *infrastructure.BusinessMetrics
	timeout   time.Duration
	workers   int
	logger    *slog.Logger
	newID     func() string
	open      func(name string, data []byte) (*workbook.Document, error)
}

// NewReportService creates a report service. store may be nil for parse-only use;
// metrics may be nil when telemetry is disabled.
func NewReportService(store ReportStore, cfg config.ParserConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "report_service")

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultParseTimeout
	}

	logger.Info("ReportService initialized",
		slog.Int64("max_upload_bytes", cfg.MaxUploadBytes),
		slog.Duration("timeout", timeout),
		slog.Int("workers", workers),
		slog.Bool("store", store != nil))

	return &ReportService{
		store:     store,
		validator: validation.NewFileValidator(logger, cfg.MaxUploadBytes),
		metrics:   metrics,
		timeout:   timeout,
		workers:   workers,
		logger:    logger,
		newID:     uuid.NewString,
		open:      workbook.OpenBytes,
	}
}

// Parse validates and parses one upload within the configured timeout
func (s *ReportService) Parse(ctx context.Context, up Upload) (*ParseOutcome, error) {
	start := time.Now()
	logger := infrastructure.WithReport(s.logger, up.ReportID, up.Name)

	if _, err := s.validator.ValidateUpload(up.Name, up.Data); err != nil {
		s.metrics.RecordParse(ctx, outcomeOf(err), time.Since(start))
		return nil, err
	}

	parseCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type parsed struct {
		analysis *dataprocessing.Analysis
		err      error
	}
	done := make(chan parsed, 1)

	go func() {
		doc, err := s.open(up.Name, up.Data)
		if err != nil {
			done <- parsed{err: decodeError(up.Name, err)}
			return
		}
		analysis, err := dataprocessing.Analyze(doc,
			dataprocessing.WithReportID(up.ReportID),
			dataprocessing.WithLogger(logger))
		done <- parsed{analysis: analysis, err: err}
	}()

	var res parsed
	select {
	case res = <-done:
	case <-parseCtx.Done():
		res.err = parseCtx.Err()
		if errors.Is(res.err, context.DeadlineExceeded) {
			res.err = fmt.Errorf("%w after %s: %w", ErrParseTimeout, s.timeout, res.err)
		}
	}

	duration := time.Since(start)
	s.metrics.RecordParse(ctx, outcomeOf(res.err), duration)

	if res.err != nil {
		infrastructure.RecordError(ctx, res.err)
		infrastructure.WithError(logger, res.err).WarnContext(ctx, "Report parse failed",
			slog.Duration("duration", duration))
		return nil, res.err
	}

	a := res.analysis
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"report.sheet":         a.SheetName,
		"report.records":       a.Result.TotalRecords(),
		"report.fallback_used": a.FallbackUsed,
	})
	for _, kind := range a.Result.Sections() {
		source := "header"
		if kind == domain.SectionCostItemsSecondary && a.FallbackUsed {
			source = "fallback"
		}
		s.metrics.RecordSection(ctx, kind.String(), source, a.Result.Count(kind))
	}

	logger.InfoContext(ctx, "Report parsed",
		slog.String("sheet", a.SheetName),
		slog.Any("sections", a.Result.SectionCounts()),
		slog.Int("records", a.Result.TotalRecords()),
		slog.Bool("fallback_used", a.FallbackUsed),
		slog.Duration("duration", duration))

	return &ParseOutcome{
		ReportID:     up.ReportID,
		SheetName:    a.SheetName,
		Sections:     a.Sections,
		FallbackUsed: a.FallbackUsed,
		Result:       a.Result,
		Duration:     duration,
	}, nil
}

// Ingest parses an upload and stores it, replacing any report with the same id
func (s *ReportService) Ingest(ctx context.Context, req IngestRequest) (*domain.ReportSummary, error) {
	if s.store == nil {
		return nil, ErrServiceUnavailable
	}

	req.ProjectID = strings.TrimSpace(req.ProjectID)
	if req.ProjectID == "" {
		return nil, apperrors.NewAppValidationError("project_id is required")
	}
	if req.ReportID == "" {
		req.ReportID = s.newID()
	}

	outcome, err := s.Parse(ctx, req.Upload)
	if err != nil {
		return nil, err
	}

	outcome.Result.SetReportID(req.ReportID)

	report := domain.Report{
		ID:          req.ReportID,
		ProjectID:   req.ProjectID,
		SourceName:  filepath.Base(req.Name),
		SheetName:   outcome.SheetName,
		Status:      domain.ReportStatusStored,
		RecordCount: outcome.Result.TotalRecords(),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.SaveReport(ctx, report, outcome.Result); err != nil {
		infrastructure.RecordError(ctx, err)
		infrastructure.WithError(s.logger, err).ErrorContext(ctx, "Failed to store report",
			slog.String("report_id", report.ID))
		return nil, storageError(report.ID, err)
	}

	s.logger.InfoContext(ctx, "Report ingested",
		slog.String("report_id", report.ID),
		slog.String("project_id", report.ProjectID),
		slog.Int("records", report.RecordCount))

	return &domain.ReportSummary{
		ReportID:     report.ID,
		ProjectID:    report.ProjectID,
		SheetName:    report.SheetName,
		Sections:     outcome.Result.SectionCounts(),
		RecordCount:  report.RecordCount,
		FallbackUsed: outcome.FallbackUsed,
	}, nil
}

// ParseBatch parses uploads concurrently, bounded by the configured worker count.
// A failing file is reported in its item and does not stop the others.
func (s *ReportService) ParseBatch(ctx context.Context, uploads []Upload) []BatchItem {
	items := make([]BatchItem, len(uploads))

	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, up := range uploads {
		g.Go(func() error {
			outcome, err := s.Parse(ctx, up)
			items[i] = BatchItem{Name: up.Name, Outcome: outcome, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return items
}

// GetResult reconstructs the parse result of a stored report
func (s *ReportService) GetResult(ctx context.Context, reportID string) (*domain.ParseResult, error) {
	if s.store == nil {
		return nil, ErrServiceUnavailable
	}
	return s.store.LoadResult(ctx, reportID)
}

// GetReport returns the metadata of a stored report
func (s *ReportService) GetReport(ctx context.Context, reportID string) (*domain.Report, error) {
	if s.store == nil {
		return nil, ErrServiceUnavailable
	}
	return s.store.GetReport(ctx, reportID)
}

// ListReports lists stored reports, newest first, optionally for one project
func (s *ReportService) ListReports(ctx context.Context, projectID string, limit int) ([]domain.Report, error) {
	if s.store == nil {
		return nil, ErrServiceUnavailable
	}
	return s.store.ListReports(ctx, projectID, limit)
}

// DeleteReport removes a stored report and all of its section rows
func (s *ReportService) DeleteReport(ctx context.Context, reportID string) error {
	if s.store == nil {
		return ErrServiceUnavailable
	}
	if err := s.store.DeleteReport(ctx, reportID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Report deleted", slog.String("report_id", reportID))
	return nil
}

// decodeError tags a workbook decoding failure: unreadable formats stay
// unsupported, anything else is a document the decoder choked on.
func decodeError(name string, err error) error {
	if errors.Is(err, workbook.ErrUnsupportedFormat) {
		return apperrors.NewUnsupportedError(fmt.Sprintf("%s is not a readable workbook", filepath.Base(name)), err)
	}
	return apperrors.NewParsingError(fmt.Sprintf("failed to decode %s", filepath.Base(name)), err).
		WithContext("file", filepath.Base(name))
}

// storageError lifts a store failure into an application storage error that
// names the table it failed on
func storageError(reportID string, err error) error {
	appErr := apperrors.NewStorageError("failed to store report", err).
		WithContext("report_id", reportID)
	var persistErr *storage.PersistenceError
	if errors.As(err, &persistErr) {
		appErr.WithContext("table", persistErr.Table)
	}
	return appErr
}

// outcomeOf classifies a parse error for the reports_parsed_total metric
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, dataprocessing.ErrSheetNotFound):
		return "sheet_not_found"
	case errors.Is(err, workbook.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, validation.ErrEmptyFile), errors.Is(err, validation.ErrFileTooLarge), errors.Is(err, validation.ErrTemporaryFile):
		return "invalid_upload"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
