package dataprocessing

import (
	"fmt"
	"log/slog"

	"fieldreports/internal/workbook"
	"fieldreports/pkg/contracts/domain"
)

// Option configures a single parse call
type Option func(*options)

type options struct {
	reportID string
	logger   *slog.Logger
}

// WithReportID tags every emitted record with the given report identifier
func WithReportID(id string) Option {
	return func(o *options) { o.reportID = id }
}

// WithLogger routes parse diagnostics to logger instead of slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Analysis is the outcome of one parse together with what the detector saw
type Analysis struct {
	SheetName    string
	Sections     []SectionRange
	FallbackUsed bool
	Result       *domain.ParseResult
}

// Parse extracts all report sections from the data sheet of doc.
// The only error is *SheetNotFoundError; every other anomaly yields a smaller result.
func Parse(doc *workbook.Document, opts ...Option) (*domain.ParseResult, error) {
	analysis, err := Analyze(doc, opts...)
	if err != nil {
		return nil, err
	}
	return analysis.Result, nil
}

// ParseFile decodes the workbook at path and parses it
func ParseFile(path string, opts ...Option) (*domain.ParseResult, error) {
	doc, err := workbook.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return Parse(doc, opts...)
}

// ParseBytes decodes an in-memory workbook and parses it
func ParseBytes(name string, data []byte, opts ...Option) (*domain.ParseResult, error) {
	doc, err := workbook.OpenBytes(name, data)
	if err != nil {
		return nil, err
	}
	return Parse(doc, opts...)
}

// Analyze runs the locate, detect and extract passes and aggregates the result.
func Analyze(doc *workbook.Document, opts ...Option) (*Analysis, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	sheet, err := LocateDataSheet(doc)
	if err != nil {
		o.logger.Warn("No data sheet in workbook", slog.String("error", err.Error()))
		return nil, err
	}

	logger := o.logger.With(slog.String("sheet", sheet.Name))
	ranges := DetectSections(sheet)
	for _, rng := range ranges {
		logger.Debug("Section detected",
			slog.String("section", rng.Kind.String()),
			slog.Int("start_row", rng.StartRow),
			slog.Int("end_row", rng.EndRow))
	}

	e := &extractor{sheet: sheet, reportID: o.reportID, logger: logger}
	result, fallbackUsed := aggregate(e, ranges)

	logger.Debug("Report parsed",
		slog.Int("rows", len(sheet.Rows)),
		slog.Int("sections_detected", len(ranges)),
		slog.Int("records", result.TotalRecords()),
		slog.Bool("fallback_used", fallbackUsed))

	return &Analysis{
		SheetName:    sheet.Name,
		Sections:     ranges,
		FallbackUsed: fallbackUsed,
		Result:       result,
	}, nil
}

// aggregate runs one extractor per section kind. A section is present in the
// result only if it produced at least one record.
func aggregate(e *extractor, ranges []SectionRange) (*domain.ParseResult, bool) {
	byKind := make(map[domain.SectionKind]SectionRange, len(ranges))
	for _, rng := range ranges {
		byKind[rng.Kind] = rng
	}

	result := &domain.ParseResult{}
	fallbackUsed := false

	for _, kind := range domain.AllSections {
		rng, detected := byKind[kind]
		if !detected && kind != domain.SectionCostItemsSecondary {
			e.logger.Debug("Section missing", slog.String("section", kind.String()))
			continue
		}

		switch kind {
		case domain.SectionProjectDetails:
			result.ProjectDetails = nonEmpty(extractSection[domain.ProjectDetail](e, rng))
		case domain.SectionProjectCosts:
			result.ProjectCosts = nonEmpty(extractSection[domain.ProjectCost](e, rng))
		case domain.SectionManHours:
			result.ManHours = nonEmpty(extractSection[domain.ManHour](e, rng))
		case domain.SectionCostItems:
			result.CostItems = nonEmpty(extractSection[domain.CostItem](e, rng))
		case domain.SectionCostItemsSecondary:
			if detected {
				result.CostItemsSecondary = nonEmpty(extractSection[domain.CostItemSecondary](e, rng))
			} else {
				fallbackUsed = true
				result.CostItemsSecondary = nonEmpty(extractSecondaryFallback(e))
				e.logger.Debug("Cost items secondary recovered by whole-sheet scan",
					slog.Int("records", len(result.CostItemsSecondary)))
			}
		case domain.SectionMonthlyCosts:
			result.MonthlyCosts = nonEmpty(extractSection[domain.MonthlyCost](e, rng))
		case domain.SectionMaterials:
			result.Materials = nonEmpty(extractSection[domain.Material](e, rng))
		case domain.SectionPurchaseOrders:
			result.PurchaseOrders = nonEmpty(extractSection[domain.PurchaseOrder](e, rng))
		}
	}

	return result, fallbackUsed
}

func nonEmpty[T any](records []T) []T {
	if len(records) == 0 {
		return nil
	}
	return records
}
