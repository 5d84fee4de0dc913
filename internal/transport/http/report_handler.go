package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "fieldreports/internal/errors"
	"fieldreports/internal/exporter"
	"fieldreports/internal/middleware"
	"fieldreports/internal/services"
	"fieldreports/internal/storage"
	"fieldreports/pkg/contracts/domain"
)

const (
	// multipartMemory is how much of a multipart body is buffered in memory before spilling to disk
	multipartMemory = 8 << 20
	// formOverhead allows for multipart boundaries and text fields beyond the file itself
	formOverhead = 1 << 20
	// maxBatchFiles caps the files accepted by one batch request
	maxBatchFiles = 20
)

// ingestForm holds the text fields of an ingest upload
type ingestForm struct {
	ProjectID string `form:"project_id" validate:"required,max=64,identifier"`
	ReportID  string `form:"report_id" validate:"omitempty,max=64,identifier"`
}

// parseForm holds the text fields of a parse-only upload
type parseForm struct {
	ReportID string `form:"report_id" validate:"omitempty,max=64,identifier"`
}

// BatchItemResponse is one file of a batch parse response
type BatchItemResponse struct {
	Name         string         `json:"name"`
	Sheet        string         `json:"sheet,omitempty"`
	Sections     map[string]int `json:"sections,omitempty"`
	RecordCount  int            `json:"record_count"`
	FallbackUsed bool           `json:"fallback_used"`
	Error        string         `json:"error,omitempty"`
}

// ReportHandler handles report upload, retrieval and export requests
type ReportHandler struct {
	service      ReportServiceInterface
	validator    *middleware.Validator
	query        *middleware.QueryParamValidator
	maxUpload    int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler with RFC 7807 error handling
func NewReportHandler(service ReportServiceInterface, maxUpload int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		validator:    middleware.NewValidator(),
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("handler", "reports")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes, mounted under /api/reports
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))
		r.Post("/parse", h.Parse)
		r.Post("/parse/batch", h.ParseBatch)
		r.Post("/", h.Ingest)
	})

	r.Get("/", h.List)

	r.Route("/{reportID}", func(r chi.Router) {
		r.Use(h.ReportCtx)
		r.Get("/", h.Get)
		r.Get("/result", h.Result)
		r.Get("/export/{section}.csv", h.ExportSection)
		r.Delete("/", h.Delete)
	})

	return r
}

// ReportCtx validates the reportID path parameter
func (h *ReportHandler) ReportCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reportID := chi.URLParam(r, "reportID")
		if err := h.validator.Engine().Var(reportID, "required,max=64,identifier"); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("reportID", "Invalid report id"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Parse handles POST /api/reports/parse and returns the parse result without storing it
func (h *ReportHandler) Parse(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r, 1); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := parseForm{ReportID: r.FormValue("report_id")}
	if err := h.validator.ValidateStruct(form); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	upload, err := readUpload(r, "file")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	upload.ReportID = form.ReportID

	outcome, err := h.service.Parse(r.Context(), upload)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("X-Report-Sheet", outcome.SheetName)
	w.Header().Set("X-Fallback-Used", strconv.FormatBool(outcome.FallbackUsed))
	render.JSON(w, r, outcome.Result)
}

// ParseBatch handles POST /api/reports/parse/batch with any number of "files" parts
func (h *ReportHandler) ParseBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r, maxBatchFiles); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrMissingFile)
		return
	}
	if len(headers) > maxBatchFiles {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("files", fmt.Sprintf("at most %d files per batch", maxBatchFiles)))
		return
	}

	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		up, err := openUpload(fh)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		uploads = append(uploads, up)
	}

	items := h.service.ParseBatch(r.Context(), uploads)

	response := make([]BatchItemResponse, len(items))
	for i, item := range items {
		response[i] = BatchItemResponse{Name: item.Name}
		if item.Err != nil {
			response[i].Error = item.Err.Error()
			continue
		}
		response[i].Sheet = item.Outcome.SheetName
		response[i].Sections = item.Outcome.Result.SectionCounts()
		response[i].RecordCount = item.Outcome.Result.TotalRecords()
		response[i].FallbackUsed = item.Outcome.FallbackUsed
	}

	render.JSON(w, r, map[string]interface{}{
		"items": response,
	})
}

// Ingest handles POST /api/reports: parse, store and summarize an upload
func (h *ReportHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r, 1); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := ingestForm{
		ProjectID: strings.TrimSpace(r.FormValue("project_id")),
		ReportID:  r.FormValue("report_id"),
	}
	if err := h.validator.ValidateStruct(form); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	upload, err := readUpload(r, "file")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	upload.ReportID = form.ReportID

	summary, err := h.service.Ingest(r.Context(), services.IngestRequest{
		Upload:    upload,
		ProjectID: form.ProjectID,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Report ingested",
		slog.String("report_id", summary.ReportID),
		slog.String("project_id", summary.ProjectID),
		slog.Int("records", summary.RecordCount))

	w.Header().Set("Location", "/api/reports/"+summary.ReportID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, summary)
}

// List handles GET /api/reports?project_id=&limit=
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 1, storage.MaxListLimit, storage.DefaultListLimit)
	if !ok {
		return
	}

	reports, err := h.service.ListReports(r.Context(), r.URL.Query().Get("project_id"), limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if reports == nil {
		reports = []domain.Report{}
	}

	render.JSON(w, r, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

// Get handles GET /api/reports/{reportID}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GetReport(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// Result handles GET /api/reports/{reportID}/result
func (h *ReportHandler) Result(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetResult(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// ExportSection handles GET /api/reports/{reportID}/export/{section}.csv.
// The UTF-8 BOM Excel expects is written unless ?bom=false.
func (h *ReportHandler) ExportSection(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	name := chi.URLParam(r, "section")

	kind, ok := domain.ParseSectionKind(name)
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.UnknownSectionError(name))
		return
	}

	bom := true
	if v := r.URL.Query().Get("bom"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("bom", "bom must be a boolean"))
			return
		}
		bom = parsed
	}

	result, err := h.service.GetResult(r.Context(), reportID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_%s.csv"`, reportID, kind))
	if err := exporter.WriteSection(w, kind, result, bom); err != nil {
		// Headers are already sent; all that is left is to log
		h.logger.ErrorContext(r.Context(), "Failed to write CSV export",
			slog.String("report_id", reportID),
			slog.String("section", name),
			slog.String("error", err.Error()))
	}
}

// Delete handles DELETE /api/reports/{reportID}
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteReport(r.Context(), chi.URLParam(r, "reportID")); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseMultipart bounds the body to files uploads of the configured size and parses the form
func (h *ReportHandler) parseMultipart(w http.ResponseWriter, r *http.Request, files int64) error {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload*files+formOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return apierrors.ErrPayloadTooLarge
		}
		return apierrors.InvalidRequestWithError(err)
	}
	return nil
}

// readUpload reads one file field of a parsed multipart form
func readUpload(r *http.Request, field string) (services.Upload, error) {
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return services.Upload{}, apierrors.ErrMissingFile
	}
	return openUpload(headers[0])
}

func openUpload(header *multipart.FileHeader) (services.Upload, error) {
	f, err := header.Open()
	if err != nil {
		return services.Upload{}, apierrors.InvalidRequestWithError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.Upload{}, apierrors.InvalidRequestWithError(err)
	}
	return services.Upload{Name: header.Filename, Data: data}, nil
}
