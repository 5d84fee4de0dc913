package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"fieldreports/internal/dataprocessing"
	"fieldreports/internal/storage"
	"fieldreports/internal/validation"
	"fieldreports/internal/workbook"
)

// Common error types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeServiceDown      = "/errors/service-unavailable"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
)

// Report-specific error types
const (
	TypeSheetNotFound     = "/errors/report/sheet-not-found"
	TypeUnsupportedFormat = "/errors/report/unsupported-format"
	TypeReportNotFound    = "/errors/report/not-found"
	TypeUnknownSection    = "/errors/report/unknown-section"
	TypeParseFailed       = "/errors/report/parse-failed"
	TypePersistence       = "/errors/report/persistence"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem.WithExtension("trace_id", reqID)

	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	_ = render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	path := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed %q validation", fe.Tag()),
			})
		}
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Validation Failed",
			"Request validation failed",
			path,
		).WithExtension("errors", details)
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			TypePayloadTooLarge,
			"Payload Too Large",
			fmt.Sprintf("The request body exceeds the maximum of %d bytes", tooLarge.Limit),
			path,
		)
	}

	if errors.Is(err, validation.ErrFileTooLarge) {
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			TypePayloadTooLarge,
			"Payload Too Large",
			err.Error(),
			path,
		)
	}

	if errors.Is(err, validation.ErrEmptyFile) || errors.Is(err, validation.ErrTemporaryFile) {
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeValidation,
			"Invalid Upload",
			err.Error(),
			path,
		)
	}

	var sheetErr *dataprocessing.SheetNotFoundError
	if errors.As(err, &sheetErr) {
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeSheetNotFound,
			"Data Sheet Not Found",
			"No sheet in the workbook is named like a data sheet",
			path,
		).WithExtension("sheets", sheetErr.Sheets)
	}
	if errors.Is(err, dataprocessing.ErrSheetNotFound) {
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			TypeSheetNotFound,
			"Data Sheet Not Found",
			"No sheet in the workbook is named like a data sheet",
			path,
		)
	}

	if errors.Is(err, workbook.ErrUnsupportedFormat) {
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeUnsupportedFormat,
			"Unsupported Format",
			"The file is not a readable .xlsx or .xls workbook",
			path,
		)
	}

	if errors.Is(err, storage.ErrReportNotFound) {
		return NewProblemDetails(
			http.StatusNotFound,
			TypeReportNotFound,
			"Report Not Found",
			err.Error(),
			path,
		)
	}

	var persistErr *storage.PersistenceError
	if errors.As(err, &persistErr) {
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypePersistence,
			"Persistence Failed",
			fmt.Sprintf("Failed to %s %s", persistErr.Op, persistErr.Table),
			path,
		).WithExtension("table", persistErr.Table)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return h.appErrorToProblem(appErr, r)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		path,
	)
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "VALIDATION_FAILED", "INVALID_REQUEST", "MISSING_FILE":
		problemType = TypeValidation
	case "NOT_FOUND":
		problemType = TypeNotFound
	case "REPORT_NOT_FOUND":
		problemType = TypeReportNotFound
	case "UNKNOWN_SECTION":
		problemType = TypeUnknownSection
	case "PAYLOAD_TOO_LARGE":
		problemType = TypePayloadTooLarge
	case "RATE_LIMIT_EXCEEDED":
		problemType = TypeRateLimit
	case "SERVICE_UNAVAILABLE":
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

func (h *ErrorHandler) appErrorToProblem(appErr *AppError, r *http.Request) *ProblemDetails {
	status, problemType, title := http.StatusInternalServerError, TypeInternal, "Internal Server Error"
	detail := "An unexpected error occurred while processing your request"

	switch appErr.Type {
	case ErrTypeValidation:
		status, problemType, title, detail = http.StatusBadRequest, TypeValidation, "Validation Failed", appErr.Message
	case ErrTypeUnsupported:
		status, problemType, title, detail = http.StatusBadRequest, TypeUnsupportedFormat, "Unsupported Format", appErr.Message
	case ErrTypeNotFound:
		status, problemType, title, detail = http.StatusNotFound, TypeNotFound, "Resource Not Found", appErr.Message
	case ErrTypeParsing:
		status, problemType, title, detail = http.StatusUnprocessableEntity, TypeParseFailed, "Parse Failed", appErr.Message
	case ErrTypeStorage:
		problemType, title = TypePersistence, "Persistence Failed"
	}

	problem := NewProblemDetails(status, problemType, title, detail, r.URL.Path)
	for k, v := range appErr.Context {
		problem.WithExtension(k, v)
	}
	return problem
}

// HandlePanic responds with a 500 problem for a recovered panic
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", getStackTrace()),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	_ = render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	_ = render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeMethodNotAllowed,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	_ = render.Render(w, r, problem)
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
