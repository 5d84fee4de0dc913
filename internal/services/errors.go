package services

import (
	"errors"

	apperrors "fieldreports/internal/errors"
	"fieldreports/internal/storage"
	"fieldreports/internal/validation"
)

// Report service errors
var (
	ErrReportNotFound = storage.ErrReportNotFound

	// Upload errors
	ErrEmptyUpload    = validation.ErrEmptyFile
	ErrUploadTooLarge = validation.ErrFileTooLarge

	// Parse errors; a timeout also matches context.DeadlineExceeded
	ErrParseTimeout = errors.New("report parse timed out")

	// Returned by store-backed operations when no store is configured
	ErrServiceUnavailable = apperrors.ErrServiceUnavailable
)
