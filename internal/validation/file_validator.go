package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fieldreports/internal/workbook"
)

var (
	// ErrEmptyFile is returned for zero-byte uploads
	ErrEmptyFile = errors.New("file is empty")
	// ErrFileTooLarge is returned when an upload exceeds the configured limit
	ErrFileTooLarge = errors.New("file exceeds size limit")
	// ErrTemporaryFile is returned for Office lock files such as ~$report.xlsx
	ErrTemporaryFile = errors.New("temporary office file")
	// ErrNotAFile is returned when a report path names a directory
	ErrNotAFile = errors.New("not a regular file")
	// ErrNotADirectory is returned when an input directory path names a file
	ErrNotADirectory = errors.New("not a directory")
)

// FileValidator checks report files and the directories they move through
type FileValidator struct {
	logger   *slog.Logger
	maxBytes int64
}

// NewFileValidator creates a new file validator; maxBytes <= 0 disables the size check
func NewFileValidator(logger *slog.Logger, maxBytes int64) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// ValidateUpload checks an in-memory upload and returns its sniffed format.
// Unknown content is reported as workbook.ErrUnsupportedFormat.
func (v *FileValidator) ValidateUpload(name string, data []byte) (workbook.Format, error) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary Excel file",
			slog.String("file", name))
		return workbook.FormatUnknown, fmt.Errorf("%w: %s", ErrTemporaryFile, base)
	}

	if len(data) == 0 {
		return workbook.FormatUnknown, fmt.Errorf("%w: %s", ErrEmptyFile, base)
	}

	if v.maxBytes > 0 && int64(len(data)) > v.maxBytes {
		v.logger.Warn("Upload exceeds size limit",
			slog.String("file", name),
			slog.Int("size", len(data)),
			slog.Int64("limit", v.maxBytes))
		return workbook.FormatUnknown, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, base, len(data), v.maxBytes)
	}

	format := workbook.DetectFormat(name, data)
	if format == workbook.FormatUnknown {
		mime := workbook.MIMEType(data)
		v.logger.Warn("Upload is not a spreadsheet",
			slog.String("file", name),
			slog.String("mime", mime))
		return format, fmt.Errorf("%w: %s (%s)", workbook.ErrUnsupportedFormat, base, mime)
	}

	v.logger.Debug("Upload validated",
		slog.String("file", name),
		slog.String("format", string(format)),
		slog.Int("size", len(data)))
	return format, nil
}

// ValidateWorkbookFile reads a report from disk and validates it like an upload.
// The size limit is checked against the file's stat before anything is read.
func (v *FileValidator) ValidateWorkbookFile(path string) ([]byte, error) {
	info, err := v.statFile(path)
	if err != nil {
		return nil, err
	}

	if v.maxBytes > 0 && info.Size() > v.maxBytes {
		v.logger.Warn("File exceeds size limit",
			slog.String("file", path),
			slog.Int64("size", info.Size()),
			slog.Int64("limit", v.maxBytes))
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, filepath.Base(path), info.Size(), v.maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	if _, err := v.ValidateUpload(path, data); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidateFile checks if a specific file exists and is a regular file
func (v *FileValidator) ValidateFile(path string) error {
	_, err := v.statFile(path)
	return err
}

func (v *FileValidator) statFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return nil, fmt.Errorf("file %s does not exist: %w", path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotAFile, path)
	}

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return info, nil
}

// ValidateInputDirectory validates that input directory exists
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("input directory %s does not exist: %w", dir, err)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created, and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return nil
}

// ResolveUpload joins a queued file name onto the uploads directory,
// refusing names that would escape it.
func ResolveUpload(uploadsDir, fileName string) (string, error) {
	if fileName == "" {
		return "", fmt.Errorf("%w: empty file name", ErrEmptyFile)
	}
	clean := filepath.Clean(fileName)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file name %q escapes the uploads directory", fileName)
	}
	return filepath.Join(uploadsDir, clean), nil
}
