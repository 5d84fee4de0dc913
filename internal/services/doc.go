// Package services implements the business logic layer of the report API.
// It sits between the HTTP handlers and queue consumer on one side and the
// parser and store on the other.
//
// # Available Services
//
//   - ReportService: parses uploads, ingests them into the store, reads them back
//   - HealthService: liveness, readiness and version information
//
// # Parsing
//
// Every parse runs in its own goroutine bounded by the caller's context and
// the configured parser timeout. A timed out parse returns ErrParseTimeout,
// which also matches context.DeadlineExceeded. Batches fan out through an
// errgroup limited to the configured worker count; one failing file does not
// cancel the others.
//
// # Error Handling
//
// Services return the errors of the layers below unchanged so handlers can
// map them with errors.Is and errors.As:
//
//   - dataprocessing.ErrSheetNotFound for workbooks without a data sheet
//   - workbook.ErrUnsupportedFormat for content that is not xlsx or xls
//   - ErrEmptyUpload and ErrUploadTooLarge for rejected uploads
//   - ErrReportNotFound for unknown report ids
//   - *storage.PersistenceError naming the table that failed
//
// # Testing
//
// Services are tested by mocking the store:
//
//	store := new(MockReportStore)
//	store.On("SaveReport", mock.Anything, mock.Anything, mock.Anything).Return(nil)
//	svc := NewReportService(store, cfg.Parser, nil, logger)
package services
