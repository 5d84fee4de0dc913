// Package http implements the HTTP handlers of the report API.
// Handlers stay thin: they decode multipart uploads and path parameters,
// delegate to the services layer and render JSON. Every failure goes through
// errors.ErrorHandler so clients always receive RFC 7807 problem details.
//
// # Routes
//
//	POST   /api/reports/parse                       parse an upload, nothing is stored
//	POST   /api/reports/parse/batch                 parse several uploads concurrently
//	POST   /api/reports                             parse and store an upload
//	GET    /api/reports                             list stored reports
//	GET    /api/reports/{reportID}                  report metadata
//	GET    /api/reports/{reportID}/result           stored parse result
//	GET    /api/reports/{reportID}/export/{s}.csv   one section as CSV
//	DELETE /api/reports/{reportID}                  delete a stored report
//	GET    /api/health, /api/health/live, /api/health/ready, /api/version
package http
