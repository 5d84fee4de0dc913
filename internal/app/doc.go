// Package app wires the report service together and manages its lifecycle.
//
// Startup order:
//
//  1. Load configuration (defaults, YAML file, REPORTS_* environment)
//  2. Initialize logging and OpenTelemetry
//  3. Open the SQL store and apply migrations
//  4. Build the report and health services, plus the queue consumer when enabled
//  5. Mount middleware and handlers on a chi router
//  6. Serve HTTP until SIGINT or SIGTERM, then shut down gracefully
//
// Routes:
//
//	/api/reports/...  report upload, retrieval and CSV export
//	/api/health/...   liveness and readiness probes
//	/api/version      build information
//	/metrics          Prometheus scrape endpoint, when the prometheus exporter is on
package app
