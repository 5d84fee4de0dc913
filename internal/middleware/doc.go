// Package middleware holds the HTTP middleware chain of the report API:
// request IDs, structured request logging, panic recovery, rate limiting,
// request timeouts, CORS and security headers, OpenTelemetry spans and
// request metrics, and request validation helpers.
package middleware
