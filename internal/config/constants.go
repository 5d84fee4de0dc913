package config

import "time"

// Application constants
const (
	AppName    = "Field Reports"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. REPORTS_SERVER_PORT
	EnvPrefix = "REPORTS"
	// ConfigFileEnv points at an explicit YAML file
	ConfigFileEnv = "REPORTS_CONFIG"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultMaxUploadBytes = 20 << 20
	DefaultParseTimeout   = 30 * time.Second
	DefaultUploadsDir     = "data/uploads"
	DefaultExportDir      = "data/exports"
	DefaultLogsDir        = "logs"
	DefaultSQLiteDSN      = "file:data/reports.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	DefaultQueueName      = "reports.uploaded"
)
